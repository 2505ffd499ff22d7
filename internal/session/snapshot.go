package session

import (
	"time"

	"github.com/lehigh-university-libraries/idealab/internal/images"
)

// Snapshot is a point-in-time copy of a view, safe to serialise
type Snapshot struct {
	ID          string             `json:"id"`
	Panel       Panel              `json:"panel"`
	MainImage   *images.Asset      `json:"main_image,omitempty"`
	Description string             `json:"description"`
	Sketch      *images.Asset      `json:"sketch,omitempty"`
	Transcript  []Message          `json:"transcript"`
	Attachments []images.Asset     `json:"attachments"`
	Busy        map[Operation]bool `json:"busy"`
	Error       string             `json:"error,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Snapshot copies the current state of the view
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := Snapshot{
		ID:          v.ID,
		Panel:       v.panel,
		Description: v.description,
		Transcript:  make([]Message, len(v.transcript)),
		Attachments: make([]images.Asset, len(v.attachments)),
		Busy:        make(map[Operation]bool, len(v.busy)),
		Error:       v.errMsg,
		CreatedAt:   v.createdAt,
		UpdatedAt:   v.updatedAt,
	}

	if v.mainImage != nil {
		main := *v.mainImage
		s.MainImage = &main
	}
	if v.sketch != nil {
		sketch := *v.sketch
		s.Sketch = &sketch
	}
	for i, m := range v.transcript {
		m.Images = cloneAssets(m.Images)
		s.Transcript[i] = m
	}
	copy(s.Attachments, v.attachments)
	for op, b := range v.busy {
		s.Busy[op] = b
	}

	return s
}
