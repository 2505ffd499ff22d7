// Package session holds the server-side state of one user's studio: the
// current product image, the three result panels and the chat transcript.
//
// Remote calls never run under the view lock. Each operation snapshots what it
// needs, releases the lock, calls the generator and then applies the result in
// a completion step. A completion is dropped if a new main image was uploaded
// while it was in flight.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/idealab/internal/images"
	"github.com/lehigh-university-libraries/idealab/internal/studio"
)

type Panel string

const (
	PanelChat        Panel = "chat"
	PanelDescription Panel = "description"
	PanelSketch      Panel = "sketch"
)

type Operation string

const (
	OpDescription Operation = "description"
	OpSketch      Operation = "sketch"
	OpChat        Operation = "chat"
)

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

var (
	ErrNoMainImage  = errors.New("Please upload a main product image first.")
	ErrEmptyMessage = errors.New("Enter a prompt or attach an image.")
	ErrUnknownPanel = errors.New("unknown panel")
	ErrSuperseded   = errors.New("result discarded because the main image was replaced")
	ErrBusy         = errors.New("operation already in progress")

	ErrTooManyAttachments = errors.New("Too many images attached. Send the message first.")
)

// MaxAttachments bounds the images queued for a single chat message
const MaxAttachments = 8

// ChatErrorPrefix starts the assistant entry recorded for a failed edit
const ChatErrorPrefix = "Sorry, I encountered an error: "

// Generator is the set of remote operations the view drives
type Generator interface {
	Describe(ctx context.Context, img images.Asset) (string, error)
	EditImage(ctx context.Context, main images.Asset, aux []images.Asset, prompt string) (*studio.EditResult, error)
	Sketch(ctx context.Context, img images.Asset) (images.Asset, error)
}

// Message is one transcript entry. Entries are never modified once appended.
type Message struct {
	Sender Sender         `json:"sender"`
	Text   string         `json:"text"`
	Images []images.Asset `json:"images,omitempty"`
}

// View is the studio surface for a single logged-in user
type View struct {
	ID string

	gen Generator

	mu          sync.Mutex
	epoch       uint64
	panel       Panel
	mainImage   *images.Asset
	description string
	sketch      *images.Asset
	transcript  []Message
	attachments []images.Asset
	busy        map[Operation]bool
	errMsg      string
	createdAt   time.Time
	updatedAt   time.Time
}

// New returns an empty view on the chat panel
func New(id string, gen Generator) *View {
	now := time.Now()
	return &View{
		ID:    id,
		gen:   gen,
		panel: PanelChat,
		busy: map[Operation]bool{
			OpDescription: false,
			OpSketch:      false,
			OpChat:        false,
		},
		createdAt: now,
		updatedAt: now,
	}
}

// SetPanel switches the active panel. Content of the other panels is kept.
func (v *View) SetPanel(p Panel) error {
	switch p {
	case PanelChat, PanelDescription, PanelSketch:
	default:
		return ErrUnknownPanel
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.panel = p
	v.touch()
	return nil
}

// UploadMainImage starts a fresh session around img: the description, sketch,
// transcript and error banner are cleared.
func (v *View) UploadMainImage(img images.Asset) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.epoch++
	v.mainImage = &img
	v.description = ""
	v.sketch = nil
	v.transcript = nil
	v.errMsg = ""
	v.touch()

	slog.Info("Main image uploaded", "session_id", v.ID, "mime_type", img.MIMEType, "encoded_length", len(img.Data))
}

// AttachImage queues an auxiliary image for the next chat message
func (v *View) AttachImage(img images.Asset) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.attachments) >= MaxAttachments {
		return ErrTooManyAttachments
	}
	v.attachments = append(v.attachments, img)
	v.touch()
	return nil
}

// LastActive is the time of the last change to the view
func (v *View) LastActive() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.updatedAt
}

// InFlight reports whether any operation is waiting on the model
func (v *View) InFlight() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, b := range v.busy {
		if b {
			return true
		}
	}
	return false
}

// Busy reports whether op has a request in flight
func (v *View) Busy(op Operation) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.busy[op]
}

// GenerateDescription replaces the description panel with a fresh description
// of the main image.
func (v *View) GenerateDescription(ctx context.Context) error {
	main, epoch, err := v.begin(OpDescription)
	if err != nil {
		return err
	}
	defer v.done(OpDescription)

	desc, err := v.gen.Describe(ctx, main)

	v.mu.Lock()
	defer v.mu.Unlock()
	if stale := v.current(OpDescription, epoch); stale != nil {
		return stale
	}
	if err != nil {
		v.errMsg = err.Error()
		return err
	}
	v.description = desc
	return nil
}

// GenerateSketch replaces the sketch panel with a line drawing of the main image
func (v *View) GenerateSketch(ctx context.Context) error {
	main, epoch, err := v.begin(OpSketch)
	if err != nil {
		return err
	}
	defer v.done(OpSketch)

	sketch, err := v.gen.Sketch(ctx, main)

	v.mu.Lock()
	defer v.mu.Unlock()
	if stale := v.current(OpSketch, epoch); stale != nil {
		return stale
	}
	if err != nil {
		v.errMsg = err.Error()
		return err
	}
	v.sketch = &sketch
	return nil
}

// SendMessage records the user's prompt and pending attachments in the
// transcript, asks the model to edit the main image and records its reply.
// On success the edited image becomes the main image.
func (v *View) SendMessage(ctx context.Context, prompt string) error {
	v.mu.Lock()
	if v.busy[OpChat] {
		v.mu.Unlock()
		return ErrBusy
	}
	if v.mainImage == nil {
		v.mu.Unlock()
		return ErrNoMainImage
	}
	if prompt == "" && len(v.attachments) == 0 {
		v.mu.Unlock()
		return ErrEmptyMessage
	}

	aux := v.attachments
	v.attachments = nil
	v.transcript = append(v.transcript, Message{
		Sender: SenderUser,
		Text:   prompt,
		Images: cloneAssets(aux),
	})
	main := *v.mainImage
	epoch := v.epoch
	v.busy[OpChat] = true
	v.errMsg = ""
	v.touch()
	v.mu.Unlock()

	defer v.done(OpChat)

	res, err := v.gen.EditImage(ctx, main, aux, prompt)

	v.mu.Lock()
	defer v.mu.Unlock()
	if stale := v.current(OpChat, epoch); stale != nil {
		return stale
	}
	if err != nil {
		v.errMsg = err.Error()
		v.transcript = append(v.transcript, Message{
			Sender: SenderAssistant,
			Text:   ChatErrorPrefix + err.Error(),
		})
		return err
	}

	edited := res.Image
	v.mainImage = &edited
	v.transcript = append(v.transcript, Message{
		Sender: SenderAssistant,
		Text:   res.Text,
		Images: []images.Asset{res.Image},
	})
	return nil
}

// begin validates that op is idle and a main image exists, marks op busy and
// returns the image the request should use.
func (v *View) begin(op Operation) (images.Asset, uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.busy[op] {
		return images.Asset{}, 0, ErrBusy
	}

	if v.mainImage == nil {
		v.errMsg = ErrNoMainImage.Error()
		v.touch()
		return images.Asset{}, 0, ErrNoMainImage
	}

	v.busy[op] = true
	v.errMsg = ""
	v.touch()
	return *v.mainImage, v.epoch, nil
}

func (v *View) done(op Operation) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.busy[op] = false
	v.touch()
}

// current must be called with the lock held. It rejects completions that
// belong to a previous main image.
func (v *View) current(op Operation, epoch uint64) error {
	if v.epoch == epoch {
		v.touch()
		return nil
	}
	slog.Warn("Discarding stale result", "session_id", v.ID, "op", op)
	return ErrSuperseded
}

func (v *View) touch() {
	v.updatedAt = time.Now()
}

func cloneAssets(in []images.Asset) []images.Asset {
	if len(in) == 0 {
		return nil
	}
	out := make([]images.Asset, len(in))
	copy(out, in)
	return out
}
