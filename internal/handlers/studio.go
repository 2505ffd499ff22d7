package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/lehigh-university-libraries/idealab/internal/auth"
	"github.com/lehigh-university-libraries/idealab/internal/session"
)

func (h *Handler) HandleStudio(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, auth.ViewFrom(r.Context()).Snapshot())
}

func (h *Handler) HandlePanel(w http.ResponseWriter, r *http.Request) {
	view := auth.ViewFrom(r.Context())

	var request struct {
		Panel session.Panel `json:"panel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeStudioError(w, view, badRequest("Invalid JSON: "+err.Error()))
		return
	}

	if err := view.SetPanel(request.Panel); err != nil {
		h.writeStudioError(w, view, err)
		return
	}
	h.writeJSON(w, view.Snapshot())
}

func (h *Handler) HandleDescription(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(ctx context.Context, view *session.View) error {
		return view.GenerateDescription(ctx)
	})
}

func (h *Handler) HandleSketch(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(ctx context.Context, view *session.View) error {
		return view.GenerateSketch(ctx)
	})
}

func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	view := auth.ViewFrom(r.Context())

	var request struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeStudioError(w, view, badRequest("Invalid JSON: "+err.Error()))
		return
	}

	h.run(w, r, func(ctx context.Context, view *session.View) error {
		return view.SendMessage(ctx, request.Prompt)
	})
}

// run executes a generation operation and responds with the resulting view.
// The remote call outlives a dropped connection so the result still lands in
// the session.
func (h *Handler) run(w http.ResponseWriter, r *http.Request, op func(context.Context, *session.View) error) {
	view := auth.ViewFrom(r.Context())

	if err := op(context.WithoutCancel(r.Context()), view); err != nil {
		h.writeStudioError(w, view, err)
		return
	}
	h.writeJSON(w, view.Snapshot())
}
