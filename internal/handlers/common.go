package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/idealab/internal/auth"
	"github.com/lehigh-university-libraries/idealab/internal/images"
	"github.com/lehigh-university-libraries/idealab/internal/session"
	"github.com/lehigh-university-libraries/idealab/internal/studio"
)

type Handler struct {
	gate           *auth.Gate
	fetcher        *images.Fetcher
	googleClientID string
	secureCookies  bool
}

type Options struct {
	GoogleClientID string
	SecureCookies  bool
	Fetcher        *images.Fetcher
}

func New(gate *auth.Gate, opts Options) *Handler {
	if opts.Fetcher == nil {
		opts.Fetcher = images.NewFetcher()
	}
	return &Handler{
		gate:           gate,
		fetcher:        opts.Fetcher,
		googleClientID: opts.GoogleClientID,
		secureCookies:  opts.SecureCookies,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data any) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

type errorResponse struct {
	Error  string            `json:"error"`
	Studio *session.Snapshot `json:"studio,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message, "status", code)
	} else {
		slog.Warn(message, "status", code)
	}
	h.writeJSONStatus(w, code, errorResponse{Error: message})
}

// writeStudioError reports err together with the view's current state so the
// front-end can render the error banner and transcript in one round trip.
func (h *Handler) writeStudioError(w http.ResponseWriter, view *session.View, err error) {
	code := statusFor(err)
	snap := view.Snapshot()
	if code >= http.StatusInternalServerError {
		slog.Error("Studio operation failed", "session_id", view.ID, "status", code, "err", err)
	} else {
		slog.Warn("Studio request rejected", "session_id", view.ID, "status", code, "err", err)
	}
	h.writeJSONStatus(w, code, errorResponse{Error: err.Error(), Studio: &snap})
}

func statusFor(err error) int {
	var genErr *studio.GenerationError
	var reqErr *requestError
	switch {
	case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, session.ErrNoMainImage),
		errors.Is(err, session.ErrEmptyMessage),
		errors.Is(err, session.ErrUnknownPanel),
		errors.Is(err, images.ErrTooLarge),
		errors.Is(err, images.ErrNotImage),
		errors.Is(err, images.ErrInvalidDataURL),
		errors.Is(err, images.ErrBlockedAddress),
		errors.Is(err, session.ErrTooManyAttachments),
		errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.As(err, &genErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
