package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/idealab/internal/auth"
	"github.com/lehigh-university-libraries/idealab/internal/images"
)

// HandleMainImage replaces the main product image and starts a fresh session.
// Accepts a multipart "file" field or a JSON body with image_url.
func (h *Handler) HandleMainImage(w http.ResponseWriter, r *http.Request) {
	view := auth.ViewFrom(r.Context())

	var (
		img images.Asset
		err error
	)
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		img, err = h.readURLUpload(r)
	} else {
		img, err = h.readFileUpload(r)
	}
	if err != nil {
		h.writeStudioError(w, view, err)
		return
	}

	view.UploadMainImage(img)
	h.writeJSON(w, view.Snapshot())
}

// HandleAttachment queues an auxiliary image for the next chat message
func (h *Handler) HandleAttachment(w http.ResponseWriter, r *http.Request) {
	view := auth.ViewFrom(r.Context())

	img, err := h.readFileUpload(r)
	if err != nil {
		h.writeStudioError(w, view, err)
		return
	}

	if err := view.AttachImage(img); err != nil {
		h.writeStudioError(w, view, err)
		return
	}
	slog.Info("Attachment queued", "session_id", view.ID, "mime_type", img.MIMEType)
	h.writeJSON(w, view.Snapshot())
}

func (h *Handler) readURLUpload(r *http.Request) (images.Asset, error) {
	var request struct {
		ImageURL string `json:"image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return images.Asset{}, badRequest("Invalid JSON: " + err.Error())
	}
	if request.ImageURL == "" {
		return images.Asset{}, badRequest("image_url is required")
	}

	if strings.HasPrefix(request.ImageURL, "data:") {
		return images.ParseDataURL(request.ImageURL)
	}

	img, err := h.fetcher.Fetch(r.Context(), request.ImageURL)
	switch {
	case err == nil:
		return img, nil
	case errors.Is(err, images.ErrBlockedAddress):
		return images.Asset{}, images.ErrBlockedAddress
	case errors.Is(err, images.ErrTooLarge), errors.Is(err, images.ErrNotImage):
		return images.Asset{}, err
	default:
		// Transport details stay in the log
		slog.Warn("Image URL fetch failed", "url", request.ImageURL, "err", err)
		return images.Asset{}, badRequest("Failed to process image URL")
	}
}

func (h *Handler) readFileUpload(r *http.Request) (images.Asset, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return images.Asset{}, badRequest("Failed to read file: " + err.Error())
	}
	defer file.Close()

	img, err := images.FromReader(file, header.Header.Get("Content-Type"), images.MaxUploadSize)
	if err != nil {
		return images.Asset{}, fmt.Errorf("failed to read %s: %w", header.Filename, err)
	}

	slog.Info("Image uploaded", "filename", header.Filename, "mime_type", img.MIMEType)
	return img, nil
}

// requestError is a client mistake that maps to 400 without a dedicated sentinel
type requestError struct {
	message string
}

func (e *requestError) Error() string { return e.message }

func badRequest(message string) error {
	return &requestError{message: message}
}
