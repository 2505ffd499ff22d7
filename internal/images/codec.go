package images

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// MaxUploadSize is the largest image accepted from a browser upload or URL
const MaxUploadSize = 10 * 1024 * 1024

var (
	ErrTooLarge       = errors.New("file too large (max 10MB)")
	ErrNotImage       = errors.New("file is not an image")
	ErrInvalidDataURL = errors.New("invalid image data URL")
)

// Asset is an image held in memory as base64 text
type Asset struct {
	Data     string `json:"data"`
	MIMEType string `json:"mime_type"`
}

// FromBytes encodes raw image bytes. An empty or non-image mimeType is replaced
// by the sniffed content type.
func FromBytes(data []byte, mimeType string) Asset {
	mimeType = baseMIME(mimeType)
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}
	return Asset{
		Data:     base64.StdEncoding.EncodeToString(data),
		MIMEType: mimeType,
	}
}

// FromReader reads at most limit bytes from r and encodes them as an Asset.
func FromReader(r io.Reader, mimeType string, limit int64) (Asset, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return Asset{}, fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > limit {
		return Asset{}, ErrTooLarge
	}
	if len(data) == 0 {
		return Asset{}, ErrNotImage
	}
	if strings.HasPrefix(http.DetectContentType(data), "image/") {
		return FromBytes(data, mimeType), nil
	}

	declared := baseMIME(mimeType)
	if !looksLike(declared, data) {
		return Asset{}, ErrNotImage
	}
	return Asset{
		Data:     base64.StdEncoding.EncodeToString(data),
		MIMEType: declared,
	}, nil
}

// looksLike covers image formats http.DetectContentType does not recognise.
// The declared type is only trusted when the payload carries that format's marker.
func looksLike(mimeType string, data []byte) bool {
	switch mimeType {
	case "image/heic", "image/heif", "image/avif":
		// ISO base media file: box size, then "ftyp"
		return len(data) >= 12 && string(data[4:8]) == "ftyp"
	case "image/svg+xml":
		head := data
		if len(head) > 1024 {
			head = head[:1024]
		}
		return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
	default:
		return false
	}
}

func baseMIME(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// ParseDataURL decodes a "data:<mime>;base64,<payload>" string. Only image
// types are accepted.
func ParseDataURL(s string) (Asset, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return Asset{}, ErrInvalidDataURL
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Asset{}, ErrInvalidDataURL
	}
	mimeType, ok := strings.CutSuffix(header, ";base64")
	if !ok || mimeType == "" || payload == "" {
		return Asset{}, ErrInvalidDataURL
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return Asset{}, fmt.Errorf("%w: %w", ErrInvalidDataURL, ErrNotImage)
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return Asset{}, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return Asset{Data: payload, MIMEType: mimeType}, nil
}

// DataURL renders the asset for display in a browser.
func (a Asset) DataURL() string {
	return "data:" + a.MIMEType + ";base64," + a.Data
}

// Bytes decodes the base64 payload.
func (a Asset) Bytes() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(a.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}
	return b, nil
}

func (a Asset) IsZero() bool {
	return a.Data == ""
}

// Equal reports whether both assets carry the same payload and type.
func (a Asset) Equal(b Asset) bool {
	return a.MIMEType == b.MIMEType && a.Data == b.Data
}

// GuessMIME maps a file extension to an image MIME type, defaulting to PNG
func GuessMIME(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/png"
	}
}

// Extension is the inverse of GuessMIME, used when writing generated images to disk.
func Extension(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
