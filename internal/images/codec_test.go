package images

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestFromBytes(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		expected string
	}{
		{name: "keeps declared image type", mimeType: "image/jpeg", expected: "image/jpeg"},
		{name: "sniffs when empty", mimeType: "", expected: "image/png"},
		{name: "sniffs when not an image type", mimeType: "application/octet-stream", expected: "image/png"},
		{name: "strips parameters", mimeType: "image/webp; q=1", expected: "image/webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asset := FromBytes(pngHeader, tt.mimeType)
			if asset.MIMEType != tt.expected {
				t.Errorf("Expected MIME type %s, got %s", tt.expected, asset.MIMEType)
			}
			decoded, err := asset.Bytes()
			if err != nil {
				t.Fatalf("Unexpected decode error: %v", err)
			}
			if !bytes.Equal(decoded, pngHeader) {
				t.Errorf("Decoded payload does not match input")
			}
		})
	}
}

func TestFromReader(t *testing.T) {
	t.Run("accepts image", func(t *testing.T) {
		asset, err := FromReader(bytes.NewReader(pngHeader), "", 1024)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if asset.MIMEType != "image/png" {
			t.Errorf("Expected image/png, got %s", asset.MIMEType)
		}
	})

	t.Run("rejects oversized input", func(t *testing.T) {
		_, err := FromReader(bytes.NewReader(pngHeader), "", int64(len(pngHeader))-1)
		if !errors.Is(err, ErrTooLarge) {
			t.Errorf("Expected ErrTooLarge, got %v", err)
		}
	})

	t.Run("accepts input of exactly the limit", func(t *testing.T) {
		if _, err := FromReader(bytes.NewReader(pngHeader), "", int64(len(pngHeader))); err != nil {
			t.Errorf("Expected image at the limit to be accepted, got %v", err)
		}
	})

	t.Run("rejects non-image content", func(t *testing.T) {
		_, err := FromReader(strings.NewReader("hello world"), "image/png", 1024)
		if !errors.Is(err, ErrNotImage) {
			t.Errorf("Expected ErrNotImage, got %v", err)
		}
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := FromReader(strings.NewReader(""), "image/png", 1024)
		if !errors.Is(err, ErrNotImage) {
			t.Errorf("Expected ErrNotImage, got %v", err)
		}
	})
}

func TestFromReaderDeclaredFormats(t *testing.T) {
	heic := append([]byte("\x00\x00\x00\x18ftypheic"), make([]byte, 16)...)
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`)

	tests := []struct {
		name     string
		data     []byte
		mimeType string
		expected string
		wantErr  bool
	}{
		{name: "heic", data: heic, mimeType: "image/heic", expected: "image/heic"},
		{name: "heif with parameters", data: heic, mimeType: "image/HEIF; charset=binary", expected: "image/heif"},
		{name: "avif", data: heic, mimeType: "image/avif", expected: "image/avif"},
		{name: "svg", data: svg, mimeType: "image/svg+xml", expected: "image/svg+xml"},
		{name: "heic without marker", data: []byte("definitely not an image"), mimeType: "image/heic", wantErr: true},
		{name: "svg without svg element", data: []byte("<html></html>"), mimeType: "image/svg+xml", wantErr: true},
		{name: "undeclared heic", data: heic, mimeType: "", wantErr: true},
		{name: "text declared as png", data: []byte("hello"), mimeType: "image/png", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asset, err := FromReader(bytes.NewReader(tt.data), tt.mimeType, 1024)
			if tt.wantErr {
				if !errors.Is(err, ErrNotImage) {
					t.Errorf("Expected ErrNotImage, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if asset.MIMEType != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, asset.MIMEType)
			}
			decoded, _ := asset.Bytes()
			if !bytes.Equal(decoded, tt.data) {
				t.Error("Decoded payload does not match input")
			}
		})
	}
}

func TestDataURLRoundTrip(t *testing.T) {
	asset := FromBytes(pngHeader, "image/png")
	url := asset.DataURL()
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("Unexpected data URL prefix: %s", url)
	}

	parsed, err := ParseDataURL(url)
	if err != nil {
		t.Fatalf("Unexpected parse error: %v", err)
	}
	if !parsed.Equal(asset) {
		t.Errorf("Expected %+v, got %+v", asset, parsed)
	}
}

func TestParseDataURLInvalid(t *testing.T) {
	inputs := []string{
		"",
		"image/png;base64,AAAA",
		"data:image/png;base64",
		"data:image/png,AAAA",
		"data:;base64,AAAA",
		"data:image/png;base64,%%%",
		"data:text/plain;base64,aGVsbG8=",
	}
	for _, in := range inputs {
		if _, err := ParseDataURL(in); !errors.Is(err, ErrInvalidDataURL) {
			t.Errorf("Expected ErrInvalidDataURL for %q, got %v", in, err)
		}
	}

	if _, err := ParseDataURL("data:text/plain;base64,aGVsbG8="); !errors.Is(err, ErrNotImage) {
		t.Errorf("Expected ErrNotImage for a text data URL, got %v", err)
	}
}

func TestGuessMIME(t *testing.T) {
	tests := map[string]string{
		"mug.JPG":   "image/jpeg",
		"mug.jpeg":  "image/jpeg",
		"mug.webp":  "image/webp",
		"mug.gif":   "image/gif",
		"mug.png":   "image/png",
		"mug":       "image/png",
		"a/b/c.tif": "image/png",
	}
	for path, expected := range tests {
		if got := GuessMIME(path); got != expected {
			t.Errorf("GuessMIME(%q): expected %s, got %s", path, expected, got)
		}
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngHeader)
	}))
	defer srv.Close()

	f := &Fetcher{HTTPClient: srv.Client()}

	asset, err := f.Fetch(context.Background(), srv.URL+"/mug.png")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if asset.MIMEType != "image/png" {
		t.Errorf("Expected image/png, got %s", asset.MIMEType)
	}

	if _, err := f.Fetch(context.Background(), srv.URL+"/missing.png"); err == nil {
		t.Error("Expected error for 404 response")
	}
}

func TestFetchBlocksPrivateAddresses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Private address must not be reached")
	}))
	defer srv.Close()

	_, err := NewFetcher().Fetch(context.Background(), srv.URL+"/mug.png")
	if !errors.Is(err, ErrBlockedAddress) {
		t.Errorf("Expected ErrBlockedAddress, got %v", err)
	}
}

func TestIsPublic(t *testing.T) {
	tests := []struct {
		ip       string
		expected bool
	}{
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"172.16.0.9", false},
		{"192.168.1.1", false},
		{"169.254.169.254", false},
		{"fe80::1", false},
		{"0.0.0.0", false},
		{"8.8.8.8", true},
		{"2001:4860:4860::8888", true},
	}

	for _, tt := range tests {
		if got := isPublic(net.ParseIP(tt.ip)); got != tt.expected {
			t.Errorf("isPublic(%s): expected %v, got %v", tt.ip, tt.expected, got)
		}
	}
}
