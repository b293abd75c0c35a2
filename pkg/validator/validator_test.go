package validator

import (
	"errors"
	"testing"
)

func TestUploadValidate(t *testing.T) {
	cfg := NewUploadConfig(8, []string{"image/png", "Text/Plain"})

	png := []byte("\x89PNG\r\n\x1a\n")
	cases := []struct {
		name     string
		size     int64
		declared string
		data     []byte
		wantMime string
		wantErr  error
	}{
		{"declared type wins", 5, "text/plain; charset=utf-8", []byte("hello"), "text/plain", nil},
		{"sniffed when generic", 8, "application/octet-stream", png, "image/png", nil},
		{"empty", 0, "text/plain", nil, "", ErrEmptyFile},
		{"too large", 9, "text/plain", []byte("123456789"), "", ErrFileTooLarge},
		{"not whitelisted", 4, "application/zip", []byte("PK.."), "application/zip", ErrUnsupportedType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mime, err := cfg.Validate(tc.size, tc.declared, tc.data)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if mime != tc.wantMime {
				t.Fatalf("mime = %q, want %q", mime, tc.wantMime)
			}
		})
	}
}

func TestSanitizeSlug(t *testing.T) {
	cases := map[string]bool{
		"machine-learning": true,
		" Robotics_Lab ":   true,
		"":                 false,
		"../etc":           false,
		"a b":              false,
	}
	for input, want := range cases {
		if _, ok := SanitizeSlug(input); ok != want {
			t.Fatalf("SanitizeSlug(%q) ok = %v, want %v", input, ok, want)
		}
	}
}

func TestLocalRedirect(t *testing.T) {
	cases := map[string]string{
		"/news?page=2":          "/news?page=2",
		"/members/li-lei":       "/members/li-lei",
		"":                      "/",
		"news":                  "/",
		"//evil.example/":       "/",
		"/\\evil.example":       "/",
		"https://evil.example/": "/",
	}
	for in, want := range cases {
		if got := LocalRedirect(in); got != want {
			t.Fatalf("LocalRedirect(%q) = %q, want %q", in, got, want)
		}
	}
}
