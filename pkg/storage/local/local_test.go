package local

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestPutGetDelete(t *testing.T) {
	s, err := New(t.TempDir(), "/uploads/")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	res, err := s.PutObject(ctx, "strapi/abc.txt", strings.NewReader("hello"), "text/plain", 5)
	if err != nil {
		t.Fatalf("PutObject: %v", err)
	}
	if res.URL != "/uploads/strapi/abc.txt" {
		t.Fatalf("url = %q", res.URL)
	}

	rc, err := s.GetObject(ctx, "strapi/abc.txt")
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "hello" {
		t.Fatalf("body = %q", string(body))
	}

	del, err := s.DeleteObject(ctx, "strapi/abc.txt")
	if err != nil {
		t.Fatalf("DeleteObject: %v", err)
	}
	if del.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d", del.StatusCode)
	}

	again, err := s.DeleteObject(ctx, "strapi/abc.txt")
	if err != nil {
		t.Fatalf("second DeleteObject: %v", err)
	}
	if again.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", again.StatusCode)
	}

	exists, err := s.ObjectExists(ctx, "strapi/abc.txt")
	if err != nil || exists {
		t.Fatalf("ObjectExists = %v, %v", exists, err)
	}
}

func TestKeyCannotEscapeBasePath(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p, err := s.keyToPath("../../etc/passwd")
	if err != nil {
		t.Fatalf("keyToPath: %v", err)
	}
	if !strings.HasPrefix(p, dir) {
		t.Fatalf("path %q escaped %q", p, dir)
	}
	if _, err := s.keyToPath("/"); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
