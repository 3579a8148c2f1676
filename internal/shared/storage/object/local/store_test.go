package local

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"career-backend/internal/shared/storage/object"
)

func TestSaveAndOpen(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	key, size, mimeType, err := store.Save(ctx, "workspace", "resume.txt", strings.NewReader("hello resume"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if size != int64(len("hello resume")) {
		t.Fatalf("unexpected size %d", size)
	}
	if !strings.HasPrefix(mimeType, "text/plain") {
		t.Fatalf("unexpected mime type %q", mimeType)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "hello resume" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestSaveWithKeyReplacesAndDelete(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	if _, err := store.SaveWithKey(ctx, "kv/resumes.json", "application/json", strings.NewReader("[1]")); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if _, err := store.SaveWithKey(ctx, "kv/resumes.json", "application/json", strings.NewReader("[2]")); err != nil {
		t.Fatalf("second save: %v", err)
	}
	rc, err := store.Open(ctx, "kv/resumes.json")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "[2]" {
		t.Fatalf("expected replaced content, got %q", data)
	}

	if err := store.Delete(ctx, "kv/resumes.json"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "kv/resumes.json"); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if _, err := store.Open(ctx, "kv/resumes.json"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Open(context.Background(), "../etc/passwd"); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
}
