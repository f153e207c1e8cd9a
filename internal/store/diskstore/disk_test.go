package diskstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/splatkit/spz/internal/codec/noopcodec"
	"github.com/splatkit/spz/internal/codec/zstdcodec"
	"github.com/splatkit/spz/internal/store"
)

func TestStore_Read(t *testing.T) {
	dir := t.TempDir()
	codec := noopcodec.New() // Use noop codec for simple testing.

	// Create file manually.
	scenesDir := filepath.Join(dir, "scenes")
	if err := os.MkdirAll(scenesDir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	data := []byte("ply data")
	if err := os.WriteFile(filepath.Join(scenesDir, "garden.ply"), data, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	s, err := New(dir, codec)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	got, err := s.Read(context.Background(), "scenes/garden.ply")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if string(got) != string(data) {
		t.Errorf("Read() = %q, want %q", got, data)
	}
}

func TestStore_ReadNotFound(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, noopcodec.New())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	_, err = s.Read(context.Background(), "missing.spz")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Read() error = %v, want ErrNotFound", err)
	}
}

func TestStore_WriteReadCompressed(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, zstdcodec.New())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	data := []byte("compressed at rest")
	if err := s.Write(ctx, "out/a.ply", data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "out", "a.ply.zst")); err != nil {
		t.Errorf("Stat() error = %v, want file with codec extension", err)
	}

	got, err := s.Read(ctx, "out/a.ply")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("Read() = %q, want %q", got, data)
	}
}

func TestStore_WriteOverwrites(t *testing.T) {
	s, err := New(t.TempDir(), noopcodec.New())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	for _, v := range []string{"first", "second"} {
		if err := s.Write(ctx, "a.spz", []byte(v)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	got, err := s.Read(ctx, "a.spz")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != "second" {
		t.Errorf("Read() = %q, want %q", got, "second")
	}
}

func TestStore_List(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, zstdcodec.New())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	for _, name := range []string{"b.ply", "scenes/a.ply", "scenes/c.spz"} {
		if err := s.Write(ctx, name, []byte(name)); err != nil {
			t.Fatalf("Write(%q) error = %v", name, err)
		}
	}
	// Files without the codec extension are not part of the store.
	if err := os.WriteFile(filepath.Join(dir, "stray.ply"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	got, err := s.List(ctx, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if diff := cmp.Diff([]string{"b.ply", "scenes/a.ply", "scenes/c.spz"}, got); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}

	got, err = s.List(ctx, "scenes/")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if diff := cmp.Diff([]string{"scenes/a.ply", "scenes/c.spz"}, got); diff != "" {
		t.Errorf("List(scenes/) mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_InvalidName(t *testing.T) {
	s, err := New(t.TempDir(), noopcodec.New())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := s.Read(context.Background(), "../escape.ply"); !errors.Is(err, store.ErrInvalidName) {
		t.Errorf("Read() error = %v, want ErrInvalidName", err)
	}
}

func TestStore_CanceledContext(t *testing.T) {
	s, err := New(t.TempDir(), noopcodec.New())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Read(ctx, "a.ply"); !errors.Is(err, context.Canceled) {
		t.Errorf("Read() error = %v, want context.Canceled", err)
	}
}

func TestNew_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent/path", noopcodec.New())
	if err == nil {
		t.Error("New() with invalid path should return error")
	}
}

func TestNew_NotDirectory(t *testing.T) {
	// Create a file, not a directory.
	f, err := os.CreateTemp("", "test")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	defer os.Remove(f.Name())

	_, err = New(f.Name(), noopcodec.New())
	if err == nil {
		t.Error("New() with file (not directory) should return error")
	}
}
