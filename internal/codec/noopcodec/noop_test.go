package noopcodec

import (
	"bytes"
	"io"
	"testing"
)

type closeTracker struct {
	bytes.Buffer
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestCodec_WriterDoesNotCloseUnderlying(t *testing.T) {
	var dst closeTracker
	w, err := New().Writer(&dst)
	if err != nil {
		t.Fatalf("Writer() error = %v", err)
	}
	if _, err := w.Write([]byte("raw")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if dst.closed {
		t.Error("Close() closed the underlying writer")
	}
	if got := dst.String(); got != "raw" {
		t.Errorf("written = %q, want %q", got, "raw")
	}
}

func TestCodec_Reader(t *testing.T) {
	r, err := New().Reader(bytes.NewReader([]byte("raw")))
	if err != nil {
		t.Fatalf("Reader() error = %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != "raw" {
		t.Errorf("ReadAll() = %q, want %q", got, "raw")
	}
	if c := New(); c.Extension() != "" || c.Name() != "none" {
		t.Errorf("Extension(), Name() = %q, %q, want \"\", \"none\"", c.Extension(), c.Name())
	}
}
