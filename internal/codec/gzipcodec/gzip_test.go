package gzipcodec

import (
	"bytes"
	stdgzip "compress/gzip"
	"encoding/binary"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// spzLikePayload returns a header followed by column bytes shaped like a
// packed cloud body: slowly varying positions, then low-entropy columns.
func spzLikePayload(points int) []byte {
	var buf bytes.Buffer
	hdr := [16]byte{}
	binary.LittleEndian.PutUint32(hdr[0:], 0x5053474e)
	binary.LittleEndian.PutUint32(hdr[4:], 2)
	binary.LittleEndian.PutUint32(hdr[8:], uint32(points))
	hdr[13] = 12
	buf.Write(hdr[:])
	for i := 0; i < points*9; i++ {
		buf.WriteByte(byte(i / 7))
	}
	buf.Write(bytes.Repeat([]byte{200}, points))
	buf.Write(bytes.Repeat([]byte{128, 127, 129}, points*2))
	return buf.Bytes()
}

func roundTrip(t *testing.T, c *Codec, data []byte) (compressed, decompressed []byte) {
	t.Helper()
	var buf bytes.Buffer
	w, err := c.Writer(&buf)
	if err != nil {
		t.Fatalf("Writer() error = %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	compressed = append([]byte(nil), buf.Bytes()...)

	r, err := c.Reader(&buf)
	if err != nil {
		t.Fatalf("Reader() error = %v", err)
	}
	defer r.Close()
	decompressed, err = io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	return compressed, decompressed
}

func TestCodec_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"header only", spzLikePayload(0)},
		{"small cloud", spzLikePayload(10)},
		{"large cloud", spzLikePayload(20000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := roundTrip(t, New(), tt.data)
			if !bytes.Equal(got, tt.data) {
				t.Errorf("round trip returned %d bytes, want %d", len(got), len(tt.data))
			}
		})
	}
}

func TestCodec_Compresses(t *testing.T) {
	data := spzLikePayload(20000)
	compressed, _ := roundTrip(t, New(), data)
	if len(compressed) >= len(data) {
		t.Errorf("compressed size = %d, want < %d", len(compressed), len(data))
	}
}

func TestCodec_StandardGzipStream(t *testing.T) {
	data := spzLikePayload(100)
	compressed, _ := roundTrip(t, New(), data)

	// Other SPZ tools read files with a plain gzip decoder.
	r, err := stdgzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		t.Fatalf("gzip.NewReader() error = %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("standard gzip decoder returned different bytes")
	}
}

func TestCodec_Levels(t *testing.T) {
	data := spzLikePayload(5000)
	for _, level := range []int{gzip.BestSpeed, gzip.BestCompression} {
		compressed, got := roundTrip(t, NewLevel(level), data)
		if !bytes.Equal(got, data) {
			t.Errorf("level %d round trip failed", level)
		}
		if len(compressed) >= len(data) {
			t.Errorf("level %d size = %d, want < %d", level, len(compressed), len(data))
		}
	}
}

func TestCodec_Reader_InvalidData(t *testing.T) {
	if _, err := New().Reader(bytes.NewReader([]byte("NGSP not gzip"))); err == nil {
		t.Error("Reader() expected error for invalid gzip data, got nil")
	}
}

func TestCodec_Names(t *testing.T) {
	c := New()
	if got := c.Extension(); got != "gz" {
		t.Errorf("Extension() = %q, want %q", got, "gz")
	}
	if got := c.Name(); got != "gzip" {
		t.Errorf("Name() = %q, want %q", got, "gzip")
	}
}
