// Package codec provides the compression wrappers used for SPZ containers
// and stored blobs.
package codec

import "io"

// Codec provides compression and decompression functionality.
type Codec interface {
	// Reader wraps r to decompress data read from it.
	Reader(r io.Reader) (io.ReadCloser, error)
	// Writer wraps w to compress data written to it.
	// Closing the returned writer flushes it but never closes w.
	Writer(w io.Writer) (io.WriteCloser, error)
	// Extension returns the file extension without dot (e.g., "zst", "gz").
	// Returns empty string for no compression.
	Extension() string
	// Name returns the codec name used in configuration ("gzip", "zstd", "none").
	Name() string
}
