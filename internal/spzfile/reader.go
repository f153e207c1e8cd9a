package spzfile

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/multierr"

	"github.com/splatkit/spz/internal/codec"
	"github.com/splatkit/spz/internal/splat"
)

var errTruncated = &splat.FormatError{Format: Extension, Reason: "unexpected end of stream", Err: splat.ErrEndOfStream}

// ReadHeader decompresses r with c and returns the validated header.
func ReadHeader(r io.Reader, c codec.Codec) (h *Header, err error) {
	cr, err := open(r, c)
	if err != nil {
		return nil, err
	}
	defer func() { err = multierr.Append(err, ignoreClose(cr)) }()
	return readHeader(cr)
}

// Read decompresses r with c and decodes the packed cloud it holds.
func Read(r io.Reader, c codec.Codec) (cloud *splat.PackedCloud, err error) {
	cr, err := open(r, c)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := ignoreClose(cr); cerr != nil {
			cloud, err = nil, multierr.Append(err, cerr)
		}
	}()

	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}

	p, err := splat.NewPackedCloud(int(h.NumPoints), int(h.SHDegree), h.FractionalBits, h.Flags)
	if err != nil {
		return nil, fmt.Errorf("allocating cloud: %w", err)
	}
	for _, col := range p.Columns() {
		if err := readFull(cr, col); err != nil {
			return nil, err
		}
	}
	if err := expectEnd(cr); err != nil {
		return nil, err
	}
	return p, nil
}

// expectEnd reads past the last column so the decompressor verifies its
// trailer, and rejects bytes beyond the body.
func expectEnd(r io.Reader) error {
	var extra [1]byte
	n, err := io.ReadFull(r, extra[:])
	switch {
	case n > 0:
		return &splat.FormatError{Format: Extension, Reason: "trailing data after body"}
	case errors.Is(err, io.EOF):
		return nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		return errTruncated
	default:
		return &splat.FormatError{Format: Extension, Reason: "corrupt stream", Err: err}
	}
}

func open(r io.Reader, c codec.Codec) (io.ReadCloser, error) {
	cr, err := c.Reader(r)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errTruncated
		}
		return nil, &splat.FormatError{Format: Extension, Reason: "invalid " + c.Name() + " stream", Err: err}
	}
	return cr, nil
}

func readHeader(r io.Reader) (*Header, error) {
	buf := make([]byte, HeaderSize)
	if err := readFull(r, buf); err != nil {
		return nil, err
	}
	h := &Header{}
	if err := h.UnmarshalBinary(buf); err != nil {
		return nil, err
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

func readFull(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return errTruncated
		}
		return &splat.FormatError{Format: Extension, Reason: "corrupt stream", Err: err}
	}
	return nil
}

// ignoreClose closes rc, dropping the end of stream errors a decompressor
// repeats after a truncated read.
func ignoreClose(rc io.ReadCloser) error {
	err := rc.Close()
	if err != nil && (errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)) {
		return nil
	}
	return err
}
