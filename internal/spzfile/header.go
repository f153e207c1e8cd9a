// Package spzfile reads and writes the SPZ container: a 16 byte header and
// the packed attribute columns, compressed as a single stream.
package spzfile

import (
	"encoding/binary"
	"fmt"

	"github.com/splatkit/spz/internal/fixed"
	"github.com/splatkit/spz/internal/splat"
)

// Extension is the file extension for SPZ files, without dot.
const Extension = "spz"

const (
	// Magic identifies an SPZ stream ("NGSP" little endian).
	Magic uint32 = 0x5053474E
	// Version is the only container version supported.
	Version uint32 = 2
	// MaxPoints is the largest point count accepted by the reader.
	MaxPoints = 10_000_000
	// HeaderSize is the encoded header length in bytes.
	HeaderSize = 16
)

// Header is the fixed size SPZ header.
type Header struct {
	Magic          uint32
	Version        uint32
	NumPoints      uint32
	SHDegree       uint8
	FractionalBits uint8
	Flags          splat.Flags
	Reserved       uint8
}

// NewHeader returns the header describing cloud.
func NewHeader(cloud *splat.PackedCloud) Header {
	return Header{
		Magic:          Magic,
		Version:        Version,
		NumPoints:      uint32(cloud.Count()),
		SHDegree:       uint8(cloud.SHDegree()),
		FractionalBits: cloud.FractionalBits(),
		Flags:          cloud.Flags(),
	}
}

// MarshalBinary encodes the header in little endian order.
func (h Header) MarshalBinary() ([]byte, error) {
	b := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(b[0:], h.Magic)
	binary.LittleEndian.PutUint32(b[4:], h.Version)
	binary.LittleEndian.PutUint32(b[8:], h.NumPoints)
	b[12] = h.SHDegree
	b[13] = h.FractionalBits
	b[14] = byte(h.Flags)
	b[15] = h.Reserved
	return b, nil
}

// UnmarshalBinary decodes a header without validating it.
func (h *Header) UnmarshalBinary(b []byte) error {
	if len(b) < HeaderSize {
		return &splat.FormatError{Format: Extension, Reason: "unexpected end of stream", Err: splat.ErrEndOfStream}
	}
	h.Magic = binary.LittleEndian.Uint32(b[0:])
	h.Version = binary.LittleEndian.Uint32(b[4:])
	h.NumPoints = binary.LittleEndian.Uint32(b[8:])
	h.SHDegree = b[12]
	h.FractionalBits = b[13]
	h.Flags = splat.Flags(b[14])
	h.Reserved = b[15]
	return nil
}

// Validate checks every header field the reader depends on.
func (h *Header) Validate() error {
	switch {
	case h.Magic != Magic:
		return formatError(fmt.Sprintf("invalid magic 0x%08x", h.Magic))
	case h.Version != Version:
		return formatError(fmt.Sprintf("unsupported version %d", h.Version))
	case h.NumPoints > MaxPoints:
		return formatError(fmt.Sprintf("too many points %d", h.NumPoints))
	case h.SHDegree > splat.MaxDegree:
		return formatError(fmt.Sprintf("unsupported spherical harmonics degree %d", h.SHDegree))
	case h.FractionalBits > fixed.MaxFractionalBits:
		return formatError(fmt.Sprintf("invalid fractional bits %d", h.FractionalBits))
	}
	return nil
}

// BodySize returns the decompressed size of the columns that follow the header.
func (h *Header) BodySize() int {
	n := int(h.NumPoints)
	dim := splat.DimForDegree(int(h.SHDegree))
	return n * (splat.PositionSize + splat.AlphaSize + splat.ColorSize +
		splat.ScaleSize + splat.RotationSize + dim*3)
}

func formatError(reason string) error {
	return splat.NewFormatError(Extension, reason)
}
