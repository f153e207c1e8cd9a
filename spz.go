// Package spz converts Gaussian splat clouds between binary PLY files and the
// compact SPZ format.
//
// The codec functions work on open streams:
//
//	cloud, err := spz.FromPLY(plyFile)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	packed, err := spz.Pack(cloud, spz.DefaultFractionalBits)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := spz.ToSPZ(out, packed); err != nil {
//	    log.Fatal(err)
//	}
//
// A Converter adds storage, metrics and logging on top:
//
//	conv, err := spz.New(spz.WithStore(st))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	res, err := conv.Convert(ctx, "garden.ply", "garden.spz")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d splats, %.1f%% of original size\n", res.Points, res.Ratio()*100)
package spz

import (
	"bytes"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/splatkit/spz/internal/codec/gzipcodec"
	"github.com/splatkit/spz/internal/ply"
	"github.com/splatkit/spz/internal/quant"
	"github.com/splatkit/spz/internal/splat"
	"github.com/splatkit/spz/internal/spzfile"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrClosed indicates the converter has been closed.
	ErrClosed = errors.New("spz: converter closed")

	// ErrNoStore indicates no store was provided.
	ErrNoStore = errors.New("spz: no store provided")

	// ErrUnsupportedFormat indicates a file name without a .ply or .spz extension.
	ErrUnsupportedFormat = errors.New("spz: unsupported file format")

	// ErrEndOfStream indicates a truncated binary payload.
	ErrEndOfStream = splat.ErrEndOfStream

	// ErrIndexOutOfRange is the panic payload for an out of range splat index.
	ErrIndexOutOfRange = splat.ErrIndexOutOfRange
)

// Core types.
type (
	// Cloud holds unquantized splats.
	Cloud = splat.Cloud
	// PackedCloud holds quantized splats as stored in SPZ files.
	PackedCloud = splat.PackedCloud
	// Gaussian is a single unquantized splat.
	Gaussian = splat.Gaussian
	// PackedGaussian is a single quantized splat.
	PackedGaussian = splat.PackedGaussian
	// Harmonics holds spherical harmonic coefficients beyond DC.
	Harmonics = splat.Harmonics
	// Flags is the per-cloud flags byte.
	Flags = splat.Flags
	// FormatError reports a malformed or unsupported file.
	FormatError = splat.FormatError
)

const (
	// DefaultFractionalBits is the default position precision for packing.
	DefaultFractionalBits = splat.DefaultFractionalBits

	// FlagAntialiased marks a cloud trained with antialiasing.
	FlagAntialiased = splat.FlagAntialiased
)

// Format is a splat file format.
type Format string

// Supported formats.
const (
	FormatPLY Format = ply.Extension
	FormatSPZ Format = spzfile.Extension
)

// FormatOf returns the format implied by the extension of name.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(name), ".")) {
	case ply.Extension:
		return FormatPLY, nil
	case spzfile.Extension:
		return FormatSPZ, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// ReplaceExt returns name with its extension replaced by f.
func ReplaceExt(name string, f Format) string {
	return strings.TrimSuffix(name, path.Ext(name)) + "." + string(f)
}

// NewCloud allocates an empty cloud of count splats.
func NewCloud(count, shDegree int, flags Flags) (*Cloud, error) {
	return splat.NewCloud(count, shDegree, flags)
}

// FromPLY decodes a binary little endian PLY stream.
func FromPLY(r io.Reader) (*Cloud, error) {
	return ply.Read(r)
}

// ToPLY encodes cloud as a binary little endian PLY stream.
func ToPLY(w io.Writer, cloud *Cloud) error {
	return ply.Write(w, cloud)
}

// FromSPZ decodes a gzip compressed SPZ stream.
func FromSPZ(r io.Reader) (*PackedCloud, error) {
	return spzfile.Read(r, gzipcodec.New())
}

// ToSPZ encodes packed as a gzip compressed SPZ stream.
func ToSPZ(w io.Writer, packed *PackedCloud) error {
	return spzfile.Write(w, packed, gzipcodec.New())
}

// Pack quantizes cloud with the given position precision.
func Pack(cloud *Cloud, fractionalBits uint8) (*PackedCloud, error) {
	return cloud.Pack(fractionalBits)
}

// Unpack restores an unquantized cloud.
func Unpack(packed *PackedCloud) *Cloud {
	return packed.Unpack()
}

// Sigmoid maps a stored opacity logit to an opacity in (0, 1).
func Sigmoid(x float64) float64 { return quant.Sigmoid(x) }

// InvSigmoid maps an opacity in (0, 1) to the logit stored in files.
func InvSigmoid(x float64) float64 { return quant.InvSigmoid(x) }

// PLYToSPZ converts a PLY file into a standard SPZ file in memory.
func PLYToSPZ(data []byte) ([]byte, error) {
	cloud, err := FromPLY(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	packed, err := Pack(cloud, DefaultFractionalBits)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := ToSPZ(&buf, packed); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SPZToPLY converts a standard SPZ file into a PLY file in memory.
func SPZToPLY(data []byte) ([]byte, error) {
	packed, err := FromSPZ(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := ToPLY(&buf, Unpack(packed)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
