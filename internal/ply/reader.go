package ply

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/splatkit/spz/internal/splat"
)

// layout maps splat attributes to property indices within a record.
type layout struct {
	position [3]int
	scale    [3]int
	rotation [4]int
	opacity  int
	color    [3]int
	rest     []int
}

func newLayout(h *Header) (*layout, error) {
	index := make(map[string]int, len(h.Properties))
	for i, name := range h.Properties {
		index[name] = i
	}

	var missing string
	lookup := func(name string) int {
		i, ok := index[name]
		if !ok && missing == "" {
			missing = name
		}
		return i
	}

	l := &layout{
		position: [3]int{lookup("x"), lookup("y"), lookup("z")},
		scale:    [3]int{lookup("scale_0"), lookup("scale_1"), lookup("scale_2")},
		rotation: [4]int{lookup("rot_0"), lookup("rot_1"), lookup("rot_2"), lookup("rot_3")},
		opacity:  lookup("opacity"),
		color:    [3]int{lookup("f_dc_0"), lookup("f_dc_1"), lookup("f_dc_2")},
		rest:     make([]int, h.RestCount),
	}
	for i := range l.rest {
		l.rest[i] = lookup(restName(i))
	}
	if missing != "" {
		return nil, formatError("field missing: " + missing)
	}
	return l, nil
}

// Read decodes a binary little endian PLY file into a new cloud.
// Unknown float properties such as normals are skipped. Harmonic
// coefficients beyond the highest complete degree are dropped.
func Read(r io.Reader) (*splat.Cloud, error) {
	br := asBufio(r)
	h, err := readHeader(br)
	if err != nil {
		return nil, err
	}
	l, err := newLayout(h)
	if err != nil {
		return nil, err
	}

	cloud, err := splat.NewCloud(h.VertexCount, h.SHDegree, 0)
	if err != nil {
		return nil, fmt.Errorf("allocating cloud: %w", err)
	}

	fileDim := h.RestCount / 3
	record := make([]byte, h.RecordSize())
	field := func(i int) float64 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(record[i*4:])))
	}
	vec := func(idx [3]int) r3.Vector {
		return r3.Vector{X: field(idx[0]), Y: field(idx[1]), Z: field(idx[2])}
	}

	for i := 0; i < h.VertexCount; i++ {
		if _, err := io.ReadFull(br, record); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, &splat.FormatError{Format: Extension, Reason: "unexpected end of stream", Err: splat.ErrEndOfStream}
			}
			return nil, fmt.Errorf("reading vertex %d: %w", i, err)
		}

		g := splat.Gaussian{
			Position: vec(l.position),
			Scale:    vec(l.scale),
			Rotation: quat.Number{
				Real: field(l.rotation[0]),
				Imag: field(l.rotation[1]),
				Jmag: field(l.rotation[2]),
				Kmag: field(l.rotation[3]),
			},
			Alpha: field(l.opacity),
			Color: vec(l.color),
		}
		var channelMajor splat.Harmonics
		for j, idx := range l.rest {
			channelMajor[j] = field(idx)
		}
		g.SH = channelMajor.ToCoefficientMajor(fileDim)
		cloud.Set(i, g)
	}
	return cloud, nil
}
