package ply

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/splatkit/spz/internal/splat"
)

// ErrEmptyCloud is returned when writing a cloud without splats, which PLY
// readers reject.
var ErrEmptyCloud = errors.New("ply: cloud has no splats")

// Properties returns the property names written for a cloud of the given
// harmonics degree, in record order.
func Properties(degree int) []string {
	names := []string{
		"x", "y", "z",
		"scale_0", "scale_1", "scale_2",
		"rot_0", "rot_1", "rot_2", "rot_3",
		"opacity",
		"f_dc_0", "f_dc_1", "f_dc_2",
	}
	for i := 0; i < splat.DimForDegree(degree)*3; i++ {
		names = append(names, restName(i))
	}
	return append(names, "nx", "ny", "nz")
}

// Write encodes cloud as a binary little endian PLY file. Normals are
// written as zero.
func Write(w io.Writer, cloud *splat.Cloud) error {
	if cloud.Count() == 0 {
		return ErrEmptyCloud
	}

	bw := bufio.NewWriter(w)
	names := Properties(cloud.SHDegree())

	fmt.Fprintf(bw, "%s\n%s\nelement vertex %d\n", magicLine, formatLine, cloud.Count())
	for _, name := range names {
		fmt.Fprintf(bw, "property float %s\n", name)
	}
	fmt.Fprintf(bw, "%s\n", endHeader)

	dim := cloud.SHDim()
	record := make([]byte, len(names)*4)
	for i := 0; i < cloud.Count(); i++ {
		g := cloud.At(i)
		values := record[:0]
		put := func(v float64) {
			values = binary.LittleEndian.AppendUint32(values, math.Float32bits(float32(v)))
		}
		put(g.Position.X)
		put(g.Position.Y)
		put(g.Position.Z)
		put(g.Scale.X)
		put(g.Scale.Y)
		put(g.Scale.Z)
		put(g.Rotation.Real)
		put(g.Rotation.Imag)
		put(g.Rotation.Jmag)
		put(g.Rotation.Kmag)
		put(g.Alpha)
		put(g.Color.X)
		put(g.Color.Y)
		put(g.Color.Z)
		channelMajor := g.SH.ToChannelMajor(dim)
		for _, v := range channelMajor[:dim*3] {
			put(v)
		}
		put(0)
		put(0)
		put(0)

		if _, err := bw.Write(values); err != nil {
			return fmt.Errorf("writing vertex %d: %w", i, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing ply: %w", err)
	}
	return nil
}
