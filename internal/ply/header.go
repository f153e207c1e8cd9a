// Package ply reads and writes Gaussian splat clouds as binary PLY files.
package ply

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/splatkit/spz/internal/splat"
)

// Extension is the file extension for PLY files, without dot.
const Extension = "ply"

// MaxVertices is the largest vertex count accepted by the reader.
const MaxVertices = 10 * 1024 * 1024

const (
	magicLine  = "ply"
	formatLine = "format binary_little_endian 1.0"
	endHeader  = "end_header"

	maxLineLength = 1024
)

// Header describes the vertex element of a PLY file.
type Header struct {
	// VertexCount is the number of vertex records.
	VertexCount int
	// Properties lists the float properties in record order.
	Properties []string
	// RestCount is the number of f_rest_* properties.
	RestCount int
	// SHDegree is the harmonics degree implied by RestCount.
	SHDegree int
}

// RecordSize returns the size in bytes of one vertex record.
func (h *Header) RecordSize() int {
	return len(h.Properties) * 4
}

// HasProperty reports whether name is a vertex property.
func (h *Header) HasProperty(name string) bool {
	for _, p := range h.Properties {
		if p == name {
			return true
		}
	}
	return false
}

type headerState int

const (
	expectMagic headerState = iota
	expectFormat
	expectVertexCount
	readingProperties
	headerDone
)

func formatError(reason string) error {
	return splat.NewFormatError(Extension, reason)
}

// ReadHeader parses the text header of a PLY file from r.
// r is read up to and including the end_header line only when it is a
// *bufio.Reader; otherwise buffering may consume part of the body.
func ReadHeader(r io.Reader) (*Header, error) {
	return readHeader(asBufio(r))
}

func asBufio(r io.Reader) *bufio.Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return br
	}
	return bufio.NewReader(r)
}

func readHeader(br *bufio.Reader) (*Header, error) {
	h := &Header{}
	seen := make(map[string]bool)
	state := expectMagic

	for state != headerDone {
		line, err := readLine(br)
		if err != nil {
			if errors.Is(err, io.EOF) {
				if state == expectMagic {
					return nil, formatError("not a PLY file")
				}
				return nil, formatError("missing end_header")
			}
			return nil, err
		}

		if state != expectMagic && (strings.HasPrefix(line, "comment ") || line == "comment" || strings.HasPrefix(line, "obj_info ")) {
			continue
		}

		switch state {
		case expectMagic:
			if line != magicLine {
				return nil, formatError("not a PLY file")
			}
			state = expectFormat

		case expectFormat:
			if line != formatLine {
				return nil, formatError(fmt.Sprintf("unsupported format %q", strings.TrimPrefix(line, "format ")))
			}
			state = expectVertexCount

		case expectVertexCount:
			n, err := parseVertexElement(line)
			if err != nil {
				return nil, err
			}
			h.VertexCount = n
			state = readingProperties

		case readingProperties:
			if line == endHeader {
				state = headerDone
				continue
			}
			fields := strings.Fields(line)
			if len(fields) != 3 || fields[0] != "property" || fields[1] != "float" {
				if len(fields) > 0 && fields[0] == "element" {
					return nil, formatError(fmt.Sprintf("unsupported element %q", line))
				}
				return nil, formatError(fmt.Sprintf("unsupported property type %q", line))
			}
			name := fields[2]
			if seen[name] {
				return nil, formatError(fmt.Sprintf("duplicate property %q", name))
			}
			seen[name] = true
			h.Properties = append(h.Properties, name)
		}
	}

	rest, err := restCount(seen)
	if err != nil {
		return nil, err
	}
	h.RestCount = rest
	h.SHDegree = splat.DegreeForDim(rest / 3)
	return h, nil
}

func parseVertexElement(line string) (int, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 || fields[0] != "element" || fields[1] != "vertex" {
		return 0, formatError(fmt.Sprintf("expected vertex element, got %q", line))
	}
	n, err := strconv.Atoi(fields[2])
	if err != nil {
		return 0, &splat.FormatError{Format: Extension, Reason: fmt.Sprintf("invalid vertex count %q", fields[2]), Err: err}
	}
	if n <= 0 || n > MaxVertices {
		return 0, formatError(fmt.Sprintf("invalid vertex count %d", n))
	}
	return n, nil
}

// restCount returns how many f_rest_* properties are present. They must be
// numbered contiguously from zero and come in RGB triples.
func restCount(seen map[string]bool) (int, error) {
	n := 0
	for seen[restName(n)] {
		n++
	}
	for name := range seen {
		if strings.HasPrefix(name, "f_rest_") {
			i, err := strconv.Atoi(strings.TrimPrefix(name, "f_rest_"))
			if err != nil || i >= n {
				return 0, formatError(fmt.Sprintf("non-contiguous harmonics property %q", name))
			}
		}
	}
	if n%3 != 0 || n > splat.MaxComponents {
		return 0, formatError(fmt.Sprintf("invalid harmonics property count %d", n))
	}
	return n, nil
}

func restName(i int) string {
	return "f_rest_" + strconv.Itoa(i)
}

// readLine returns the next header line without its line terminator.
// An unterminated final line is treated as end of input.
func readLine(br *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", io.EOF
			}
			return "", fmt.Errorf("reading header: %w", err)
		}
		if b == '\n' {
			return strings.TrimSuffix(sb.String(), "\r"), nil
		}
		if sb.Len() >= maxLineLength {
			return "", formatError("header line too long")
		}
		sb.WriteByte(b)
	}
}
