// Package sweep encodes splat clouds under several packing settings and
// records size and fidelity for each.
package sweep

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/splatkit/spz"
	"github.com/splatkit/spz/benchmark/fidelity"
	"github.com/splatkit/spz/internal/codec"
	"github.com/splatkit/spz/internal/codec/codecs"
	"github.com/splatkit/spz/internal/spzfile"
)

// Setting is one packing configuration.
type Setting struct {
	Codec          codec.Codec
	FractionalBits uint8
}

// Name returns the setting in "codec:bits" form.
func (s Setting) Name() string {
	return fmt.Sprintf("%s:%d", s.Codec.Name(), s.FractionalBits)
}

// ParseSetting parses "codec:bits", for example "gzip:12". The bits part
// is optional and defaults to spz.DefaultFractionalBits.
func ParseSetting(s string) (Setting, error) {
	name, bitsStr, hasBits := strings.Cut(s, ":")
	c, err := codecs.ByName(name)
	if err != nil {
		return Setting{}, err
	}
	bits := uint64(spz.DefaultFractionalBits)
	if hasBits {
		bits, err = strconv.ParseUint(bitsStr, 10, 8)
		if err != nil || bits > 23 {
			return Setting{}, fmt.Errorf("invalid fractional bits %q", bitsStr)
		}
	}
	return Setting{Codec: c, FractionalBits: uint8(bits)}, nil
}

// Sweeper runs clouds through each setting.
type Sweeper struct {
	settings []Setting
}

// NewSweeper creates a Sweeper over settings.
func NewSweeper(settings ...Setting) *Sweeper {
	return &Sweeper{settings: settings}
}

// CloudResult is the outcome of one cloud under one setting.
type CloudResult struct {
	Setting    string
	PLYBytes   int
	SPZBytes   int
	EncodeTime time.Duration
	DecodeTime time.Duration
	Errors     *fidelity.Errors
}

// RunCloud encodes c under every setting.
func (s *Sweeper) RunCloud(c *spz.Cloud) (map[string]*CloudResult, error) {
	var plyBuf bytes.Buffer
	if err := spz.ToPLY(&plyBuf, c); err != nil {
		return nil, fmt.Errorf("encoding PLY: %w", err)
	}

	results := make(map[string]*CloudResult, len(s.settings))
	for _, setting := range s.settings {
		r, err := runSetting(c, setting)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", setting.Name(), err)
		}
		r.PLYBytes = plyBuf.Len()
		results[r.Setting] = r
	}
	return results, nil
}

func runSetting(c *spz.Cloud, setting Setting) (*CloudResult, error) {
	start := time.Now()
	packed, err := spz.Pack(c, setting.FractionalBits)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := spzfile.Write(&buf, packed, setting.Codec); err != nil {
		return nil, err
	}
	encodeTime := time.Since(start)
	size := buf.Len()

	start = time.Now()
	decoded, err := spzfile.Read(&buf, setting.Codec)
	if err != nil {
		return nil, err
	}
	got := spz.Unpack(decoded)
	decodeTime := time.Since(start)

	errs, err := fidelity.Measure(c, got)
	if err != nil {
		return nil, err
	}
	return &CloudResult{
		Setting:    setting.Name(),
		SPZBytes:   size,
		EncodeTime: encodeTime,
		DecodeTime: decodeTime,
		Errors:     errs,
	}, nil
}

// Run sweeps every cloud and aggregates results per setting.
func (s *Sweeper) Run(clouds []*spz.Cloud) (map[string]*AggregateResult, error) {
	results := make(map[string]*AggregateResult, len(s.settings))
	for _, setting := range s.settings {
		results[setting.Name()] = &AggregateResult{
			Setting: setting.Name(),
			Errors:  &fidelity.Errors{},
		}
	}

	for _, c := range clouds {
		cloudResults, err := s.RunCloud(c)
		if err != nil {
			return nil, err
		}
		for name, r := range cloudResults {
			agg := results[name]
			agg.Clouds++
			agg.Points += c.Count()
			agg.PLYBytes += int64(r.PLYBytes)
			agg.SPZBytes += int64(r.SPZBytes)
			agg.EncodeTime += r.EncodeTime
			agg.DecodeTime += r.DecodeTime
			agg.Errors.Append(r.Errors)
		}
	}
	return results, nil
}

// AggregateResult contains results of one setting across all clouds.
type AggregateResult struct {
	Setting    string
	Clouds     int
	Points     int
	PLYBytes   int64
	SPZBytes   int64
	EncodeTime time.Duration
	DecodeTime time.Duration
	Errors     *fidelity.Errors
}

// Ratio returns the SPZ size as a fraction of the PLY size.
func (a *AggregateResult) Ratio() float64 {
	if a.PLYBytes == 0 {
		return 0
	}
	return float64(a.SPZBytes) / float64(a.PLYBytes)
}

// BytesPerPoint returns the mean SPZ bytes per splat.
func (a *AggregateResult) BytesPerPoint() float64 {
	if a.Points == 0 {
		return 0
	}
	return float64(a.SPZBytes) / float64(a.Points)
}
