package spz

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/splatkit/spz/internal/codec"
	"github.com/splatkit/spz/internal/ply"
	"github.com/splatkit/spz/internal/splat"
	"github.com/splatkit/spz/internal/spzfile"
	"github.com/splatkit/spz/internal/stats"
	"github.com/splatkit/spz/internal/store"
)

// Converter loads, saves and converts splat files held in a store.
// A Converter is safe for concurrent use by multiple goroutines.
type Converter struct {
	store          store.Store
	stats          stats.Collector
	logger         *zap.Logger
	fractionalBits uint8
	container      codec.Codec
	antialiased    bool
	closed         atomic.Bool
}

// Result describes a completed conversion.
type Result struct {
	Source      string
	Dest        string
	Points      int
	SHDegree    int
	InputBytes  int64
	OutputBytes int64
	Duration    time.Duration
}

// Ratio returns the output size as a fraction of the input size.
func (r *Result) Ratio() float64 {
	if r.InputBytes == 0 {
		return 0
	}
	return float64(r.OutputBytes) / float64(r.InputBytes)
}

// Delta returns the change in size, negative when the output is smaller.
func (r *Result) Delta() int64 {
	return r.OutputBytes - r.InputBytes
}

// Info summarizes a splat file without decoding its splats.
type Info struct {
	Name           string
	Format         Format
	Points         int
	SHDegree       int
	FractionalBits uint8
	Antialiased    bool
	Properties     []string
	Size           int64
}

// New creates a new Converter with the given options.
func New(opts ...Option) (*Converter, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if cfg.store == nil {
		return nil, ErrNoStore
	}
	if cfg.fractionalBits > 23 {
		return nil, fmt.Errorf("%w: %d", splat.ErrInvalidFractionalBits, cfg.fractionalBits)
	}

	c := &Converter{
		store:          cfg.store,
		stats:          cfg.stats,
		logger:         cfg.logger,
		fractionalBits: cfg.fractionalBits,
		container:      cfg.container,
		antialiased:    cfg.antialiased,
	}

	c.logger.Debug("converter initialized",
		zap.Uint8("fractionalBits", c.fractionalBits),
		zap.String("container", c.container.Name()),
	)

	return c, nil
}

// Load reads the named file and returns its unquantized cloud.
// SPZ files are unpacked.
func (c *Converter) Load(ctx context.Context, name string) (*Cloud, error) {
	format, data, err := c.read(ctx, name)
	if err != nil {
		return nil, err
	}
	cloud, err := c.decodeCloud(format, data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	c.stats.IncCounter(stats.MetricPoints, int64(cloud.Count()))
	return cloud, nil
}

// LoadPacked reads the named file and returns its quantized cloud.
// PLY files are packed with the configured precision.
func (c *Converter) LoadPacked(ctx context.Context, name string) (*PackedCloud, error) {
	format, data, err := c.read(ctx, name)
	if err != nil {
		return nil, err
	}
	packed, err := c.decodePacked(format, data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	c.stats.IncCounter(stats.MetricPoints, int64(packed.Count()))
	return packed, nil
}

// Save encodes cloud in the format implied by name and writes it.
func (c *Converter) Save(ctx context.Context, name string, cloud *Cloud) error {
	format, err := FormatOf(name)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if format == FormatSPZ {
		packed, err := Pack(cloud, c.fractionalBits)
		if err != nil {
			return err
		}
		_, err = c.writePacked(ctx, name, packed)
		return err
	}
	_, err = c.writeCloud(ctx, name, cloud)
	return err
}

// SavePacked encodes packed in the format implied by name and writes it.
func (c *Converter) SavePacked(ctx context.Context, name string, packed *PackedCloud) error {
	format, err := FormatOf(name)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if format == FormatPLY {
		_, err = c.writeCloud(ctx, name, Unpack(packed))
		return err
	}
	_, err = c.writePacked(ctx, name, packed)
	return err
}

// Convert reads src and writes it to dst, converting between formats by
// extension. The whole file is validated before anything is written.
func (c *Converter) Convert(ctx context.Context, src, dst string) (*Result, error) {
	start := time.Now()
	res, err := c.convert(ctx, src, dst)
	if err != nil {
		c.stats.IncCounter(stats.MetricConversionErrors, 1)
		c.logger.Warn("conversion failed",
			zap.String("src", src),
			zap.String("dst", dst),
			zap.Error(err),
		)
		return nil, err
	}
	res.Duration = time.Since(start)

	c.stats.IncCounter(stats.MetricConversions, 1)
	c.stats.ObserveHistogram(stats.MetricCompressionRatio, res.Ratio())
	c.stats.ObserveHistogram(stats.MetricConversionSeconds, res.Duration.Seconds())
	c.logger.Info("converted",
		zap.String("src", src),
		zap.String("dst", dst),
		zap.Int("points", res.Points),
		zap.Int64("inputBytes", res.InputBytes),
		zap.Int64("outputBytes", res.OutputBytes),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

func (c *Converter) convert(ctx context.Context, src, dst string) (*Result, error) {
	dstFormat, err := FormatOf(dst)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dst, err)
	}
	srcFormat, data, err := c.read(ctx, src)
	if err != nil {
		return nil, err
	}

	res := &Result{Source: src, Dest: dst, InputBytes: int64(len(data))}
	if dstFormat == FormatSPZ {
		packed, err := c.decodePacked(srcFormat, data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", src, err)
		}
		if c.antialiased {
			packed.SetAntialiased(true)
		}
		res.Points, res.SHDegree = packed.Count(), packed.SHDegree()
		if res.OutputBytes, err = c.writePacked(ctx, dst, packed); err != nil {
			return nil, err
		}
	} else {
		cloud, err := c.decodeCloud(srcFormat, data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", src, err)
		}
		res.Points, res.SHDegree = cloud.Count(), cloud.SHDegree()
		if res.OutputBytes, err = c.writeCloud(ctx, dst, cloud); err != nil {
			return nil, err
		}
	}
	c.stats.IncCounter(stats.MetricPoints, int64(res.Points))
	return res, nil
}

// Info reads the header of the named file.
func (c *Converter) Info(ctx context.Context, name string) (*Info, error) {
	format, data, err := c.read(ctx, name)
	if err != nil {
		return nil, err
	}
	info := &Info{Name: name, Format: format, Size: int64(len(data))}

	switch format {
	case FormatPLY:
		h, err := ply.ReadHeader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("reading %s header: %w", name, err)
		}
		info.Points = h.VertexCount
		info.SHDegree = h.SHDegree
		info.Properties = h.Properties
	case FormatSPZ:
		h, err := spzfile.ReadHeader(bytes.NewReader(data), c.container)
		if err != nil {
			return nil, fmt.Errorf("reading %s header: %w", name, err)
		}
		info.Points = int(h.NumPoints)
		info.SHDegree = int(h.SHDegree)
		info.FractionalBits = h.FractionalBits
		info.Antialiased = h.Flags.Antialiased()
	}
	return info, nil
}

// Close releases all resources associated with the converter.
// After Close, the converter should not be used.
func (c *Converter) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	if err := c.store.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}
	return nil
}

// Store returns the storage backend used by this converter.
func (c *Converter) Store() store.Store {
	return c.store
}

// ContainerCodec returns the compressor wrapping SPZ files.
func (c *Converter) ContainerCodec() codec.Codec {
	return c.container
}

// FractionalBits returns the position precision used when packing.
func (c *Converter) FractionalBits() uint8 {
	return c.fractionalBits
}

func (c *Converter) read(ctx context.Context, name string) (Format, []byte, error) {
	if c.closed.Load() {
		return "", nil, ErrClosed
	}
	format, err := FormatOf(name)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", name, err)
	}
	data, err := c.store.Read(ctx, name)
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", name, err)
	}
	c.stats.IncCounter(stats.MetricLoads, 1)
	c.stats.IncCounter(stats.MetricBytesRead, int64(len(data)))
	c.logger.Debug("read file", zap.String("name", name), zap.Int("bytes", len(data)))
	return format, data, nil
}

func (c *Converter) write(ctx context.Context, name string, data []byte) (int64, error) {
	if c.closed.Load() {
		return 0, ErrClosed
	}
	if err := c.store.Write(ctx, name, data); err != nil {
		return 0, fmt.Errorf("writing %s: %w", name, err)
	}
	c.stats.IncCounter(stats.MetricSaves, 1)
	c.stats.IncCounter(stats.MetricBytesWritten, int64(len(data)))
	c.logger.Debug("wrote file", zap.String("name", name), zap.Int("bytes", len(data)))
	return int64(len(data)), nil
}

func (c *Converter) writeCloud(ctx context.Context, name string, cloud *Cloud) (int64, error) {
	var buf bytes.Buffer
	if err := ply.Write(&buf, cloud); err != nil {
		return 0, fmt.Errorf("encoding %s: %w", name, err)
	}
	return c.write(ctx, name, buf.Bytes())
}

func (c *Converter) writePacked(ctx context.Context, name string, packed *PackedCloud) (int64, error) {
	var buf bytes.Buffer
	if err := spzfile.Write(&buf, packed, c.container); err != nil {
		return 0, fmt.Errorf("encoding %s: %w", name, err)
	}
	return c.write(ctx, name, buf.Bytes())
}

func (c *Converter) decodeCloud(format Format, data []byte) (*Cloud, error) {
	if format == FormatPLY {
		return ply.Read(bytes.NewReader(data))
	}
	packed, err := spzfile.Read(bytes.NewReader(data), c.container)
	if err != nil {
		return nil, err
	}
	return packed.Unpack(), nil
}

func (c *Converter) decodePacked(format Format, data []byte) (*PackedCloud, error) {
	if format == FormatSPZ {
		return spzfile.Read(bytes.NewReader(data), c.container)
	}
	cloud, err := ply.Read(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return cloud.Pack(c.fractionalBits)
}
