package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/splatkit/spz"
	"github.com/splatkit/spz/internal/codec/codecs"
	"github.com/splatkit/spz/internal/stats"
	"github.com/splatkit/spz/internal/store/storeuri"
)

var (
	// Global flags.
	storeLocation  string
	verbose        bool
	containerCodec string
	blobCodec      string
	fractionalBits uint8
	cacheSize      int
	s3Region       string
)

var rootCmd = &cobra.Command{
	Use:   "spz",
	Short: "Convert Gaussian splat scenes between PLY and SPZ",
	Long: `spz converts 3D Gaussian splat scenes between the binary PLY files
written by training tools and the compact SPZ format.

Files are addressed by name inside a store: a local directory, a GCS or S3
bucket prefix, or a read-only HTTP base URL.

Examples:
  # Compress a scene in the current directory
  spz convert garden.ply garden.spz

  # Inspect a file in a bucket
  spz --store gs://my-bucket/scenes info garden.spz

  # Convert every PLY file under a prefix with 8 workers
  spz --store ./scenes batch captures/ --workers 8`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&storeLocation, "store", "s", ".", "store location: directory, gs://, s3:// or http(s)://")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&containerCodec, "codec", "gzip", "SPZ container compression: gzip, zstd, none")
	rootCmd.PersistentFlags().StringVar(&blobCodec, "blob-codec", "none", "compression of files at rest in the store")
	rootCmd.PersistentFlags().Uint8Var(&fractionalBits, "bits", spz.DefaultFractionalBits, "fractional bits of packed positions (0-23)")
	rootCmd.PersistentFlags().IntVar(&cacheSize, "cache", 0, "LRU read cache size in files (0 disables)")
	rootCmd.PersistentFlags().StringVar(&s3Region, "s3-region", "", "AWS region for s3:// stores")
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// newConverter opens the configured store and wraps it in a Converter.
func newConverter(ctx context.Context, collector stats.Collector, extra ...spz.Option) (*spz.Converter, error) {
	container, err := codecs.ByName(containerCodec)
	if err != nil {
		return nil, fmt.Errorf("--codec: %w", err)
	}
	blob, err := codecs.ByName(blobCodec)
	if err != nil {
		return nil, fmt.Errorf("--blob-codec: %w", err)
	}
	if collector == nil {
		collector = stats.NewNoop()
	}

	opts := []storeuri.Option{storeuri.WithBlobCodec(blob)}
	if cacheSize > 0 {
		opts = append(opts, storeuri.WithCache(cacheSize, collector))
	}
	if s3Region != "" {
		opts = append(opts, storeuri.WithS3Region(s3Region))
	}
	st, err := storeuri.Open(ctx, storeLocation, opts...)
	if err != nil {
		return nil, fmt.Errorf("opening store %q: %w", storeLocation, err)
	}

	conv, err := spz.New(append([]spz.Option{
		spz.WithStore(st),
		spz.WithStats(collector),
		spz.WithLogger(newLogger()),
		spz.WithFractionalBits(fractionalBits),
		spz.WithContainerCodec(container),
	}, extra...)...)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating converter: %w", err)
	}
	return conv, nil
}

// signalContext returns a context canceled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
