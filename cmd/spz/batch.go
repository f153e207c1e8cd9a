package main

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/splatkit/spz"
	"github.com/splatkit/spz/internal/batch"
	promstats "github.com/splatkit/spz/internal/stats/prometheus"
)

var batchCmd = &cobra.Command{
	Use:   "batch [PREFIX]",
	Short: "Convert every splat file under a store prefix",
	Long: `Convert all PLY files under PREFIX to SPZ, or all SPZ files to PLY
with --to ply.

This command will:
1. List the store under PREFIX
2. Skip files whose output already exists (unless --overwrite)
3. Convert the rest with a pool of workers
4. Write manifest.json with per-file results

Examples:
  # Compress a local capture directory
  spz --store ./captures batch

  # Decompress a bucket prefix into another prefix
  spz --store s3://my-bucket batch scenes/ --to ply --out restored/

  # Export metrics in Prometheus text format
  spz batch --metrics metrics.prom`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

var (
	batchTarget    string
	batchOut       string
	batchWorkers   int
	batchOverwrite bool
	batchManifest  bool
	batchMetrics   string
	batchAntialias bool
)

func init() {
	batchCmd.Flags().StringVar(&batchTarget, "to", "spz", "output format: spz, ply")
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "", "output prefix (default: next to sources)")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", batch.DefaultWorkers, "number of parallel conversions")
	batchCmd.Flags().BoolVar(&batchOverwrite, "overwrite", false, "convert files whose output exists")
	batchCmd.Flags().BoolVar(&batchManifest, "manifest", true, "write manifest.json")
	batchCmd.Flags().StringVar(&batchMetrics, "metrics", "", "write Prometheus metrics to this file (- for stdout)")
	batchCmd.Flags().BoolVar(&batchAntialias, "antialiased", false, "set the antialiased flag on SPZ output")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	target, err := spz.FormatOf("x." + batchTarget)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}
	prefix := ""
	if len(args) > 0 {
		prefix = args[0]
	}

	ctx, cancel := signalContext()
	defer cancel()

	registry := prometheus.NewRegistry()
	conv, err := newConverter(ctx, promstats.New(registry), spz.WithAntialiased(batchAntialias))
	if err != nil {
		return err
	}
	defer conv.Close()

	runner := batch.NewRunner(conv,
		batch.WithTarget(target),
		batch.WithOutputPrefix(batchOut),
		batch.WithWorkers(batchWorkers),
		batch.WithOverwrite(batchOverwrite),
		batch.WithManifest(batchManifest),
		batch.WithProgress(batch.Printer(os.Stdout)),
		batch.WithLogger(newLogger()),
	)

	fmt.Printf("Converting splat files\n")
	fmt.Printf("  Store:    %s\n", storeLocation)
	fmt.Printf("  Prefix:   %q\n", prefix)
	fmt.Printf("  Target:   %s\n", target)
	fmt.Printf("  Codec:    %s\n", containerCodec)
	fmt.Printf("  Bits:     %d\n", fractionalBits)
	fmt.Printf("  Workers:  %d\n", batchWorkers)
	fmt.Println()

	m, runErr := runner.Run(ctx, prefix)
	if m != nil && m.InputBytes > 0 {
		fmt.Printf("Output is %.1f%% of input (%d splats)\n", m.Ratio()*100, m.PointCount)
	}

	if batchMetrics != "" {
		if err := writeMetrics(batchMetrics, registry); err != nil {
			runErr = multierr.Append(runErr, err)
		}
	}
	return runErr
}

func writeMetrics(path string, registry *prometheus.Registry) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating metrics file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := promstats.WriteText(w, registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
