package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/splatkit/spz"
	"github.com/splatkit/spz/internal/batch"
)

var convertCmd = &cobra.Command{
	Use:   "convert SRC DST",
	Short: "Convert a splat file between PLY and SPZ",
	Long: `Convert a splat file. The formats are chosen by the .ply and .spz
extensions of SRC and DST, so the same command compresses and decompresses.

Examples:
  # PLY to SPZ
  spz convert garden.ply garden.spz

  # SPZ back to PLY
  spz convert garden.spz garden.ply

  # PLY to SPZ with finer positions (16 fractional bits)
  spz --bits 16 convert garden.ply garden.spz

  # Mark the output as trained with antialiasing
  spz convert --antialiased garden.ply garden.spz`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

var (
	convertAntialiased bool
	convertJSON        bool
)

func init() {
	convertCmd.Flags().BoolVar(&convertAntialiased, "antialiased", false, "set the antialiased flag on SPZ output")
	convertCmd.Flags().BoolVar(&convertJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	conv, err := newConverter(ctx, nil, spz.WithAntialiased(convertAntialiased))
	if err != nil {
		return err
	}
	defer conv.Close()

	res, err := conv.Convert(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	if convertJSON {
		return json.NewEncoder(os.Stdout).Encode(res)
	}
	printResult(res)
	return nil
}

func printResult(res *spz.Result) {
	fmt.Printf("Converted %s -> %s\n", res.Source, res.Dest)
	fmt.Printf("  Splats:    %d (SH degree %d)\n", res.Points, res.SHDegree)
	fmt.Printf("  Input:     %s\n", batch.FormatBytes(res.InputBytes))
	fmt.Printf("  Output:    %s\n", batch.FormatBytes(res.OutputBytes))
	fmt.Printf("  Delta:     %s (%.1f%% of input)\n", batch.FormatBytes(res.Delta()), res.Ratio()*100)
	fmt.Printf("  Time:      %s\n", batch.FormatDuration(res.Duration))
}
