package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/splatkit/spz"
	"github.com/splatkit/spz/internal/batch"
)

var statsCmd = &cobra.Command{
	Use:   "stats [PREFIX]",
	Short: "Show statistics about the splat files in a store",
	Long: `Display statistics about the splat files under PREFIX including:
- Number of PLY and SPZ files
- Total size and splat count per format
- The manifest of the last batch run, if present`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

type formatStats struct {
	files  int
	points int64
	bytes  int64
}

func runStats(cmd *cobra.Command, args []string) error {
	prefix := ""
	if len(args) > 0 {
		prefix = args[0]
	}

	ctx, cancel := signalContext()
	defer cancel()

	conv, err := newConverter(ctx, nil)
	if err != nil {
		return err
	}
	defer conv.Close()

	names, err := conv.Store().List(ctx, prefix)
	if err != nil {
		return fmt.Errorf("listing store: %w", err)
	}

	byFormat := map[spz.Format]*formatStats{
		spz.FormatPLY: {},
		spz.FormatSPZ: {},
	}
	for _, name := range names {
		if _, err := spz.FormatOf(name); err != nil {
			continue
		}
		info, err := conv.Info(ctx, name)
		if err != nil {
			if verbose {
				fmt.Printf("  skipping %s: %v\n", name, err)
			}
			continue
		}
		s := byFormat[info.Format]
		s.files++
		s.points += int64(info.Points)
		s.bytes += info.Size
	}

	ply, spzs := byFormat[spz.FormatPLY], byFormat[spz.FormatSPZ]
	if ply.files+spzs.files == 0 {
		fmt.Println("No splat files found.")
		return nil
	}

	fmt.Printf("Store:      %s\n", storeLocation)
	fmt.Printf("PLY files:  %d (%d splats, %s)\n", ply.files, ply.points, batch.FormatBytes(ply.bytes))
	fmt.Printf("SPZ files:  %d (%d splats, %s)\n", spzs.files, spzs.points, batch.FormatBytes(spzs.bytes))

	if m, err := batch.ReadManifest(ctx, conv.Store(), prefix); err == nil {
		fmt.Printf("Last batch: %s, %d files, %d failed, %.1f%% of input\n",
			m.BuiltAt.Format("2006-01-02 15:04"), m.FileCount, m.FailedCount, m.Ratio()*100)
	}
	return nil
}
