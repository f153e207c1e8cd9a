package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/splatkit/spz"
	"github.com/splatkit/spz/internal/batch"
)

var infoCmd = &cobra.Command{
	Use:   "info NAME...",
	Short: "Show the header of splat files",
	Long: `Read the header of each file and print its splat count, spherical
harmonics degree and, for SPZ files, the position precision and flags.
Splat data is not decoded.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfo,
}

var (
	infoJSON       bool
	infoProperties bool
)

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "output as JSON lines")
	infoCmd.Flags().BoolVar(&infoProperties, "properties", false, "list PLY vertex properties")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	conv, err := newConverter(ctx, nil)
	if err != nil {
		return err
	}
	defer conv.Close()

	enc := json.NewEncoder(os.Stdout)
	for _, name := range args {
		info, err := conv.Info(ctx, name)
		if err != nil {
			return err
		}
		if infoJSON {
			if err := enc.Encode(info); err != nil {
				return err
			}
			continue
		}
		printInfo(info)
	}
	return nil
}

func printInfo(info *spz.Info) {
	fmt.Printf("%s\n", info.Name)
	fmt.Printf("  Format:    %s\n", info.Format)
	fmt.Printf("  Size:      %s\n", batch.FormatBytes(info.Size))
	fmt.Printf("  Splats:    %d\n", info.Points)
	fmt.Printf("  SH degree: %d\n", info.SHDegree)
	if info.Format == spz.FormatSPZ {
		fmt.Printf("  Bits:      %d\n", info.FractionalBits)
		fmt.Printf("  Antialiased: %v\n", info.Antialiased)
	}
	if infoProperties && len(info.Properties) > 0 {
		fmt.Printf("  Properties: %s\n", strings.Join(info.Properties, " "))
	}
}
