package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/splatkit/spz"
	"github.com/splatkit/spz/benchmark/fidelity"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [NAME...]",
	Short: "Verify that splat files decode",
	Long: `Verify that splat files are valid.

This command checks:
- Each file decodes completely
- PLY files survive an SPZ round trip within the codec's error bounds

Without arguments every .ply and .spz file under --prefix is checked.`,
	RunE: runVerify,
}

var (
	verifyPrefix string
	verifyQuick  bool
)

func init() {
	verifyCmd.Flags().StringVar(&verifyPrefix, "prefix", "", "store prefix to verify when no names are given")
	verifyCmd.Flags().BoolVar(&verifyQuick, "quick", false, "only decode, skip the round trip check")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	conv, err := newConverter(ctx, nil)
	if err != nil {
		return err
	}
	defer conv.Close()

	names := args
	if len(names) == 0 {
		all, err := conv.Store().List(ctx, verifyPrefix)
		if err != nil {
			return fmt.Errorf("listing store: %w", err)
		}
		for _, name := range all {
			if _, err := spz.FormatOf(name); err == nil {
				names = append(names, name)
			}
		}
	}

	if len(names) == 0 {
		fmt.Println("No splat files found.")
		return nil
	}

	fmt.Printf("Verifying %d files...\n", len(names))

	var errCount int
	for i, name := range names {
		if verbose {
			fmt.Printf("  [%d/%d] %s\n", i+1, len(names), name)
		}
		if err := verifyFile(ctx, conv, name); err != nil {
			fmt.Printf("  ERROR: %s: %v\n", name, err)
			errCount++
		}
	}

	if errCount > 0 {
		return fmt.Errorf("%d files failed verification", errCount)
	}

	fmt.Println("All files verified successfully.")
	return nil
}

func verifyFile(ctx context.Context, conv *spz.Converter, name string) error {
	cloud, err := conv.Load(ctx, name)
	if err != nil {
		return err
	}
	if verifyQuick {
		return nil
	}
	if f, _ := spz.FormatOf(name); f != spz.FormatPLY {
		return nil
	}

	packed, err := spz.Pack(cloud, conv.FractionalBits())
	if err != nil {
		return err
	}
	errs, err := fidelity.Measure(cloud, spz.Unpack(packed))
	if err != nil {
		return err
	}

	tol := fidelity.DefaultTolerances()
	// Position error bound scales with the configured precision.
	tol[fidelity.Position] = 1 / float64(int(1)<<conv.FractionalBits())
	if v := errs.Check(tol); len(v) > 0 {
		return fmt.Errorf("round trip out of bounds: %v", v)
	}
	return nil
}
