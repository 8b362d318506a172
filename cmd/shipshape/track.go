package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leofalp/shipshape/core/tracking"
)

func newTrackCmd() *cobra.Command {
	var (
		count int
		check string
	)

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Generate or check tracking numbers",
		Example: `  shipshape track
  shipshape track -n 5
  shipshape track --check SHP004815162342`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if check != "" {
				if !tracking.Valid(check) {
					return fmt.Errorf("%q is not a valid tracking number", check)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "valid")
				return nil
			}

			if count < 1 {
				return fmt.Errorf("count must be at least 1, got %d", count)
			}
			for range count {
				fmt.Fprintln(cmd.OutOrStdout(), tracking.Generate())
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "how many numbers to generate")
	cmd.Flags().StringVar(&check, "check", "", "validate a tracking number instead of generating one")
	return cmd
}
