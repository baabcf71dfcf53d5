package main

import (
	"fmt"
	"strconv"

	"github.com/itohio/goshot/pkg/legible"
	"github.com/spf13/cobra"
)

type renderFlags struct {
	width int
}

func newRenderCmd() *cobra.Command {
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render numbers and times the way the timer display does",
	}
	cmd.PersistentFlags().IntVarP(&flags.width, "width", "w", legible.Capacity, "Rightmost characters to keep")

	cmd.AddCommand(&cobra.Command{
		Use:     "number <value>",
		Short:   "Zero-padded decimal",
		Example: "  stctl render number 42 --width 3",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseUint32(args[0])
			if err != nil {
				return err
			}
			var txt legible.Text
			legible.ConvertNumber(&txt, v, flags.width)
			fmt.Fprintln(cmd.OutOrStdout(), txt.String())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "time <milliseconds>",
		Short:   "HH:MM:SS.mmm",
		Example: "  stctl render time 3723456 --width 9",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseUint32(args[0])
			if err != nil {
				return err
			}
			var txt legible.Text
			legible.ConvertTime(&txt, v, flags.width)
			fmt.Fprintln(cmd.OutOrStdout(), txt.String())
			return nil
		},
	})

	return cmd
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q: %w", s, err)
	}
	return uint32(v), nil
}
