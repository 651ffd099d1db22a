package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-pitch/dsp/window"
)

var windowTypes = []window.Type{
	window.TypeRectangular,
	window.TypeHann,
	window.TypeHamming,
	window.TypeBlackman,
	window.TypeBlackmanHarris,
}

func newWindowsCmd(a *app) *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "windows",
		Short: "List the spectrum windows with their gain and bandwidth",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return writeWindows(a.out, size)
		},
	}

	cmd.Flags().IntVar(&size, "size", 4096, "window length in samples")

	return cmd
}

func writeWindows(w io.Writer, size int) error {
	if size < 2 {
		return fmt.Errorf("window size must be >= 2: %d", size)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Window\tSize\tCoherent Gain\tENBW [bins]\tScallop [dB]")
	fmt.Fprintln(tw, "------\t----\t-------------\t-----------\t------------")

	for _, typ := range windowTypes {
		coeffs := window.Generate(typ, size, window.WithPeriodic())

		enbw, err := window.EquivalentNoiseBandwidth(coeffs)
		if err != nil {
			return err
		}

		fmt.Fprintf(tw, "%s\t%d\t%.6f\t%.4f\t%.4f\n",
			typ, size, window.CoherentGain(coeffs), enbw, window.ScallopLossDB(coeffs))
	}

	return tw.Flush()
}
