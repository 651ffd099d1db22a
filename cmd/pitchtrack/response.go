package main

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-pitch/dsp/pitch/tracker"
	"github.com/cwbudde/algo-pitch/internal/config"
)

func newResponseCmd(a *app) *cobra.Command {
	var (
		from, to float64
		points   int
	)

	cmd := &cobra.Command{
		Use:   "response",
		Short: "Print the magnitude response of the tracker's analysis bands",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			tr, err := tracker.New(tracker.WithSampleRate(a.cfg.Tracker.SampleRate))
			if err != nil {
				return err
			}

			return writeResponse(a.out, tr, from, to, points)
		},
	}

	f := cmd.Flags()
	f.Float64("sample-rate", config.Defaults().Tracker.SampleRate, "sample rate in Hz")
	f.Float64Var(&from, "from", 20, "lowest frequency in Hz")
	f.Float64Var(&to, "to", 5000, "highest frequency in Hz")
	f.IntVar(&points, "points", 25, "log-spaced frequencies")

	return cmd
}

func writeResponse(w io.Writer, tr *tracker.Tracker, from, to float64, points int) error {
	if from <= 0 || to <= from || points < 2 {
		return fmt.Errorf("response range must satisfy 0 < from < to with >= 2 points: %g..%g, %d", from, to, points)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Frequency [Hz]\tLow band [dB]\tHigh band [dB]")
	fmt.Fprintln(tw, "--------------\t-------------\t--------------")

	ratio := math.Log(to / from)
	for i := range points {
		hz := from * math.Exp(ratio*float64(i)/float64(points-1))
		lo, hi := tr.BandResponseDB(hz)
		fmt.Fprintf(tw, "%.1f\t%.2f\t%.2f\n", hz, lo, hi)
	}

	return tw.Flush()
}
