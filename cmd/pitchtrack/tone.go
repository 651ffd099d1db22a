package main

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-pitch/dsp/core"
	"github.com/cwbudde/algo-pitch/dsp/signal"
	"github.com/cwbudde/algo-pitch/internal/config"
)

type toneOptions struct {
	freq      float64
	to        float64
	duration  time.Duration
	amplitude float64
	partials  []float64
	noise     float64
	seed      int64
}

func newToneCmd(a *app) *cobra.Command {
	var opts toneOptions

	cmd := &cobra.Command{
		Use:   "tone <out.wav>",
		Short: "Write a test tone as a 16-bit mono WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			rate := a.cfg.Tracker.SampleRate

			samples, err := makeTone(rate, opts)
			if err != nil {
				return err
			}

			if err := writeWAV(args[0], samples, rate); err != nil {
				return err
			}

			a.log.Info().Str("file", args[0]).Float64("freq", opts.freq).Int("samples", len(samples)).Msg("tone written")

			return nil
		},
	}

	f := cmd.Flags()
	f.Float64("sample-rate", config.Defaults().Tracker.SampleRate, "sample rate in Hz")
	f.Float64Var(&opts.freq, "freq", 220, "fundamental frequency in Hz")
	f.Float64Var(&opts.to, "to", 0, "glide to this frequency (0 keeps the pitch)")
	f.DurationVar(&opts.duration, "duration", 2*time.Second, "length of the tone")
	f.Float64Var(&opts.amplitude, "amplitude", 0.5, "peak amplitude of the fundamental")
	f.Float64SliceVar(&opts.partials, "partials", nil, "relative amplitudes of harmonics 2, 3, ...")
	f.Float64Var(&opts.noise, "noise", 0, "white noise amplitude")
	f.Int64Var(&opts.seed, "seed", 1, "noise seed")

	return cmd
}

func makeTone(rate float64, opts toneOptions) ([]float64, error) {
	n := int(opts.duration.Seconds() * rate)
	if n <= 0 {
		return nil, fmt.Errorf("tone duration too short: %v", opts.duration)
	}

	g := signal.NewGenerator([]core.ProcessorOption{core.WithSampleRate(rate)}, signal.WithSeed(opts.seed))

	var (
		out []float64
		err error
	)

	if opts.to > 0 {
		out, err = g.Glide(opts.freq, opts.to, opts.amplitude, n)
	} else {
		amps := []float64{opts.amplitude}
		for _, p := range opts.partials {
			amps = append(amps, p*opts.amplitude)
		}
		out, err = g.Harmonic(opts.freq, amps, n)
	}

	if err != nil {
		return nil, err
	}

	if opts.noise > 0 {
		noise, err := g.WhiteNoise(opts.noise, n)
		if err != nil {
			return nil, err
		}
		for i := range out {
			out[i] += noise[i]
		}
	}

	if floats.Norm(out, math.Inf(1)) > 1 {
		if err := signal.Normalize(out, 0.99); err != nil {
			return nil, err
		}
	}

	return out, nil
}
