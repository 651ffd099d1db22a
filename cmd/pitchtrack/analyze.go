package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-pitch/dsp/pitch/tracker"
	"github.com/cwbudde/algo-pitch/dsp/spectrum"
	"github.com/cwbudde/algo-pitch/internal/config"
	"github.com/cwbudde/algo-pitch/internal/report"
	"github.com/cwbudde/algo-pitch/measure/level"
)

// spectralPitchMin is the lowest spectral peak reported for frames the
// tracker leaves unvoiced.
const spectralPitchMin = 3000.0

func newAnalyzeCmd(a *app) *cobra.Command {
	var calibrate bool

	d := config.Defaults()

	cmd := &cobra.Command{
		Use:   "analyze <file.wav>",
		Short: "Track the pitch of a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			samples, rate, err := readWAV(args[0])
			if err != nil {
				return err
			}

			a.log.Info().Str("file", args[0]).Float64("sample_rate", rate).Int("samples", len(samples)).Msg("analyzing")

			rep, err := analyze(samples, rate, a.cfg, a.log, calibrate)
			if err != nil {
				return err
			}

			rep.Source = args[0]

			return report.Write(a.out, a.cfg.Output, rep)
		},
	}

	f := cmd.Flags()
	f.Int("chunk", d.Analysis.ChunkSize, "samples fed to the tracker per call")
	f.Int("rps", d.Tracker.RecordsPerSecond, "records per second")
	f.Float64("threshold", d.Tracker.DetectLevelThreshold, "silence gate (peak amplitude)")
	f.Float64("max-pitch-rate", d.Tracker.MaxPitchRate, "largest relative pitch change per second")
	f.Int("fft-size", d.Analysis.FFTSize, "spectrum size for harmonic analysis")
	f.String("window", d.Analysis.Window, "spectrum window")
	f.Int("harmonics", d.Analysis.Harmonics, "harmonics measured per voiced frame (0 disables)")
	f.Int("harmonic-width", d.Analysis.HarmonicHalfWidth, "bins summed on each side of a harmonic")
	f.Float64("reference", d.Level.Reference, "amplitude that reads 0 dB")
	f.Float64("noise-floor", d.Level.NoiseFloor, "RMS below which frames count as silent")
	f.BoolVar(&calibrate, "calibrate", false, "calibrate the noise floor from the start of the file")

	return cmd
}

// analyze runs samples through the tracker and measures level and spectrum
// around every record.
func analyze(samples []float64, rate float64, cfg config.Config, log zerolog.Logger, calibrate bool) (*report.Report, error) {
	tr, err := tracker.New(append(cfg.TrackerOptions(rate), tracker.WithLogger(log))...)
	if err != nil {
		return nil, err
	}

	meter := level.NewMeter(cfg.LevelOptions(rate)...)
	if calibrate {
		if err := meter.StartCalibration(); err != nil {
			return nil, err
		}
	}

	an, err := spectrum.NewAnalyzer(rate, cfg.Analysis.FFTSize, spectrum.WithWindow(cfg.WindowType()))
	if err != nil {
		return nil, err
	}

	fb := &frameBuilder{
		cfg:     cfg,
		log:     log,
		samples: samples,
		rate:    rate,
		tracker: tr,
		meter:   meter,
		an:      an,
	}
	tr.AddListenerFunc(fb.add)

	chunk := cfg.Analysis.ChunkSize
	for pos := 0; pos < len(samples); pos += chunk {
		if err := tr.ProcessBuffer(samples[pos:min(pos+chunk, len(samples))]); err != nil {
			return nil, fmt.Errorf("process at sample %d: %w", pos, err)
		}
	}

	if fb.err != nil {
		return nil, fb.err
	}

	log.Debug().Int("records", len(fb.frames)).Msg("analysis complete")

	return &report.Report{
		SampleRate: rate,
		Samples:    int64(len(samples)),
		Summary:    report.Summarize(fb.frames),
		Frames:     fb.frames,
	}, nil
}

// frameBuilder turns tracker records into report frames.
type frameBuilder struct {
	cfg     config.Config
	log     zerolog.Logger
	samples []float64
	rate    float64
	tracker *tracker.Tracker
	meter   *level.Meter
	an      *spectrum.Analyzer

	frames []report.Frame
	err    error
}

func (fb *frameBuilder) add(r tracker.Record) {
	if fb.err != nil {
		return
	}

	t := fb.tracker.RecordTime(r)
	centre := int(t*fb.rate + 0.5)

	hop := fb.tracker.SamplesPerRecord()
	reading := fb.meter.Process(fb.slice(centre-hop/2, hop))
	if reading.Calibrated {
		fb.log.Info().Float64("noise_floor", fb.meter.NoiseFloor()).Msg("noise floor calibrated")
	}

	f := report.Frame{
		Record:  r,
		Time:    t,
		LevelDB: report.ClampDB(reading.DB),
	}

	n := fb.an.Size()
	if _, err := fb.an.Analyze(fb.slice(centre-n/2, n)); err != nil {
		fb.err = err
		return
	}

	switch {
	case r.HasPitch() && fb.cfg.Analysis.Harmonics > 0:
		amps := fb.an.HarmonicAmplitudes(r.Pitch, fb.cfg.Analysis.Harmonics, fb.cfg.Analysis.HarmonicHalfWidth)
		f.Harmonics = spectrum.HarmonicLevelsDB(amps, fb.cfg.Level.Reference)
		for i, v := range f.Harmonics {
			f.Harmonics[i] = report.ClampDB(v)
		}
	case !r.HasPitch() && reading.SoundDetected:
		if peak, _ := fb.an.PeakFrequency(); peak > spectralPitchMin {
			f.SpectralPitch = peak
		}
	}

	fb.frames = append(fb.frames, f)
}

// slice returns samples[start:start+n] clipped to the input. It returns a
// single zero sample when nothing overlaps.
func (fb *frameBuilder) slice(start, n int) []float64 {
	lo := max(start, 0)
	hi := min(start+n, len(fb.samples))

	if lo >= hi {
		return []float64{0}
	}

	return fb.samples[lo:hi]
}
