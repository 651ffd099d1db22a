// Package report collects pitch tracking results for one input and writes
// them as a table, JSON, YAML or CSV.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"text/tabwriter"

	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-pitch/dsp/pitch/tracker"
)

// FloorDB is the lowest level written to a report; quieter values,
// including silence at -Inf, are raised to it.
const FloorDB = -120.0

// ClampDB raises v to FloorDB.
func ClampDB(v float64) float64 {
	if math.IsNaN(v) || v < FloorDB {
		return FloorDB
	}

	return v
}

// Frame is one tracker record with its timing and optional level and
// harmonic measurements.
type Frame struct {
	tracker.Record `yaml:",inline"`

	// Time is the centre of the analysed windows in seconds.
	Time      float64   `json:"time" yaml:"time"`
	LevelDB   float64   `json:"level_db" yaml:"level_db"`
	Harmonics []float64 `json:"harmonics_db,omitempty" yaml:"harmonics_db,omitempty"`

	// SpectralPitch is the spectral peak frequency for unvoiced frames whose
	// peak lies above the tracker's range.
	SpectralPitch float64 `json:"spectral_pitch,omitempty" yaml:"spectral_pitch,omitempty"`
}

// Summary holds statistics over the voiced frames.
type Summary struct {
	Frames      int     `json:"frames" yaml:"frames"`
	Voiced      int     `json:"voiced" yaml:"voiced"`
	VoicedRatio float64 `json:"voiced_ratio" yaml:"voiced_ratio"`
	MeanPitch   float64 `json:"mean_pitch" yaml:"mean_pitch"`
	MedianPitch float64 `json:"median_pitch" yaml:"median_pitch"`
	StdDevPitch float64 `json:"stddev_pitch" yaml:"stddev_pitch"`
	MinPitch    float64 `json:"min_pitch" yaml:"min_pitch"`
	MaxPitch    float64 `json:"max_pitch" yaml:"max_pitch"`
	MedianNote  int     `json:"median_note" yaml:"median_note"`
}

// Report is the result of analysing one input.
type Report struct {
	Source     string  `json:"source" yaml:"source"`
	SampleRate float64 `json:"sample_rate" yaml:"sample_rate"`
	Samples    int64   `json:"samples" yaml:"samples"`
	Summary    Summary `json:"summary" yaml:"summary"`
	Frames     []Frame `json:"frames" yaml:"frames"`
}

// Summarize computes the summary over frames. Pitch statistics cover voiced
// frames only and stay zero when there are none.
func Summarize(frames []Frame) Summary {
	s := Summary{Frames: len(frames)}

	pitches := make([]float64, 0, len(frames))
	for _, f := range frames {
		if f.HasPitch() {
			pitches = append(pitches, f.Pitch)
		}
	}

	s.Voiced = len(pitches)
	if s.Frames > 0 {
		s.VoicedRatio = float64(s.Voiced) / float64(s.Frames)
	}

	if len(pitches) == 0 {
		return s
	}

	sort.Float64s(pitches)

	s.MeanPitch, s.StdDevPitch = stat.MeanStdDev(pitches, nil)
	if math.IsNaN(s.StdDevPitch) {
		s.StdDevPitch = 0
	}
	s.MedianPitch = stat.Quantile(0.5, stat.Empirical, pitches, nil)
	s.MinPitch = pitches[0]
	s.MaxPitch = pitches[len(pitches)-1]
	s.MedianNote = notes(frames)

	return s
}

func notes(frames []Frame) int {
	ns := make([]float64, 0, len(frames))
	for _, f := range frames {
		if f.HasPitch() {
			ns = append(ns, float64(f.MidiNote))
		}
	}

	sort.Float64s(ns)

	return int(stat.Quantile(0.5, stat.Empirical, ns, nil))
}

// Write renders r in the named format.
func Write(w io.Writer, format string, r *Report) error {
	switch format {
	case "table", "":
		return writeTable(w, r)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "csv":
		return writeCSV(w, r)
	default:
		return fmt.Errorf("report: unknown format %q", format)
	}
}

func writeTable(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "source\t%s\n", r.Source)
	fmt.Fprintf(tw, "sample rate\t%g Hz\n", r.SampleRate)
	fmt.Fprintf(tw, "frames\t%d (%d voiced, %.0f%%)\n", r.Summary.Frames, r.Summary.Voiced, 100*r.Summary.VoicedRatio)
	if r.Summary.Voiced > 0 {
		fmt.Fprintf(tw, "pitch\tmedian %.2f Hz, mean %.2f Hz, sd %.2f Hz, range %.2f..%.2f Hz\n",
			r.Summary.MedianPitch, r.Summary.MeanPitch, r.Summary.StdDevPitch, r.Summary.MinPitch, r.Summary.MaxPitch)
		fmt.Fprintf(tw, "median note\t%d\n", r.Summary.MedianNote)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "index\ttime\tpitch\tnote\tcents\tlevel")
	for _, f := range r.Frames {
		pitch := fmt.Sprintf("%.2f", f.Pitch)
		if f.SpectralPitch > 0 {
			pitch = fmt.Sprintf("(%.1f)", f.SpectralPitch)
		}
		fmt.Fprintf(tw, "%d\t%.3f\t%s\t%d\t%+d\t%.1f dB\n", f.Index, f.Time, pitch, f.MidiNote, f.MidiCents, f.LevelDB)
	}

	return tw.Flush()
}

func writeCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)

	harmonics := 0
	for _, f := range r.Frames {
		harmonics = max(harmonics, len(f.Harmonics))
	}

	header := []string{"index", "time", "pitch", "midi_note", "midi_cents", "level_db", "spectral_pitch"}
	for h := range harmonics {
		header = append(header, "h"+strconv.Itoa(h+1)+"_db")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, f := range r.Frames {
		row := []string{
			strconv.Itoa(f.Index),
			strconv.FormatFloat(f.Time, 'f', 4, 64),
			strconv.FormatFloat(f.Pitch, 'f', 3, 64),
			strconv.Itoa(f.MidiNote),
			strconv.Itoa(f.MidiCents),
			strconv.FormatFloat(f.LevelDB, 'f', 2, 64),
			strconv.FormatFloat(f.SpectralPitch, 'f', 1, 64),
		}
		for h := range harmonics {
			v := ""
			if h < len(f.Harmonics) {
				v = strconv.FormatFloat(f.Harmonics[h], 'f', 2, 64)
			}
			row = append(row, v)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
