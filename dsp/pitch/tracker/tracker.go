package tracker

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-pitch/dsp/buffer"
	"github.com/cwbudde/algo-pitch/dsp/filter/iir"
	"github.com/cwbudde/algo-pitch/dsp/pitch"
)

const (
	// MinDetectFrequency is the lowest detectable pitch in Hz.
	MinDetectFrequency = 50.0
	// MaxDetectFrequency is the highest detectable pitch in Hz.
	MaxDetectFrequency = 1600.0
	// OctaveSteps is the resolution of the candidate grid.
	OctaveSteps = 96

	bandLowCut     = 45.0
	lowBandCutoff  = 280.0
	highBandCutoff = 1500.0
	bandOrder      = 5

	ringSeconds = 1.0
	ringSlack   = 10000
	blockSlack  = 16
)

// FrequencyStep returns the frequency ratio between neighbouring grid
// candidates.
func FrequencyStep() float64 {
	return math.Exp2(1.0 / OctaveSteps)
}

// State is the lifecycle state of a [Tracker].
type State int

const (
	// StateUnconfigured means no sample rate is set.
	StateUnconfigured State = iota
	// StateReady means the tracker is sized and rewound.
	StateReady
	// StateStreaming means samples have been processed since the last reset.
	StateStreaming
)

func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateReady:
		return "ready"
	case StateStreaming:
		return "streaming"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Tracker detects pitch in a sample stream and emits one [Record] per
// SamplesPerRecord samples.
//
// Tracker is not safe for concurrent use. Listeners run on the goroutine
// calling ProcessBuffer and must not block.
type Tracker struct {
	cfg   Config
	log   zerolog.Logger
	state State

	search *pitch.Search
	loHP   *iir.Filter
	loLP   *iir.Filter
	hiHP   *iir.Filter
	hiLP   *iir.Filter
	ringLo *buffer.Ring
	ringHi *buffer.Ring

	chunkLo []float64 // filter output of one sub-chunk
	chunkHi []float64
	winLo   []float64 // analysis windows, at least search.MinWindowLen()
	winHi   []float64

	blockSize        int // samples searched per window
	overlap          int // offset between the two windows
	maxDiff          float64
	samplesPerRecord int

	cursor  int64 // stream position of the next record
	index   int
	current Record
	history history

	subs       []subscription // replaced on change, never mutated
	lastHandle Handle
}

// New returns a tracker configured by opts. Without a sample rate the
// tracker stays unconfigured until SetSampleRate is called.
func New(opts ...Option) (*Tracker, error) {
	cfg := ApplyOptions(opts...)

	if !(cfg.DetectOverlap > 0) {
		return nil, fmt.Errorf("tracker: detect overlap must be > 0: %g", cfg.DetectOverlap)
	}
	if !(cfg.MaxPitchRate > 0) {
		return nil, fmt.Errorf("tracker: max pitch rate must be > 0: %g", cfg.MaxPitchRate)
	}
	if err := pitch.ApplySearchOptions(cfg.SearchOptions...).Validate(); err != nil {
		return nil, fmt.Errorf("tracker: %w", err)
	}

	t := &Tracker{cfg: cfg, log: cfg.Logger}
	t.history.setCapacity(cfg.HistoryCapacity)

	if cfg.SampleRate != 0 {
		if err := t.setup(); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// setup derives all sizing from the configuration and rewinds the tracker.
// The tracker is left untouched on error.
func (t *Tracker) setup() error {
	sr := t.cfg.SampleRate
	if !(sr > 0) || math.IsInf(sr, 0) {
		return fmt.Errorf("%w: %g", ErrInvalidSampleRate, sr)
	}

	loHP := iir.NewHighpass(bandLowCut, bandOrder, sr)
	loLP := iir.NewLowpass(lowBandCutoff, bandOrder, sr)
	hiHP := iir.NewHighpass(bandLowCut, bandOrder, sr)
	hiLP := iir.NewLowpass(highBandCutoff, bandOrder, sr)

	for _, f := range []*iir.Filter{loHP, loLP, hiHP, hiLP} {
		if !f.Designed() {
			return fmt.Errorf("%w: %g Hz cannot realize the band filters", ErrInvalidSampleRate, sr)
		}
	}

	search, err := pitch.NewSearch(sr, MinDetectFrequency, MaxDetectFrequency,
		t.cfg.DetectLevelThreshold, t.cfg.SearchOptions...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSampleRate, err)
	}

	t.search = search
	t.loHP, t.loLP, t.hiHP, t.hiLP = loHP, loLP, hiHP, hiLP

	t.overlap = int(t.cfg.DetectOverlap * sr)
	t.maxDiff = t.cfg.MaxPitchRate * t.cfg.DetectOverlap
	t.blockSize = int(2/MinDetectFrequency*sr) + blockSlack
	t.samplesPerRecord = max(int(math.Round(sr/float64(t.cfg.RecordsPerSecond))), 1)

	span := t.blockSize + t.overlap
	t.chunkLo = make([]float64, span)
	t.chunkHi = make([]float64, span)
	t.winLo = make([]float64, max(span, search.MinWindowLen()))
	t.winHi = make([]float64, len(t.winLo))

	capacity := max(int(ringSeconds*sr+0.5)+ringSlack, 2*span)
	t.ringLo = buffer.NewRing(capacity)
	t.ringHi = buffer.NewRing(capacity)

	t.log.Debug().
		Float64("sample_rate", sr).
		Float64("threshold", t.cfg.DetectLevelThreshold).
		Int("records_per_second", t.cfg.RecordsPerSecond).
		Int("block_size", t.blockSize).
		Int("overlap", t.overlap).
		Int("samples_per_record", t.samplesPerRecord).
		Int("grid_size", search.GridSize()).
		Msg("tracker configured")

	t.rewind()

	return nil
}

// Reset rewinds the tracker to stream position 0 and clears all filter,
// buffer and history state. Use it when the next samples do not continue
// the previous ones. Listeners are kept.
func (t *Tracker) Reset() {
	if t.state == StateUnconfigured {
		return
	}

	t.rewind()
	t.log.Debug().Msg("tracker reset")
}

func (t *Tracker) rewind() {
	t.index = 0
	t.cursor = 0
	t.current = Record{}
	t.history.reset()

	t.loHP.Reset()
	t.loLP.Reset()
	t.hiHP.Reset()
	t.hiLP.Reset()

	// The first window starts overlap samples before the stream.
	t.ringLo.Clear()
	t.ringHi.Clear()
	t.ringLo.ResetAt(-int64(t.overlap), t.overlap)
	t.ringHi.ResetAt(-int64(t.overlap), t.overlap)

	clear(t.winLo)
	clear(t.winHi)
	t.search.Reset()

	t.state = StateReady
}

// ProcessBuffer feeds samples into the tracker and emits every record that
// becomes complete. Samples should lie in [-1, 1].
func (t *Tracker) ProcessBuffer(samples []float64) error {
	if t.state == StateUnconfigured {
		return ErrUnconfigured
	}
	if len(samples) == 0 {
		return ErrEmptyBuffer
	}

	t.state = StateStreaming
	chunk := len(t.chunkLo)

	for pos := 0; pos < len(samples); pos += chunk {
		src := samples[pos:min(pos+chunk, len(samples))]

		lo := t.chunkLo[:len(src)]
		t.loHP.ProcessBlock(lo, src)
		t.loLP.ProcessInPlace(lo)

		hi := t.chunkHi[:len(src)]
		t.hiHP.ProcessBlock(hi, src)
		t.hiLP.ProcessInPlace(hi)

		t.ringLo.Write(lo)
		t.ringHi.Write(hi)

		t.drain()
	}

	return nil
}

// drain emits records while both rings hold a full window at the cursor.
func (t *Tracker) drain() {
	span := t.blockSize + t.overlap

	for {
		start := t.cursor - int64(t.overlap)
		if !t.ringLo.Has(start, span) || !t.ringHi.Has(start, span) {
			return
		}

		if err := t.ringLo.Read(t.winLo[:span], start); err != nil {
			return
		}
		if err := t.ringHi.Read(t.winHi[:span], start); err != nil {
			return
		}

		t.emit(t.detect())

		t.cursor += int64(t.samplesPerRecord)
		t.index++
	}
}

// detect searches window A, then window B starting overlap samples later,
// and cross-validates the results.
func (t *Tracker) detect() float64 {
	p1 := t.search.DetectPitch(t.winLo, t.winHi, t.blockSize)
	if p1 <= 0 {
		return 0
	}

	span := t.blockSize + t.overlap
	copy(t.winLo, t.winLo[t.overlap:span])
	copy(t.winHi, t.winHi[t.overlap:span])

	p2 := t.search.DetectPitch(t.winLo, t.winHi, t.blockSize)

	return crossValidate(p1, p2, t.maxDiff)
}

// crossValidate returns the mean of p1 and p2 when both are positive and
// differ by less than maxDiff relative to the smaller one, and 0 otherwise.
func crossValidate(p1, p2, maxDiff float64) float64 {
	if p1 <= 0 || p2 <= 0 {
		return 0
	}

	if math.Max(p1, p2)/math.Min(p1, p2)-1 >= maxDiff {
		return 0
	}

	return (p1 + p2) / 2
}

func (t *Tracker) emit(hz float64) {
	note, cents, _ := pitch.PitchToNote(hz)
	r := Record{Index: t.index, Pitch: hz, MidiNote: note, MidiCents: cents}

	t.current = r
	if t.cfg.RecordHistory {
		t.history.add(r)
	}

	t.dispatch(r)
}

// SetSampleRate sets the sample rate and re-derives all sizing. The tracker
// is rewound; on error it keeps its previous configuration.
func (t *Tracker) SetSampleRate(sampleRate float64) error {
	if t.state != StateUnconfigured && sampleRate == t.cfg.SampleRate {
		return nil
	}

	prev := t.cfg.SampleRate
	t.cfg.SampleRate = sampleRate

	if err := t.setup(); err != nil {
		t.cfg.SampleRate = prev
		return err
	}

	return nil
}

// SetDetectLevelThreshold sets the silence gate, clamped to
// [MinDetectLevelThreshold, MaxDetectLevelThreshold]. A configured tracker
// is re-sized and rewound.
func (t *Tracker) SetDetectLevelThreshold(level float64) error {
	level = clampThreshold(level)
	if level == t.cfg.DetectLevelThreshold {
		return nil
	}

	return t.reconfigure(func(cfg *Config) { cfg.DetectLevelThreshold = level })
}

// SetRecordsPerSecond sets the record rate, clamped to
// [MinRecordsPerSecond, MaxRecordsPerSecond]. A configured tracker is
// re-sized and rewound.
func (t *Tracker) SetRecordsPerSecond(n int) error {
	n = clampRecordsPerSecond(n)

	return t.reconfigure(func(cfg *Config) { cfg.RecordsPerSecond = n })
}

func (t *Tracker) reconfigure(apply func(*Config)) error {
	prev := t.cfg
	apply(&t.cfg)

	if t.state == StateUnconfigured {
		return nil
	}

	if err := t.setup(); err != nil {
		t.cfg = prev
		return err
	}

	return nil
}

// SetRecordHistory enables or disables the record history. Disabling it
// discards the stored records.
func (t *Tracker) SetRecordHistory(enabled bool) {
	if enabled == t.cfg.RecordHistory {
		return
	}

	t.cfg.RecordHistory = enabled
	if !enabled {
		t.history.reset()
	}
}

// SetHistoryCapacity bounds the history to n records, keeping the newest.
// 0 means unbounded.
func (t *Tracker) SetHistoryCapacity(n int) {
	n = max(n, 0)
	t.cfg.HistoryCapacity = n
	t.history.setCapacity(n)
}

// Config returns the current configuration.
func (t *Tracker) Config() Config { return t.cfg }

// State returns the lifecycle state.
func (t *Tracker) State() State { return t.state }

// SampleRate returns the sample rate in Hz, or 0 when unconfigured.
func (t *Tracker) SampleRate() float64 { return t.cfg.SampleRate }

// DetectLevelThreshold returns the silence gate.
func (t *Tracker) DetectLevelThreshold() float64 { return t.cfg.DetectLevelThreshold }

// RecordsPerSecond returns the record rate.
func (t *Tracker) RecordsPerSecond() int { return t.cfg.RecordsPerSecond }

// RecordHistory reports whether the history is enabled.
func (t *Tracker) RecordHistory() bool { return t.cfg.RecordHistory }

// HistoryCapacity returns the history bound, 0 for unbounded.
func (t *Tracker) HistoryCapacity() int { return t.cfg.HistoryCapacity }

// History returns a copy of the stored records, oldest first.
func (t *Tracker) History() []Record { return t.history.snapshot() }

// CurrentRecord returns the most recent record.
func (t *Tracker) CurrentRecord() Record { return t.current }

// SamplePosition returns the stream position of the next record.
func (t *Tracker) SamplePosition() int64 { return t.cursor }

// SamplesPerRecord returns the stream distance between records.
func (t *Tracker) SamplesPerRecord() int { return t.samplesPerRecord }

// Latency returns the number of samples needed before the first record.
// After n >= Latency samples, floor((n-Latency)/SamplesPerRecord)+1 records
// have been emitted.
func (t *Tracker) Latency() int { return t.blockSize }

// DetectSampleOffset estimates how far a record lags the stream position it
// was produced at, in samples.
func (t *Tracker) DetectSampleOffset() int { return (t.blockSize + t.overlap) / 2 }

// MinDetectFrequency returns the lowest detectable pitch in Hz.
func (t *Tracker) MinDetectFrequency() float64 { return MinDetectFrequency }

// MaxDetectFrequency returns the highest detectable pitch in Hz.
func (t *Tracker) MaxDetectFrequency() float64 { return MaxDetectFrequency }

// RecordTime returns the stream time in seconds at the centre of the two
// windows analysed for r. It returns 0 while unconfigured.
func (t *Tracker) RecordTime(r Record) float64 {
	if t.state == StateUnconfigured {
		return 0
	}

	start := int64(r.Index)*int64(t.samplesPerRecord) - int64(t.overlap)

	return float64(start+int64(t.DetectSampleOffset())) / t.cfg.SampleRate
}

// BandResponseDB returns the magnitude response in dB of the low and high
// analysis bands at freqHz. It returns 0, 0 while unconfigured.
func (t *Tracker) BandResponseDB(freqHz float64) (lo, hi float64) {
	if t.state == StateUnconfigured {
		return 0, 0
	}

	lo = t.loHP.MagnitudeDB(freqHz) + t.loLP.MagnitudeDB(freqHz)
	hi = t.hiHP.MagnitudeDB(freqHz) + t.hiLP.MagnitudeDB(freqHz)

	return lo, hi
}
