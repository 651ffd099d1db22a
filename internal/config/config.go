// Package config loads the settings of the pitchtrack command from defaults,
// an optional YAML file, a .env file and PITCHTRACK_* environment variables,
// in increasing order of precedence. Command-line flags bound to the same
// viper instance override all of them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-pitch/dsp/pitch/tracker"
	"github.com/cwbudde/algo-pitch/dsp/window"
	"github.com/cwbudde/algo-pitch/measure/level"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "PITCHTRACK"

// Output formats accepted by the report writer.
var OutputFormats = []string{"table", "json", "yaml", "csv"}

// Config is the complete command configuration.
type Config struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogPretty bool   `mapstructure:"log_pretty" yaml:"log_pretty"`
	Output    string `mapstructure:"output" yaml:"output"`

	Tracker  TrackerConfig  `mapstructure:"tracker" yaml:"tracker"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Level    LevelConfig    `mapstructure:"level" yaml:"level"`
}

// TrackerConfig mirrors the pitch tracker parameters.
type TrackerConfig struct {
	// SampleRate is used where the input carries none, e.g. generated tones.
	SampleRate           float64 `mapstructure:"sample_rate" yaml:"sample_rate"`
	DetectLevelThreshold float64 `mapstructure:"detect_level_threshold" yaml:"detect_level_threshold"`
	RecordsPerSecond     int     `mapstructure:"records_per_second" yaml:"records_per_second"`
	RecordHistory        bool    `mapstructure:"record_history" yaml:"record_history"`
	HistoryCapacity      int     `mapstructure:"history_capacity" yaml:"history_capacity"`
	MaxPitchRate         float64 `mapstructure:"max_pitch_rate" yaml:"max_pitch_rate"`
}

// AnalysisConfig controls how input is fed and which spectra are computed.
type AnalysisConfig struct {
	ChunkSize         int    `mapstructure:"chunk_size" yaml:"chunk_size"`
	FFTSize           int    `mapstructure:"fft_size" yaml:"fft_size"`
	Window            string `mapstructure:"window" yaml:"window"`
	Harmonics         int    `mapstructure:"harmonics" yaml:"harmonics"`
	HarmonicHalfWidth int    `mapstructure:"harmonic_half_width" yaml:"harmonic_half_width"`
}

// LevelConfig controls the level meter.
type LevelConfig struct {
	Reference          float64 `mapstructure:"reference" yaml:"reference"`
	NoiseFloor         float64 `mapstructure:"noise_floor" yaml:"noise_floor"`
	CalibrationSeconds float64 `mapstructure:"calibration_seconds" yaml:"calibration_seconds"`
	FudgeFactor        float64 `mapstructure:"fudge_factor" yaml:"fudge_factor"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		LogLevel: "info",
		Output:   "table",
		Tracker: TrackerConfig{
			SampleRate:           44100,
			DetectLevelThreshold: tracker.DefaultDetectLevelThreshold,
			RecordsPerSecond:     tracker.DefaultRecordsPerSecond,
			MaxPitchRate:         tracker.DefaultMaxPitchRate,
		},
		Analysis: AnalysisConfig{
			ChunkSize:         1024,
			FFTSize:           4096,
			Window:            "blackman-harris",
			Harmonics:         7,
			HarmonicHalfWidth: 0,
		},
		Level: LevelConfig{
			Reference:          level.DefaultReference,
			CalibrationSeconds: level.DefaultCalibrationSeconds,
			FudgeFactor:        level.DefaultFudgeFactor,
		},
	}
}

// SetDefaults registers Defaults() on v so environment variables and flags
// resolve against known keys.
func SetDefaults(v *viper.Viper) {
	d := Defaults()

	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_pretty", d.LogPretty)
	v.SetDefault("output", d.Output)

	v.SetDefault("tracker.sample_rate", d.Tracker.SampleRate)
	v.SetDefault("tracker.detect_level_threshold", d.Tracker.DetectLevelThreshold)
	v.SetDefault("tracker.records_per_second", d.Tracker.RecordsPerSecond)
	v.SetDefault("tracker.record_history", d.Tracker.RecordHistory)
	v.SetDefault("tracker.history_capacity", d.Tracker.HistoryCapacity)
	v.SetDefault("tracker.max_pitch_rate", d.Tracker.MaxPitchRate)

	v.SetDefault("analysis.chunk_size", d.Analysis.ChunkSize)
	v.SetDefault("analysis.fft_size", d.Analysis.FFTSize)
	v.SetDefault("analysis.window", d.Analysis.Window)
	v.SetDefault("analysis.harmonics", d.Analysis.Harmonics)
	v.SetDefault("analysis.harmonic_half_width", d.Analysis.HarmonicHalfWidth)

	v.SetDefault("level.reference", d.Level.Reference)
	v.SetDefault("level.noise_floor", d.Level.NoiseFloor)
	v.SetDefault("level.calibration_seconds", d.Level.CalibrationSeconds)
	v.SetDefault("level.fudge_factor", d.Level.FudgeFactor)
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}

	return nil
}

// Load resolves the configuration on v. path names an optional YAML file;
// an empty path skips the file.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if !validOutput(c.Output) {
		return fmt.Errorf("config: output must be one of %s: %q", strings.Join(OutputFormats, ", "), c.Output)
	}

	t := c.Tracker
	if t.SampleRate <= 0 {
		return fmt.Errorf("config: tracker.sample_rate must be > 0: %v", t.SampleRate)
	}

	if t.DetectLevelThreshold < tracker.MinDetectLevelThreshold || t.DetectLevelThreshold > tracker.MaxDetectLevelThreshold {
		return fmt.Errorf("config: tracker.detect_level_threshold must be in [%g, %g]: %v",
			tracker.MinDetectLevelThreshold, tracker.MaxDetectLevelThreshold, t.DetectLevelThreshold)
	}

	if t.RecordsPerSecond < tracker.MinRecordsPerSecond || t.RecordsPerSecond > tracker.MaxRecordsPerSecond {
		return fmt.Errorf("config: tracker.records_per_second must be in [%d, %d]: %d",
			tracker.MinRecordsPerSecond, tracker.MaxRecordsPerSecond, t.RecordsPerSecond)
	}

	if t.HistoryCapacity < 0 {
		return fmt.Errorf("config: tracker.history_capacity must be >= 0: %d", t.HistoryCapacity)
	}

	if t.MaxPitchRate <= 0 {
		return fmt.Errorf("config: tracker.max_pitch_rate must be > 0: %v", t.MaxPitchRate)
	}

	a := c.Analysis
	if a.ChunkSize <= 0 {
		return fmt.Errorf("config: analysis.chunk_size must be > 0: %d", a.ChunkSize)
	}

	if a.FFTSize < 16 || a.FFTSize&(a.FFTSize-1) != 0 {
		return fmt.Errorf("config: analysis.fft_size must be a power of two >= 16: %d", a.FFTSize)
	}

	if _, err := window.ParseType(a.Window); err != nil {
		return fmt.Errorf("config: analysis.window: %w", err)
	}

	if a.Harmonics < 0 || a.HarmonicHalfWidth < 0 {
		return fmt.Errorf("config: analysis.harmonics and harmonic_half_width must be >= 0")
	}

	l := c.Level
	if l.Reference <= 0 || l.NoiseFloor < 0 || l.CalibrationSeconds <= 0 || l.FudgeFactor < 1 {
		return fmt.Errorf("config: level settings out of range: %+v", l)
	}

	return nil
}

// TrackerOptions converts the tracker section into tracker options.
func (c Config) TrackerOptions(sampleRate float64) []tracker.Option {
	opts := []tracker.Option{
		tracker.WithSampleRate(sampleRate),
		tracker.WithDetectLevelThreshold(c.Tracker.DetectLevelThreshold),
		tracker.WithRecordsPerSecond(c.Tracker.RecordsPerSecond),
		tracker.WithMaxPitchRate(c.Tracker.MaxPitchRate),
	}

	if c.Tracker.RecordHistory {
		opts = append(opts, tracker.WithRecordHistory(c.Tracker.HistoryCapacity))
	}

	return opts
}

// LevelOptions converts the level section into meter options.
func (c Config) LevelOptions(sampleRate float64) []level.MeterOption {
	return []level.MeterOption{
		level.WithSampleRate(sampleRate),
		level.WithReference(c.Level.Reference),
		level.WithNoiseFloor(c.Level.NoiseFloor),
		level.WithCalibration(c.Level.CalibrationSeconds, c.Level.FudgeFactor),
	}
}

// WindowType returns the parsed analysis window.
func (c Config) WindowType() window.Type {
	t, err := window.ParseType(c.Analysis.Window)
	if err != nil {
		return window.TypeBlackmanHarris
	}

	return t
}

// YAML renders the configuration as a YAML document.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

func validOutput(s string) bool {
	for _, f := range OutputFormats {
		if s == f {
			return true
		}
	}

	return false
}
