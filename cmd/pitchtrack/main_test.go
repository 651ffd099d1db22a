package main

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-pitch/internal/config"
	"github.com/cwbudde/algo-pitch/internal/report"
	"github.com/cwbudde/algo-pitch/internal/testutil"
)

func writeText(path, body string) error {
	return os.WriteFile(path, []byte(body), 0o600)
}

func run(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
	require.NoError(t, cmd.Execute())

	return out.String()
}

func TestAnalyzeTone(t *testing.T) {
	const rate = 44100.0

	samples := testutil.HarmonicTone(220, rate, []float64{0.5, 0.25, 0.1}, int(rate))

	rep, err := analyze(samples, rate, config.Defaults(), zerolog.Nop(), false)
	require.NoError(t, err)

	assert.Equal(t, 48, rep.Summary.Frames)
	assert.Greater(t, rep.Summary.VoicedRatio, 0.8)
	assert.InEpsilon(t, 220, rep.Summary.MedianPitch, 0.01)
	assert.Equal(t, 57, rep.Summary.MedianNote)

	f := rep.Frames[len(rep.Frames)/2]
	require.True(t, f.HasPitch())
	require.Len(t, f.Harmonics, 7)
	assert.Greater(t, f.Harmonics[0], f.Harmonics[1])
	assert.Greater(t, f.Harmonics[1], f.Harmonics[2])
	assert.InDelta(t, -7.9, f.LevelDB, 0.5)
}

func TestAnalyzeChunkInvariance(t *testing.T) {
	samples := testutil.DeterministicSine(330, 44100, 0.4, 30000)

	cfg := config.Defaults()
	whole, err := analyze(samples, 44100, cfg, zerolog.Nop(), false)
	require.NoError(t, err)

	cfg.Analysis.ChunkSize = 37
	chunked, err := analyze(samples, 44100, cfg, zerolog.Nop(), false)
	require.NoError(t, err)

	assert.Equal(t, whole.Frames, chunked.Frames)
}

func TestAnalyzeSilenceAndSpectralPitch(t *testing.T) {
	const rate = 44100.0

	silent, err := analyze(make([]float64, 20000), rate, config.Defaults(), zerolog.Nop(), false)
	require.NoError(t, err)
	assert.Zero(t, silent.Summary.Voiced)
	for _, f := range silent.Frames {
		assert.Equal(t, report.FloorDB, f.LevelDB)
		assert.Zero(t, f.SpectralPitch)
	}

	high, err := analyze(testutil.DeterministicSine(4000, rate, 0.5, 20000), rate, config.Defaults(), zerolog.Nop(), false)
	require.NoError(t, err)

	f := high.Frames[len(high.Frames)/2]
	assert.False(t, f.HasPitch())
	assert.InDelta(t, 4000, f.SpectralPitch, rate/4096)
}

func TestAnalyzeCalibration(t *testing.T) {
	const rate = 44100.0

	noise := testutil.DeterministicNoise(3, 0.01, int(rate))
	tone := testutil.DeterministicSine(220, rate, 0.5, int(rate))

	cfg := config.Defaults()
	cfg.Level.CalibrationSeconds = 0.5

	rep, err := analyze(append(noise, tone...), rate, cfg, zerolog.Nop(), true)
	require.NoError(t, err)
	assert.InEpsilon(t, 220, rep.Summary.MedianPitch, 0.01)
}

func TestToneAnalyzeCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.wav")

	run(t, "tone", path, "--freq", "440", "--duration", "1s", "--partials", "0.5,0.25")

	out := run(t, "analyze", path, "-o", "json", "--rps", "20", "--harmonics", "3")

	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, path, rep.Source)
	assert.InEpsilon(t, 440, rep.Summary.MedianPitch, 0.01)
	assert.Equal(t, 69, rep.Summary.MedianNote)
	assert.Len(t, rep.Frames, 20)
}

func TestGlideTone(t *testing.T) {
	samples, err := makeTone(44100, toneOptions{freq: 110, to: 440, duration: 2 * time.Second, amplitude: 0.5})
	require.NoError(t, err)

	rep, err := analyze(samples, 44100, config.Defaults(), zerolog.Nop(), false)
	require.NoError(t, err)
	assert.Less(t, rep.Summary.MinPitch, 150.0)
	assert.Greater(t, rep.Summary.MaxPitch, 380.0)
}

func TestMakeToneNormalizes(t *testing.T) {
	samples, err := makeTone(8000, toneOptions{freq: 200, duration: time.Second, amplitude: 0.9, partials: []float64{1, 1}, noise: 0.2})
	require.NoError(t, err)

	p := 0.0
	for _, v := range samples {
		p = math.Max(p, math.Abs(v))
	}
	assert.InDelta(t, 0.99, p, 1e-9)

	_, err = makeTone(8000, toneOptions{freq: 200})
	assert.Error(t, err)
}

func TestResponseAndWindowsCommands(t *testing.T) {
	out := run(t, "response", "--points", "5", "--from", "50", "--to", "5000")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 2+5)
	assert.Contains(t, lines[0], "Low band")

	out = run(t, "windows", "--size", "1024")
	assert.Contains(t, out, "Blackman-Harris")
	assert.Contains(t, out, "1.5000")
}

func TestConfigCommand(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "pitchtrack.yaml")
	require.NoError(t, writeText(cfgPath, "tracker:\n  records_per_second: 10\n"))

	out := run(t, "--config", cfgPath, "config")
	assert.Contains(t, out, "records_per_second: 10")

	out = run(t, "--config", cfgPath, "config", "--log-level", "debug")
	assert.Contains(t, out, "log_level: debug")
}

func TestInvalidConfigFails(t *testing.T) {
	var out bytes.Buffer

	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"config", "--output", "xml"})
	assert.Error(t, cmd.Execute())
}
