package level

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-pitch/internal/testutil"
)

func TestMeterSine(t *testing.T) {
	m := NewMeter(WithSampleRate(48000))

	// 1 kHz at 48 kHz: 480 samples hold exactly ten periods.
	r := m.Process(testutil.DeterministicSine(1000, 48000, 0.5, 480))

	if math.Abs(r.RMS-0.5/math.Sqrt2) > 1e-9 {
		t.Fatalf("RMS = %v, want %v", r.RMS, 0.5/math.Sqrt2)
	}
	if math.Abs(r.DB-(-9.0309)) > 1e-3 {
		t.Fatalf("DB = %v, want -9.03", r.DB)
	}
	if math.Abs(r.Peak-0.5) > 1e-9 {
		t.Fatalf("Peak = %v, want 0.5", r.Peak)
	}
	if !r.SoundDetected {
		t.Fatal("sine above zero floor not detected")
	}
	if m.Last() != r {
		t.Fatal("Last() does not match the returned reading")
	}
}

func TestMeterReference(t *testing.T) {
	m := NewMeter(WithReference(0.1))

	r := m.Process(testutil.DC(0.1, 64))
	if math.Abs(r.DB) > 1e-9 {
		t.Fatalf("DB = %v, want 0 at reference amplitude", r.DB)
	}
}

func TestMeterSilenceAndEmpty(t *testing.T) {
	m := NewMeter()

	if !math.IsInf(m.Last().DB, -1) {
		t.Fatalf("initial DB = %v, want -Inf", m.Last().DB)
	}

	r := m.Process(make([]float64, 128))
	if r.SoundDetected || r.RMS != 0 || !math.IsInf(r.DB, -1) {
		t.Fatalf("silence reading = %+v", r)
	}

	loud := m.Process(testutil.DC(0.3, 16))
	if got := m.Process(nil); got != loud {
		t.Fatalf("empty block reading = %+v, want previous %+v", got, loud)
	}
}

func TestMeterNoiseFloor(t *testing.T) {
	m := NewMeter(WithNoiseFloor(0.2))

	if m.Process(testutil.DC(0.1, 32)).SoundDetected {
		t.Fatal("block below floor detected as sound")
	}
	if !m.Process(testutil.DC(0.3, 32)).SoundDetected {
		t.Fatal("block above floor not detected")
	}

	m.SetNoiseFloor(-1)
	if m.NoiseFloor() != 0.2 {
		t.Fatalf("negative floor accepted: %v", m.NoiseFloor())
	}
}

func TestMeterCalibration(t *testing.T) {
	m := NewMeter(WithSampleRate(1000), WithCalibration(1, 1.21))

	if err := m.StartCalibration(); err != nil {
		t.Fatal(err)
	}
	if !m.Calibrating() {
		t.Fatal("Calibrating() = false after start")
	}

	levels := []float64{0.01, 0.05, 0.02, 0.03}
	var last Reading
	for _, lvl := range levels {
		last = m.Process(testutil.DC(lvl, 250))
	}

	if !last.Calibrated || m.Calibrating() {
		t.Fatalf("calibration not completed after 1 s: %+v", last)
	}
	if want := 0.05 * 1.21; math.Abs(m.NoiseFloor()-want) > 1e-12 {
		t.Fatalf("NoiseFloor() = %v, want %v", m.NoiseFloor(), want)
	}

	if m.Process(testutil.DC(0.06, 100)).SoundDetected {
		t.Fatal("noise at 0.06 detected above calibrated floor")
	}
	if !m.Process(testutil.DC(0.07, 100)).SoundDetected {
		t.Fatal("0.07 not detected above calibrated floor")
	}

	m.Reset()
	if m.Calibrating() || !math.IsInf(m.Last().DB, -1) {
		t.Fatal("Reset did not clear state")
	}
}

func TestCalibrator(t *testing.T) {
	if _, err := NewCalibrator(0, 1, 1.21); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := NewCalibrator(1000, 1, 0.5); err == nil {
		t.Fatal("expected error for fudge below 1")
	}

	c, err := NewCalibrator(100, 1, 2)
	if err != nil {
		t.Fatal(err)
	}

	if c.Observe(0.1, 60) {
		t.Fatal("done before the span")
	}
	if math.Abs(c.Progress()-0.6) > 1e-12 {
		t.Fatalf("Progress() = %v, want 0.6", c.Progress())
	}
	if !c.Observe(0.05, 40) {
		t.Fatal("not done at the span")
	}
	if c.Floor() != 0.2 || c.Ceiling() != 0.1 {
		t.Fatalf("Floor/Ceiling = %v/%v, want 0.2/0.1", c.Floor(), c.Ceiling())
	}

	c.Observe(1, 10)
	if c.Ceiling() != 0.1 {
		t.Fatal("observation after completion changed the ceiling")
	}

	c.Reset()
	if c.Done() || c.Floor() != 0 || !math.IsInf(c.Ceiling(), -1) {
		t.Fatal("Reset did not restart calibration")
	}
}
