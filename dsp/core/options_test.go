package core

import "testing"

func TestApplyProcessorOptions(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(48000))
	if cfg.SampleRate != 48000 {
		t.Fatalf("sample rate = %v, want 48000", cfg.SampleRate)
	}
	if got := cfg.Nyquist(); got != 24000 {
		t.Fatalf("Nyquist() = %v, want 24000", got)
	}
}

func TestInvalidOptionsIgnored(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(0), WithSampleRate(-1), nil)
	if cfg != DefaultProcessorConfig() {
		t.Fatalf("cfg = %#v, want defaults", cfg)
	}
}

func TestFill(t *testing.T) {
	buf := make([]float64, 6)
	Fill(buf, 0.25)
	for i, v := range buf {
		if v != 0.25 {
			t.Fatalf("buf[%d] = %v, want 0.25", i, v)
		}
	}

	Fill(nil, 1)
}
