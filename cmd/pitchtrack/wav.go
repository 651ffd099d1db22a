package main

import (
	"fmt"
	"io"
	"os"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

const streamBlock = 4096

// readWAV decodes a WAV file into mono samples, averaging the channels.
func readWAV(path string) ([]float64, float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	return decodeWAV(f)
}

func decodeWAV(r io.Reader) ([]float64, float64, error) {
	s, format, err := wav.Decode(r)
	if err != nil {
		return nil, 0, fmt.Errorf("decode wav: %w", err)
	}
	defer s.Close()

	var out []float64
	buf := make([][2]float64, streamBlock)

	for {
		n, ok := s.Stream(buf)
		for _, frame := range buf[:n] {
			out = append(out, (frame[0]+frame[1])/2)
		}

		if !ok {
			break
		}
	}

	if err := s.Err(); err != nil {
		return nil, 0, fmt.Errorf("decode wav: %w", err)
	}

	return out, float64(format.SampleRate), nil
}

// writeWAV encodes mono samples as a 16-bit WAV file.
func writeWAV(path string, samples []float64, sampleRate float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := encodeWAV(f, samples, sampleRate); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func encodeWAV(w io.WriteSeeker, samples []float64, sampleRate float64) error {
	format := beep.Format{
		SampleRate:  beep.SampleRate(int(sampleRate + 0.5)),
		NumChannels: 1,
		Precision:   2,
	}

	if err := wav.Encode(w, &sliceStreamer{samples: samples}, format); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}

	return nil
}

// sliceStreamer streams a mono slice on both channels.
type sliceStreamer struct {
	samples []float64
	pos     int
}

func (s *sliceStreamer) Stream(buf [][2]float64) (int, bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}

	n := copy2(buf, s.samples[s.pos:])
	s.pos += n

	return n, true
}

func (s *sliceStreamer) Err() error { return nil }

func copy2(dst [][2]float64, src []float64) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = [2]float64{src[i], src[i]}
	}

	return n
}
