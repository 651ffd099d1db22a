package pitch_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-pitch/dsp/pitch"
)

func ExamplePitchToNote() {
	note, cents, ok := pitch.PitchToNote(440)
	fmt.Println(note, cents, ok)

	// Output:
	// 69 0 true
}

func ExampleSearch_DetectPitch() {
	s, err := pitch.NewSearch(44100, 50, 1600, 0.01)
	if err != nil {
		panic(err)
	}

	win := make([]float64, s.MinWindowLen())
	for i := range win {
		win[i] = 0.5 * math.Sin(2*math.Pi*220*float64(i)/44100)
	}

	hz := s.DetectPitch(win, win, len(win))
	note, _, _ := pitch.PitchToNote(hz)
	fmt.Println(math.Abs(hz-220) < 1, note)

	// Output:
	// true 57
}
