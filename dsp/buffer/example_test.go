package buffer_test

import (
	"fmt"

	"github.com/cwbudde/algo-pitch/dsp/buffer"
)

func ExampleRing() {
	r := buffer.NewRing(4)
	r.Write([]float64{1, 2, 3})
	r.Write([]float64{4, 5})

	window := make([]float64, 3)
	if err := r.Read(window, 2); err != nil {
		panic(err)
	}

	fmt.Println(r.Start(), r.End(), window)

	// Output:
	// 1 5 [3 4 5]
}
