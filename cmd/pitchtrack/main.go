// Command pitchtrack analyses WAV files with the streaming pitch tracker and
// generates test tones.
//
// Usage:
//
//	pitchtrack analyze [flags] <file.wav>
//	pitchtrack tone [flags] <out.wav>
//	pitchtrack response [flags]
//	pitchtrack windows [flags]
//	pitchtrack config
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
