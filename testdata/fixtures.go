// Package testdata holds recorded hand-landmark sequences for tests. Each
// file has one detector response per line, in the format read by
// landmark.Decode.
package testdata

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"

	"github.com/ayusman/mudra/internal/detector/landmark"
)

//go:embed hands/*.jsonl
var handsFS embed.FS

// Sequence names.
const (
	Fist     = "fist"
	OpenPalm = "open_palm"
	Pointing = "pointing"
	// Session is a longer recording: fist, a one-frame index flicker,
	// pointing, three frames without a hand, one frame with missing
	// landmarks, peace sign, open palm, fist.
	Session = "session"
)

// LoadSequence returns the per-frame detector output of a recording.
// Frames where no complete hand was seen are empty slices.
func LoadSequence(name string) ([][]landmark.Hand, error) {
	data, err := handsFS.ReadFile("hands/" + name + ".jsonl")
	if err != nil {
		return nil, fmt.Errorf("load sequence %s: %w", name, err)
	}

	var frames [][]landmark.Hand
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; sc.Scan(); line++ {
		if len(bytes.TrimSpace(sc.Bytes())) == 0 {
			continue
		}
		hands, err := landmark.Decode(sc.Bytes())
		if err != nil {
			return nil, fmt.Errorf("sequence %s line %d: %w", name, line, err)
		}
		frames = append(frames, hands)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read sequence %s: %w", name, err)
	}
	return frames, nil
}

// MustLoadSequence is LoadSequence for tests; it panics on error.
func MustLoadSequence(name string) [][]landmark.Hand {
	frames, err := LoadSequence(name)
	if err != nil {
		panic(err)
	}
	return frames
}
