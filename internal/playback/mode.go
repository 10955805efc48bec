package playback

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Mode decides what plays after a segment ends.
type Mode string

const (
	ListLoop   Mode = "LIST_LOOP"
	SingleLoop Mode = "SINGLE_LOOP"
	Shuffle    Mode = "SHUFFLE"
)

// ParseMode accepts a mode name in any case. Empty means LIST_LOOP.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToUpper(strings.TrimSpace(s))); m {
	case ListLoop, SingleLoop, Shuffle:
		return m, nil
	case "":
		return ListLoop, nil
	default:
		return "", fmt.Errorf("unknown playback mode: %q", s)
	}
}

// Next cycles LIST_LOOP, SINGLE_LOOP, SHUFFLE.
func (m Mode) Next() Mode {
	switch m {
	case ListLoop:
		return SingleLoop
	case SingleLoop:
		return Shuffle
	default:
		return ListLoop
	}
}

// NextSegment returns the segment to play after current ends, or false when
// playback should stop. rnd may be nil.
func NextSegment(mode Mode, current, n int, rnd *rand.Rand) (int, bool) {
	if n <= 0 {
		return 0, false
	}
	switch mode {
	case SingleLoop:
		if current < 0 || current >= n {
			return 0, true
		}
		return current, true
	case Shuffle:
		if rnd == nil {
			return rand.IntN(n), true
		}
		return rnd.IntN(n), true
	default:
		if current+1 < n {
			return current + 1, true
		}
		return 0, false
	}
}
