package vocab

import (
	"fmt"
	"time"
)

// DefaultIntervals are the review gaps in days, indexed by stage.
var DefaultIntervals = []int{0, 1, 2, 4, 7, 15, 30, 90}

const day = 24 * time.Hour

// Clock returns the current time.
type Clock func() time.Time

// Scheduler computes the next review time of saved words.
type Scheduler struct {
	intervals []int
	now       Clock
}

// NewScheduler creates a scheduler over the given day intervals. A nil clock
// uses time.Now.
func NewScheduler(intervals []int, now Clock) (*Scheduler, error) {
	if len(intervals) == 0 {
		return nil, fmt.Errorf("review intervals must not be empty")
	}
	for i, d := range intervals {
		if d < 0 {
			return nil, fmt.Errorf("review interval %d is negative: %d", i, d)
		}
	}
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		intervals: append([]int(nil), intervals...),
		now:       now,
	}, nil
}

// MaxStage is the highest reachable stage.
func (s *Scheduler) MaxStage() int {
	return len(s.intervals) - 1
}

// Now returns the scheduler clock reading.
func (s *Scheduler) Now() time.Time {
	return s.now()
}

// Initial returns the review state of a freshly saved word: stage 0, due one
// day from now.
func (s *Scheduler) Initial(word SavedWord) SavedWord {
	word.Stage = 0
	word.NextReview = s.now().Add(day).UnixMilli()
	return word
}

// Review applies an outcome. KNOWN advances the stage, saturating at the
// last interval; FORGOT resets it. The next review is now plus the interval
// of the resulting stage.
func (s *Scheduler) Review(word SavedWord, outcome Outcome) (SavedWord, error) {
	stage := word.Stage
	if stage < 0 {
		stage = 0
	}
	if stage > s.MaxStage() {
		stage = s.MaxStage()
	}

	switch outcome {
	case Known:
		stage = min(stage+1, s.MaxStage())
	case Forgot:
		stage = 0
	default:
		return word, fmt.Errorf("%w: %q", ErrUnknownOutcome, outcome)
	}

	word.Stage = stage
	word.NextReview = s.now().Add(time.Duration(s.intervals[stage]) * day).UnixMilli()
	return word, nil
}

// IsDue reports whether the word should be reviewed now.
func (s *Scheduler) IsDue(word SavedWord) bool {
	return word.NextReview <= s.now().UnixMilli()
}

// Due returns the words whose review time has passed, in insertion order.
func (s *Scheduler) Due(words []SavedWord) []SavedWord {
	now := s.now().UnixMilli()
	due := []SavedWord{}
	for _, w := range words {
		if w.NextReview <= now {
			due = append(due, w)
		}
	}
	return due
}
