package vocab

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEmptyWord is returned when toggling a blank word.
	ErrEmptyWord = errors.New("word is empty")
	// ErrUnknownOutcome is returned for review outcomes other than KNOWN and FORGOT.
	ErrUnknownOutcome = errors.New("unknown review outcome")
	// ErrReviewFinished is returned when answering past the last card.
	ErrReviewFinished = errors.New("review session finished")
)

// NotFoundError is returned when a word is not in the saved set.
type NotFoundError struct {
	Word string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("word %q is not saved", e.Word)
}

// WordDefinition is the enrichment returned by a dictionary lookup.
type WordDefinition struct {
	Word        string `json:"word"`
	Phonetic    string `json:"phonetic"`
	Definition  string `json:"definition"`
	Translation string `json:"translation"`
	Example     string `json:"example,omitempty"`
}

// SavedWord is a vocabulary entry with its review state. AddedAt and
// NextReview are Unix milliseconds.
type SavedWord struct {
	Word        string `json:"word"`
	SessionID   string `json:"sessionId"`
	AddedAt     int64  `json:"addedAt"`
	NextReview  int64  `json:"nextReview"`
	Stage       int    `json:"stage"`
	Definition  string `json:"definition,omitempty"`
	Translation string `json:"translation,omitempty"`
	Phonetic    string `json:"phonetic,omitempty"`
}

// Key is the case-folded identity of the word.
func (w SavedWord) Key() string {
	return Key(w.Word)
}

// NextReviewTime converts NextReview to a time.Time.
func (w SavedWord) NextReviewTime() time.Time {
	return time.UnixMilli(w.NextReview)
}

// Key case-folds a word for lookups in the saved set.
func Key(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// Outcome is the learner's answer for a review card.
type Outcome string

const (
	Known  Outcome = "KNOWN"
	Forgot Outcome = "FORGOT"
)

// ParseOutcome accepts an outcome name in any case.
func ParseOutcome(s string) (Outcome, error) {
	switch o := Outcome(strings.ToUpper(strings.TrimSpace(s))); o {
	case Known, Forgot:
		return o, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOutcome, s)
}
