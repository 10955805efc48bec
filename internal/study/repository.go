package study

import (
	"context"

	"github.com/lexiqai/echolisten/internal/session"
	"github.com/lexiqai/echolisten/internal/vocab"
)

// State is everything the learner has persisted: the session library, newest
// first, and the saved words in insertion order.
type State struct {
	Sessions []session.AudioSession `json:"sessions"`
	Words    []vocab.SavedWord      `json:"words"`
}

// orEmpty replaces nil lists so callers always see JSON arrays.
func (s State) orEmpty() State {
	if s.Sessions == nil {
		s.Sessions = []session.AudioSession{}
	}
	if s.Words == nil {
		s.Words = []vocab.SavedWord{}
	}
	return s
}

// Repository loads and saves the whole State. Save replaces what was stored.
type Repository interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
	Ping(ctx context.Context) error
}
