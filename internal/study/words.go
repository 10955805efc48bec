package study

import (
	"context"
	"errors"

	"github.com/lexiqai/echolisten/internal/observability"
	"github.com/lexiqai/echolisten/internal/transcript"
	"github.com/lexiqai/echolisten/internal/vocab"
)

// errUnchanged aborts an update without saving.
var errUnchanged = errors.New("unchanged")

// Words lists saved words in insertion order.
func (s *Service) Words(ctx context.Context) ([]vocab.SavedWord, error) {
	state, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return state.Words, nil
}

// Folders groups saved words by the session they were saved from.
func (s *Service) Folders(ctx context.Context) ([]vocab.Folder, error) {
	words, err := s.Words(ctx)
	if err != nil {
		return nil, err
	}
	return vocab.Folders(words), nil
}

// DueWords lists words whose review time has passed.
func (s *Service) DueWords(ctx context.Context) ([]vocab.SavedWord, error) {
	words, err := s.Words(ctx)
	if err != nil {
		return nil, err
	}
	return s.sched.Due(words), nil
}

// ToggleResult reports what ToggleWord did.
type ToggleResult struct {
	Added bool            `json:"added"`
	Word  vocab.SavedWord `json:"word"`
}

// ToggleWord saves word, or removes it when any casing of it is saved.
func (s *Service) ToggleWord(ctx context.Context, word, sessionID string, def *vocab.WordDefinition) (ToggleResult, error) {
	var result ToggleResult
	err := s.update(ctx, func(st *State) error {
		if i := vocab.Find(st.Words, word); i >= 0 {
			result.Word = st.Words[i]
		}
		words, added, err := vocab.Toggle(st.Words, word, sessionID, def, s.sched)
		if err != nil {
			return err
		}
		if added {
			result.Word = words[len(words)-1]
		}
		result.Added = added
		st.Words = words
		return nil
	})
	if err != nil {
		return ToggleResult{}, err
	}

	action := "removed"
	if result.Added {
		action = "added"
	}
	observability.RecordWordToggle(action)
	s.logger.Debug().Str("word", word).Str("action", action).Msg("Word toggled")
	return result, nil
}

// UpdateWord merges fields into a saved word.
func (s *Service) UpdateWord(ctx context.Context, word string, u vocab.WordUpdate) (vocab.SavedWord, error) {
	var updated vocab.SavedWord
	err := s.update(ctx, func(st *State) error {
		words, err := vocab.Update(st.Words, word, u)
		if err != nil {
			return err
		}
		st.Words = words
		updated = words[vocab.Find(words, word)]
		return nil
	})
	return updated, err
}

// Review records an answer for a saved word and reschedules it.
func (s *Service) Review(ctx context.Context, word string, outcome vocab.Outcome) (vocab.SavedWord, error) {
	var reviewed vocab.SavedWord
	err := s.update(ctx, func(st *State) error {
		i := vocab.Find(st.Words, word)
		if i < 0 {
			return &vocab.NotFoundError{Word: word}
		}
		next, err := s.sched.Review(st.Words[i], outcome)
		if err != nil {
			return err
		}
		words, err := vocab.Replace(st.Words, next)
		if err != nil {
			return err
		}
		st.Words = words
		reviewed = next
		return nil
	})
	if err != nil {
		return vocab.SavedWord{}, err
	}

	observability.RecordReview(string(outcome))
	s.logger.Debug().
		Str("word", reviewed.Word).
		Str("outcome", string(outcome)).
		Int("stage", reviewed.Stage).
		Msg("Word reviewed")
	return reviewed, nil
}

// StartReview snapshots the currently due words into a review session.
// Answers from the session are persisted with SaveReview.
func (s *Service) StartReview(ctx context.Context) (*vocab.ReviewSession, error) {
	words, err := s.Words(ctx)
	if err != nil {
		return nil, err
	}
	return vocab.NewReviewSession(s.sched, words), nil
}

// SaveReview stores the review state of a word answered in a review session.
// Only stage and next review time are written; enrichment saved since the
// session started is kept.
func (s *Service) SaveReview(ctx context.Context, reviewed vocab.SavedWord, outcome vocab.Outcome) error {
	err := s.update(ctx, func(st *State) error {
		words, err := vocab.Update(st.Words, reviewed.Word, vocab.WordUpdate{
			Stage:      &reviewed.Stage,
			NextReview: &reviewed.NextReview,
		})
		if err != nil {
			return err
		}
		st.Words = words
		return nil
	})
	if err == nil {
		observability.RecordReview(string(outcome))
	}
	return err
}

// Lookup defines a clicked token. When the word is already saved without a
// definition, the result is stored on it.
func (s *Service) Lookup(ctx context.Context, token, sentence string) (vocab.WordDefinition, error) {
	word := transcript.CleanToken(token)
	if word == "" {
		return vocab.WordDefinition{}, vocab.ErrEmptyWord
	}
	if s.definer == nil {
		return vocab.WordDefinition{}, ErrNoDefiner
	}

	def, err := s.definer.Define(ctx, word, sentence)
	if err != nil {
		observability.RecordLookup("error")
		s.logger.Warn().Err(err).Str("word", word).Msg("Lookup failed")
		return vocab.WordDefinition{}, err
	}
	observability.RecordLookup("success")

	err = s.update(ctx, func(st *State) error {
		i := vocab.Find(st.Words, word)
		if i < 0 || st.Words[i].Definition != "" {
			return errUnchanged
		}
		words, err := vocab.Update(st.Words, word, vocab.FromDefinition(def))
		if err != nil {
			return err
		}
		st.Words = words
		return nil
	})
	if err != nil && !errors.Is(err, errUnchanged) {
		s.logger.Warn().Err(err).Str("word", word).Msg("Failed to store definition")
	}
	return def, nil
}

// Pronounce returns synthesized audio for a word.
func (s *Service) Pronounce(ctx context.Context, word string) ([]byte, error) {
	if s.pronouncer == nil {
		return nil, ErrNoPronouncer
	}
	word = transcript.CleanToken(word)
	if word == "" {
		return nil, vocab.ErrEmptyWord
	}
	return s.pronouncer.Pronounce(ctx, word)
}
