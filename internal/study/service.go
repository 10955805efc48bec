package study

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lexiqai/echolisten/internal/observability"
	"github.com/lexiqai/echolisten/internal/session"
	"github.com/lexiqai/echolisten/internal/transcript"
	"github.com/lexiqai/echolisten/internal/vocab"
)

var (
	// ErrNoTranscriber is returned by Import when no ASR provider is configured.
	ErrNoTranscriber = errors.New("no transcription provider configured")
	// ErrNoDefiner is returned by Lookup when no dictionary provider is configured.
	ErrNoDefiner = errors.New("no lookup provider configured")
	// ErrNoPronouncer is returned by Pronounce when speech synthesis is disabled.
	ErrNoPronouncer = errors.New("pronunciation is not configured")
	// ErrNoSpeech is returned when the recognizer found no words.
	ErrNoSpeech = errors.New("no transcription data returned")
)

// Transcriber turns an audio file into timed words.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]transcript.WordTiming, error)
	Name() string
}

// Definer looks up a word, optionally in the sentence it was heard in.
type Definer interface {
	Define(ctx context.Context, word, sentence string) (vocab.WordDefinition, error)
}

// Pronouncer synthesizes a spoken rendition of a word.
type Pronouncer interface {
	Pronounce(ctx context.Context, word string) ([]byte, error)
}

// DurationProbe reports the playable length of an audio file in seconds.
type DurationProbe func(path string) (float64, error)

// Options wires a Service. Only Repository and Scheduler are required.
type Options struct {
	Repository  Repository
	Scheduler   *vocab.Scheduler
	Transcriber Transcriber
	Definer     Definer
	Pronouncer  Pronouncer
	Probe       DurationProbe
	NewID       func() string
	Logger      *zerolog.Logger
}

// Service runs every learner action as a single load, compute, save unit
// over the repository.
type Service struct {
	mu          sync.Mutex
	repo        Repository
	sched       *vocab.Scheduler
	transcriber Transcriber
	definer     Definer
	pronouncer  Pronouncer
	probe       DurationProbe
	newID       func() string
	logger      zerolog.Logger
}

// NewService creates a study service.
func NewService(opts Options) (*Service, error) {
	if opts.Repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if opts.Scheduler == nil {
		return nil, fmt.Errorf("scheduler is required")
	}

	s := &Service{
		repo:        opts.Repository,
		sched:       opts.Scheduler,
		transcriber: opts.Transcriber,
		definer:     opts.Definer,
		pronouncer:  opts.Pronouncer,
		probe:       opts.Probe,
		newID:       opts.NewID,
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.New().String() }
	}
	if opts.Logger != nil {
		s.logger = *opts.Logger
	} else {
		s.logger = observability.GetLogger()
	}
	return s, nil
}

// Scheduler returns the review scheduler in use.
func (s *Service) Scheduler() *vocab.Scheduler {
	return s.sched
}

// Ping checks the repository.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// HasTranscriber reports whether imports are possible.
func (s *Service) HasTranscriber() bool {
	return s.transcriber != nil
}

func (s *Service) load(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.repo.Load(ctx)
	if err != nil {
		return State{}, fmt.Errorf("load state: %w", err)
	}
	return state.orEmpty(), nil
}

// update applies fn to freshly loaded state and saves the result. Nothing is
// saved when fn fails.
func (s *Service) update(ctx context.Context, fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	state = state.orEmpty()
	if err := fn(&state); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, state); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// ImportRequest describes an audio file to transcribe and segment.
type ImportRequest struct {
	// ID of the new session; generated when empty.
	ID        string
	AudioPath string
	Title     string
	Method    transcript.Method
	RuleValue float64
}

// Import transcribes the audio file, slices the words and stores a new
// session at the front of the library. Nothing is stored on failure or
// cancellation.
func (s *Service) Import(ctx context.Context, req ImportRequest) (session.AudioSession, error) {
	// reject bad slicing parameters before paying for transcription
	if _, err := transcript.Slice(nil, req.Method, req.RuleValue); err != nil {
		return session.AudioSession{}, err
	}
	if s.transcriber == nil {
		return session.AudioSession{}, ErrNoTranscriber
	}

	id := req.ID
	if id == "" {
		id = s.newID()
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = session.TitleFromFilename(req.AudioPath)
	}

	logger := s.logger.With().
		Str("session_id", id).
		Str("provider", s.transcriber.Name()).
		Str("method", req.Method.String()).
		Logger()
	tracker := observability.NewImportMetrics(s.transcriber.Name())

	logger.Info().Str("path", req.AudioPath).Msg("Transcribing audio")
	tracker.RecordTranscriptionStart()
	words, err := s.transcriber.Transcribe(ctx, req.AudioPath)
	tracker.RecordTranscriptionEnd(err == nil)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		tracker.RecordImportEnd(false)
		logger.Error().Err(err).Msg("Transcription failed")
		return session.AudioSession{}, fmt.Errorf("transcribe: %w", err)
	}
	if len(words) == 0 {
		tracker.RecordImportEnd(false)
		return session.AudioSession{}, ErrNoSpeech
	}

	segments, err := transcript.Slice(words, req.Method, req.RuleValue)
	if err != nil {
		tracker.RecordImportEnd(false)
		logger.Error().Err(err).Msg("Slicing failed")
		return session.AudioSession{}, err
	}
	observability.RecordSegments(req.Method.String(), len(segments))

	var duration float64
	if s.probe != nil {
		d, err := s.probe(req.AudioPath)
		if err != nil {
			logger.Debug().Err(err).Msg("Duration probe failed, using transcript end")
		}
		duration = d
	}

	sess := session.New(id, title, s.transcriber.Name(), segments, duration)
	if err := s.update(ctx, func(st *State) error {
		if session.Find(st.Sessions, id) >= 0 {
			return fmt.Errorf("session %s already exists", id)
		}
		st.Sessions = session.Add(st.Sessions, sess)
		return nil
	}); err != nil {
		tracker.RecordImportEnd(false)
		return session.AudioSession{}, err
	}

	tracker.RecordImportEnd(true)
	logger.Info().
		Int("words", len(words)).
		Int("segments", len(segments)).
		Float64("duration", sess.Duration).
		Msg("Session imported")
	return sess, nil
}

// Sessions lists the library, newest first.
func (s *Service) Sessions(ctx context.Context) ([]session.AudioSession, error) {
	state, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return state.Sessions, nil
}

// SearchSessions filters the library by title or subtitle.
func (s *Service) SearchSessions(ctx context.Context, query string) ([]session.AudioSession, error) {
	sessions, err := s.Sessions(ctx)
	if err != nil {
		return nil, err
	}
	return session.Search(sessions, query), nil
}

// Session returns one session.
func (s *Service) Session(ctx context.Context, id string) (session.AudioSession, error) {
	state, err := s.load(ctx)
	if err != nil {
		return session.AudioSession{}, err
	}
	return session.Get(state.Sessions, id)
}

// Blocks returns the dialogue blocks of a session.
func (s *Service) Blocks(ctx context.Context, id string) ([]transcript.DialogueBlock, error) {
	sess, err := s.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.Blocks(), nil
}

// UpdateSession merges client-editable fields.
func (s *Service) UpdateSession(ctx context.Context, id string, u session.Update) (session.AudioSession, error) {
	var updated session.AudioSession
	err := s.update(ctx, func(st *State) error {
		sessions, err := session.Apply(st.Sessions, id, u)
		if err != nil {
			return err
		}
		st.Sessions = sessions
		updated, _ = session.Get(sessions, id)
		return nil
	})
	return updated, err
}

// DeleteSession removes a session. Its saved words stay in the vocabulary.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	err := s.update(ctx, func(st *State) error {
		sessions, err := session.Delete(st.Sessions, id)
		if err != nil {
			return err
		}
		st.Sessions = sessions
		return nil
	})
	if err == nil {
		s.logger.Info().Str("session_id", id).Msg("Session deleted")
	}
	return err
}

// EditSegment replaces the text of one segment.
func (s *Service) EditSegment(ctx context.Context, id, segmentID, text string) (transcript.Segment, error) {
	var edited transcript.Segment
	err := s.update(ctx, func(st *State) error {
		sessions, err := session.EditSegmentText(st.Sessions, id, segmentID, text)
		if err != nil {
			return err
		}
		st.Sessions = sessions
		sess, _ := session.Get(sessions, id)
		edited = sess.Segments[sess.SegmentIndex(segmentID)]
		return nil
	})
	return edited, err
}

// MarkPlayed stamps the session's last playback time.
func (s *Service) MarkPlayed(ctx context.Context, id string) error {
	return s.update(ctx, func(st *State) error {
		sessions, err := session.MarkPlayed(st.Sessions, id, s.sched.Now())
		if err != nil {
			return err
		}
		st.Sessions = sessions
		return nil
	})
}
