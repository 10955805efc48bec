package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/lexiqai/echolisten/internal/session"
	"github.com/lexiqai/echolisten/internal/study"
	"github.com/lexiqai/echolisten/internal/transcript"
	"github.com/lexiqai/echolisten/internal/vocab"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	title TEXT NOT NULL,
	subtitle TEXT NOT NULL,
	coverUrl TEXT NOT NULL,
	duration REAL NOT NULL,
	lastPlayed INTEGER NOT NULL,
	status TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS segments (
	sessionId TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	id TEXT NOT NULL,
	startTime REAL NOT NULL,
	endTime REAL NOT NULL,
	text TEXT NOT NULL,
	speaker INTEGER NOT NULL,
	words TEXT,
	PRIMARY KEY (sessionId, position)
);

CREATE TABLE IF NOT EXISTS saved_words (
	wordKey TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	word TEXT NOT NULL,
	sessionId TEXT NOT NULL,
	addedAt INTEGER NOT NULL,
	nextReview INTEGER NOT NULL,
	stage INTEGER NOT NULL,
	definition TEXT NOT NULL DEFAULT '',
	translation TEXT NOT NULL DEFAULT '',
	phonetic TEXT NOT NULL DEFAULT ''
);
`

// SQLite persists study state in a single SQLite database file.
type SQLite struct {
	db *sql.DB
}

// Open opens (and creates, if needed) the database at path. Use ":memory:"
// for a throwaway database.
func Open(path string) (*SQLite, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// a single connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Load reads the whole study state.
func (s *SQLite) Load(ctx context.Context) (study.State, error) {
	sessions, err := s.sessions(ctx)
	if err != nil {
		return study.State{}, err
	}
	words, err := s.words(ctx)
	if err != nil {
		return study.State{}, err
	}
	return study.State{Sessions: sessions, Words: words}, nil
}

func (s *SQLite) sessions(ctx context.Context) ([]session.AudioSession, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, subtitle, coverUrl, duration, lastPlayed, status
		FROM sessions
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []session.AudioSession{}
	index := map[string]int{}
	for rows.Next() {
		var sess session.AudioSession
		var status string
		if err := rows.Scan(&sess.ID, &sess.Title, &sess.Subtitle, &sess.CoverURL,
			&sess.Duration, &sess.LastPlayed, &status); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.Status = session.Status(status)
		sess.Segments = []transcript.Segment{}
		index[sess.ID] = len(sessions)
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	segRows, err := s.db.QueryContext(ctx, `
		SELECT sessionId, id, startTime, endTime, text, speaker, words
		FROM segments
		ORDER BY sessionId, position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer segRows.Close()

	for segRows.Next() {
		var sessionID string
		var seg transcript.Segment
		var words sql.NullString
		if err := segRows.Scan(&sessionID, &seg.ID, &seg.StartTime, &seg.EndTime,
			&seg.Text, &seg.Speaker, &words); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		if words.Valid && words.String != "" {
			if err := json.Unmarshal([]byte(words.String), &seg.Words); err != nil {
				return nil, fmt.Errorf("decode words of %s/%s: %w", sessionID, seg.ID, err)
			}
		}
		i, ok := index[sessionID]
		if !ok {
			continue
		}
		sessions[i].Segments = append(sessions[i].Segments, seg)
	}
	return sessions, segRows.Err()
}

func (s *SQLite) words(ctx context.Context) ([]vocab.SavedWord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT word, sessionId, addedAt, nextReview, stage, definition, translation, phonetic
		FROM saved_words
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query saved words: %w", err)
	}
	defer rows.Close()

	words := []vocab.SavedWord{}
	for rows.Next() {
		var w vocab.SavedWord
		if err := rows.Scan(&w.Word, &w.SessionID, &w.AddedAt, &w.NextReview, &w.Stage,
			&w.Definition, &w.Translation, &w.Phonetic); err != nil {
			return nil, fmt.Errorf("scan saved word: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// Save replaces the stored state in one transaction.
func (s *SQLite) Save(ctx context.Context, state study.State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM segments", "DELETE FROM sessions", "DELETE FROM saved_words"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear: %w", err)
		}
	}

	for pos, sess := range state.Sessions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sessions (id, position, title, subtitle, coverUrl, duration, lastPlayed, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, sess.ID, pos, sess.Title, sess.Subtitle, sess.CoverURL, sess.Duration, sess.LastPlayed, string(sess.Status)); err != nil {
			return fmt.Errorf("insert session %s: %w", sess.ID, err)
		}

		for i, seg := range sess.Segments {
			var words any
			if len(seg.Words) > 0 {
				b, err := json.Marshal(seg.Words)
				if err != nil {
					return fmt.Errorf("encode words of %s/%s: %w", sess.ID, seg.ID, err)
				}
				words = string(b)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO segments (sessionId, position, id, startTime, endTime, text, speaker, words)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, sess.ID, i, seg.ID, seg.StartTime, seg.EndTime, seg.Text, seg.Speaker, words); err != nil {
				return fmt.Errorf("insert segment %s/%s: %w", sess.ID, seg.ID, err)
			}
		}
	}

	for pos, w := range state.Words {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO saved_words (wordKey, position, word, sessionId, addedAt, nextReview, stage, definition, translation, phonetic)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, w.Key(), pos, w.Word, w.SessionID, w.AddedAt, w.NextReview, w.Stage, w.Definition, w.Translation, w.Phonetic); err != nil {
			return fmt.Errorf("insert saved word %q: %w", w.Word, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
