package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"gopkg.in/yaml.v3"

	"github.com/lexiqai/echolisten/internal/session"
	"github.com/lexiqai/echolisten/internal/store"
	"github.com/lexiqai/echolisten/internal/study"
	"github.com/lexiqai/echolisten/internal/transcript"
	"github.com/lexiqai/echolisten/internal/vocab"
)

func newReviewFixture(t *testing.T, words ...string) (*study.Service, *vocab.ReviewSession) {
	t.Helper()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	sched, err := vocab.NewScheduler(vocab.DefaultIntervals, func() time.Time { return now })
	if err != nil {
		t.Fatalf("NewScheduler() failed: %v", err)
	}
	svc, err := study.NewService(study.Options{Repository: store.NewMemory(), Scheduler: sched})
	if err != nil {
		t.Fatalf("NewService() failed: %v", err)
	}

	ctx := context.Background()
	for _, w := range words {
		if _, err := svc.ToggleWord(ctx, w, "s1", &vocab.WordDefinition{Definition: "def of " + w}); err != nil {
			t.Fatalf("ToggleWord() failed: %v", err)
		}
	}
	now = now.Add(48 * time.Hour)

	review, err := svc.StartReview(ctx)
	if err != nil {
		t.Fatalf("StartReview() failed: %v", err)
	}
	return svc, review
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and runs the returned command once, feeding its message back.
func press(m reviewModel, msg tea.Msg) (reviewModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	m = next.(reviewModel)
	if cmd == nil {
		return m, nil
	}
	if saved, ok := cmd().(savedMsg); ok {
		next, cmd = m.Update(saved)
		return next.(reviewModel), cmd
	}
	return m, cmd
}

func TestReviewModel_AnswersAndSaves(t *testing.T) {
	svc, review := newReviewFixture(t, "alpha", "beta")
	m := newReviewModel(context.Background(), svc, review)

	if !strings.Contains(m.View(), "Card 1/2") {
		t.Errorf("Expected card counter in view, got:\n%s", m.View())
	}
	if strings.Contains(m.View(), "def of") {
		t.Error("Expected definition hidden before reveal")
	}

	m, _ = press(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	if !m.revealed || !strings.Contains(m.View(), "def of") {
		t.Errorf("Expected definition after reveal, got:\n%s", m.View())
	}

	m, _ = press(m, keyMsg("k"))
	m, _ = press(m, keyMsg("f"))

	if !review.Done() {
		t.Fatal("Expected review finished")
	}
	if m.saved != 2 {
		t.Errorf("Expected 2 saved answers, got %d", m.saved)
	}
	if !strings.Contains(m.View(), "Review complete") {
		t.Errorf("Expected summary view, got:\n%s", m.View())
	}

	words, _ := svc.Words(context.Background())
	stages := map[string]int{}
	for _, w := range words {
		stages[w.Word] = w.Stage
	}
	if len(stages) != 2 {
		t.Fatalf("Expected 2 words, got %d", len(stages))
	}
	for word, stage := range stages {
		if stage > 1 {
			t.Errorf("Expected %s at stage 0 or 1, got %d", word, stage)
		}
	}
	if stages["alpha"]+stages["beta"] != 1 {
		t.Errorf("Expected one KNOWN and one FORGOT, got %+v", stages)
	}

	if _, cmd := m.Update(keyMsg("x")); cmd == nil {
		t.Error("Expected any key to quit after the summary")
	}
}

type failingSaver struct{}

func (failingSaver) SaveReview(ctx context.Context, reviewed vocab.SavedWord, outcome vocab.Outcome) error {
	return errors.New("disk full")
}

func TestReviewModel_SaveErrorQuits(t *testing.T) {
	_, review := newReviewFixture(t, "alpha")
	m := newReviewModel(context.Background(), failingSaver{}, review)

	m, cmd := press(m, keyMsg("k"))
	if m.err == nil || !strings.Contains(m.err.Error(), "disk full") {
		t.Fatalf("Expected save error, got %v", m.err)
	}
	if cmd == nil {
		t.Error("Expected quit command after save error")
	}
	if !strings.Contains(m.View(), "Error") {
		t.Errorf("Expected error view, got:\n%s", m.View())
	}
}

func TestReviewModel_IgnoresAnswersWhileSaving(t *testing.T) {
	_, review := newReviewFixture(t, "alpha", "beta")
	m := newReviewModel(context.Background(), failingSaver{}, review)

	next, cmd := m.Update(keyMsg("k"))
	m = next.(reviewModel)
	if cmd == nil || !m.saving {
		t.Fatal("Expected save in flight")
	}
	next, cmd = m.Update(keyMsg("k"))
	m = next.(reviewModel)
	if cmd != nil {
		t.Error("Expected no command while saving")
	}
	if review.Position() != 1 {
		t.Errorf("Expected one answered card, got %d", review.Position())
	}
}

func TestExportSession(t *testing.T) {
	sess := session.AudioSession{
		ID:       "s1",
		Title:    "Morning Talk",
		Subtitle: "1 segments • Deepgram",
		Duration: 4,
		Segments: []transcript.Segment{{
			ID:        "seg-1",
			StartTime: 0,
			EndTime:   4,
			Text:      "the cat sat down",
			Speaker:   1,
			Words:     []transcript.WordTiming{{Word: "the", Start: 0, End: 1, Speaker: transcript.Speaker(1)}},
		}},
	}

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := exportSession(&buf, sess, "yaml"); err != nil {
			t.Fatalf("exportSession() failed: %v", err)
		}
		var got session.AudioSession
		if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("Invalid YAML: %v\n%s", err, buf.String())
		}
		if got.Title != "Morning Talk" || len(got.Segments) != 1 || got.Segments[0].Text != "the cat sat down" {
			t.Errorf("Unexpected export: %+v", got)
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := exportSession(&buf, sess, "json"); err != nil {
			t.Fatalf("exportSession() failed: %v", err)
		}
		var raw map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
			t.Fatalf("Invalid JSON: %v", err)
		}
		if raw["title"] != "Morning Talk" {
			t.Errorf("Expected title 'Morning Talk', got %v", raw["title"])
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if err := exportSession(&bytes.Buffer{}, sess, "csv"); err == nil {
			t.Error("Expected error for csv")
		}
	})
}

func TestClock(t *testing.T) {
	tests := map[float64]string{
		0:     "0:00",
		4.4:   "0:04",
		59.6:  "1:00",
		125.0: "2:05",
	}
	for in, want := range tests {
		if got := clock(in); got != want {
			t.Errorf("clock(%v): expected %s, got %s", in, want, got)
		}
	}
}
