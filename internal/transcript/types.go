package transcript

import (
	"encoding/json"
	"fmt"
	"strings"
)

// WordTiming is one recognized token as delivered by an ASR collaborator.
// Times are seconds from the start of the audio.
type WordTiming struct {
	Word    string  `json:"word" yaml:"word"`
	Start   float64 `json:"start" yaml:"start"`
	End     float64 `json:"end" yaml:"end"`
	Speaker *int    `json:"speaker,omitempty" yaml:"speaker,omitempty"`
}

// UnmarshalJSON rejects timings that are missing start or end.
func (w *WordTiming) UnmarshalJSON(data []byte) error {
	var raw struct {
		Word    string   `json:"word"`
		Start   *float64 `json:"start"`
		End     *float64 `json:"end"`
		Speaker *int     `json:"speaker"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Start == nil || raw.End == nil {
		return &InvalidInputError{Index: -1, Reason: fmt.Sprintf("word %q is missing start or end", raw.Word)}
	}
	*w = WordTiming{Word: raw.Word, Start: *raw.Start, End: *raw.End, Speaker: raw.Speaker}
	return nil
}

// SpeakerIndex returns the zero-based diarization index, 0 when unknown.
func (w WordTiming) SpeakerIndex() int {
	if w.Speaker == nil || *w.Speaker < 0 {
		return 0
	}
	return *w.Speaker
}

// Speaker builds a speaker pointer for WordTiming literals.
func Speaker(i int) *int {
	return &i
}

// Segment is a contiguous span of the transcript shown as one study unit.
type Segment struct {
	ID        string       `json:"id" yaml:"id"`
	StartTime float64      `json:"startTime" yaml:"startTime"`
	EndTime   float64      `json:"endTime" yaml:"endTime"`
	Text      string       `json:"text" yaml:"text"`
	Speaker   int          `json:"speaker" yaml:"speaker"`
	Words     []WordTiming `json:"words,omitempty" yaml:"words,omitempty"`
}

// Tokens splits the segment text the same way it was joined.
func (s Segment) Tokens() []string {
	return strings.Fields(s.Text)
}

// Duration of the segment in seconds.
func (s Segment) Duration() float64 {
	return s.EndTime - s.StartTime
}

// DialogueBlock is a run of consecutive segments by the same speaker.
type DialogueBlock struct {
	Speaker  int       `json:"speaker"`
	Segments []Segment `json:"segments"`
	StartIdx int       `json:"startIdx"`
}

// Method selects the segment boundary rule.
type Method string

const (
	MethodDuration  Method = "DURATION"
	MethodTurns     Method = "TURNS"
	MethodParagraph Method = "PARAGRAPH"
)

// ParseMethod accepts a method name in any case.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case MethodDuration, MethodTurns, MethodParagraph:
		return m, nil
	}
	return "", &UnsupportedMethodError{Method: s}
}

func (m Method) String() string {
	return string(m)
}
