package transcript

import (
	"fmt"
	"math"
	"strings"
)

const (
	// minTurnSpan is the shortest span, in seconds, a TURNS segment may close on.
	minTurnSpan = 2.0
	// minParagraphSpan is the shortest span, in seconds, a PARAGRAPH segment may close on.
	minParagraphSpan = 8.0
)

// Slice partitions a time-ordered word stream into segments.
//
// DURATION closes a segment once it spans ruleValue minutes. TURNS closes it
// once ruleValue speaker changes were seen and more than two seconds had
// accumulated before the triggering word. PARAGRAPH closes it on a speaker
// change once the segment spans more than eight seconds. The triggering word
// always belongs to the segment being closed, and the last word always
// flushes what remains.
func Slice(words []WordTiming, method Method, ruleValue float64) ([]Segment, error) {
	switch method {
	case MethodDuration, MethodTurns, MethodParagraph:
	default:
		return nil, &UnsupportedMethodError{Method: string(method)}
	}
	if math.IsNaN(ruleValue) || ruleValue < 1 {
		return nil, &InvalidInputError{Index: -1, Reason: fmt.Sprintf("rule value must be >= 1, got %v", ruleValue)}
	}
	if len(words) == 0 {
		return []Segment{}, nil
	}
	if err := validate(words); err != nil {
		return nil, err
	}

	var (
		segments     []Segment
		tokens       []string
		current      []WordTiming
		currentStart = words[0].Start
		prevEnd      = words[0].Start
		openSpeaker  = words[0].SpeakerIndex()
		prevSpeaker  = openSpeaker
		turns        int
	)

	for i, w := range words {
		speaker := w.SpeakerIndex()
		changed := i > 0 && speaker != prevSpeaker
		if changed {
			turns++
		}
		prevSpeaker = speaker

		w.Word = strings.TrimSpace(w.Word)
		tokens = append(tokens, w.Word)
		current = append(current, w)
		span := w.End - currentStart

		var split bool
		switch method {
		case MethodDuration:
			split = span >= ruleValue*60
		case MethodTurns:
			split = float64(turns) >= ruleValue && prevEnd-currentStart > minTurnSpan
		case MethodParagraph:
			split = changed && span > minParagraphSpan
		}
		prevEnd = w.End

		last := i == len(words)-1
		if !split && !last {
			continue
		}

		segments = append(segments, Segment{
			ID:        fmt.Sprintf("seg-%d", len(segments)),
			StartTime: currentStart,
			EndTime:   w.End,
			Text:      strings.Join(tokens, " "),
			Speaker:   openSpeaker + 1,
			Words:     current,
		})

		tokens = nil
		current = nil
		currentStart = w.End
		turns = 0
		if !last {
			openSpeaker = words[i+1].SpeakerIndex()
		}
	}

	return segments, nil
}

func validate(words []WordTiming) error {
	for i, w := range words {
		switch {
		case strings.TrimSpace(w.Word) == "":
			return &InvalidInputError{Index: i, Reason: "empty token"}
		case len(strings.Fields(w.Word)) != 1:
			return &InvalidInputError{Index: i, Reason: "token contains whitespace"}
		case math.IsNaN(w.Start) || math.IsInf(w.Start, 0) || math.IsNaN(w.End) || math.IsInf(w.End, 0):
			return &InvalidInputError{Index: i, Reason: "non-finite time"}
		case w.Start < 0:
			return &InvalidInputError{Index: i, Reason: fmt.Sprintf("negative start %v", w.Start)}
		case w.Start > w.End:
			return &InvalidInputError{Index: i, Reason: fmt.Sprintf("start %v after end %v", w.Start, w.End)}
		}
	}
	return nil
}
