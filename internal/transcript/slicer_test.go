package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func w(word string, start, end float64, speaker int) WordTiming {
	return WordTiming{Word: word, Start: start, End: end, Speaker: Speaker(speaker)}
}

func TestSlice_Empty(t *testing.T) {
	segments, err := Slice(nil, MethodTurns, 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(segments) != 0 {
		t.Errorf("Expected 0 segments, got %d", len(segments))
	}
}

func TestSlice_ShortTurnDoesNotSplit(t *testing.T) {
	words := []WordTiming{
		w("the", 0, 1, 1),
		w("cat", 1, 2, 1),
		w("sat", 2, 3, 2),
		w("down", 3, 4, 2),
	}

	segments, err := Slice(words, MethodTurns, 1)
	if err != nil {
		t.Fatalf("Slice() failed: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("Expected 1 segment, got %d: %+v", len(segments), segments)
	}

	seg := segments[0]
	if seg.Text != "the cat sat down" {
		t.Errorf("Expected text 'the cat sat down', got '%s'", seg.Text)
	}
	if seg.StartTime != 0 || seg.EndTime != 4 {
		t.Errorf("Expected span [0,4], got [%v,%v]", seg.StartTime, seg.EndTime)
	}
	if seg.Speaker != 2 {
		t.Errorf("Expected speaker 2, got %d", seg.Speaker)
	}
	if len(seg.Words) != 4 {
		t.Errorf("Expected 4 words, got %d", len(seg.Words))
	}
}

func TestSlice_Duration(t *testing.T) {
	words := []WordTiming{
		{Word: "a", Start: 0, End: 1},
		{Word: "b", Start: 70, End: 71},
		{Word: "c", Start: 72, End: 73},
	}

	segments, err := Slice(words, MethodDuration, 1)
	if err != nil {
		t.Fatalf("Slice() failed: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("Expected 2 segments, got %d", len(segments))
	}
	if segments[0].Text != "a b" || segments[0].EndTime != 71 {
		t.Errorf("Expected first segment 'a b' ending at 71, got '%s' ending at %v", segments[0].Text, segments[0].EndTime)
	}
	if segments[1].StartTime != 71 || segments[1].EndTime != 73 {
		t.Errorf("Expected second segment [71,73], got [%v,%v]", segments[1].StartTime, segments[1].EndTime)
	}
	if segments[0].Speaker != 1 {
		t.Errorf("Expected missing speaker to display as 1, got %d", segments[0].Speaker)
	}
}

func TestSlice_TurnsSplitsAfterRuleValueChanges(t *testing.T) {
	words := []WordTiming{
		w("hello", 0, 2, 0),
		w("there", 2, 4, 0),
		w("hi", 4, 5, 1),
		w("again", 5, 6, 1),
		w("so", 6, 7, 0),
		w("what", 7, 8, 0),
	}

	segments, err := Slice(words, MethodTurns, 2)
	if err != nil {
		t.Fatalf("Slice() failed: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("Expected 2 segments, got %d: %+v", len(segments), segments)
	}
	if segments[0].Text != "hello there hi again so" {
		t.Errorf("Expected split on the second turn, got '%s'", segments[0].Text)
	}
	if segments[1].Speaker != 1 {
		t.Errorf("Expected second segment opened by speaker index 0, got %d", segments[1].Speaker)
	}
}

func TestSlice_Paragraph(t *testing.T) {
	words := []WordTiming{
		w("one", 0, 3, 0),
		w("two", 3, 6, 0),
		w("three", 6, 7, 1),
		w("four", 7, 10, 1),
		w("five", 10, 11, 0),
		w("six", 11, 12, 0),
	}

	segments, err := Slice(words, MethodParagraph, 1)
	if err != nil {
		t.Fatalf("Slice() failed: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("Expected 2 segments, got %d: %+v", len(segments), segments)
	}
	if segments[0].Text != "one two three four five" {
		t.Errorf("Unexpected first segment '%s'", segments[0].Text)
	}
	if segments[1].Text != "six" {
		t.Errorf("Unexpected second segment '%s'", segments[1].Text)
	}
}

func TestSlice_Errors(t *testing.T) {
	tests := []struct {
		name     string
		words    []WordTiming
		method   Method
		rule     float64
		wantType string
	}{
		{"unknown method", []WordTiming{w("a", 0, 1, 0)}, Method("SENTENCE"), 1, "method"},
		{"start after end", []WordTiming{w("a", 2, 1, 0)}, MethodTurns, 1, "input"},
		{"negative start", []WordTiming{w("a", -1, 1, 0)}, MethodTurns, 1, "input"},
		{"empty token", []WordTiming{w(" ", 0, 1, 0)}, MethodTurns, 1, "input"},
		{"token with inner space", []WordTiming{w("a b", 0, 1, 0), w("c", 1, 2, 0)}, MethodDuration, 1, "input"},
		{"rule below one", []WordTiming{w("a", 0, 1, 0)}, MethodDuration, 0.5, "input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments, err := Slice(tt.words, tt.method, tt.rule)
			if err == nil {
				t.Fatal("Expected error")
			}
			if segments != nil {
				t.Errorf("Expected no segments on error, got %d", len(segments))
			}

			var invalid *InvalidInputError
			var unsupported *UnsupportedMethodError
			switch tt.wantType {
			case "input":
				if !errors.As(err, &invalid) {
					t.Errorf("Expected InvalidInputError, got %T", err)
				}
			case "method":
				if !errors.As(err, &unsupported) {
					t.Errorf("Expected UnsupportedMethodError, got %T", err)
				}
			}
		})
	}
}

func TestSlice_Partition(t *testing.T) {
	var words []WordTiming
	speakers := []int{0, 0, 1, 1, 1, 0, 2, 2, 0, 0, 1, 1, 1, 1, 0}
	for i, sp := range speakers {
		start := float64(i) * 1.5
		words = append(words, w(fmt.Sprintf("w%d", i), start, start+1.2, sp))
	}

	for _, method := range []Method{MethodDuration, MethodTurns, MethodParagraph} {
		for _, rule := range []float64{1, 2, 3} {
			t.Run(fmt.Sprintf("%s/%v", method, rule), func(t *testing.T) {
				segments, err := Slice(words, method, rule)
				if err != nil {
					t.Fatalf("Slice() failed: %v", err)
				}

				var seen []WordTiming
				for _, seg := range segments {
					seen = append(seen, seg.Words...)
					if len(seg.Tokens()) != len(seg.Words) {
						t.Errorf("Expected %d tokens in '%s', got %d", len(seg.Words), seg.Text, len(seg.Tokens()))
					}
				}
				if len(seen) != len(words) {
					t.Fatalf("Expected %d words across segments, got %d", len(words), len(seen))
				}
				for i := range words {
					if seen[i].Word != words[i].Word {
						t.Errorf("Expected word %d to be %s, got %s", i, words[i].Word, seen[i].Word)
					}
				}

				if segments[0].StartTime != words[0].Start {
					t.Errorf("Expected first start %v, got %v", words[0].Start, segments[0].StartTime)
				}
				if got := segments[len(segments)-1].EndTime; got != words[len(words)-1].End {
					t.Errorf("Expected last end %v, got %v", words[len(words)-1].End, got)
				}
				for i := 1; i < len(segments); i++ {
					if segments[i].StartTime != segments[i-1].EndTime {
						t.Errorf("Expected segment %d to start at %v, got %v", i, segments[i-1].EndTime, segments[i].StartTime)
					}
				}
			})
		}
	}
}

func TestSlice_TurnsLowerBound(t *testing.T) {
	var words []WordTiming
	for i := 0; i < 40; i++ {
		words = append(words, w("x", float64(i), float64(i)+1, i%3))
	}

	for _, k := range []float64{1, 2, 4} {
		segments, err := Slice(words, MethodTurns, k)
		if err != nil {
			t.Fatalf("Slice() failed: %v", err)
		}

		prev := words[0].SpeakerIndex()
		for i, seg := range segments[:len(segments)-1] {
			changes := 0
			for _, word := range seg.Words {
				if word.SpeakerIndex() != prev {
					changes++
				}
				prev = word.SpeakerIndex()
			}
			if float64(changes) < k {
				t.Errorf("k=%v: segment %d closed after %d changes", k, i, changes)
			}
		}
	}
}

func TestWordTiming_UnmarshalMissingTime(t *testing.T) {
	var words []WordTiming
	err := json.Unmarshal([]byte(`[{"word":"a","start":0}]`), &words)
	var invalid *InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected InvalidInputError, got %v", err)
	}

	err = json.Unmarshal([]byte(`[{"word":"a","start":0,"end":1,"speaker":2}]`), &words)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if words[0].SpeakerIndex() != 2 {
		t.Errorf("Expected speaker 2, got %d", words[0].SpeakerIndex())
	}
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("turns")
	if err != nil || m != MethodTurns {
		t.Errorf("Expected TURNS, got %s (%v)", m, err)
	}
	if _, err := ParseMethod("sentence"); err == nil {
		t.Error("Expected error for unknown method")
	}
}

func TestSlice_TrimsTokens(t *testing.T) {
	words := []WordTiming{w(" hello", 0, 1, 0), w("world ", 1, 2, 0)}

	segments, err := Slice(words, MethodDuration, 1)
	if err != nil {
		t.Fatalf("Slice() failed: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("Expected 1 segment, got %d", len(segments))
	}
	seg := segments[0]
	if seg.Text != "hello world" {
		t.Errorf("Expected text 'hello world', got '%s'", seg.Text)
	}
	if seg.Words[0].Word != "hello" || seg.Words[1].Word != "world" {
		t.Errorf("Expected trimmed words, got '%s' '%s'", seg.Words[0].Word, seg.Words[1].Word)
	}
	if len(strings.Fields(seg.Text)) != len(seg.Words) {
		t.Errorf("Expected %d text tokens, got %d", len(seg.Words), len(strings.Fields(seg.Text)))
	}
	if words[0].Word != " hello" {
		t.Error("Expected input words left untouched")
	}
}
