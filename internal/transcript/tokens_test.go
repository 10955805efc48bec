package transcript

import (
	"math"
	"testing"
)

func TestTokenTimings_UsesWordTimings(t *testing.T) {
	s := Segment{
		StartTime: 0,
		EndTime:   2,
		Text:      "hello world",
		Words:     []WordTiming{{Word: "hello", Start: 0, End: 0.8}, {Word: "world", Start: 1, End: 2}},
	}

	spans := TokenTimings(s)
	if len(spans) != 2 {
		t.Fatalf("Expected 2 spans, got %d", len(spans))
	}
	if spans[1].Start != 1 || spans[1].End != 2 {
		t.Errorf("Expected second span [1,2], got [%v,%v]", spans[1].Start, spans[1].End)
	}
}

func TestTokenTimings_InterpolatesAfterEdit(t *testing.T) {
	s := Segment{
		StartTime: 10,
		EndTime:   14,
		Text:      "ab abcdef",
		Words:     []WordTiming{{Word: "x", Start: 10, End: 14}},
	}

	spans := TokenTimings(s)
	if len(spans) != 2 {
		t.Fatalf("Expected 2 spans, got %d", len(spans))
	}
	// weights 3/10 and 7/10 of 4 seconds
	if math.Abs(spans[0].End-11.2) > 1e-9 {
		t.Errorf("Expected first span to end at 11.2, got %v", spans[0].End)
	}
	if math.Abs(spans[1].End-14) > 1e-9 {
		t.Errorf("Expected last span to end at 14, got %v", spans[1].End)
	}
	if TokenAt(spans, 12) != 1 {
		t.Errorf("Expected token 1 at t=12, got %d", TokenAt(spans, 12))
	}
}

func TestTokenTimings_ZeroLengthSegment(t *testing.T) {
	spans := TokenTimings(Segment{StartTime: 5, EndTime: 5, Text: "hi"})
	if len(spans) != 1 || spans[0].End <= spans[0].Start {
		t.Errorf("Expected a positive span, got %+v", spans)
	}
}

func TestCleanToken(t *testing.T) {
	tests := map[string]string{
		"Hello,":     "hello",
		"(world)":    "world",
		"  Echo!  ":  "echo",
		"don't":      "don't",
		"well-known": "wellknown",
	}
	for in, want := range tests {
		if got := CleanToken(in); got != want {
			t.Errorf("CleanToken(%q): expected %q, got %q", in, want, got)
		}
	}
}
