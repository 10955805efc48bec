package playback

import "github.com/lexiqai/echolisten/internal/transcript"

// LatencyCompensation shifts the reported time forward while audio plays so
// highlighting does not trail what the listener hears.
const LatencyCompensation = 0.05

// Position is what should be highlighted at a playback time. Indices are -1
// when the time falls outside every segment.
type Position struct {
	Segment int     `json:"segment"`
	Block   int     `json:"block"`
	Word    int     `json:"word"`
	Fill    float64 `json:"fill"` // Fraction of the active word already spoken
}

// Timeline precomputes blocks and token spans for one session.
type Timeline struct {
	segments []transcript.Segment
	blocks   []transcript.DialogueBlock
	spans    [][]transcript.Span
}

// NewTimeline builds a timeline over segments in playback order.
func NewTimeline(segments []transcript.Segment) *Timeline {
	spans := make([][]transcript.Span, len(segments))
	for i, seg := range segments {
		spans[i] = transcript.TokenTimings(seg)
	}
	return &Timeline{
		segments: segments,
		blocks:   transcript.Group(segments),
		spans:    spans,
	}
}

// Len returns the number of segments.
func (tl *Timeline) Len() int {
	return len(tl.segments)
}

// Segment returns segment i.
func (tl *Timeline) Segment(i int) transcript.Segment {
	return tl.segments[i]
}

// Locate finds the segment, block and word playing at t.
func (tl *Timeline) Locate(t float64, playing bool) Position {
	if playing {
		t += LatencyCompensation
	}

	pos := Position{Segment: -1, Block: -1, Word: -1}
	for i, seg := range tl.segments {
		if t >= seg.StartTime && t < seg.EndTime {
			pos.Segment = i
			break
		}
	}
	if pos.Segment < 0 {
		return pos
	}

	pos.Block = transcript.BlockOf(tl.blocks, pos.Segment)
	spans := tl.spans[pos.Segment]
	if w := transcript.TokenAt(spans, t); w >= 0 {
		pos.Word = w
		if span := spans[w]; span.End > span.Start {
			pos.Fill = (t - span.Start) / (span.End - span.Start)
		}
	}
	return pos
}

// Locate is a one-off lookup over segments.
func Locate(segments []transcript.Segment, t float64, playing bool) Position {
	return NewTimeline(segments).Locate(t, playing)
}
