package transcript

import (
	"math"
	"strings"
)

// Span is the time range a displayed token occupies.
type Span struct {
	Token string  `json:"token"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// minInterpolatedDuration keeps interpolation well-defined for zero-length segments.
const minInterpolatedDuration = 0.1

// TokenTimings maps each displayed token of seg to a time span. Recorded word
// timings are used when they line up with the text; after a text edit, or for
// segments without words, spans are interpolated by character length.
func TokenTimings(seg Segment) []Span {
	tokens := seg.Tokens()
	if len(tokens) == 0 {
		return nil
	}

	if len(seg.Words) == len(tokens) {
		spans := make([]Span, len(tokens))
		for i, tok := range tokens {
			spans[i] = Span{Token: tok, Start: seg.Words[i].Start, End: seg.Words[i].End}
		}
		return spans
	}

	duration := math.Max(minInterpolatedDuration, seg.EndTime-seg.StartTime)
	total := 0
	for _, tok := range tokens {
		total += len([]rune(tok)) + 1
	}

	spans := make([]Span, len(tokens))
	cursor := seg.StartTime
	for i, tok := range tokens {
		weight := float64(len([]rune(tok))+1) / float64(total)
		end := cursor + weight*duration
		spans[i] = Span{Token: tok, Start: cursor, End: end}
		cursor = end
	}
	return spans
}

// TokenAt returns the index of the token playing at t, or -1.
func TokenAt(spans []Span, t float64) int {
	for i, s := range spans {
		if t >= s.Start && t < s.End {
			return i
		}
	}
	return -1
}

var punctuation = strings.NewReplacer(
	".", "", ",", "", "/", "", "#", "", "!", "", "$", "", "%", "", "^", "",
	"&", "", "*", "", ";", "", ":", "", "{", "", "}", "", "=", "", "-", "",
	"_", "", "`", "", "~", "", "(", "", ")", "",
)

// CleanToken normalizes a clicked token into a vocabulary key candidate.
func CleanToken(token string) string {
	return strings.ToLower(strings.TrimSpace(punctuation.Replace(token)))
}
