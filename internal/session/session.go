package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/lexiqai/echolisten/internal/transcript"
)

// Status of an imported session.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusError      Status = "error"
)

// AudioSession is an imported recording with its segmented transcript.
// LastPlayed is Unix milliseconds, 0 when never played.
type AudioSession struct {
	ID         string               `json:"id" yaml:"id"`
	Title      string               `json:"title" yaml:"title"`
	Subtitle   string               `json:"subtitle" yaml:"subtitle"`
	CoverURL   string               `json:"coverUrl" yaml:"coverUrl"`
	Segments   []transcript.Segment `json:"segments" yaml:"segments"`
	Duration   float64              `json:"duration" yaml:"duration"`
	LastPlayed int64                `json:"lastPlayed" yaml:"lastPlayed"`
	Status     Status               `json:"status" yaml:"status"`
}

// NotFoundError is returned for unknown sessions or segments.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.ID)
}

const coverURLPattern = "https://picsum.photos/seed/%s/200/200"

// New builds a ready session. A non-positive duration falls back to the end
// of the last segment.
func New(id, title, provider string, segments []transcript.Segment, duration float64) AudioSession {
	if duration <= 0 && len(segments) > 0 {
		duration = segments[len(segments)-1].EndTime
	}
	if segments == nil {
		segments = []transcript.Segment{}
	}
	return AudioSession{
		ID:       id,
		Title:    title,
		Subtitle: fmt.Sprintf("%d segments • %s", len(segments), provider),
		CoverURL: fmt.Sprintf(coverURLPattern, id),
		Segments: segments,
		Duration: duration,
		Status:   StatusReady,
	}
}

// TitleFromFilename strips the directory and extension of an uploaded file.
func TitleFromFilename(name string) string {
	name = name[strings.LastIndexAny(name, `/\`)+1:]
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name
}

// Blocks groups the session transcript into dialogue blocks.
func (s AudioSession) Blocks() []transcript.DialogueBlock {
	return transcript.Group(s.Segments)
}

// SegmentIndex returns the position of the segment with the given id, or -1.
func (s AudioSession) SegmentIndex(segmentID string) int {
	for i, seg := range s.Segments {
		if seg.ID == segmentID {
			return i
		}
	}
	return -1
}

// PlayedAt reports LastPlayed as a time, zero when never played.
func (s AudioSession) PlayedAt() time.Time {
	if s.LastPlayed == 0 {
		return time.Time{}
	}
	return time.UnixMilli(s.LastPlayed)
}
