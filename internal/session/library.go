package session

import (
	"strings"
	"time"

	"github.com/lexiqai/echolisten/internal/transcript"
)

// The library functions below never modify their input slices.

// Add puts a session at the front of the library.
func Add(sessions []AudioSession, s AudioSession) []AudioSession {
	out := make([]AudioSession, 0, len(sessions)+1)
	out = append(out, s)
	return append(out, sessions...)
}

// Find returns the index of the session with id, or -1.
func Find(sessions []AudioSession, id string) int {
	for i, s := range sessions {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Get returns the session with id.
func Get(sessions []AudioSession, id string) (AudioSession, error) {
	i := Find(sessions, id)
	if i < 0 {
		return AudioSession{}, &NotFoundError{ID: "session " + id}
	}
	return sessions[i], nil
}

// Update holds the session fields a client may change.
type Update struct {
	Title    *string `json:"title,omitempty"`
	Subtitle *string `json:"subtitle,omitempty"`
	CoverURL *string `json:"coverUrl,omitempty"`
	Status   *Status `json:"status,omitempty"`
}

// Apply merges u into the session with id.
func Apply(sessions []AudioSession, id string, u Update) ([]AudioSession, error) {
	i := Find(sessions, id)
	if i < 0 {
		return nil, &NotFoundError{ID: "session " + id}
	}
	out := clone(sessions)
	s := out[i]
	if u.Title != nil {
		s.Title = *u.Title
	}
	if u.Subtitle != nil {
		s.Subtitle = *u.Subtitle
	}
	if u.CoverURL != nil {
		s.CoverURL = *u.CoverURL
	}
	if u.Status != nil {
		s.Status = *u.Status
	}
	out[i] = s
	return out, nil
}

// Delete removes the session with id. Saved words that reference it are
// left alone.
func Delete(sessions []AudioSession, id string) ([]AudioSession, error) {
	i := Find(sessions, id)
	if i < 0 {
		return nil, &NotFoundError{ID: "session " + id}
	}
	out := make([]AudioSession, 0, len(sessions)-1)
	out = append(out, sessions[:i]...)
	return append(out, sessions[i+1:]...), nil
}

// EditSegmentText replaces the text of one segment. Timings and word
// timings are kept as recorded.
func EditSegmentText(sessions []AudioSession, id, segmentID, text string) ([]AudioSession, error) {
	i := Find(sessions, id)
	if i < 0 {
		return nil, &NotFoundError{ID: "session " + id}
	}
	j := sessions[i].SegmentIndex(segmentID)
	if j < 0 {
		return nil, &NotFoundError{ID: "segment " + segmentID}
	}

	out := clone(sessions)
	segments := append([]transcript.Segment(nil), out[i].Segments...)
	segments[j].Text = strings.TrimSpace(text)
	out[i].Segments = segments
	return out, nil
}

// MarkPlayed stamps the session's last playback time.
func MarkPlayed(sessions []AudioSession, id string, now time.Time) ([]AudioSession, error) {
	i := Find(sessions, id)
	if i < 0 {
		return nil, &NotFoundError{ID: "session " + id}
	}
	out := clone(sessions)
	out[i].LastPlayed = now.UnixMilli()
	return out, nil
}

// Search filters sessions whose title or subtitle contains query, ignoring case.
func Search(sessions []AudioSession, query string) []AudioSession {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []AudioSession{}
	for _, s := range sessions {
		if q == "" || strings.Contains(strings.ToLower(s.Title), q) || strings.Contains(strings.ToLower(s.Subtitle), q) {
			out = append(out, s)
		}
	}
	return out
}

func clone(sessions []AudioSession) []AudioSession {
	return append([]AudioSession(nil), sessions...)
}
