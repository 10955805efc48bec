package playback

import (
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lexiqai/echolisten/internal/observability"
	"github.com/lexiqai/echolisten/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The player is served from the same host or a local dev server
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const (
	maxMessageSize = 4096
	readTimeout    = 2 * time.Minute
)

// ClientMessage is sent by the player.
//
//	{"event":"position","time":12.3,"playing":true,"mode":"SINGLE_LOOP"}
//	{"event":"ended","mode":"SHUFFLE","segment":4}
type ClientMessage struct {
	Event   string  `json:"event"`
	Time    float64 `json:"time,omitempty"`
	Playing bool    `json:"playing,omitempty"`
	Mode    string  `json:"mode,omitempty"`
	Segment int     `json:"segment,omitempty"`
}

// ActiveMessage tells the player what to highlight.
type ActiveMessage struct {
	Event     string `json:"event"`
	SegmentID string `json:"segmentId,omitempty"`
	Position
}

// JumpMessage tells the player to seek.
type JumpMessage struct {
	Event     string  `json:"event"`
	Segment   int     `json:"segment"`
	StartTime float64 `json:"startTime"`
}

// StopMessage tells the player to pause at the end of the list.
type StopMessage struct {
	Event string `json:"event"`
}

// ErrorMessage reports a malformed client message.
type ErrorMessage struct {
	Event string `json:"event"`
	Error string `json:"error"`
}

// Follower tracks one player's position over a session transcript.
type Follower struct {
	conn     *websocket.Conn
	timeline *Timeline
	rnd      *rand.Rand

	sessionID string
	active    Position
	logger    zerolog.Logger
}

// Serve upgrades the request and follows the player until it disconnects.
func Serve(w http.ResponseWriter, r *http.Request, sess session.AudioSession) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		logger := observability.Component("playback")
		logger.Warn().Err(err).Msg("Failed to upgrade connection to WebSocket")
		return
	}
	defer conn.Close()

	f := NewFollower(conn, sess, rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)))
	observability.FollowerConnected()
	defer observability.FollowerDisconnected()

	f.logger.Info().Msg("Player connected")
	f.run()
	f.logger.Info().Msg("Player disconnected")
}

// NewFollower creates a follower for sess over an established connection.
func NewFollower(conn *websocket.Conn, sess session.AudioSession, rnd *rand.Rand) *Follower {
	return &Follower{
		conn:      conn,
		timeline:  NewTimeline(sess.Segments),
		rnd:       rnd,
		sessionID: sess.ID,
		active:    Position{Segment: -1, Block: -1, Word: -1},
		logger: observability.WithContext(map[string]interface{}{
			"component":  "playback",
			"session_id": sess.ID,
			"follow_id":  uuid.New().String(),
		}),
	}
}

func (f *Follower) run() {
	f.conn.SetReadLimit(maxMessageSize)
	for {
		f.conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, raw, err := f.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				f.logger.Warn().Err(err).Msg("WebSocket read error")
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			f.logger.Debug().Err(err).Msg("Failed to parse player message")
			if err := f.conn.WriteJSON(ErrorMessage{Event: "error", Error: "malformed message"}); err != nil {
				return
			}
			continue
		}

		reply, err := f.handle(msg)
		if err != nil {
			reply = ErrorMessage{Event: "error", Error: err.Error()}
		}
		if reply == nil {
			continue
		}
		if err := f.conn.WriteJSON(reply); err != nil {
			f.logger.Warn().Err(err).Msg("WebSocket write error")
			return
		}
	}
}

// handle returns the reply to msg, or nil when nothing changed.
func (f *Follower) handle(msg ClientMessage) (interface{}, error) {
	switch msg.Event {
	case "position":
		mode, err := ParseMode(msg.Mode)
		if err != nil {
			return nil, err
		}
		// A looped segment restarts once the raw time passes its end.
		if mode == SingleLoop && msg.Playing && f.active.Segment >= 0 {
			seg := f.timeline.Segment(f.active.Segment)
			if msg.Time >= seg.EndTime {
				return JumpMessage{Event: "jump", Segment: f.active.Segment, StartTime: seg.StartTime}, nil
			}
		}

		pos := f.timeline.Locate(msg.Time, msg.Playing)
		if pos.Segment < 0 || (pos.Segment == f.active.Segment && pos.Word == f.active.Word) {
			return nil, nil
		}
		f.active = pos
		return ActiveMessage{
			Event:     "active",
			SegmentID: f.timeline.Segment(pos.Segment).ID,
			Position:  pos,
		}, nil

	case "ended":
		mode, err := ParseMode(msg.Mode)
		if err != nil {
			return nil, err
		}
		current := msg.Segment
		if current < 0 || current >= f.timeline.Len() {
			current = f.active.Segment
		}
		next, ok := NextSegment(mode, current, f.timeline.Len(), f.rnd)
		if !ok {
			return StopMessage{Event: "stop"}, nil
		}
		f.active = Position{Segment: -1, Block: -1, Word: -1}
		return JumpMessage{Event: "jump", Segment: next, StartTime: f.timeline.Segment(next).StartTime}, nil

	default:
		f.logger.Debug().Str("event", msg.Event).Msg("Unknown player event")
		return nil, nil
	}
}
