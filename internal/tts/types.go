package tts

import "context"

// Pronouncer synthesizes a single word as a playable WAV clip.
type Pronouncer interface {
	// Pronounce blocks until the clip is ready or ctx is done.
	Pronounce(ctx context.Context, word string) ([]byte, error)

	// Healthy reports whether the provider's circuit is closed.
	Healthy(ctx context.Context) (bool, error)
}

// CartesiaRequest is the body of a Cartesia /tts/bytes call.
type CartesiaRequest struct {
	ModelID      string       `json:"model_id"`
	Transcript   string       `json:"transcript"`
	Voice        Voice        `json:"voice"`
	OutputFormat OutputFormat `json:"output_format"`
	Language     string       `json:"language,omitempty"`
}

// Voice selects a Cartesia voice by id.
type Voice struct {
	Mode string `json:"mode"`
	ID   string `json:"id"`
}

// OutputFormat describes the audio Cartesia should return.
type OutputFormat struct {
	Container  string `json:"container"`
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
}
