package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/lexiqai/echolisten/internal/study"
)

// Memory keeps study state in process. Load and Save copy the state so
// callers never share slices with the repository.
type Memory struct {
	mu    sync.Mutex
	state []byte
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) (study.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var state study.State
	if m.state == nil {
		return state, nil
	}
	if err := json.Unmarshal(m.state, &state); err != nil {
		return study.State{}, fmt.Errorf("decode state: %w", err)
	}
	return state, nil
}

func (m *Memory) Save(ctx context.Context, state study.State) error {
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	m.mu.Lock()
	m.state = b
	m.mu.Unlock()
	return nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return nil
}
