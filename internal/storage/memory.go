package storage

import (
	"context"
	"sync"
)

// MemoryGateway keeps values in process memory. Used for tests and
// ephemeral runs.
type MemoryGateway struct {
	mu     sync.Mutex
	values map[string][]byte
	saves  int
}

// NewMemoryGateway returns an empty in-memory gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{values: map[string][]byte{}}
}

func (g *MemoryGateway) Load(_ context.Context, key string) ([]byte, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, ok := g.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (g *MemoryGateway) Save(_ context.Context, key string, data []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[key] = append([]byte(nil), data...)
	g.saves++
	return nil
}

// Saves returns how many writes the gateway has accepted.
func (g *MemoryGateway) Saves() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.saves
}
