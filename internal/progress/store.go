// Package progress remembers which questions each user has already been
// shown, per stream, so the selector can avoid repeats across sessions.
package progress

import (
	"context"
	"sync"

	"github.com/p-n-ai/career-guide/internal/assessment"
)

// SeenStore persists seen question IDs per (user, stream).
type SeenStore interface {
	Seen(ctx context.Context, userID string, stream assessment.Stream) (assessment.SeenSet, error)
	MarkSeen(ctx context.Context, userID string, stream assessment.Stream, questionIDs []string) error
	Reset(ctx context.Context, userID string, stream assessment.Stream) error
}

type seenKey struct {
	userID string
	stream assessment.Stream
}

// MemoryStore is an in-memory SeenStore.
type MemoryStore struct {
	seen map[seenKey]assessment.SeenSet
	mu   sync.RWMutex
}

// NewMemoryStore creates an empty in-memory seen store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		seen: make(map[seenKey]assessment.SeenSet),
	}
}

// Seen returns a copy of the user's seen set for stream.
func (s *MemoryStore) Seen(_ context.Context, userID string, stream assessment.Stream) (assessment.SeenSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.seen[seenKey{userID, stream}]
	out := make(assessment.SeenSet, len(src))
	for id := range src {
		out[id] = struct{}{}
	}
	return out, nil
}

func (s *MemoryStore) MarkSeen(_ context.Context, userID string, stream assessment.Stream, questionIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := seenKey{userID, stream}
	set, ok := s.seen[key]
	if !ok {
		set = make(assessment.SeenSet)
		s.seen[key] = set
	}
	for _, id := range questionIDs {
		set[id] = struct{}{}
	}
	return nil
}

func (s *MemoryStore) Reset(_ context.Context, userID string, stream assessment.Stream) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, seenKey{userID, stream})
	return nil
}
