package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Domenick1991/tripoffice/internal/domain"
)

type entry struct {
	identity  domain.Identity
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Sessions are lost on restart
// and are not shared between instances; use RedisStore for that.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]entry
	now      func() time.Time
	newToken func() string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]entry),
		now:      time.Now,
		newToken: newToken,
	}
}

func (s *MemoryStore) Issue(_ context.Context, identity domain.Identity, ttl time.Duration) (string, error) {
	token := s.newToken()

	s.mu.Lock()
	s.sessions[token] = entry{identity: identity, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()

	return token, nil
}

func (s *MemoryStore) Lookup(_ context.Context, token string) (domain.Identity, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[token]
	if !ok {
		return domain.Identity{}, false, nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.sessions, token)
		return domain.Identity{}, false, nil
	}
	return e.identity, true, nil
}

func (s *MemoryStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// Sweep drops every expired session and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, e := range s.sessions {
		if !now.Before(e.expiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("Session sweeper started: checking expired sessions every %s", interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("Session sweeper stopped.")
			return
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				log.Printf("Removed %d expired sessions", removed)
			}
		}
	}
}

var _ Store = (*MemoryStore)(nil)
