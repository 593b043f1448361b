package store

import (
	"sync"
	"time"

	"github.com/discord-verifier/internal/domain"
	pkgtoken "github.com/discord-verifier/internal/pkg/token"
)

// TokenStore owns pending-verification records keyed by opaque single-use
// tokens. It is the only state shared between request handlers and the event
// runtime, so Redeem must be a single atomic check-and-remove.
type TokenStore interface {
	// Issue generates a fresh unguessable token and records the member
	// snapshot under it. Safe to call concurrently with Redeem.
	Issue(userID, username string, joinedAt time.Time) (string, error)

	// Redeem atomically consumes a token: on hit the record is removed and
	// returned, on miss (unknown or already redeemed) ok is false. Of any
	// number of concurrent Redeem calls for the same token, exactly one
	// succeeds.
	Redeem(token string) (rec domain.PendingVerification, ok bool)

	// Len reports the number of pending verifications, for logging.
	Len() int
}

// memoryStore is the in-process TokenStore. Records do not survive a restart
// and are not expired; unredeemed tokens live for the process lifetime.
type memoryStore struct {
	mu      sync.Mutex
	pending map[string]domain.PendingVerification
}

// NewMemoryStore returns an empty in-memory TokenStore.
func NewMemoryStore() TokenStore {
	return &memoryStore{pending: make(map[string]domain.PendingVerification)}
}

func (s *memoryStore) Issue(userID, username string, joinedAt time.Time) (string, error) {
	t, err := pkgtoken.NewVerificationToken()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.pending[t] = domain.PendingVerification{
		UserID:   userID,
		Username: username,
		JoinedAt: joinedAt,
	}
	s.mu.Unlock()
	return t, nil
}

func (s *memoryStore) Redeem(token string) (domain.PendingVerification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.pending[token]
	if !ok {
		return domain.PendingVerification{}, false
	}
	delete(s.pending, token)
	return rec, true
}

func (s *memoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
