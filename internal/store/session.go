package store

import (
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sevasetu/assistant/internal/domain"
)

var ErrNotFound = errors.New("not found")

// SessionStore keeps active sessions in memory with an idle TTL. Sessions
// are never written to durable storage; an expired or deleted session is
// gone for good.
type SessionStore struct {
	cache *cache.Cache
}

// NewSessionStore creates a store whose sessions expire after ttl of
// inactivity. Expired entries are purged at a fraction of the TTL.
func NewSessionStore(ttl time.Duration) *SessionStore {
	purge := ttl / 6
	if purge < time.Minute {
		purge = time.Minute
	}
	return &SessionStore{cache: cache.New(ttl, purge)}
}

// Create mints a new session at the input stage and registers it.
func (s *SessionStore) Create() *domain.Session {
	sess := domain.NewSession()
	s.cache.Set(sess.ID.String(), sess, cache.DefaultExpiration)
	return sess
}

// Get returns a copy of the session. Callers mutate their copy and Save it
// back; the cached session itself is never written in place, so concurrent
// reads never race with an in-flight transition.
func (s *SessionStore) Get(id string) (*domain.Session, error) {
	if x, found := s.cache.Get(id); found {
		return x.(*domain.Session).Clone(), nil
	}
	return nil, ErrNotFound
}

// Save re-registers the session, refreshing its TTL.
func (s *SessionStore) Save(sess *domain.Session) {
	s.cache.Set(sess.ID.String(), sess, cache.DefaultExpiration)
}

func (s *SessionStore) Delete(id string) {
	s.cache.Delete(id)
}
