package repository

import (
	"context"
	"sync"
	"time"
)

// sessionSlot is the single-token slot for one subject, guarded by its own
// mutex so subjects never block each other.
type sessionSlot struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func (s *sessionSlot) expired(now time.Time) bool {
	return s.token == "" || now.After(s.expiresAt)
}

type memorySessionRepository struct {
	slots sync.Map
}

// NewMemorySessionRepository returns an in-process implementation used in
// tests and when Redis is not configured.
func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{}
}

func (r *memorySessionRepository) slot(subject string) *sessionSlot {
	actual, _ := r.slots.LoadOrStore(subject, &sessionSlot{})
	return actual.(*sessionSlot)
}

func (r *memorySessionRepository) Put(_ context.Context, subject, token string, ttl time.Duration) error {
	slot := r.slot(subject)
	slot.mu.Lock()
	defer slot.mu.Unlock()
	slot.token = token
	slot.expiresAt = time.Now().Add(ttl)
	return nil
}

func (r *memorySessionRepository) Get(_ context.Context, subject string) (string, error) {
	slot := r.slot(subject)
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.expired(time.Now()) {
		return "", ErrSessionNotFound
	}
	return slot.token, nil
}

func (r *memorySessionRepository) Remove(_ context.Context, subject string) error {
	slot := r.slot(subject)
	slot.mu.Lock()
	defer slot.mu.Unlock()
	slot.token = ""
	return nil
}

func (r *memorySessionRepository) Rotate(_ context.Context, subject, presented, next string, ttl time.Duration) error {
	slot := r.slot(subject)
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.expired(time.Now()) || slot.token != presented {
		slot.token = ""
		return ErrSessionMismatch
	}
	slot.token = next
	slot.expiresAt = time.Now().Add(ttl)
	return nil
}
