package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store on an in-process map. It backs the
// development configuration and the test suite; semantics match the
// mongo store (owner partitioning, creation order, append-only).
type MemoryStore struct {
	metrics *Metrics

	mu        sync.RWMutex
	byOwner   map[string][]Task
	connected bool
}

// NewMemoryStore creates an in-memory store. metrics may be nil.
func NewMemoryStore(metrics *Metrics) *MemoryStore {
	return &MemoryStore{
		metrics: metrics,
		byOwner: make(map[string][]Task),
	}
}

// Connect marks the store ready. Idempotent, never fails.
func (s *MemoryStore) Connect(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return nil
}

// CreateTask appends a record to the owner's collection.
func (s *MemoryStore) CreateTask(_ context.Context, owner, content string) (task *Task, err error) {
	defer s.metrics.observe("create", time.Now(), &err)

	if owner == "" {
		return nil, errors.New("owner is required")
	}

	normalized, err := NormalizeContent(content)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return nil, fmt.Errorf("%w: not connected", ErrUnavailable)
	}

	task = &Task{
		ID:        uuid.NewString(),
		Owner:     owner,
		Content:   normalized,
		CreatedAt: time.Now().UTC(),
	}
	s.byOwner[owner] = append(s.byOwner[owner], *task)

	return task, nil
}

// ListTasks returns a copy of the owner's collection in insertion order.
func (s *MemoryStore) ListTasks(_ context.Context, owner string) (out []Task, err error) {
	defer s.metrics.observe("list", time.Now(), &err)

	if owner == "" {
		return nil, errors.New("owner is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.connected {
		return nil, fmt.Errorf("%w: not connected", ErrUnavailable)
	}

	stored := s.byOwner[owner]
	out = make([]Task, len(stored))
	copy(out, stored)

	return out, nil
}

// Close marks the store unavailable and drops nothing: the data lives
// for the process only anyway.
func (s *MemoryStore) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}
