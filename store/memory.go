package store

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// watchBufferSize bounds each watcher's event channel. Writers never block:
// events beyond the buffer are dropped for that watcher.
const watchBufferSize = 32

// MemoryStore is an in-process Store used in tests and as the default backend
// for single-tab sessions.
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string]string
	watchers map[int]chan Event
	nextID   int
	closed   bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:     make(map[string]string),
		watchers: make(map[int]chan Event),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", ErrStoreClosed
	}
	value, ok := s.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.data[key] = value
	s.notifyLocked(Event{ID: uuid.New().String(), Op: OpSet, Key: key, Value: value})
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	s.notifyLocked(Event{ID: uuid.New().String(), Op: OpDelete, Key: key})
	return nil
}

func (s *MemoryStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (s *MemoryStore) Watch(ctx context.Context) (<-chan Event, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrStoreClosed
	}
	id := s.nextID
	s.nextID++
	ch := make(chan Event, watchBufferSize)
	s.watchers[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		if existing, ok := s.watchers[id]; ok {
			delete(s.watchers, id)
			close(existing)
		}
		s.mu.Unlock()
	}()

	return ch, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for id, ch := range s.watchers {
		delete(s.watchers, id)
		close(ch)
	}
	return nil
}

// notifyLocked fans the event out to all watchers. Callers hold s.mu.
func (s *MemoryStore) notifyLocked(event Event) {
	for _, ch := range s.watchers {
		select {
		case ch <- event:
		default:
			// Watcher is not keeping up; drop rather than block the writer.
		}
	}
}
