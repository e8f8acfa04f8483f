package memory

import (
	"context"
	"sync"
	"time"

	"github.com/erselk/ugur-sahan-website/pkg/kv"
)

// Store is an in-memory implementation of the kv.Store interface
type Store struct {
	mu          sync.Mutex
	values      map[string][]byte
	expirations map[string]time.Time
	closed      bool

	janitorInterval time.Duration
	janitorStop     chan struct{}
	janitorDone     chan struct{}
	closeOnce       sync.Once
}

var _ kv.Store = (*Store)(nil)

// New creates a store. A positive janitorInterval starts background eviction;
// expired keys are also dropped lazily on access.
func New(janitorInterval time.Duration) *Store {
	s := &Store{
		values:          make(map[string][]byte),
		expirations:     make(map[string]time.Time),
		janitorInterval: janitorInterval,
		janitorStop:     make(chan struct{}),
		janitorDone:     make(chan struct{}),
	}

	if janitorInterval > 0 {
		go s.janitor()
	} else {
		close(s.janitorDone)
	}
	return s
}

// DefaultJanitorInterval is what NewStore uses.
const DefaultJanitorInterval = 30 * time.Second

func NewStore() *Store {
	return New(DefaultJanitorInterval)
}

func (s *Store) janitor() {
	defer close(s.janitorDone)
	ticker := time.NewTicker(s.janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictExpired()
		case <-s.janitorStop:
			return
		}
	}
}

func (s *Store) evictExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, expiry := range s.expirations {
		if now.After(expiry) {
			delete(s.values, key)
			delete(s.expirations, key)
		}
	}
}

// live reports whether key exists, dropping it if expired (must hold lock)
func (s *Store) live(key string) bool {
	if expiry, ok := s.expirations[key]; ok && time.Now().After(expiry) {
		delete(s.values, key)
		delete(s.expirations, key)
		return false
	}
	_, ok := s.values[key]
	return ok
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl ...time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.values[key] = stored

	if len(ttl) > 0 && ttl[0] > 0 {
		s.expirations[key] = time.Now().Add(ttl[0])
	} else {
		delete(s.expirations, key)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.live(key) {
		return nil, kv.ErrNotFound
	}
	out := make([]byte, len(s.values[key]))
	copy(out, s.values[key])
	return out, nil
}

func (s *Store) Del(ctx context.Context, keys ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, key := range keys {
		if s.live(key) {
			n++
		}
		delete(s.values, key)
		delete(s.expirations, key)
	}
	return n, nil
}

func (s *Store) Exists(ctx context.Context, keys ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, key := range keys {
		if s.live(key) {
			n++
		}
	}
	return n, nil
}

func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.live(key) {
		return false, nil
	}
	if ttl <= 0 {
		delete(s.values, key)
		delete(s.expirations, key)
		return true, nil
	}
	s.expirations[key] = time.Now().Add(ttl)
	return true, nil
}

func (s *Store) TTL(ctx context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.live(key) {
		return 0, kv.ErrNotFound
	}
	expiry, ok := s.expirations[key]
	if !ok {
		return -1, nil
	}
	return time.Until(expiry), nil
}

func (s *Store) IncrBy(ctx context.Context, key string, n int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current int64
	if s.live(key) {
		parsed, err := parseInt(s.values[key])
		if err != nil {
			return 0, err
		}
		current = parsed
	}
	current += n
	s.values[key] = formatInt(current)
	return current, nil
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return kv.ErrBackendUnavailable
	}
	return nil
}

// Close stops the janitor. It is safe to call more than once.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		if s.janitorInterval > 0 {
			close(s.janitorStop)
		}
		<-s.janitorDone
	})
	return nil
}
