package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

var ErrWrongType = errors.New("value has the wrong type for this operation")

// MemStore is an in-memory Store backed by sync.Map, for single-server runs
// and tests. Items can have optional TTL. A background cleanup goroutine
// runs when NewMemStore is given a positive cleanupInterval.
type MemStore struct {
	items sync.Map
	stop  chan struct{}
	wg    sync.WaitGroup
}

// item holds one key's value. The mutex guards the value; expiration is
// atomic because load paths check it without taking the value lock while
// Expire rewrites it from other goroutines.
type item struct {
	mu         sync.Mutex
	value      any          // string, map[string]string or map[string]struct{}
	expiration atomic.Int64 // unix nano; 0 means no expiration
}

// NewMemStore creates a new MemStore. If cleanupInterval > 0,
// a background goroutine will periodically remove expired items.
func NewMemStore(cleanupInterval time.Duration) *MemStore {
	m := &MemStore{
		stop: make(chan struct{}),
	}
	if cleanupInterval > 0 {
		m.wg.Add(1)
		go func() {
			ticker := time.NewTicker(cleanupInterval)
			defer ticker.Stop()
			defer m.wg.Done()
			for {
				select {
				case <-ticker.C:
					m.cleanup()
				case <-m.stop:
					return
				}
			}
		}()
	}
	return m
}

func (m *MemStore) Close() {
	if m.stop == nil {
		return
	}
	close(m.stop)
	m.wg.Wait()
}

func (m *MemStore) Get(_ context.Context, key string) (string, bool, error) {
	it, ok := m.load(key)
	if !ok {
		return "", false, nil
	}
	it.mu.Lock()
	defer it.mu.Unlock()

	value, ok := it.value.(string)
	if !ok {
		return "", false, ErrWrongType
	}
	return value, true, nil
}

func (m *MemStore) SetEx(_ context.Context, key, value string, ttl time.Duration) error {
	it := &item{value: value}
	it.expiration.Store(time.Now().Add(ttl).UnixNano())
	m.items.Store(key, it)
	return nil
}

func (m *MemStore) IncrBy(_ context.Context, key string, delta int64) error {
	// Like redis INCRBY, a missing key starts at zero and has no TTL.
	it := m.loadOrStore(key, func() any { return "0" })

	it.mu.Lock()
	defer it.mu.Unlock()

	value, ok := it.value.(string)
	if !ok {
		return ErrWrongType
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return ErrWrongType
	}
	it.value = strconv.FormatInt(n+delta, 10)
	return nil
}

func (m *MemStore) Del(_ context.Context, key string) error {
	m.items.Delete(key)
	return nil
}

func (m *MemStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.load(key)
	return ok, nil
}

func (m *MemStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	it, ok := m.load(key)
	if !ok {
		return nil
	}
	it.expiration.Store(time.Now().Add(ttl).UnixNano())
	return nil
}

func (m *MemStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	fields := make(map[string]string)

	it, ok := m.load(key)
	if !ok {
		return fields, nil
	}
	it.mu.Lock()
	defer it.mu.Unlock()

	hash, ok := it.value.(map[string]string)
	if !ok {
		return nil, ErrWrongType
	}
	for field, value := range hash {
		fields[field] = value
	}
	return fields, nil
}

func (m *MemStore) HSet(_ context.Context, key string, fields map[string]string) error {
	it := m.loadOrStore(key, func() any { return make(map[string]string) })

	it.mu.Lock()
	defer it.mu.Unlock()

	hash, ok := it.value.(map[string]string)
	if !ok {
		return ErrWrongType
	}
	for field, value := range fields {
		hash[field] = value
	}
	return nil
}

func (m *MemStore) HDel(_ context.Context, key, field string) error {
	it, ok := m.load(key)
	if !ok {
		return nil
	}
	it.mu.Lock()
	defer it.mu.Unlock()

	hash, ok := it.value.(map[string]string)
	if !ok {
		return ErrWrongType
	}
	delete(hash, field)
	return nil
}

func (m *MemStore) SAdd(_ context.Context, key string, members ...string) error {
	it := m.loadOrStore(key, func() any { return make(map[string]struct{}) })

	it.mu.Lock()
	defer it.mu.Unlock()

	set, ok := it.value.(map[string]struct{})
	if !ok {
		return ErrWrongType
	}
	for _, member := range members {
		set[member] = struct{}{}
	}
	return nil
}

func (m *MemStore) SRem(_ context.Context, key, member string) error {
	it, ok := m.load(key)
	if !ok {
		return nil
	}
	it.mu.Lock()
	defer it.mu.Unlock()

	set, ok := it.value.(map[string]struct{})
	if !ok {
		return ErrWrongType
	}
	delete(set, member)
	return nil
}

func (m *MemStore) SCard(_ context.Context, key string) (int64, error) {
	it, ok := m.load(key)
	if !ok {
		return 0, nil
	}
	it.mu.Lock()
	defer it.mu.Unlock()

	set, ok := it.value.(map[string]struct{})
	if !ok {
		return 0, ErrWrongType
	}
	return int64(len(set)), nil
}

func (m *MemStore) load(key string) (*item, bool) {
	v, ok := m.items.Load(key)
	if !ok {
		return nil, false
	}
	it := v.(*item)
	if it.isExpired() {
		m.items.Delete(key)
		return nil, false
	}
	return it, true
}

func (m *MemStore) loadOrStore(key string, zero func() any) *item {
	for {
		v, _ := m.items.LoadOrStore(key, &item{value: zero()})
		it := v.(*item)
		if !it.isExpired() {
			return it
		}
		m.items.Delete(key)
	}
}

func (it *item) isExpired() bool {
	if it == nil {
		return false
	}
	expiration := it.expiration.Load()
	return expiration != 0 && time.Now().UnixNano() > expiration
}

func (m *MemStore) cleanup() {
	now := time.Now().UnixNano()
	m.items.Range(func(k, v any) bool {
		it := v.(*item)
		expiration := it.expiration.Load()
		if expiration != 0 && now > expiration {
			m.items.Delete(k)
		}
		return true
	})
}
