package main

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"slices"
	"sync"
	"time"

	"github.com/yeongki/memprof/pkg/memprof"
)

var errNotFound = errors.New("catalog: key not found")

// Catalog is the component the demo binds. Its fields are its operations.
type Catalog struct {
	New func() *store

	Put      func(key string, size int) int
	Keys     func() []string
	Checksum func(key string) (uint32, error)

	Load func(ctx context.Context, key string, delay time.Duration) *memprof.Future[int]
	Warm func(ctx context.Context, keys ...string) *memprof.Future[int]
}

type store struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newStore() *store {
	return &store{items: map[string][]byte{}}
}

func newCatalog() Catalog {
	s := newStore()
	return Catalog{
		New:      newStore,
		Put:      s.put,
		Keys:     s.keys,
		Checksum: s.checksum,
		Load:     s.load,
		Warm:     s.warm,
	}
}

func (s *store) put(key string, size int) int {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = byte(i)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = buf
	return len(s.items)
}

func (s *store) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.items))
	for k := range s.items {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func (s *store) checksum(key string) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.items[key]
	if !ok {
		return 0, fmt.Errorf("checksum %q: %w", key, errNotFound)
	}
	return crc32.ChecksumIEEE(b), nil
}

func (s *store) load(ctx context.Context, key string, delay time.Duration) *memprof.Future[int] {
	return memprof.Go(func() (int, error) {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		b, ok := s.items[key]
		if !ok {
			return 0, fmt.Errorf("load %q: %w", key, errNotFound)
		}
		return len(b), nil
	})
}

func (s *store) warm(ctx context.Context, keys ...string) *memprof.Future[int] {
	return memprof.Go(func() (int, error) {
		total := 0
		for _, k := range keys {
			if err := ctx.Err(); err != nil {
				return total, err
			}
			n, err := s.checksum(k)
			if err != nil {
				continue
			}
			total += int(n % 7)
		}
		return total, nil
	})
}
