package config

import "sync/atomic"

// Store holds the current configuration and signals replacements.
type Store struct {
	v       atomic.Pointer[Config]
	changed chan struct{}
}

// NewStore creates a Store with the initial configuration.
func NewStore(cfg *Config) *Store {
	s := &Store{changed: make(chan struct{}, 1)}
	s.v.Store(cfg)
	return s
}

// Current returns the current configuration.
func (s *Store) Current() *Config {
	return s.v.Load()
}

// Update replaces the current configuration and wakes one waiter on
// Changed. Updates arriving before the waiter runs coalesce.
func (s *Store) Update(cfg *Config) {
	s.v.Store(cfg)
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// Changed receives after every Update.
func (s *Store) Changed() <-chan struct{} {
	return s.changed
}
