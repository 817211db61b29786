// Package store keeps parsed records ordered by timestamp. Records with equal
// timestamps keep their insertion order.
package store

import (
	"iter"
	"sort"

	"github.com/cyra/proxylog/internal/record"
)

type entry struct {
	key record.Key
	rec record.Record
}

// Store is an ordered multiset of records. It is not safe for concurrent use.
type Store struct {
	entries []entry
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Insert adds rec under k after every existing entry whose timestamp is
// less than or equal to k.Timestamp.
func (s *Store) Insert(k record.Key, rec record.Record) {
	i := sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].key.Timestamp > k.Timestamp
	})
	if i == len(s.entries) {
		s.entries = append(s.entries, entry{k, rec})
		return
	}
	s.entries = append(s.entries, entry{})
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = entry{k, rec}
}

// Size returns the number of stored records.
func (s *Store) Size() int {
	return len(s.entries)
}

// Clear removes every record.
func (s *Store) Clear() {
	clear(s.entries)
	s.entries = s.entries[:0]
}

// All iterates records in key order. Records must not be mutated through
// the returned pointer.
func (s *Store) All() iter.Seq2[record.Key, *record.Record] {
	return func(yield func(record.Key, *record.Record) bool) {
		for i := range s.entries {
			if !yield(s.entries[i].key, &s.entries[i].rec) {
				return
			}
		}
	}
}

// Range iterates records whose timestamp lies in [from, to] in key order.
func (s *Store) Range(from, to uint32) iter.Seq2[record.Key, *record.Record] {
	return func(yield func(record.Key, *record.Record) bool) {
		if from > to {
			return
		}
		i := sort.Search(len(s.entries), func(i int) bool {
			return s.entries[i].key.Timestamp >= from
		})
		for ; i < len(s.entries) && s.entries[i].key.Timestamp <= to; i++ {
			if !yield(s.entries[i].key, &s.entries[i].rec) {
				return
			}
		}
	}
}
