package history

import (
	"cmp"
	"slices"
	"sync"

	"github.com/matzehuels/genealogy/pkg/errors"
)

// Store is an unordered collection of birth records with unique child ids.
//
// The zero value is not usable - use NewStore. Adding records is not safe
// for concurrent use; once loading is done, any number of goroutines may read
// the store, including through Index.
type Store struct {
	records []BirthRecord
	ids     map[uint64]struct{}

	mu    sync.Mutex
	index *EpochIndex // cached, dropped on every Add
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{ids: make(map[uint64]struct{})}
}

// FromRecords builds a store from records, failing on the first duplicate id
// or out-of-range epoch.
func FromRecords(records []BirthRecord) (*Store, error) {
	s := NewStore()
	if err := s.AddAll(records...); err != nil {
		return nil, err
	}
	return s, nil
}

// Add inserts a record. Returns DUPLICATE_ID if the child id is already
// present and INVALID_HISTORY if the epoch exceeds MaxEpoch.
func (s *Store) Add(r BirthRecord) error {
	if _, dup := s.ids[r.ChildID]; dup {
		return errors.New(errors.ErrCodeDuplicateID, "child id %d appears more than once", r.ChildID)
	}
	if r.Epoch > MaxEpoch {
		return errors.New(errors.ErrCodeInvalidHistory, "child %d: epoch %d exceeds maximum %d", r.ChildID, r.Epoch, MaxEpoch)
	}
	s.ids[r.ChildID] = struct{}{}
	s.records = append(s.records, r)
	s.mu.Lock()
	s.index = nil
	s.mu.Unlock()
	return nil
}

// AddAll inserts records in order and stops at the first error.
func (s *Store) AddAll(records ...BirthRecord) error {
	for _, r := range records {
		if err := s.Add(r); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// Contains reports whether a record with the given child id exists.
func (s *Store) Contains(id uint64) bool {
	_, ok := s.ids[id]
	return ok
}

// Records returns a copy of the records in insertion order.
func (s *Store) Records() []BirthRecord { return slices.Clone(s.records) }

// Sorted returns a copy of the records ordered by child id. This is the
// canonical order used for export and content hashing.
func (s *Store) Sorted() []BirthRecord {
	out := slices.Clone(s.records)
	slices.SortFunc(out, func(a, b BirthRecord) int { return cmp.Compare(a.ChildID, b.ChildID) })
	return out
}

// Index returns the epoch index of the current contents. The index is
// rebuilt lazily after the store changes.
func (s *Store) Index() *EpochIndex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		s.index = NewEpochIndex(s.records)
	}
	return s.index
}
