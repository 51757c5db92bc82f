package locks

import "slices"

// Store holds the canonical lock list and its sort state. It is confined to
// the coordinator's logical thread and needs no locking once that
// discipline is enforced.
type Store struct {
	locks     []Lock
	comp      *Comparer
	sortKey   SortKey
	ascending bool
}

// NewStore creates an empty store sorting by path ascending.
func NewStore(style PathStyle) *Store {
	return &Store{
		locks:     []Lock{},
		comp:      NewComparer(style),
		sortKey:   SortByPath,
		ascending: true,
	}
}

// ReplaceAll clears the store and rebuilds it from records, enforcing the
// one-record-per-path invariant (first occurrence wins) and re-sorting.
func (s *Store) ReplaceAll(records []Lock) {
	seen := make(map[string]struct{}, len(records))
	next := make([]Lock, 0, len(records))
	for _, rec := range records {
		if _, dup := seen[rec.Path]; dup {
			continue
		}
		seen[rec.Path] = struct{}{}
		next = append(next, rec)
	}
	s.locks = next
	s.applySort()
}

// Clear removes every record.
func (s *Store) Clear() {
	s.locks = s.locks[:0]
}

// Insert adds a record unless one already exists for the same path.
// Reports whether the record was added.
func (s *Store) Insert(rec Lock) bool {
	if _, exists := s.Get(rec.Path); exists {
		return false
	}
	s.locks = append(s.locks, rec)
	s.applySort()
	return true
}

// Remove deletes the record for path, reporting whether one existed.
func (s *Store) Remove(path string) bool {
	for i, rec := range s.locks {
		if rec.Path == path {
			s.locks = slices.Delete(s.locks, i, i+1)
			return true
		}
	}
	return false
}

// SetPendingByID updates the pending flag of the record with the given
// server ID, reporting whether such a record exists.
func (s *Store) SetPendingByID(id string, pending bool) bool {
	for i := range s.locks {
		if s.locks[i].ID == id {
			s.locks[i].Pending = pending
			return true
		}
	}
	return false
}

// Get returns the record for a path.
func (s *Store) Get(path string) (Lock, bool) {
	for _, rec := range s.locks {
		if rec.Path == path {
			return rec, true
		}
	}
	return Lock{}, false
}

// ByID returns the record with the given server ID.
func (s *Store) ByID(id string) (Lock, bool) {
	if id == "" {
		return Lock{}, false
	}
	for _, rec := range s.locks {
		if rec.ID == id {
			return rec, true
		}
	}
	return Lock{}, false
}

// Find returns every record matching the predicate, in display order.
func (s *Store) Find(pred func(Lock) bool) []Lock {
	var out []Lock
	for _, rec := range s.locks {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Records returns a copy of the list in display order.
func (s *Store) Records() []Lock {
	out := make([]Lock, len(s.locks))
	copy(out, s.locks)
	return out
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.locks) }

// Sort sets the sort state and reorders the list.
func (s *Store) Sort(key SortKey, ascending bool) {
	s.sortKey = key
	s.ascending = ascending
	s.applySort()
}

// SortKey returns the current sort column.
func (s *Store) SortKey() SortKey { return s.sortKey }

// Ascending reports the current sort direction.
func (s *Store) Ascending() bool { return s.ascending }

// applySort stably reorders the list. Descending order swaps the operands
// before comparing rather than negating the result, which keeps the
// secondary path tie-break stable.
func (s *Store) applySort() {
	slices.SortStableFunc(s.locks, func(x, y Lock) int {
		a, b := x, y
		if !s.ascending {
			a, b = b, a
		}
		return s.comp.Compare(a, b, s.sortKey)
	})
}
