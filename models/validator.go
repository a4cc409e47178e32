package models

import "sort"

// ValidatorID identifies a consensus participant. The protocol treats it as
// an opaque, totally-ordered value; it never changes for the lifetime of a
// protocol run.
type ValidatorID string

// ValidatorSet is a set of validator identifiers.
type ValidatorSet map[ValidatorID]struct{}

// NewValidatorSet builds a set from the given identifiers.
func NewValidatorSet(ids ...ValidatorID) ValidatorSet {
	s := make(ValidatorSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts a validator into the set.
func (s ValidatorSet) Add(id ValidatorID) {
	s[id] = struct{}{}
}

// Contains reports whether the validator is in the set.
func (s ValidatorSet) Contains(id ValidatorID) bool {
	_, ok := s[id]
	return ok
}

// Clone returns an independent copy of the set.
func (s ValidatorSet) Clone() ValidatorSet {
	out := make(ValidatorSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Sorted returns the members in ascending order.
func (s ValidatorSet) Sorted() []ValidatorID {
	out := make([]ValidatorID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
