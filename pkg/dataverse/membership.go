package dataverse

import "strings"

// ComponentSet is the set of object ids that belong to a solution for one
// component type. Ids are compared case-insensitively and without braces.
type ComponentSet map[string]struct{}

// NewComponentSet builds a set from ids.
func NewComponentSet(ids ...string) ComponentSet {
	set := make(ComponentSet, len(ids))
	for _, id := range ids {
		set.Add(id)
	}

	return set
}

// Add inserts id. Empty ids are ignored.
func (s ComponentSet) Add(id string) {
	key := NormalizeID(id)
	if key == "" {
		return
	}

	s[key] = struct{}{}
}

// Contains reports whether id is a member.
func (s ComponentSet) Contains(id string) bool {
	_, ok := s[NormalizeID(id)]

	return ok
}

// Len returns the number of members.
func (s ComponentSet) Len() int {
	return len(s)
}

// NormalizeID lower-cases a GUID string and strips surrounding braces.
func NormalizeID(id string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(id), "{}"))
}

// Intersect keeps the rows whose id is in members, preserving row order.
func Intersect[T any](rows []T, members ComponentSet, id func(T) string) []T {
	if len(rows) == 0 || members.Len() == 0 {
		return nil
	}

	kept := make([]T, 0, min(len(rows), members.Len()))

	for _, row := range rows {
		if members.Contains(id(row)) {
			kept = append(kept, row)
		}
	}

	return kept
}
