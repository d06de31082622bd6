// Package bookmarks keeps the learner's saved modules.
package bookmarks

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// Bookmark marks a module the learner wants to come back to.
type Bookmark struct {
	ModuleID  string    `json:"moduleId"`
	PathID    string    `json:"pathId"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Set is a collection of bookmarks keyed by module id.
type Set struct {
	items map[string]Bookmark
	now   func() time.Time
}

// New returns an empty set.
func New(now func() time.Time) *Set {
	if now == nil {
		now = time.Now
	}
	return &Set{items: make(map[string]Bookmark), now: now}
}

// Add bookmarks a module. Re-adding keeps the original timestamp and
// replaces the note. It reports whether the bookmark is new.
func (s *Set) Add(moduleID, pathID, note string) (Bookmark, bool) {
	note = strings.TrimSpace(note)
	if b, ok := s.items[moduleID]; ok {
		b.PathID = pathID
		b.Note = note
		s.items[moduleID] = b
		return b, false
	}
	b := Bookmark{ModuleID: moduleID, PathID: pathID, Note: note, CreatedAt: s.now()}
	s.items[moduleID] = b
	return b, true
}

// Remove deletes a bookmark and reports whether it existed.
func (s *Set) Remove(moduleID string) bool {
	if _, ok := s.items[moduleID]; !ok {
		return false
	}
	delete(s.items, moduleID)
	return true
}

// Has reports whether a module is bookmarked.
func (s *Set) Has(moduleID string) bool {
	_, ok := s.items[moduleID]
	return ok
}

// List returns bookmarks newest first, ties by module id.
func (s *Set) List() []Bookmark {
	out := make([]Bookmark, 0, len(s.items))
	for _, b := range s.items {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b Bookmark) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ModuleID, b.ModuleID)
	})
	return out
}

// Len returns the number of bookmarks.
func (s *Set) Len() int { return len(s.items) }

// Snapshot returns the bookmarks in List order.
func (s *Set) Snapshot() []Bookmark { return s.List() }

// Restore replaces the set. Entries without a module id are dropped and
// duplicates keep the last occurrence.
func (s *Set) Restore(list []Bookmark) {
	s.Reset()
	for _, b := range list {
		if b.ModuleID == "" {
			continue
		}
		s.items[b.ModuleID] = b
	}
}

// Reset removes every bookmark.
func (s *Set) Reset() {
	s.items = make(map[string]Bookmark)
}
