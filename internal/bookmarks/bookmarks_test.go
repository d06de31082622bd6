package bookmarks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tickingClock() func() time.Time {
	t := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func TestAddRemoveHas(t *testing.T) {
	s := New(tickingClock())

	b, added := s.Add("m1", "p1", "  try with brown butter ")
	assert.True(t, added)
	assert.Equal(t, "try with brown butter", b.Note)
	assert.True(t, s.Has("m1"))

	again, added := s.Add("m1", "p1", "halve the sugar")
	assert.False(t, added)
	assert.Equal(t, b.CreatedAt, again.CreatedAt)
	assert.Equal(t, "halve the sugar", again.Note)
	assert.Equal(t, 1, s.Len())

	assert.True(t, s.Remove("m1"))
	assert.False(t, s.Remove("m1"))
	assert.False(t, s.Has("m1"))
}

func TestListNewestFirst(t *testing.T) {
	s := New(tickingClock())
	s.Add("m1", "p1", "")
	s.Add("m2", "p1", "")
	s.Add("m3", "p2", "")

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, "m3", list[0].ModuleID)
	assert.Equal(t, "m2", list[1].ModuleID)
	assert.Equal(t, "m1", list[2].ModuleID)
}

func TestSnapshotRestore(t *testing.T) {
	s := New(tickingClock())
	s.Add("m1", "p1", "note")
	s.Add("m2", "p1", "")
	snap := s.Snapshot()

	other := New(nil)
	other.Add("stale", "p9", "")
	other.Restore(append(snap, Bookmark{PathID: "orphan"}))

	assert.False(t, other.Has("stale"))
	assert.Equal(t, snap, other.List())

	other.Reset()
	assert.Equal(t, 0, other.Len())
	assert.Empty(t, other.List())
}
