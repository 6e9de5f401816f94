package lock_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vbranch.dev/vbranch/internal/hunk"
	"vbranch.dev/vbranch/internal/lock"
)

func TestIndexOwner(t *testing.T) {
	x := lock.NewIndex()
	x.Add("a", "file.txt", hunk.LineRange{Start: 1, End: 5})
	x.Add("b", "file.txt", hunk.LineRange{Start: 20, End: 22})
	x.Add("b", "other.txt", hunk.LineRange{Start: 1, End: 1})

	t.Run("overlap by one line locks", func(t *testing.T) {
		owner, ok := x.Owner("file.txt", hunk.LineRange{Start: 5, End: 9})
		require.True(t, ok)
		require.Equal(t, "a", owner)
	})

	t.Run("contained range locks", func(t *testing.T) {
		owner, ok := x.Owner("file.txt", hunk.LineRange{Start: 3, End: 3})
		require.True(t, ok)
		require.Equal(t, "a", owner)
	})

	t.Run("disjoint range is free", func(t *testing.T) {
		_, ok := x.Owner("file.txt", hunk.LineRange{Start: 6, End: 19})
		require.False(t, ok)
	})

	t.Run("second range in the same file", func(t *testing.T) {
		owner, ok := x.Owner("file.txt", hunk.LineRange{Start: 22, End: 40})
		require.True(t, ok)
		require.Equal(t, "b", owner)
	})

	t.Run("unknown file is free", func(t *testing.T) {
		_, ok := x.Owner("missing.txt", hunk.LineRange{Start: 1, End: 1})
		require.False(t, ok)
	})

	t.Run("empty query is free", func(t *testing.T) {
		_, ok := x.Owner("file.txt", hunk.LineRange{Start: 3, End: 2})
		require.False(t, ok)
	})
}

func TestIndexOwnerLowestStartWins(t *testing.T) {
	x := lock.NewIndex()
	x.Add("late", "f", hunk.LineRange{Start: 4, End: 6})
	x.Add("early", "f", hunk.LineRange{Start: 1, End: 4})

	owner, ok := x.Owner("f", hunk.LineRange{Start: 4, End: 4})
	require.True(t, ok)
	require.Equal(t, "early", owner)
}

func TestIndexSurface(t *testing.T) {
	x := lock.NewIndex()
	x.AddSurface("a", []lock.FileRange{
		{Path: "z.txt", Range: hunk.LineRange{Start: 2, End: 2}},
		{Path: "a.txt", Range: hunk.LineRange{Start: 9, End: 9}},
		{Path: "a.txt", Range: hunk.LineRange{Start: 1, End: 3}},
	})
	x.Add("b", "a.txt", hunk.LineRange{Start: 5, End: 5})
	x.Add("b", "a.txt", hunk.LineRange{Start: 7, End: 6})

	require.Equal(t, []lock.FileRange{
		{Path: "a.txt", Range: hunk.LineRange{Start: 1, End: 3}},
		{Path: "a.txt", Range: hunk.LineRange{Start: 9, End: 9}},
		{Path: "z.txt", Range: hunk.LineRange{Start: 2, End: 2}},
	}, x.Surface("a"))
	require.Equal(t, 4, x.Len(), "empty ranges are not indexed")
}

func TestRemap(t *testing.T) {
	changes := map[string][]hunk.Hunk{
		"f": hunk.Changes("f", "1\n2\n3\n", "0\n1\n2\n3\n"),
	}
	got := lock.Remap([]lock.FileRange{
		{Path: "f", Range: hunk.LineRange{Start: 2, End: 3}},
		{Path: "g", Range: hunk.LineRange{Start: 2, End: 3}},
	}, changes)

	require.Equal(t, hunk.LineRange{Start: 3, End: 4}, got[0].Range)
	require.Equal(t, hunk.LineRange{Start: 2, End: 3}, got[1].Range)
}
