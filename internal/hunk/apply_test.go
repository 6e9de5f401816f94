package hunk_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vbranch.dev/vbranch/internal/hunk"
)

func TestApply(t *testing.T) {
	old := "1\n2\n3\n4\n5\n6\n7\n8\n9\n"
	edited := "one\n2\n3\n4\n5\n6\n7\n8\nnine\n"
	hunks := hunk.Compute("file.txt", old, edited, hunk.StatusModified).Hunks
	require.Len(t, hunks, 2)

	t.Run("all hunks reproduce the new content", func(t *testing.T) {
		got, err := hunk.Apply(old, hunks)
		require.NoError(t, err)
		require.Equal(t, edited, got)
	})

	t.Run("a subset applies only that change", func(t *testing.T) {
		got, err := hunk.Apply(old, hunks[1:])
		require.NoError(t, err)
		require.Equal(t, "1\n2\n3\n4\n5\n6\n7\n8\nnine\n", got)
	})

	t.Run("mismatching base is rejected", func(t *testing.T) {
		_, err := hunk.Apply("x\n2\n3\n", hunks[:1])
		require.Error(t, err)
	})
}

func TestRevert(t *testing.T) {
	old := "a\nb\nc\n"
	edited := "a\nb\nb2\nc\nd\n"
	hunks := hunk.Compute("file.txt", old, edited, hunk.StatusModified).Hunks
	require.Len(t, hunks, 2)

	got, err := hunk.Revert(edited, hunks[:1])
	require.NoError(t, err)
	require.Equal(t, "a\nb\nc\nd\n", got)

	got, err = hunk.Revert(edited, hunks)
	require.NoError(t, err)
	require.Equal(t, old, got)
}

func TestTransfer(t *testing.T) {
	t.Run("exact when target matches", func(t *testing.T) {
		got, err := hunk.Transfer("a\n", "b\n", "a\n")
		require.NoError(t, err)
		require.Equal(t, "b\n", got)
	})

	t.Run("fuzzy onto drifted content", func(t *testing.T) {
		from := "alpha\nbeta\ngamma\ndelta\n"
		to := "alpha\nbeta\ngamma\nDELTA\n"
		target := "header\nalpha\nbeta\ngamma\ndelta\n"

		got, err := hunk.Transfer(from, to, target)
		require.NoError(t, err)
		require.Equal(t, "header\nalpha\nbeta\ngamma\nDELTA\n", got)
	})

	t.Run("reverse transfer removes the change", func(t *testing.T) {
		from := "alpha\nbeta\n"
		to := "alpha\nbeta\nextra\n"
		target := "zero\nalpha\nbeta\nextra\n"

		got, err := hunk.Transfer(to, from, target)
		require.NoError(t, err)
		require.Equal(t, "zero\nalpha\nbeta\n", got)
	})
}
