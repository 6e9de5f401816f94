package hunk_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vbranch.dev/vbranch/internal/hunk"
)

func TestMapLine(t *testing.T) {
	tests := []struct {
		name    string
		old     string
		new     string
		line    int
		expects int
	}{
		{"before insertion", "1\n2\n3\n", "1\nx\ny\n2\n3\n", 1, 1},
		{"after insertion", "1\n2\n3\n", "1\nx\ny\n2\n3\n", 2, 4},
		{"far after insertion", "1\n2\n3\n", "1\nx\ny\n2\n3\n", 3, 5},
		{"after deletion", "1\n2\n3\n4\n", "1\n4\n", 4, 2},
		{"inside deletion clamps", "1\n2\n3\n4\n", "1\n4\n", 3, 2},
		{"inside replacement", "1\n2\n3\n", "1\nA\nB\nC\n3\n", 2, 2},
		{"no changes", "1\n", "1\n", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changes := hunk.Changes("f", tt.old, tt.new)
			require.Equal(t, tt.expects, hunk.MapLine(tt.line, changes))
		})
	}
}

func TestMapRange(t *testing.T) {
	changes := hunk.Changes("f", "1\n2\n3\n4\n5\n", "0\n1\n2\n3\n4\n5\n")

	require.Equal(t, hunk.LineRange{Start: 3, End: 5}, hunk.MapRange(hunk.LineRange{Start: 2, End: 4}, changes))

	empty := hunk.MapRange(hunk.LineRange{Start: 3, End: 2}, changes)
	require.True(t, empty.IsEmpty())
	require.Equal(t, 4, empty.Start)
}
