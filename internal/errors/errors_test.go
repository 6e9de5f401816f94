package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	vberrors "vbranch.dev/vbranch/internal/errors"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	cause := errors.New("object not found")
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"branch not found", vberrors.NewBranchNotFoundError("abc"), vberrors.ErrNotFound},
		{"no changes", vberrors.NewNoChangesError("feature"), vberrors.ErrNoChanges},
		{"invalid target", vberrors.NewInvalidTargetError("main", "expected a remote ref", nil), vberrors.ErrInvalidTarget},
		{"git operation", vberrors.NewGitOperationError("write tree", cause), vberrors.ErrGitOperationFailed},
		{"invariant", vberrors.NewInvariantViolationError("%d branches selected", 2), vberrors.ErrInvariantViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.err, tt.sentinel)
			require.ErrorIs(t, fmt.Errorf("wrapped: %w", tt.err), tt.sentinel)
		})
	}
}

func TestGitOperationError(t *testing.T) {
	cause := errors.New("object not found")

	t.Run("unwraps to the cause", func(t *testing.T) {
		err := vberrors.NewGitOperationError("write tree", cause)
		require.ErrorIs(t, err, cause)
		require.Equal(t, "git operation failed: write tree: object not found", err.Error())
	})

	t.Run("does not wrap twice", func(t *testing.T) {
		inner := vberrors.NewGitOperationError("write tree", cause)
		outer := vberrors.NewGitOperationError("commit", fmt.Errorf("context: %w", inner))
		var gerr *vberrors.GitOperationError
		require.ErrorAs(t, outer, &gerr)
		require.Equal(t, "write tree", gerr.Op)
	})
}

func TestInvalidTargetErrorUnwraps(t *testing.T) {
	cause := errors.New("reference not found")
	err := vberrors.NewInvalidTargetError("refs/remotes/origin/nope", "reference does not exist", cause)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), `"refs/remotes/origin/nope"`)
}

func TestGitCommandError(t *testing.T) {
	err := vberrors.NewGitCommandError("git", []string{"credential", "fill"}, "", "fatal: bad input", errors.New("exit status 128"))
	require.Contains(t, err.Error(), "stderr: fatal: bad input")
	require.Contains(t, err.Error(), "exit status 128")
}
