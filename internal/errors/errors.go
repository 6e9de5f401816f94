// Package errors provides sentinel errors and custom error types for vbranch.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// ErrNotFound indicates that a branch, commit or ref does not exist
	ErrNotFound = errors.New("not found")

	// ErrNoChanges indicates a commit was attempted on a branch that owns no hunks
	ErrNoChanges = errors.New("no changes")

	// ErrInvalidTarget indicates the target reference cannot be parsed or resolved
	ErrInvalidTarget = errors.New("invalid target")

	// ErrGitOperationFailed wraps failures of the git object layer
	ErrGitOperationFailed = errors.New("git operation failed")

	// ErrInvariantViolation indicates a defect in the engine itself.
	// It is never expected in correct operation.
	ErrInvariantViolation = errors.New("invariant violation")
)

// BranchNotFoundError represents an error when a virtual branch is not found
type BranchNotFoundError struct {
	ID string
}

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("virtual branch %s does not exist", e.ID)
}

// Is returns true if the target error is ErrNotFound
func (e *BranchNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewBranchNotFoundError creates a new BranchNotFoundError
func NewBranchNotFoundError(id string) *BranchNotFoundError {
	return &BranchNotFoundError{ID: id}
}

// NoChangesError is returned when committing a branch that owns nothing
type NoChangesError struct {
	BranchName string
}

func (e *NoChangesError) Error() string {
	return fmt.Sprintf("branch %s has no changes to commit", e.BranchName)
}

// Is returns true if the target error is ErrNoChanges
func (e *NoChangesError) Is(target error) bool {
	return target == ErrNoChanges
}

// NewNoChangesError creates a new NoChangesError
func NewNoChangesError(branchName string) *NoChangesError {
	return &NoChangesError{BranchName: branchName}
}

// InvalidTargetError represents a target ref that cannot be used
type InvalidTargetError struct {
	Ref    string
	Reason string
	Err    error
}

func (e *InvalidTargetError) Error() string {
	msg := "invalid target"
	if e.Ref != "" {
		msg += fmt.Sprintf(" %q", e.Ref)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Is returns true if the target error is ErrInvalidTarget
func (e *InvalidTargetError) Is(target error) bool {
	return target == ErrInvalidTarget
}

func (e *InvalidTargetError) Unwrap() error {
	return e.Err
}

// NewInvalidTargetError creates a new InvalidTargetError
func NewInvalidTargetError(ref, reason string, err error) *InvalidTargetError {
	return &InvalidTargetError{Ref: ref, Reason: reason, Err: err}
}

// GitOperationError wraps a failure from the git object layer
type GitOperationError struct {
	Op  string
	Err error
}

func (e *GitOperationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("git operation failed: %s", e.Op)
	}
	return fmt.Sprintf("git operation failed: %s: %v", e.Op, e.Err)
}

// Is returns true if the target error is ErrGitOperationFailed
func (e *GitOperationError) Is(target error) bool {
	return target == ErrGitOperationFailed
}

func (e *GitOperationError) Unwrap() error {
	return e.Err
}

// NewGitOperationError creates a new GitOperationError.
// An error that already is a GitOperationError is returned unchanged.
func NewGitOperationError(op string, err error) error {
	var gerr *GitOperationError
	if errors.As(err, &gerr) {
		return err
	}
	return &GitOperationError{Op: op, Err: err}
}

// InvariantViolationError reports a broken engine invariant
type InvariantViolationError struct {
	Reason string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation: %s", e.Reason)
}

// Is returns true if the target error is ErrInvariantViolation
func (e *InvariantViolationError) Is(target error) bool {
	return target == ErrInvariantViolation
}

// NewInvariantViolationError creates a new InvariantViolationError
func NewInvariantViolationError(format string, args ...any) *InvariantViolationError {
	return &InvariantViolationError{Reason: fmt.Sprintf(format, args...)}
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}
