// Package engine is the lifecycle controller of vbranch.
//
// It is the core of vbranch, responsible for:
//   - Recomputing the ownership of every uncommitted hunk on each read
//   - Keeping exactly one active branch selected for changes
//   - Creating commits from the hunks a branch owns
//   - Converting virtual branches to real refs and back
//
// All mutations of one project are serialized by the engine and applied as a
// unit: a failing operation leaves the registry, the persisted state and the
// working directory as they were.
package engine
