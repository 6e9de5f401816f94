// Package config manages vbranch repository configuration.
//
// It handles:
//   - The default branch name and auto-creation of a branch for orphan hunks
//   - Remote authentication preferences
//   - The log file location
package config
