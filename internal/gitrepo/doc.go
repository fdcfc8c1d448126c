// Package gitrepo contains helpers for interrogating and mutating Git repositories.
//
// It exposes RepositoryManager for reading commit history, branch, and worktree
// status, plus the narrow set of history mutations the override recorder
// performs (amend, stage, commit).
package gitrepo
