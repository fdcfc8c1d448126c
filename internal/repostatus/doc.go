// Package repostatus reports the repository state consulted before a
// validation override is recorded: repository presence, current branch,
// last commit, and working tree cleanliness.
package repostatus
