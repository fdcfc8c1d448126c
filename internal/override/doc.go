// Package override records that a commit was pushed despite failing
// validation. It renders the justification and failed checks into a
// commit-message appendix and persists it through a three-tier fallback
// chain: amend the last commit, create a dedicated override commit, or
// append to a local log file.
package override
