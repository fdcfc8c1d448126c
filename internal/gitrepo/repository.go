package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pushgate/pushgate/internal/execshell"
)

const (
	gitLogSubcommandNameConstant          = "log"
	gitLogLimitFlagConstant               = "-1"
	gitLogMessageFormatFlagConstant       = "--pretty=format:%B"
	gitRevParseSubcommandNameConstant     = "rev-parse"
	gitGitDirFlagConstant                 = "--git-dir"
	gitAbbrevRefFlagConstant              = "--abbrev-ref"
	gitHeadReferenceConstant              = "HEAD"
	gitStatusSubcommandNameConstant       = "status"
	gitStatusPorcelainFlagConstant        = "--porcelain"
	gitCommitSubcommandNameConstant       = "commit"
	gitAmendFlagConstant                  = "--amend"
	gitMessageFileFlagConstant            = "-F"
	gitMessageFlagConstant                = "-m"
	gitAddSubcommandNameConstant          = "add"
	gitExecutorMissingMessageConstant     = "git executor not configured"
	noCommitsErrorTemplateConstant        = "repository at %s has no commits"
	lastMessageReadErrorTemplateConstant  = "unable to read last commit message: %w"
	lastHashReadErrorTemplateConstant     = "unable to read last commit hash: %w"
	statusReadErrorTemplateConstant       = "unable to read working tree status: %w"
	amendErrorTemplateConstant            = "unable to amend last commit: %w"
	stageErrorTemplateConstant            = "unable to stage %s: %w"
	commitCreationErrorTemplateConstant   = "unable to create commit: %w"
	unbornBranchStderrFragmentConstant    = "does not have any commits"
	unknownRevisionStderrFragmentConstant = "unknown revision"
	badRevisionStderrFragmentConstant     = "bad revision"
	ambiguousHeadStderrFragmentConstant   = "ambiguous argument 'head'"
)

var errGitExecutorMissing = errors.New(gitExecutorMissingMessageConstant)

// NoCommitsError indicates HEAD does not resolve to any commit in the repository.
type NoCommitsError struct {
	RepositoryPath string
}

// Error describes the missing history.
func (noCommits NoCommitsError) Error() string {
	return fmt.Sprintf(noCommitsErrorTemplateConstant, noCommits.RepositoryPath)
}

// CommandExecutor exposes the subset of shell execution used by the repository manager.
type CommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager performs repository-scoped git queries and history mutations.
//
// Every operation receives the repository path explicitly; the manager never
// relies on the process working directory.
type RepositoryManager struct {
	gitExecutor CommandExecutor
}

// NewRepositoryManager constructs a RepositoryManager around the provided executor.
func NewRepositoryManager(gitExecutor CommandExecutor) (*RepositoryManager, error) {
	if gitExecutor == nil {
		return nil, errGitExecutorMissing
	}
	return &RepositoryManager{gitExecutor: gitExecutor}, nil
}

// GetLastCommitMessage returns the whitespace-stripped message of the most recent commit.
func (manager *RepositoryManager) GetLastCommitMessage(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := manager.runGit(executionContext, repositoryPath, gitLogSubcommandNameConstant, gitLogLimitFlagConstant, gitLogMessageFormatFlagConstant)
	if executionError != nil {
		if isNoCommitsFailure(executionError) {
			return "", NoCommitsError{RepositoryPath: repositoryPath}
		}
		return "", fmt.Errorf(lastMessageReadErrorTemplateConstant, executionError)
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// GetLastCommitHash returns the hash of the most recent commit.
func (manager *RepositoryManager) GetLastCommitHash(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := manager.runGit(executionContext, repositoryPath, gitRevParseSubcommandNameConstant, gitHeadReferenceConstant)
	if executionError != nil {
		if isNoCommitsFailure(executionError) {
			return "", NoCommitsError{RepositoryPath: repositoryPath}
		}
		return "", fmt.Errorf(lastHashReadErrorTemplateConstant, executionError)
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// IsRepository reports whether the path belongs to a git repository; backend errors report false.
func (manager *RepositoryManager) IsRepository(executionContext context.Context, repositoryPath string) bool {
	_, executionError := manager.runGit(executionContext, repositoryPath, gitRevParseSubcommandNameConstant, gitGitDirFlagConstant)
	return executionError == nil
}

// GetCurrentBranch returns the current branch name; detached HEAD and backend errors report no branch.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, bool) {
	executionResult, executionError := manager.runGit(executionContext, repositoryPath, gitRevParseSubcommandNameConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant)
	if executionError != nil {
		return "", false
	}
	branchName := strings.TrimSpace(executionResult.StandardOutput)
	if len(branchName) == 0 || strings.EqualFold(branchName, gitHeadReferenceConstant) {
		return "", false
	}
	return branchName, true
}

// HasUncommittedChanges reports whether the working tree contains staged or unstaged changes.
//
// The error is returned alongside the boolean so callers choose how an
// unreadable status is interpreted.
func (manager *RepositoryManager) HasUncommittedChanges(executionContext context.Context, repositoryPath string) (bool, error) {
	executionResult, executionError := manager.runGit(executionContext, repositoryPath, gitStatusSubcommandNameConstant, gitStatusPorcelainFlagConstant)
	if executionError != nil {
		return false, fmt.Errorf(statusReadErrorTemplateConstant, executionError)
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) > 0, nil
}

// AmendLastCommitMessageFromFile replaces the last commit's message with the contents of the named file.
func (manager *RepositoryManager) AmendLastCommitMessageFromFile(executionContext context.Context, repositoryPath string, messageFilePath string) error {
	_, executionError := manager.runGit(executionContext, repositoryPath, gitCommitSubcommandNameConstant, gitAmendFlagConstant, gitMessageFileFlagConstant, messageFilePath)
	if executionError != nil {
		return fmt.Errorf(amendErrorTemplateConstant, executionError)
	}
	return nil
}

// StagePath adds the provided repository-relative path to the index.
func (manager *RepositoryManager) StagePath(executionContext context.Context, repositoryPath string, relativePath string) error {
	_, executionError := manager.runGit(executionContext, repositoryPath, gitAddSubcommandNameConstant, relativePath)
	if executionError != nil {
		return fmt.Errorf(stageErrorTemplateConstant, relativePath, executionError)
	}
	return nil
}

// CreateCommit records a new commit carrying the provided message.
func (manager *RepositoryManager) CreateCommit(executionContext context.Context, repositoryPath string, commitMessage string) error {
	_, executionError := manager.runGit(executionContext, repositoryPath, gitCommitSubcommandNameConstant, gitMessageFlagConstant, commitMessage)
	if executionError != nil {
		return fmt.Errorf(commitCreationErrorTemplateConstant, executionError)
	}
	return nil
}

func (manager *RepositoryManager) runGit(executionContext context.Context, repositoryPath string, arguments ...string) (execshell.ExecutionResult, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
	}
	return manager.gitExecutor.ExecuteGit(executionContext, commandDetails)
}

func isNoCommitsFailure(executionError error) bool {
	var commandFailure execshell.CommandFailedError
	if !errors.As(executionError, &commandFailure) {
		return false
	}

	loweredStandardError := strings.ToLower(commandFailure.Result.StandardError)
	stderrFragments := []string{
		unbornBranchStderrFragmentConstant,
		unknownRevisionStderrFragmentConstant,
		badRevisionStderrFragmentConstant,
		ambiguousHeadStderrFragmentConstant,
	}
	for _, fragment := range stderrFragments {
		if strings.Contains(loweredStandardError, fragment) {
			return true
		}
	}
	return false
}
