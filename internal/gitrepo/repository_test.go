package gitrepo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pushgate/pushgate/internal/execshell"
	"github.com/pushgate/pushgate/internal/gitrepo"
)

const (
	testRepositoryPathConstant        = "/tmp/example"
	testLastCommitMessageConstant     = "fix login bug"
	testLastCommitHashConstant        = "0123456789abcdef0123456789abcdef01234567"
	testUnbornBranchStderrConstant    = "fatal: your current branch 'main' does not have any commits yet"
	testUnknownRevisionStderrConstant = "fatal: ambiguous argument 'HEAD': unknown revision or path not in the working tree."
)

type scriptedGitExecutor struct {
	responses        map[string]execshell.ExecutionResult
	failures         map[string]error
	recordedCommands []execshell.CommandDetails
}

func newScriptedGitExecutor() *scriptedGitExecutor {
	return &scriptedGitExecutor{
		responses: map[string]execshell.ExecutionResult{},
		failures:  map[string]error{},
	}
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)
	subcommand := ""
	if len(details.Arguments) > 0 {
		subcommand = details.Arguments[0]
	}
	if failure, exists := executor.failures[subcommand]; exists {
		return execshell.ExecutionResult{}, failure
	}
	return executor.responses[subcommand], nil
}

func commandFailure(exitCode int, standardError string) error {
	return execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit},
		Result:  execshell.ExecutionResult{ExitCode: exitCode, StandardError: standardError},
	}
}

func TestNewRepositoryManagerRequiresExecutor(testInstance *testing.T) {
	manager, creationError := gitrepo.NewRepositoryManager(nil)
	require.Error(testInstance, creationError)
	require.Nil(testInstance, manager)
}

func TestGetLastCommitMessageStripsWhitespace(testInstance *testing.T) {
	executor := newScriptedGitExecutor()
	executor.responses["log"] = execshell.ExecutionResult{StandardOutput: testLastCommitMessageConstant + "\n\n"}

	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	message, messageError := manager.GetLastCommitMessage(context.Background(), testRepositoryPathConstant)
	require.NoError(testInstance, messageError)
	require.Equal(testInstance, testLastCommitMessageConstant, message)
	require.Equal(testInstance, testRepositoryPathConstant, executor.recordedCommands[0].WorkingDirectory)
}

func TestGetLastCommitMessageReportsNoCommits(testInstance *testing.T) {
	testCases := []struct {
		name          string
		standardError string
	}{
		{name: "unborn_branch", standardError: testUnbornBranchStderrConstant},
		{name: "unknown_revision", standardError: testUnknownRevisionStderrConstant},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := newScriptedGitExecutor()
			executor.failures["log"] = commandFailure(128, testCase.standardError)

			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(testInstance, creationError)

			_, messageError := manager.GetLastCommitMessage(context.Background(), testRepositoryPathConstant)
			require.Error(testInstance, messageError)

			var noCommits gitrepo.NoCommitsError
			require.ErrorAs(testInstance, messageError, &noCommits)
			require.Equal(testInstance, testRepositoryPathConstant, noCommits.RepositoryPath)
		})
	}
}

func TestGetLastCommitHashResolvesHead(testInstance *testing.T) {
	executor := newScriptedGitExecutor()
	executor.responses["rev-parse"] = execshell.ExecutionResult{StandardOutput: testLastCommitHashConstant + "\n"}

	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	commitHash, hashError := manager.GetLastCommitHash(context.Background(), testRepositoryPathConstant)
	require.NoError(testInstance, hashError)
	require.Equal(testInstance, testLastCommitHashConstant, commitHash)
}

func TestIsRepositoryReportsFalseOnBackendErrors(testInstance *testing.T) {
	executor := newScriptedGitExecutor()
	executor.failures["rev-parse"] = commandFailure(128, "fatal: not a git repository")

	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	require.False(testInstance, manager.IsRepository(context.Background(), testRepositoryPathConstant))

	executor.failures = map[string]error{}
	require.True(testInstance, manager.IsRepository(context.Background(), testRepositoryPathConstant))
}

func TestGetCurrentBranchHandlesDetachedHead(testInstance *testing.T) {
	testCases := []struct {
		name           string
		standardOutput string
		failure        error
		expectedBranch string
		expectedFound  bool
	}{
		{name: "named_branch", standardOutput: "main\n", expectedBranch: "main", expectedFound: true},
		{name: "detached_head", standardOutput: "HEAD\n", expectedBranch: "", expectedFound: false},
		{name: "backend_error", failure: errors.New("git unavailable"), expectedBranch: "", expectedFound: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := newScriptedGitExecutor()
			if testCase.failure != nil {
				executor.failures["rev-parse"] = testCase.failure
			} else {
				executor.responses["rev-parse"] = execshell.ExecutionResult{StandardOutput: testCase.standardOutput}
			}

			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(testInstance, creationError)

			branchName, branchFound := manager.GetCurrentBranch(context.Background(), testRepositoryPathConstant)
			require.Equal(testInstance, testCase.expectedBranch, branchName)
			require.Equal(testInstance, testCase.expectedFound, branchFound)
		})
	}
}

func TestHasUncommittedChangesInterpretsPorcelainOutput(testInstance *testing.T) {
	executor := newScriptedGitExecutor()
	executor.responses["status"] = execshell.ExecutionResult{StandardOutput: " M internal/service.go\n"}

	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	dirty, statusError := manager.HasUncommittedChanges(context.Background(), testRepositoryPathConstant)
	require.NoError(testInstance, statusError)
	require.True(testInstance, dirty)

	executor.responses["status"] = execshell.ExecutionResult{StandardOutput: "\n"}
	clean, cleanError := manager.HasUncommittedChanges(context.Background(), testRepositoryPathConstant)
	require.NoError(testInstance, cleanError)
	require.False(testInstance, clean)

	executor.failures["status"] = commandFailure(129, "fatal: unusable status")
	_, failureError := manager.HasUncommittedChanges(context.Background(), testRepositoryPathConstant)
	require.Error(testInstance, failureError)
}

func TestHistoryMutationsIssueExpectedGitCommands(testInstance *testing.T) {
	executor := newScriptedGitExecutor()

	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	require.NoError(testInstance, manager.AmendLastCommitMessageFromFile(context.Background(), testRepositoryPathConstant, "/tmp/scratch"))
	require.NoError(testInstance, manager.StagePath(context.Background(), testRepositoryPathConstant, ".validation_override"))
	require.NoError(testInstance, manager.CreateCommit(context.Background(), testRepositoryPathConstant, "API Validation Override Record"))

	require.Len(testInstance, executor.recordedCommands, 3)
	require.Equal(testInstance, []string{"commit", "--amend", "-F", "/tmp/scratch"}, executor.recordedCommands[0].Arguments)
	require.Equal(testInstance, []string{"add", ".validation_override"}, executor.recordedCommands[1].Arguments)
	require.Equal(testInstance, []string{"commit", "-m", "API Validation Override Record"}, executor.recordedCommands[2].Arguments)
}
