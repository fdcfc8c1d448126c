package tests

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pushgate/pushgate/internal/execshell"
	"github.com/pushgate/pushgate/internal/gitrepo"
)

const (
	gitBinaryNameConstant          = "git"
	gitMissingSkipMessageConstant  = "git binary not available"
	testAuthorNameConstant         = "Integration Test"
	testAuthorEmailConstant        = "integration@example.com"
	initialCommitMessageConstant   = "initial commit"
	seedFileNameConstant           = "service.go"
	seedFileContentConstant        = "package service\n"
	scratchFileNameConstant        = "scratch.txt"
	scratchFileContentConstant     = "work in progress\n"
	defaultFilePermissionsConstant = 0o644
)

func TestMain(m *testing.M) {
	_ = os.Setenv("GIT_AUTHOR_NAME", testAuthorNameConstant)
	_ = os.Setenv("GIT_AUTHOR_EMAIL", testAuthorEmailConstant)
	_ = os.Setenv("GIT_COMMITTER_NAME", testAuthorNameConstant)
	_ = os.Setenv("GIT_COMMITTER_EMAIL", testAuthorEmailConstant)
	_ = os.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	os.Exit(m.Run())
}

func requireGitBinary(testInstance *testing.T) {
	testInstance.Helper()
	if _, lookupError := exec.LookPath(gitBinaryNameConstant); lookupError != nil {
		testInstance.Skip(gitMissingSkipMessageConstant)
	}
}

func newRepositoryManager(testInstance *testing.T) *gitrepo.RepositoryManager {
	testInstance.Helper()

	shellExecutor, executorError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner())
	require.NoError(testInstance, executorError)

	repositoryManager, managerError := gitrepo.NewRepositoryManager(shellExecutor)
	require.NoError(testInstance, managerError)

	return repositoryManager
}

func runGitCommand(testInstance *testing.T, repositoryPath string, arguments ...string) string {
	testInstance.Helper()

	shellExecutor, executorError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner())
	require.NoError(testInstance, executorError)

	executionResult, executionError := shellExecutor.ExecuteGit(context.Background(), execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
	})
	require.NoError(testInstance, executionError)

	return executionResult.StandardOutput
}

func initializeRepositoryWithCommit(testInstance *testing.T) string {
	testInstance.Helper()

	repositoryPath := testInstance.TempDir()
	runGitCommand(testInstance, repositoryPath, "init")

	seedFilePath := filepath.Join(repositoryPath, seedFileNameConstant)
	writeError := os.WriteFile(seedFilePath, []byte(seedFileContentConstant), defaultFilePermissionsConstant)
	require.NoError(testInstance, writeError)

	runGitCommand(testInstance, repositoryPath, "add", seedFileNameConstant)
	runGitCommand(testInstance, repositoryPath, "commit", "-m", initialCommitMessageConstant)

	return repositoryPath
}

func stageNewFile(testInstance *testing.T, repositoryPath string) {
	testInstance.Helper()

	scratchFilePath := filepath.Join(repositoryPath, scratchFileNameConstant)
	writeError := os.WriteFile(scratchFilePath, []byte(scratchFileContentConstant), defaultFilePermissionsConstant)
	require.NoError(testInstance, writeError)

	runGitCommand(testInstance, repositoryPath, "add", scratchFileNameConstant)
}
