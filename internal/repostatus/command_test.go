package repostatus_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pushgate/pushgate/internal/repostatus"
)

func buildStatusCommand(t *testing.T, inspector repostatus.RepositoryInspector) (*bytes.Buffer, func(arguments ...string) error) {
	t.Helper()

	builder := &repostatus.CommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
		Inspector:      inspector,
	}

	command, buildError := builder.Build()
	require.NoError(t, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)

	execute := func(arguments ...string) error {
		command.SetArgs(arguments)
		return command.Execute()
	}

	return outputBuffer, execute
}

func TestStatusCommandRendersCleanRepository(t *testing.T) {
	inspector := &stubInspector{
		isRepository:      true,
		branchName:        statusTestBranchNameConstant,
		branchResolved:    true,
		lastCommitHash:    statusTestCommitHashConstant,
		lastCommitMessage: statusTestCommitMessageConstant,
	}
	outputBuffer, execute := buildStatusCommand(t, inspector)

	require.NoError(t, execute("--repository", t.TempDir()))

	renderedOutput := outputBuffer.String()
	require.Contains(t, renderedOutput, "On branch "+statusTestBranchNameConstant)
	require.Contains(t, renderedOutput, "Last commit: 0123456 fix login bug")
	require.Contains(t, renderedOutput, "Working tree clean")
	require.NotContains(t, renderedOutput, "Recorded overrides")
}

func TestStatusCommandRendersMissingRepository(t *testing.T) {
	outputBuffer, execute := buildStatusCommand(t, &stubInspector{isRepository: false})

	require.NoError(t, execute("--repository", t.TempDir()))
	require.Contains(t, outputBuffer.String(), "is not a git repository")
}

func TestStatusCommandRendersDirtyDetachedRepository(t *testing.T) {
	inspector := &stubInspector{
		isRepository:       true,
		branchResolved:     false,
		lastCommitHash:     statusTestCommitHashConstant,
		lastCommitMessage:  statusTestCommitMessageConstant,
		uncommittedChanges: true,
	}
	outputBuffer, execute := buildStatusCommand(t, inspector)

	require.NoError(t, execute("--repository", t.TempDir()))

	renderedOutput := outputBuffer.String()
	require.Contains(t, renderedOutput, "HEAD detached")
	require.Contains(t, renderedOutput, "Working tree has uncommitted changes")
}

func TestStatusCommandRejectsExtraArguments(t *testing.T) {
	_, execute := buildStatusCommand(t, &stubInspector{isRepository: true})

	executionError := execute("first-path", "second-path")
	require.Error(t, executionError)
	require.Contains(t, executionError.Error(), "at most one repository path")
}

func TestStatusCommandAcceptsPositionalPath(t *testing.T) {
	inspector := &stubInspector{
		isRepository:      true,
		branchName:        statusTestBranchNameConstant,
		branchResolved:    true,
		lastCommitHash:    statusTestCommitHashConstant,
		lastCommitMessage: statusTestCommitMessageConstant,
	}
	outputBuffer, execute := buildStatusCommand(t, inspector)

	require.NoError(t, execute(t.TempDir()))
	require.Contains(t, outputBuffer.String(), "On branch "+statusTestBranchNameConstant)
}
