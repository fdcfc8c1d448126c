package tests

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pushgate/pushgate/internal/override"
)

const (
	integrationJustificationConstant = "hotfix for production outage"
	integrationErrorDetailConstant   = "missing field: user_id"
	integrationWarningDetailConstant = "deprecated parameter: page_size"
	overrideNoticeHeadingConstant    = "⚠️  VALIDATION OVERRIDE NOTICE"
	lastCommitMessageFormatConstant  = "--pretty=%B"
	commitCountRevisionRangeConstant = "HEAD"
)

func newOverrideRecorder(testInstance *testing.T) *override.Recorder {
	testInstance.Helper()

	recorder, recorderError := override.NewRecorder(override.RecorderDependencies{
		Repository: newRepositoryManager(testInstance),
	})
	require.NoError(testInstance, recorderError)

	return recorder
}

func lastCommitMessage(testInstance *testing.T, repositoryPath string) string {
	testInstance.Helper()
	return runGitCommand(testInstance, repositoryPath, "log", "-1", lastCommitMessageFormatConstant)
}

func TestRecordAmendsCleanRepositoryEndToEnd(testInstance *testing.T) {
	requireGitBinary(testInstance)

	repositoryPath := initializeRepositoryWithCommit(testInstance)
	recorder := newOverrideRecorder(testInstance)

	outcome, recordError := recorder.Record(context.Background(), override.RecordOptions{
		RepositoryPath: repositoryPath,
		Justification:  integrationJustificationConstant,
		Errors:         []string{integrationErrorDetailConstant},
		Warnings:       []string{integrationWarningDetailConstant},
	})
	require.NoError(testInstance, recordError)
	require.Equal(testInstance, override.TierAmend, outcome.Tier)

	commitMessage := lastCommitMessage(testInstance, repositoryPath)
	require.True(testInstance, strings.HasPrefix(commitMessage, initialCommitMessageConstant))
	require.Contains(testInstance, commitMessage, overrideNoticeHeadingConstant)
	require.Contains(testInstance, commitMessage, integrationJustificationConstant)
	require.Contains(testInstance, commitMessage, "VALIDATION ERRORS (1):")
	require.Contains(testInstance, commitMessage, "  • "+integrationErrorDetailConstant)
	require.Contains(testInstance, commitMessage, "VALIDATION WARNINGS (1):")

	commitCount := strings.TrimSpace(runGitCommand(testInstance, repositoryPath, "rev-list", "--count", commitCountRevisionRangeConstant))
	require.Equal(testInstance, "1", commitCount)
}

func TestRecordCreatesOverrideCommitOnDirtyTree(testInstance *testing.T) {
	requireGitBinary(testInstance)

	repositoryPath := initializeRepositoryWithCommit(testInstance)
	stageNewFile(testInstance, repositoryPath)
	recorder := newOverrideRecorder(testInstance)

	outcome, recordError := recorder.Record(context.Background(), override.RecordOptions{
		RepositoryPath: repositoryPath,
		Justification:  integrationJustificationConstant,
		Errors:         []string{integrationErrorDetailConstant},
	})
	require.NoError(testInstance, recordError)
	require.Equal(testInstance, override.TierOverrideCommit, outcome.Tier)

	sentinelContent, sentinelReadError := os.ReadFile(filepath.Join(repositoryPath, override.SentinelFileName))
	require.NoError(testInstance, sentinelReadError)
	require.Contains(testInstance, string(sentinelContent), overrideNoticeHeadingConstant)

	commitMessage := lastCommitMessage(testInstance, repositoryPath)
	require.True(testInstance, strings.HasPrefix(commitMessage, override.OverrideCommitBanner))
	require.Contains(testInstance, commitMessage, integrationJustificationConstant)

	commitCount := strings.TrimSpace(runGitCommand(testInstance, repositoryPath, "rev-list", "--count", commitCountRevisionRangeConstant))
	require.Equal(testInstance, "2", commitCount)
}

func TestRecordCreatesOverrideCommitInEmptyRepository(testInstance *testing.T) {
	requireGitBinary(testInstance)

	repositoryPath := testInstance.TempDir()
	runGitCommand(testInstance, repositoryPath, "init")
	recorder := newOverrideRecorder(testInstance)

	outcome, recordError := recorder.Record(context.Background(), override.RecordOptions{
		RepositoryPath: repositoryPath,
		Justification:  integrationJustificationConstant,
	})
	require.NoError(testInstance, recordError)
	require.Equal(testInstance, override.TierOverrideCommit, outcome.Tier)

	commitMessage := lastCommitMessage(testInstance, repositoryPath)
	require.True(testInstance, strings.HasPrefix(commitMessage, override.OverrideCommitBanner))
}

func TestRecordAppendsToLogOutsideRepository(testInstance *testing.T) {
	requireGitBinary(testInstance)

	directoryPath := testInstance.TempDir()
	recorder := newOverrideRecorder(testInstance)

	outcome, recordError := recorder.Record(context.Background(), override.RecordOptions{
		RepositoryPath: directoryPath,
		Justification:  integrationJustificationConstant,
		Errors:         []string{integrationErrorDetailConstant},
	})
	require.NoError(testInstance, recordError)
	require.Equal(testInstance, override.TierLogAppend, outcome.Tier)

	logContent, logReadError := os.ReadFile(filepath.Join(directoryPath, override.LogFileName))
	require.NoError(testInstance, logReadError)
	require.Contains(testInstance, string(logContent), overrideNoticeHeadingConstant)
	require.Contains(testInstance, string(logContent), integrationJustificationConstant)
	require.Equal(testInstance, 1, strings.Count(string(logContent), overrideNoticeHeadingConstant))
}
