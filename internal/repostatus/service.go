package repostatus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pushgate/pushgate/internal/gitrepo"
	"github.com/pushgate/pushgate/internal/override"
)

const (
	inspectorMissingMessageConstant = "repository inspector not configured"
	subjectLineSeparatorConstant    = "\n"
	overrideNoticeHeadingConstant   = "VALIDATION OVERRIDE NOTICE"
)

var errInspectorMissing = errors.New(inspectorMissingMessageConstant)

// RepositoryInspector describes the read-only queries required to build a
// status report. *gitrepo.RepositoryManager satisfies this interface.
type RepositoryInspector interface {
	GetLastCommitMessage(executionContext context.Context, repositoryPath string) (string, error)
	GetLastCommitHash(executionContext context.Context, repositoryPath string) (string, error)
	IsRepository(executionContext context.Context, repositoryPath string) bool
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, bool)
	HasUncommittedChanges(executionContext context.Context, repositoryPath string) (bool, error)
}

// StatusReport captures the repository state at the time of inspection.
type StatusReport struct {
	RepositoryPath     string
	IsRepository       bool
	BranchName         string
	DetachedHead       bool
	HasCommits         bool
	LastCommitHash     string
	LastCommitSubject  string
	UncommittedChanges bool
	StatusKnown        bool
	OverrideLogEntries int
}

// Service assembles status reports for repositories.
type Service struct {
	logger    *zap.Logger
	inspector RepositoryInspector
}

// NewService constructs a Service with the provided collaborators.
func NewService(logger *zap.Logger, inspector RepositoryInspector) (*Service, error) {
	if inspector == nil {
		return nil, errInspectorMissing
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{logger: logger, inspector: inspector}, nil
}

// BuildReport inspects the repository at the provided path. Every query
// runs fresh; the report is a point-in-time view, not a snapshot.
func (service *Service) BuildReport(executionContext context.Context, repositoryPath string) StatusReport {
	report := StatusReport{RepositoryPath: repositoryPath}

	report.IsRepository = service.inspector.IsRepository(executionContext, repositoryPath)
	if !report.IsRepository {
		return report
	}

	branchName, branchResolved := service.inspector.GetCurrentBranch(executionContext, repositoryPath)
	report.BranchName = branchName
	report.DetachedHead = !branchResolved

	lastCommitHash, hashError := service.inspector.GetLastCommitHash(executionContext, repositoryPath)
	if hashError == nil {
		report.HasCommits = true
		report.LastCommitHash = lastCommitHash
	} else {
		var noCommits gitrepo.NoCommitsError
		if !errors.As(hashError, &noCommits) {
			service.logger.Debug("Unable to resolve last commit hash", zap.String("repository_path", repositoryPath), zap.Error(hashError))
		}
	}

	if report.HasCommits {
		lastCommitMessage, messageError := service.inspector.GetLastCommitMessage(executionContext, repositoryPath)
		if messageError == nil {
			report.LastCommitSubject = firstLine(lastCommitMessage)
		}
	}

	uncommittedChanges, statusError := service.inspector.HasUncommittedChanges(executionContext, repositoryPath)
	if statusError == nil {
		report.StatusKnown = true
		report.UncommittedChanges = uncommittedChanges
	}

	report.OverrideLogEntries = countOverrideLogEntries(repositoryPath)

	return report
}

func firstLine(message string) string {
	subject, _, _ := strings.Cut(message, subjectLineSeparatorConstant)
	return strings.TrimSpace(subject)
}

// countOverrideLogEntries counts recorded blocks in the override log.
// Every appended block carries exactly one override notice heading.
func countOverrideLogEntries(repositoryPath string) int {
	logContent, readError := os.ReadFile(filepath.Join(repositoryPath, override.LogFileName))
	if readError != nil {
		return 0
	}
	return strings.Count(string(logContent), overrideNoticeHeadingConstant)
}
