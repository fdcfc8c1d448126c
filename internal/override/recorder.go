package override

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pushgate/pushgate/internal/gitrepo"
)

const (
	// SentinelFileName is the well-known path, relative to the repository
	// root, that carries override details into a dedicated commit.
	SentinelFileName = ".validation_override"
	// LogFileName is the append-only log path, relative to the repository
	// root, used by the last-resort tier.
	LogFileName = ".api_validation_overrides.log"
	// OverrideCommitBanner is the first line of every dedicated override
	// commit message.
	OverrideCommitBanner = "API Validation Override Record"

	repositoryPathFieldNameConstant  = "repository_path"
	justificationFieldNameConstant   = "justification"
	tierFieldNameConstant            = "tier"
	repositoryPathRequiredConstant   = "repository path must not be empty"
	justificationRequiredConstant    = "justification must not be empty"
	repositoryServiceMissingConstant = "repository service not configured"
	scratchFilePatternConstant       = "pushgate-amend-*.txt"
	sentinelFilePermissionsConstant  = 0o644
	logFilePermissionsConstant       = 0o644

	dirtyWorktreeReasonConstant        = "working tree has uncommitted changes"
	statusUnknownReasonConstant        = "working tree status could not be determined"
	noCommitsReasonConstant            = "repository has no commits to amend"
	scratchCreateErrorTemplateConstant = "unable to create scratch message file: %w"
	scratchWriteErrorTemplateConstant  = "unable to write scratch message file: %w"
	sentinelWriteErrorTemplateConstant = "unable to write sentinel file: %w"
	logAppendErrorTemplateConstant     = "unable to append to override log: %w"
	recordFailureTemplateConstant      = "unable to record validation override: %w"

	tierAttemptStartedMessageConstant = "Attempting override recording tier"
	tierSkippedMessageConstant        = "Skipped override recording tier"
	tierFailedMessageConstant         = "Override recording tier failed"
	tierSucceededMessageConstant      = "Recorded validation override"
	skipReasonFieldNameConstant       = "reason"

	tierSkippedOutputTemplateConstant  = "Skipping %s tier: %s\n"
	tierFallbackOutputTemplateConstant = "%s tier failed, falling back: %v\n"
)

var (
	errRepositoryServiceMissing = errors.New(repositoryServiceMissingConstant)
	errTierIneligible           = errors.New("tier preconditions not satisfied")
)

// InvalidInputError describes override option validation failures.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %s", inputError.FieldName, inputError.Message)
}

// GitRepositoryService describes the repository operations the recorder
// requires. *gitrepo.RepositoryManager satisfies this interface.
type GitRepositoryService interface {
	GetLastCommitMessage(executionContext context.Context, repositoryPath string) (string, error)
	HasUncommittedChanges(executionContext context.Context, repositoryPath string) (bool, error)
	AmendLastCommitMessageFromFile(executionContext context.Context, repositoryPath string, messageFilePath string) error
	StagePath(executionContext context.Context, repositoryPath string, relativePath string) error
	CreateCommit(executionContext context.Context, repositoryPath string, commitMessage string) error
}

// RecorderDependencies describes required collaborators for recording.
// Output receives one human-readable diagnostic line per tier skipped or
// fallen through; it defaults to discarding when unset.
type RecorderDependencies struct {
	Logger     *zap.Logger
	Repository GitRepositoryService
	Clock      Clock
	Output     io.Writer
}

// RecordOptions configures one override recording call.
type RecordOptions struct {
	RepositoryPath         string
	Justification          string
	Errors                 []string
	Warnings               []string
	StrictStatusInspection bool
}

// Recorder persists override records through the tier fallback chain.
type Recorder struct {
	logger     *zap.Logger
	repository GitRepositoryService
	clock      Clock
	output     io.Writer
}

// NewRecorder constructs a Recorder with the provided dependencies.
func NewRecorder(dependencies RecorderDependencies) (*Recorder, error) {
	if dependencies.Repository == nil {
		return nil, errRepositoryServiceMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	clock := dependencies.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	output := dependencies.Output
	if output == nil {
		output = io.Discard
	}

	recorder := &Recorder{
		logger:     logger,
		repository: dependencies.Repository,
		clock:      clock,
		output:     output,
	}

	return recorder, nil
}

type overrideStrategy struct {
	tier    Tier
	attempt func(executionContext context.Context, options RecordOptions, appendix string) error
}

// Record persists the override record using the first tier that succeeds.
// Tiers run strictly in preference order and each is attempted at most
// once; only the terminal tier's failure propagates to the caller.
func (recorder *Recorder) Record(executionContext context.Context, options RecordOptions) (Outcome, error) {
	if validationError := validateRecordOptions(options); validationError != nil {
		return Outcome{Tier: TierNone}, validationError
	}

	appendix := BuildAppendix(OverrideRecord{
		Justification: options.Justification,
		Errors:        options.Errors,
		Warnings:      options.Warnings,
	})

	strategies := []overrideStrategy{
		{tier: TierAmend, attempt: recorder.attemptAmend},
		{tier: TierOverrideCommit, attempt: recorder.attemptOverrideCommit},
		{tier: TierLogAppend, attempt: recorder.attemptLogAppend},
	}

	var lastAttemptError error
	for strategyIndex, strategy := range strategies {
		recorder.logger.Debug(tierAttemptStartedMessageConstant,
			zap.String(repositoryPathFieldNameConstant, options.RepositoryPath),
			zap.String(tierFieldNameConstant, string(strategy.tier)),
		)

		attemptError := strategy.attempt(executionContext, options, appendix)
		if attemptError == nil {
			recorder.logger.Info(tierSucceededMessageConstant,
				zap.String(repositoryPathFieldNameConstant, options.RepositoryPath),
				zap.String(tierFieldNameConstant, string(strategy.tier)),
			)
			return Outcome{Tier: strategy.tier}, nil
		}

		if errors.Is(attemptError, errTierIneligible) {
			recorder.logger.Info(tierSkippedMessageConstant,
				zap.String(repositoryPathFieldNameConstant, options.RepositoryPath),
				zap.String(tierFieldNameConstant, string(strategy.tier)),
				zap.String(skipReasonFieldNameConstant, attemptError.Error()),
			)
			fmt.Fprintf(recorder.output, tierSkippedOutputTemplateConstant, strategy.tier, ineligibilityReason(attemptError))
		} else {
			recorder.logger.Warn(tierFailedMessageConstant,
				zap.String(repositoryPathFieldNameConstant, options.RepositoryPath),
				zap.String(tierFieldNameConstant, string(strategy.tier)),
				zap.Error(attemptError),
			)
			if strategyIndex < len(strategies)-1 {
				fmt.Fprintf(recorder.output, tierFallbackOutputTemplateConstant, strategy.tier, attemptError)
			}
		}
		lastAttemptError = attemptError
	}

	return Outcome{Tier: TierNone}, fmt.Errorf(recordFailureTemplateConstant, lastAttemptError)
}

func ineligibilityReason(attemptError error) string {
	return strings.TrimPrefix(attemptError.Error(), errTierIneligible.Error()+": ")
}

func validateRecordOptions(options RecordOptions) error {
	if len(options.RepositoryPath) == 0 {
		return InvalidInputError{FieldName: repositoryPathFieldNameConstant, Message: repositoryPathRequiredConstant}
	}
	if len(options.Justification) == 0 {
		return InvalidInputError{FieldName: justificationFieldNameConstant, Message: justificationRequiredConstant}
	}
	return nil
}

// attemptAmend rewrites the last commit message to carry the appendix.
// The amended message is staged in a scratch file that is removed on
// every exit path.
func (recorder *Recorder) attemptAmend(executionContext context.Context, options RecordOptions, appendix string) error {
	uncommittedChanges, statusError := recorder.repository.HasUncommittedChanges(executionContext, options.RepositoryPath)
	if statusError != nil {
		if options.StrictStatusInspection {
			return fmt.Errorf("%w: %s", errTierIneligible, statusUnknownReasonConstant)
		}
		uncommittedChanges = false
	}
	if uncommittedChanges {
		return fmt.Errorf("%w: %s", errTierIneligible, dirtyWorktreeReasonConstant)
	}

	lastCommitMessage, messageError := recorder.repository.GetLastCommitMessage(executionContext, options.RepositoryPath)
	if messageError != nil {
		var noCommits gitrepo.NoCommitsError
		if errors.As(messageError, &noCommits) {
			return fmt.Errorf("%w: %s", errTierIneligible, noCommitsReasonConstant)
		}
		return messageError
	}

	amendedMessage := lastCommitMessage + appendix

	scratchFile, createError := os.CreateTemp("", scratchFilePatternConstant)
	if createError != nil {
		return fmt.Errorf(scratchCreateErrorTemplateConstant, createError)
	}
	scratchFilePath := scratchFile.Name()
	defer func() {
		_ = os.Remove(scratchFilePath)
	}()

	if _, writeError := scratchFile.WriteString(amendedMessage); writeError != nil {
		_ = scratchFile.Close()
		return fmt.Errorf(scratchWriteErrorTemplateConstant, writeError)
	}
	if closeError := scratchFile.Close(); closeError != nil {
		return fmt.Errorf(scratchWriteErrorTemplateConstant, closeError)
	}

	return recorder.repository.AmendLastCommitMessageFromFile(executionContext, options.RepositoryPath, scratchFilePath)
}

// attemptOverrideCommit writes the override record to the sentinel file
// and commits it under a fixed banner. A sentinel file left behind by a
// failed stage or commit step is not cleaned up.
func (recorder *Recorder) attemptOverrideCommit(executionContext context.Context, options RecordOptions, appendix string) error {
	sentinelContent := appendix + appendixLineSeparatorConstant
	sentinelPath := filepath.Join(options.RepositoryPath, SentinelFileName)

	if writeError := os.WriteFile(sentinelPath, []byte(sentinelContent), sentinelFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(sentinelWriteErrorTemplateConstant, writeError)
	}

	if stageError := recorder.repository.StagePath(executionContext, options.RepositoryPath, SentinelFileName); stageError != nil {
		return stageError
	}

	commitMessage := OverrideCommitBanner + appendix
	return recorder.repository.CreateCommit(executionContext, options.RepositoryPath, commitMessage)
}

// attemptLogAppend appends a timestamped block to the override log. The
// file is opened in append mode so concurrent writers do not destroy
// prior entries.
func (recorder *Recorder) attemptLogAppend(executionContext context.Context, options RecordOptions, appendix string) error {
	_ = executionContext

	logFilePath := filepath.Join(options.RepositoryPath, LogFileName)
	logFile, openError := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFilePermissionsConstant)
	if openError != nil {
		return fmt.Errorf(logAppendErrorTemplateConstant, openError)
	}
	defer func() {
		_ = logFile.Close()
	}()

	timestamp := recorder.clock.Now().UTC().Format(time.RFC3339)
	logEntry := appendixRule() + appendixLineSeparatorConstant + timestamp + appendix + appendixLineSeparatorConstant

	if _, writeError := logFile.WriteString(logEntry); writeError != nil {
		return fmt.Errorf(logAppendErrorTemplateConstant, writeError)
	}

	return nil
}
