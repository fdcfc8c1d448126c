package override

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pushgate/pushgate/internal/execshell"
	"github.com/pushgate/pushgate/internal/gitrepo"
	"github.com/pushgate/pushgate/internal/ui"
	flagutils "github.com/pushgate/pushgate/internal/utils/flags"
	pathutils "github.com/pushgate/pushgate/internal/utils/path"
)

const (
	commandUseConstant              = "record"
	commandShortDescriptionConstant = "Record that a commit was pushed despite failing validation"
	commandLongDescriptionConstant  = "record attaches a validation override notice to repository history. It amends the last commit when the working tree is clean, falls back to a dedicated override commit, and as a last resort appends to a local log file."

	unexpectedArgumentsMessageConstant    = "record does not accept positional arguments"
	commandExecutionErrorTemplateConstant = "override recording failed: %w"
	notARepositoryTemplateConstant        = "%s is not a git repository"

	flagJustificationNameConstant        = "justification"
	flagJustificationShorthandConstant   = "j"
	flagJustificationDescriptionConstant = "Reason the commit was pushed despite validation failures"
	flagErrorNameConstant                = "error"
	flagErrorDescriptionConstant         = "Validation error to record (repeatable)"
	flagWarningNameConstant              = "warning"
	flagWarningDescriptionConstant       = "Validation warning to record (repeatable)"
	flagRepositoryNameConstant           = "repository"
	flagRepositoryShorthandConstant      = "C"
	flagRepositoryDescriptionConstant    = "Path to the repository root (defaults to the working directory)"
	flagStrictStatusNameConstant         = "strict-status"
	flagStrictStatusDescriptionConstant  = "Treat an unreadable working tree status as unsafe to amend"

	amendedOutcomeMessageConstant        = "Override recorded by amending the last commit."
	overrideCommitOutcomeMessageConstant = "Override recorded in a dedicated override commit."
	logAppendOutcomeMessageConstant      = "Override recorded in " + LogFileName + "."
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the cobra command for override recording.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	GitExecutor                  gitrepo.CommandExecutor
	Repository                   GitRepositoryService
	Clock                        Clock
	CommandEventsObserver        execshell.CommandEventObserver
	WorkingDirectory             string

	strictStatusToggle bool
}

// Build constructs the record command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().StringP(flagJustificationNameConstant, flagJustificationShorthandConstant, "", flagJustificationDescriptionConstant)
	command.Flags().StringArray(flagErrorNameConstant, nil, flagErrorDescriptionConstant)
	command.Flags().StringArray(flagWarningNameConstant, nil, flagWarningDescriptionConstant)
	command.Flags().StringP(flagRepositoryNameConstant, flagRepositoryShorthandConstant, "", flagRepositoryDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), &builder.strictStatusToggle, flagStrictStatusNameConstant, false, flagStrictStatusDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()
	repositoryService, serviceError := builder.resolveRepositoryService(logger)
	if serviceError != nil {
		return serviceError
	}

	if repositoryChecker, checkable := repositoryService.(repositoryPresenceChecker); checkable {
		if !repositoryChecker.IsRepository(command.Context(), options.RepositoryPath) {
			return fmt.Errorf(notARepositoryTemplateConstant, options.RepositoryPath)
		}
	}

	recorder, recorderError := NewRecorder(RecorderDependencies{
		Logger:     logger,
		Repository: repositoryService,
		Clock:      builder.Clock,
		Output:     command.OutOrStdout(),
	})
	if recorderError != nil {
		return recorderError
	}

	outcome, recordError := recorder.Record(command.Context(), options)
	if recordError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, recordError)
	}

	renderOutcome(command, outcome)
	return nil
}

type repositoryPresenceChecker interface {
	IsRepository(executionContext context.Context, repositoryPath string) bool
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (RecordOptions, error) {
	configuration := builder.resolveConfiguration()

	justificationValue, _ := command.Flags().GetString(flagJustificationNameConstant)
	errorValues, _ := command.Flags().GetStringArray(flagErrorNameConstant)
	warningValues, _ := command.Flags().GetStringArray(flagWarningNameConstant)
	repositoryValue, _ := command.Flags().GetString(flagRepositoryNameConstant)

	repositoryPath := strings.TrimSpace(repositoryValue)
	if len(repositoryPath) == 0 {
		repositoryPath = configuration.Repository
	}
	if len(repositoryPath) == 0 {
		workingDirectory, workingDirectoryError := builder.resolveWorkingDirectory()
		if workingDirectoryError != nil {
			return RecordOptions{}, workingDirectoryError
		}
		repositoryPath = workingDirectory
	}
	repositoryPath = pathutils.NewHomeExpander().Expand(repositoryPath)

	strictStatus := configuration.StrictStatus
	if command.Flags().Changed(flagStrictStatusNameConstant) {
		strictStatus = builder.strictStatusToggle
	}

	options := RecordOptions{
		RepositoryPath:         repositoryPath,
		Justification:          strings.TrimSpace(justificationValue),
		Errors:                 errorValues,
		Warnings:               warningValues,
		StrictStatusInspection: strictStatus,
	}

	return options, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveRepositoryService(logger *zap.Logger) (GitRepositoryService, error) {
	if builder.Repository != nil {
		return builder.Repository, nil
	}

	gitExecutor := builder.GitExecutor
	if gitExecutor == nil {
		commandRunner := execshell.NewOSCommandRunner()
		shellExecutor, creationError := execshell.NewShellExecutorWithObserver(logger, commandRunner, builder.resolveCommandObserver(logger))
		if creationError != nil {
			return nil, creationError
		}
		gitExecutor = shellExecutor
	}

	return gitrepo.NewRepositoryManager(gitExecutor)
}

func (builder *CommandBuilder) resolveCommandObserver(logger *zap.Logger) execshell.CommandEventObserver {
	if builder.CommandEventsObserver != nil {
		return builder.CommandEventsObserver
	}
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		return ui.NewConsoleCommandEventLogger(logger)
	}
	return nil
}

func (builder *CommandBuilder) resolveWorkingDirectory() (string, error) {
	if len(builder.WorkingDirectory) > 0 {
		return builder.WorkingDirectory, nil
	}
	return os.Getwd()
}

func renderOutcome(command *cobra.Command, outcome Outcome) {
	outputWriter := command.OutOrStdout()

	switch outcome.Tier {
	case TierAmend:
		color.New(color.FgGreen).Fprintln(outputWriter, amendedOutcomeMessageConstant)
	case TierOverrideCommit:
		color.New(color.FgGreen).Fprintln(outputWriter, overrideCommitOutcomeMessageConstant)
	case TierLogAppend:
		color.New(color.FgYellow).Fprintln(outputWriter, logAppendOutcomeMessageConstant)
	}
}
