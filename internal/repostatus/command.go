package repostatus

import (
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
	pathutils "github.com/pushgate/pushgate/internal/utils/path"
)

const (
	commandUseConstant              = "status"
	commandShortDescriptionConstant = "Show the repository state consulted before recording an override"
	commandLongDescriptionConstant  = "status reports whether the path is a git repository, the current branch, the last commit, working tree cleanliness, and any overrides already captured in the local log file."

	unexpectedArgumentsMessageConstant = "status accepts at most one repository path"
	flagRepositoryNameConstant         = "repository"
	flagRepositoryShorthandConstant    = "C"
	flagRepositoryDescriptionConstant  = "Path to the repository root (defaults to the working directory)"

	notARepositoryTemplateConstant  = "%s is not a git repository\n"
	branchLineTemplateConstant      = "On branch %s\n"
	detachedHeadLineConstant        = "HEAD detached"
	noCommitsLineConstant           = "No commits yet"
	lastCommitLineTemplateConstant  = "Last commit: %s %s\n"
	cleanWorktreeLineConstant       = "Working tree clean"
	dirtyWorktreeLineConstant       = "Working tree has uncommitted changes"
	unknownWorktreeLineConstant     = "Working tree status unknown"
	overrideLogLineTemplateConstant = "Recorded overrides in local log: %d\n"
	shortCommitHashLengthConstant   = 7
)

var errTooManyArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the cobra command for repository status reporting.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	Inspector                    RepositoryInspector
	GitExecutor                  gitrepo.CommandExecutor
	CommandEventsObserver        execshell.CommandEventObserver
	WorkingDirectory             string
}

// Build constructs the status command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().StringP(flagRepositoryNameConstant, flagRepositoryShorthandConstant, "", flagRepositoryDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 1 {
		return errTooManyArguments
	}

	repositoryPath, pathError := builder.resolveRepositoryPath(command, arguments)
	if pathError != nil {
		return pathError
	}

	logger := builder.resolveLogger()
	inspector, inspectorError := builder.resolveInspector(logger)
	if inspectorError != nil {
		return inspectorError
	}

	service, serviceError := NewService(logger, inspector)
	if serviceError != nil {
		return serviceError
	}

	report := service.BuildReport(command.Context(), repositoryPath)
	renderReport(command, report)
	return nil
}

func (builder *CommandBuilder) resolveRepositoryPath(command *cobra.Command, arguments []string) (string, error) {
	repositoryValue, _ := command.Flags().GetString(flagRepositoryNameConstant)
	repositoryPath := strings.TrimSpace(repositoryValue)
	if len(repositoryPath) == 0 && len(arguments) == 1 {
		repositoryPath = strings.TrimSpace(arguments[0])
	}
	if len(repositoryPath) == 0 {
		if len(builder.WorkingDirectory) > 0 {
			repositoryPath = builder.WorkingDirectory
		} else {
			workingDirectory, workingDirectoryError := os.Getwd()
			if workingDirectoryError != nil {
				return "", workingDirectoryError
			}
			repositoryPath = workingDirectory
		}
	}

	return pathutils.NewHomeExpander().Expand(repositoryPath), nil
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

func (builder *CommandBuilder) resolveInspector(logger *zap.Logger) (RepositoryInspector, error) {
	if builder.Inspector != nil {
		return builder.Inspector, nil
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

func renderReport(command *cobra.Command, report StatusReport) {
	outputWriter := command.OutOrStdout()

	if !report.IsRepository {
		color.New(color.FgRed).Fprintf(outputWriter, notARepositoryTemplateConstant, report.RepositoryPath)
		return
	}

	if report.DetachedHead {
		color.New(color.FgYellow).Fprintln(outputWriter, detachedHeadLineConstant)
	} else {
		fmt.Fprintf(outputWriter, branchLineTemplateConstant, report.BranchName)
	}

	if report.HasCommits {
		fmt.Fprintf(outputWriter, lastCommitLineTemplateConstant, shortCommitHash(report.LastCommitHash), report.LastCommitSubject)
	} else {
		color.New(color.FgYellow).Fprintln(outputWriter, noCommitsLineConstant)
	}

	switch {
	case !report.StatusKnown:
		color.New(color.FgYellow).Fprintln(outputWriter, unknownWorktreeLineConstant)
	case report.UncommittedChanges:
		color.New(color.FgRed).Fprintln(outputWriter, dirtyWorktreeLineConstant)
	default:
		color.New(color.FgGreen).Fprintln(outputWriter, cleanWorktreeLineConstant)
	}

	if report.OverrideLogEntries > 0 {
		color.New(color.FgYellow).Fprintf(outputWriter, overrideLogLineTemplateConstant, report.OverrideLogEntries)
	}
}

func shortCommitHash(commitHash string) string {
	if len(commitHash) <= shortCommitHashLengthConstant {
		return commitHash
	}
	return commitHash[:shortCommitHashLengthConstant]
}
