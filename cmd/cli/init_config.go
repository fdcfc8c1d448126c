package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	initConfigCommandUseConstant              = "init-config"
	initConfigCommandShortDescriptionConstant = "Write the default configuration to a file"
	initConfigCommandLongDescriptionConstant  = "init-config writes the embedded default configuration to a YAML file so it can be reviewed and customized."
	initConfigOutputFlagNameConstant          = "output"
	initConfigOutputFlagShorthandConstant     = "o"
	initConfigOutputFlagUsageConstant         = "Destination path for the generated configuration file"
	initConfigDefaultOutputPathConstant       = "config.yaml"
	initConfigUnexpectedArgumentsConstant     = "init-config does not accept positional arguments"
	initConfigExistingFileTemplateConstant    = "configuration file already exists at %s"
	initConfigWriteErrorTemplateConstant      = "unable to write configuration file: %w"
	initConfigWrittenTemplateConstant         = "Wrote default configuration to %s\n"
	initConfigFilePermissionsConstant         = 0o644
)

var errInitConfigUnexpectedArguments = errors.New(initConfigUnexpectedArgumentsConstant)

func newInitConfigCommand() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   initConfigCommandUseConstant,
		Short: initConfigCommandShortDescriptionConstant,
		Long:  initConfigCommandLongDescriptionConstant,
		RunE:  runInitConfigCommand,
	}

	command.Flags().StringP(initConfigOutputFlagNameConstant, initConfigOutputFlagShorthandConstant, initConfigDefaultOutputPathConstant, initConfigOutputFlagUsageConstant)

	return command, nil
}

func runInitConfigCommand(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errInitConfigUnexpectedArguments
	}

	outputPath, _ := command.Flags().GetString(initConfigOutputFlagNameConstant)

	if _, statError := os.Stat(outputPath); statError == nil {
		return fmt.Errorf(initConfigExistingFileTemplateConstant, outputPath)
	}

	configurationContent, _ := EmbeddedDefaultConfiguration()
	if writeError := os.WriteFile(outputPath, configurationContent, initConfigFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(initConfigWriteErrorTemplateConstant, writeError)
	}

	fmt.Fprintf(command.OutOrStdout(), initConfigWrittenTemplateConstant, outputPath)
	return nil
}
