package override

import "strings"

// CommandConfiguration captures configuration values for the record command.
type CommandConfiguration struct {
	Repository   string `mapstructure:"repository"`
	StrictStatus bool   `mapstructure:"strict_status"`
}

// DefaultCommandConfiguration provides baseline configuration values for override recording.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Repository:   "",
		StrictStatus: false,
	}
}

// Sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	return sanitized
}

// DefaultConfigurationValues exposes record defaults keyed for configuration registration.
func DefaultConfigurationValues(configurationKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKey + ".repository":    defaults.Repository,
		configurationKey + ".strict_status": defaults.StrictStatus,
	}
}
