// Package utils houses infrastructure shared by the CLI commands: the
// Viper-backed ConfigurationLoader, the zap LoggerFactory, command context
// plumbing, and output writers.
package utils
