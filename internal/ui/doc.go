// Package ui renders git command activity as human-readable console lines
// when the CLI runs with console log formatting. Structured telemetry keeps
// flowing through the zap logger regardless.
package ui
