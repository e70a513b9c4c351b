// Package cli constructs the issue-helper command-line interface. It wires the
// Cobra command hierarchy to the Viper configuration loader and the zap logger
// factory, and registers the issue-comment and branch-name commands.
package cli
