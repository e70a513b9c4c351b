// Package utils hosts the configuration loader and logger factory shared by the issue-helper commands.
//
// ConfigurationLoader layers embedded defaults, an optional configuration file,
// prefixed environment variables, and explicit environment aliases through Viper.
// LoggerFactory builds zap loggers for the supported levels and formats.
package utils
