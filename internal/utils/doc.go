// Package utils holds the configuration and logging plumbing shared by gitx commands.
//
// ConfigurationLoader layers embedded defaults, configuration files, and
// GITX_ environment variables through Viper. LoggerFactory builds the zap
// loggers, optionally teeing diagnostics into a rotating log file.
package utils
