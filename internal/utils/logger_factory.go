package utils

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logLevelDebugStringConstant          = "debug"
	logLevelInfoStringConstant           = "info"
	logLevelWarnStringConstant           = "warn"
	logLevelErrorStringConstant          = "error"
	logFormatStructuredStringConstant    = "structured"
	logFormatConsoleStringConstant       = "console"
	consoleMessageKeyConstant            = "message"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
	defaultLogFileMaxSizeMegabytes       = 10
	defaultLogFileMaxBackups             = 3
	defaultLogFileMaxAgeDays             = 28
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Exported log level constants for reuse across packages.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnStringConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorStringConstant)
)

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Exported log format constants for reuse across packages.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredStringConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleStringConstant)
)

// LogFileConfiguration describes an optional rotating log file that receives structured diagnostics.
type LogFileConfiguration struct {
	Path             string `mapstructure:"path"`
	MaxSizeMegabytes int    `mapstructure:"max_size_mb"`
	MaxBackups       int    `mapstructure:"max_backups"`
	MaxAgeDays       int    `mapstructure:"max_age_days"`
	Compress         bool   `mapstructure:"compress"`
}

// Enabled reports whether a log file path was configured.
func (configuration LogFileConfiguration) Enabled() bool {
	return len(strings.TrimSpace(configuration.Path)) > 0
}

// LoggerOutputs bundles the loggers produced for a single CLI invocation.
type LoggerOutputs struct {
	// DiagnosticLogger carries structured telemetry to stderr and the optional log file.
	DiagnosticLogger *zap.Logger
	// ConsoleLogger prints bare progress messages when the console format is active, otherwise it discards.
	ConsoleLogger *zap.Logger
	fileSink      *lumberjack.Logger
}

// Close releases the rotating log file when one was opened.
func (outputs LoggerOutputs) Close() error {
	if outputs.fileSink == nil {
		return nil
	}
	return outputs.fileSink.Close()
}

// LoggerFactory builds zap.Logger instances with consistent configuration.
type LoggerFactory struct{}

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

// NewLoggerFactory constructs a new logger factory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// CreateLogger produces a stderr zap.Logger honoring the requested log level and format.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	loggerOutputs, creationError := factory.CreateLoggerOutputs(requestedLogLevel, requestedLogFormat, LogFileConfiguration{})
	if creationError != nil {
		return nil, creationError
	}
	return loggerOutputs.DiagnosticLogger, nil
}

// CreateLoggerOutputs produces the diagnostic and console loggers for the requested level and format.
// When the file configuration is enabled, diagnostics are additionally written as JSON to a rotating file.
func (factory *LoggerFactory) CreateLoggerOutputs(requestedLogLevel LogLevel, requestedLogFormat LogFormat, fileConfiguration LogFileConfiguration) (LoggerOutputs, error) {
	zapLogLevel, levelExists := logLevelMapping[requestedLogLevel]
	if !levelExists {
		return LoggerOutputs{}, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}

	standardErrorSink := zapcore.Lock(os.Stderr)
	diagnosticEncoderConfiguration := zap.NewProductionEncoderConfig()

	var diagnosticEncoder zapcore.Encoder
	consoleLogger := zap.NewNop()
	switch requestedLogFormat {
	case LogFormatStructured:
		diagnosticEncoder = zapcore.NewJSONEncoder(diagnosticEncoderConfiguration)
	case LogFormatConsole:
		diagnosticEncoder = zapcore.NewConsoleEncoder(diagnosticEncoderConfiguration)
		consoleEncoderConfiguration := zapcore.EncoderConfig{MessageKey: consoleMessageKeyConstant, LineEnding: zapcore.DefaultLineEnding}
		consoleLogger = zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfiguration), standardErrorSink, zapLogLevel))
	default:
		return LoggerOutputs{}, fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}

	diagnosticCores := []zapcore.Core{zapcore.NewCore(diagnosticEncoder, standardErrorSink, zapLogLevel)}

	var fileSink *lumberjack.Logger
	if fileConfiguration.Enabled() {
		fileSink = newRotatingFileSink(fileConfiguration)
		diagnosticCores = append(diagnosticCores, zapcore.NewCore(zapcore.NewJSONEncoder(diagnosticEncoderConfiguration), zapcore.AddSync(fileSink), zapLogLevel))
	}

	diagnosticLogger := zap.New(zapcore.NewTee(diagnosticCores...), zap.ErrorOutput(standardErrorSink))
	return LoggerOutputs{DiagnosticLogger: diagnosticLogger, ConsoleLogger: consoleLogger, fileSink: fileSink}, nil
}

func newRotatingFileSink(fileConfiguration LogFileConfiguration) *lumberjack.Logger {
	maximumSize := fileConfiguration.MaxSizeMegabytes
	if maximumSize <= 0 {
		maximumSize = defaultLogFileMaxSizeMegabytes
	}
	maximumBackups := fileConfiguration.MaxBackups
	if maximumBackups <= 0 {
		maximumBackups = defaultLogFileMaxBackups
	}
	maximumAge := fileConfiguration.MaxAgeDays
	if maximumAge <= 0 {
		maximumAge = defaultLogFileMaxAgeDays
	}
	return &lumberjack.Logger{
		Filename:   strings.TrimSpace(fileConfiguration.Path),
		MaxSize:    maximumSize,
		MaxBackups: maximumBackups,
		MaxAge:     maximumAge,
		Compress:   fileConfiguration.Compress,
	}
}
