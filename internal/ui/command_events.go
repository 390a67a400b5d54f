package ui

import (
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitx/internal/execshell"
)

const (
	gitBranchSubcommandConstant   = "branch"
	gitSwitchSubcommandConstant   = "switch"
	gitCheckoutSubcommandConstant = "checkout"
	gitFetchSubcommandConstant    = "fetch"
	gitCommitSubcommandConstant   = "commit"
	gitDeleteFlagConstant         = "--delete"
	gitDeleteShortFlagConstant    = "-d"
	gitForceDeleteFlagConstant    = "-D"
)

// ConsoleCommandEventLogger renders command lifecycle events for people watching the terminal.
// Commands that change the repository are reported at info level; read-only plumbing stays at debug.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter execshell.CommandMessageFormatter
}

// NewConsoleCommandEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger, formatter: execshell.CommandMessageFormatter{}}
}

// CommandStarted implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	if eventLogger == nil {
		return
	}
	eventLogger.progressLogFunction(command)(eventLogger.formatter.BuildStartedMessage(command))
}

// CommandCompleted implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	if result.ExitCode == 0 {
		eventLogger.progressLogFunction(command)(eventLogger.formatter.BuildSuccessMessage(command, result))
		return
	}
	eventLogger.logger.Warn(eventLogger.formatter.BuildFailureMessage(command, result))
}

// CommandExecutionFailed implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(command, failure))
}

func (eventLogger *ConsoleCommandEventLogger) progressLogFunction(command execshell.ShellCommand) func(string, ...zap.Field) {
	if changesRepository(command) {
		return eventLogger.logger.Info
	}
	return eventLogger.logger.Debug
}

func changesRepository(command execshell.ShellCommand) bool {
	if command.Name != execshell.CommandGit || len(command.Details.Arguments) == 0 {
		return false
	}
	switch strings.TrimSpace(command.Details.Arguments[0]) {
	case gitSwitchSubcommandConstant, gitCheckoutSubcommandConstant, gitFetchSubcommandConstant, gitCommitSubcommandConstant:
		return true
	case gitBranchSubcommandConstant:
		for _, argument := range command.Details.Arguments[1:] {
			switch strings.TrimSpace(argument) {
			case gitDeleteFlagConstant, gitDeleteShortFlagConstant, gitForceDeleteFlagConstant:
				return true
			}
		}
	}
	return false
}
