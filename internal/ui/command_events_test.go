package ui_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gitx/internal/execshell"
	"github.com/temirov/gitx/internal/ui"
)

const (
	testCaseNameTemplateConstant        = "%d_%s"
	testCommandWorkingDirectoryConstant = "/tmp/project"
	testBranchNameConstant              = "feature/stale"
	testExecutionFailureReasonConstant  = "execution failed"
	testStandardErrorMessageConstant    = "error: branch 'feature/stale' not found."
)

func TestConsoleCommandEventLoggerEmitsMessages(testInstance *testing.T) {
	deletionCommand := execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        []string{"branch", "--delete", "--force", testBranchNameConstant},
			WorkingDirectory: testCommandWorkingDirectoryConstant,
		},
	}
	listingCommand := execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        []string{"for-each-ref", "refs/heads"},
			WorkingDirectory: testCommandWorkingDirectoryConstant,
		},
	}

	testCases := []struct {
		name            string
		invoke          func(logger *ui.ConsoleCommandEventLogger)
		expectedLevel   zapcore.Level
		expectedMessage string
	}{
		{
			name: "deletion_started",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandStarted(deletionCommand)
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: "Force removing local branch feature/stale in /tmp/project",
		},
		{
			name: "deletion_completed",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(deletionCommand, execshell.ExecutionResult{ExitCode: 0})
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: "Removed local branch feature/stale in /tmp/project",
		},
		{
			name: "deletion_failed",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(deletionCommand, execshell.ExecutionResult{ExitCode: 1, StandardError: testStandardErrorMessageConstant})
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: "Failed to remove local branch feature/stale in /tmp/project (exit code 1: " + testStandardErrorMessageConstant + ")",
		},
		{
			name: "listing_started",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandStarted(listingCommand)
			},
			expectedLevel:   zapcore.DebugLevel,
			expectedMessage: "Listing local branches in /tmp/project",
		},
		{
			name: "execution_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandExecutionFailed(listingCommand, errors.New(testExecutionFailureReasonConstant))
			},
			expectedLevel:   zapcore.ErrorLevel,
			expectedMessage: "Unable to list local branches in /tmp/project: " + testExecutionFailureReasonConstant,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testCaseNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			eventLogger := ui.NewConsoleCommandEventLogger(zap.New(observerCore))

			testCase.invoke(eventLogger)

			entries := observedLogs.All()
			require.Len(testInstance, entries, 1)
			require.Equal(testInstance, testCase.expectedLevel, entries[0].Level)
			require.Equal(testInstance, testCase.expectedMessage, entries[0].Message)
		})
	}
}
