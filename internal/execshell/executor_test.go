package execshell_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gitx/internal/execshell"
)

const (
	testCaseNameTemplateConstant = "%d_%s"
	testWorkingDirectoryConstant = "/work/gitx"
)

type recordingCommandRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.executionResult, runner.executionError
}

func TestShellExecutorInitializationValidation(testInstance *testing.T) {
	_, loggerError := execshell.NewShellExecutor(nil, &recordingCommandRunner{})
	require.ErrorIs(testInstance, loggerError, execshell.ErrLoggerNotConfigured)

	_, runnerError := execshell.NewShellExecutor(zap.NewNop(), nil)
	require.ErrorIs(testInstance, runnerError, execshell.ErrCommandRunnerNotConfigured)

	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), &recordingCommandRunner{}, nil)
	require.NoError(testInstance, creationError)
	require.NotNil(testInstance, executor)
}

func TestShellExecutorExecuteBehavior(testInstance *testing.T) {
	deleteArguments := []string{"branch", "--delete", "--force", "feature/a"}
	testCases := []struct {
		name           string
		runnerResult   execshell.ExecutionResult
		runnerError    error
		expectedError  string
		expectedLevels []zapcore.Level
	}{
		{
			name:           "deleted",
			runnerResult:   execshell.ExecutionResult{StandardOutput: "Deleted branch feature/a (was 1a2b3c4).\n"},
			expectedLevels: []zapcore.Level{zapcore.DebugLevel, zapcore.DebugLevel},
		},
		{
			name:           "missing_branch",
			runnerResult:   execshell.ExecutionResult{StandardError: "error: branch 'feature/a' not found.\n", ExitCode: 1},
			expectedError:  "git branch --delete --force feature/a exited with code 1: error: branch 'feature/a' not found.",
			expectedLevels: []zapcore.Level{zapcore.DebugLevel, zapcore.WarnLevel},
		},
		{
			name:           "git_missing",
			runnerError:    errors.New("executable file not found in $PATH"),
			expectedError:  "git branch --delete --force feature/a could not be executed: executable file not found in $PATH",
			expectedLevels: []zapcore.Level{zapcore.DebugLevel, zapcore.ErrorLevel},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testCaseNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			observerCore, observerLogs := observer.New(zap.DebugLevel)
			recordingRunner := &recordingCommandRunner{executionResult: testCase.runnerResult, executionError: testCase.runnerError}

			shellExecutor, creationError := execshell.NewShellExecutor(zap.New(observerCore), recordingRunner)
			require.NoError(testInstance, creationError)

			executionResult, executionError := shellExecutor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: deleteArguments, WorkingDirectory: testWorkingDirectoryConstant})
			if len(testCase.expectedError) > 0 {
				require.EqualError(testInstance, executionError, testCase.expectedError)
				require.Equal(testInstance, execshell.ExecutionResult{}, executionResult)
			} else {
				require.NoError(testInstance, executionError)
				require.Equal(testInstance, testCase.runnerResult, executionResult)
			}

			recordedLevels := make([]zapcore.Level, 0, observerLogs.Len())
			for _, entry := range observerLogs.All() {
				recordedLevels = append(recordedLevels, entry.Level)
				require.Equal(testInstance, testWorkingDirectoryConstant, entry.ContextMap()["working_directory"])
			}
			require.Equal(testInstance, testCase.expectedLevels, recordedLevels)
		})
	}
}

func TestShellExecutorWrappersSetCommandNames(testInstance *testing.T) {
	recordingRunner := &recordingCommandRunner{}
	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner)
	require.NoError(testInstance, creationError)

	_, gitError := executor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{"rev-parse", "--abbrev-ref", "HEAD"}})
	require.NoError(testInstance, gitError)
	_, githubError := executor.ExecuteGitHubCLI(context.Background(), execshell.CommandDetails{Arguments: []string{"pr", "list"}})
	require.NoError(testInstance, githubError)

	require.Len(testInstance, recordingRunner.recordedCommands, 2)
	require.Equal(testInstance, execshell.CommandGit, recordingRunner.recordedCommands[0].Name)
	require.Equal(testInstance, execshell.CommandGitHub, recordingRunner.recordedCommands[1].Name)
}

type recordingEventObserver struct {
	startedCommands   []execshell.ShellCommand
	completedResults  []execshell.ExecutionResult
	executionFailures []error
}

func (observer *recordingEventObserver) CommandStarted(command execshell.ShellCommand) {
	observer.startedCommands = append(observer.startedCommands, command)
}

func (observer *recordingEventObserver) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	observer.completedResults = append(observer.completedResults, result)
}

func (observer *recordingEventObserver) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	observer.executionFailures = append(observer.executionFailures, failure)
}

func TestShellExecutorNotifiesObservers(testInstance *testing.T) {
	eventObserver := &recordingEventObserver{}
	secondObserver := &recordingEventObserver{}
	recordingRunner := &recordingCommandRunner{executionResult: execshell.ExecutionResult{ExitCode: 3}}

	executor, creationError := execshell.NewShellExecutor(
		zap.NewNop(),
		recordingRunner,
		execshell.WithCommandEventObserver(eventObserver),
		execshell.WithCommandEventObserver(nil),
		execshell.WithCommandEventObserver(secondObserver),
	)
	require.NoError(testInstance, creationError)

	_, executionError := executor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{"status"}})
	require.Error(testInstance, executionError)

	var failedError execshell.CommandFailedError
	require.ErrorAs(testInstance, executionError, &failedError)
	require.Equal(testInstance, 3, failedError.Result.ExitCode)
	require.Len(testInstance, eventObserver.startedCommands, 1)
	require.Len(testInstance, eventObserver.completedResults, 1)
	require.Empty(testInstance, eventObserver.executionFailures)
	require.Equal(testInstance, eventObserver.startedCommands, secondObserver.startedCommands)
	require.Equal(testInstance, eventObserver.completedResults, secondObserver.completedResults)
}

func TestShellExecutorOmitsGeneratorArgumentsFromLogs(testInstance *testing.T) {
	observerCore, observerLogs := observer.New(zap.DebugLevel)
	recordingRunner := &recordingCommandRunner{executionResult: execshell.ExecutionResult{StandardOutput: "{}"}}

	executor, creationError := execshell.NewShellExecutor(zap.New(observerCore), recordingRunner)
	require.NoError(testInstance, creationError)

	_, executionError := executor.Execute(context.Background(), execshell.ShellCommand{
		Name:    execshell.CommandClaude,
		Details: execshell.CommandDetails{Arguments: []string{"--print", "secret diff"}},
	})
	require.NoError(testInstance, executionError)

	for _, entry := range observerLogs.All() {
		contextMap := entry.ContextMap()
		require.NotContains(testInstance, contextMap, "arguments")
		require.Equal(testInstance, int64(2), contextMap["argument_count"])
	}
}
