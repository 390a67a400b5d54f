// Package dependencies supplies default collaborators for command builders that were not given test doubles.
package dependencies

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/gitx/internal/branchstate"
	"github.com/temirov/gitx/internal/execshell"
	"github.com/temirov/gitx/internal/passthrough"
	"github.com/temirov/gitx/internal/prompt"
	"github.com/temirov/gitx/internal/pullrequests"
	"github.com/temirov/gitx/internal/selector"
	"github.com/temirov/gitx/internal/ui"
)

// CommandExecutor runs git, gh, and arbitrary commands with captured output.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ResolveCommandExecutor returns the provided executor or constructs a shell-backed default.
// With human-readable logging, command progress is narrated through consoleLogger.
func ResolveCommandExecutor(existing CommandExecutor, logger *zap.Logger, consoleLogger *zap.Logger, humanReadableLogging bool) (CommandExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var executorOptions []execshell.ShellExecutorOption
	if humanReadableLogging && consoleLogger != nil {
		executorOptions = append(executorOptions, execshell.WithCommandEventObserver(ui.NewConsoleCommandEventLogger(consoleLogger)))
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), executorOptions...)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolvePullRequestDirectory returns the provided directory or a gh-backed default.
func ResolvePullRequestDirectory(existing branchstate.PullRequestDirectory, executor CommandExecutor, logger *zap.Logger, options pullrequests.Options) (branchstate.PullRequestDirectory, error) {
	if existing != nil {
		return existing, nil
	}
	return pullrequests.NewGitHubDirectory(executor, logger, options)
}

// ResolveChooser returns the provided chooser or one suited to the streams.
func ResolveChooser(existing selector.Chooser, input io.Reader, output io.Writer, prompts selector.Prompts) selector.Chooser {
	if existing != nil {
		return existing
	}
	return selector.NewChooser(input, output, prompts)
}

// ResolvePrompter returns the provided prompter or one reading from input.
func ResolvePrompter(existing prompt.ConfirmationPrompter, input io.Reader, output io.Writer) prompt.ConfirmationPrompter {
	if existing != nil {
		return existing
	}
	return prompt.NewIOConfirmationPrompter(input, output)
}

// ResolveForwarder builds a passthrough forwarder attached to the provided streams unless runner overrides them.
func ResolveForwarder(runner execshell.CommandRunner, allowlist passthrough.Allowlist, workingDirectory string, logger *zap.Logger, input io.Reader, output io.Writer, errorOutput io.Writer) (*passthrough.Forwarder, error) {
	if runner == nil {
		runner = execshell.NewTerminalCommandRunner(input, output, errorOutput)
	}
	return passthrough.NewForwarder(runner, allowlist, workingDirectory, logger)
}
