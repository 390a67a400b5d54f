package passthrough

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitx/internal/execshell"
)

const (
	runnerNotConfiguredMessageConstant = "passthrough command runner not configured"
	noCommandMessageConstant           = "no command provided"
	notAllowedTemplateConstant         = "Command '%s' is not allowed. Use 'git %s' directly if needed."
	exitErrorTemplateConstant          = "git %s exited with code %d"
	executionErrorTemplateConstant     = "run git %s: %w"
	logMessageForwardingConstant       = "Forwarding command to git"
	logMessageForwardedConstant        = "git command finished"
	logFieldSubcommandConstant         = "subcommand"
	logFieldArgumentsConstant          = "arguments"
	logFieldExitCodeConstant           = "exit_code"
)

var (
	// ErrRunnerNotConfigured indicates the forwarder was constructed without a runner.
	ErrRunnerNotConfigured = errors.New(runnerNotConfiguredMessageConstant)
	// ErrNoCommand indicates nothing was given to forward.
	ErrNoCommand = errors.New(noCommandMessageConstant)
)

// NotAllowedError reports a subcommand outside the allowlist.
type NotAllowedError struct {
	Subcommand string
}

// Error describes the refused subcommand.
func (notAllowedError NotAllowedError) Error() string {
	return fmt.Sprintf(notAllowedTemplateConstant, notAllowedError.Subcommand, notAllowedError.Subcommand)
}

// ExitError carries a non-zero git exit code.
type ExitError struct {
	Subcommand string
	ExitCode   int
}

// Error describes the exit status.
func (exitError ExitError) Error() string {
	return fmt.Sprintf(exitErrorTemplateConstant, exitError.Subcommand, exitError.ExitCode)
}

// Forwarder runs git attached to the terminal.
type Forwarder struct {
	runner           execshell.CommandRunner
	allowlist        Allowlist
	workingDirectory string
	logger           *zap.Logger
}

// NewForwarder constructs a Forwarder. runner should stream to the terminal, e.g. execshell.TerminalCommandRunner.
func NewForwarder(runner execshell.CommandRunner, allowlist Allowlist, workingDirectory string, logger *zap.Logger) (*Forwarder, error) {
	if runner == nil {
		return nil, ErrRunnerNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if allowlist.commands == nil {
		allowlist = NewAllowlist()
	}
	return &Forwarder{runner: runner, allowlist: allowlist, workingDirectory: strings.TrimSpace(workingDirectory), logger: logger}, nil
}

// Forward runs `git <arguments...>` when the first argument is allowlisted.
func (forwarder *Forwarder) Forward(executionContext context.Context, arguments []string) error {
	if len(arguments) == 0 || len(strings.TrimSpace(arguments[0])) == 0 {
		return ErrNoCommand
	}
	if !forwarder.allowlist.Allows(arguments[0]) {
		return NotAllowedError{Subcommand: arguments[0]}
	}
	return forwarder.Run(executionContext, arguments)
}

// Run executes `git <arguments...>` without consulting the allowlist.
func (forwarder *Forwarder) Run(executionContext context.Context, arguments []string) error {
	if len(arguments) == 0 {
		return ErrNoCommand
	}
	subcommand := arguments[0]
	forwarder.logger.Debug(logMessageForwardingConstant,
		zap.String(logFieldSubcommandConstant, subcommand),
		zap.Strings(logFieldArgumentsConstant, arguments[1:]))

	executionResult, runError := forwarder.runner.Run(executionContext, execshell.ShellCommand{
		Name:    execshell.CommandGit,
		Details: execshell.CommandDetails{Arguments: arguments, WorkingDirectory: forwarder.workingDirectory},
	})
	if runError != nil {
		return fmt.Errorf(executionErrorTemplateConstant, subcommand, runError)
	}

	forwarder.logger.Debug(logMessageForwardedConstant,
		zap.String(logFieldSubcommandConstant, subcommand),
		zap.Int(logFieldExitCodeConstant, executionResult.ExitCode))
	if executionResult.ExitCode != 0 {
		return ExitError{Subcommand: subcommand, ExitCode: executionResult.ExitCode}
	}
	return nil
}

// ExitCode extracts the exit code carried by an ExitError anywhere in err's chain.
func ExitCode(err error) (int, bool) {
	var exitError ExitError
	if errors.As(err, &exitError) {
		return exitError.ExitCode, true
	}
	return 0, false
}
