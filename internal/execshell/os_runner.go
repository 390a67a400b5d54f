package execshell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

const environmentAssignmentSeparatorConstant = "="

// OSCommandRunner executes commands with os/exec and captures their output.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a capturing runner.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run executes the command and buffers standard output and standard error.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := prepareExecutable(executionContext, command)

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer
	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	exitCode, runError := runExecutable(executable)
	if runError != nil {
		return ExecutionResult{}, runError
	}

	return ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
		ExitCode:       exitCode,
	}, nil
}

// TerminalCommandRunner executes commands attached to the caller's terminal streams.
// Output is streamed rather than captured, so results only carry the exit code.
type TerminalCommandRunner struct {
	input       io.Reader
	output      io.Writer
	errorOutput io.Writer
}

// NewTerminalCommandRunner constructs a streaming runner. Nil streams default to the process streams.
func NewTerminalCommandRunner(input io.Reader, output io.Writer, errorOutput io.Writer) *TerminalCommandRunner {
	if input == nil {
		input = os.Stdin
	}
	if output == nil {
		output = os.Stdout
	}
	if errorOutput == nil {
		errorOutput = os.Stderr
	}
	return &TerminalCommandRunner{input: input, output: output, errorOutput: errorOutput}
}

// Run executes the command with inherited streams.
func (runner *TerminalCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := prepareExecutable(executionContext, command)
	executable.Stdin = runner.input
	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}
	executable.Stdout = runner.output
	executable.Stderr = runner.errorOutput

	exitCode, runError := runExecutable(executable)
	if runError != nil {
		return ExecutionResult{}, runError
	}
	return ExecutionResult{ExitCode: exitCode}, nil
}

func prepareExecutable(executionContext context.Context, command ShellCommand) *exec.Cmd {
	executable := exec.CommandContext(executionContext, string(command.Name), append([]string{}, command.Details.Arguments...)...)
	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}
	if len(command.Details.EnvironmentVariables) > 0 {
		executable.Env = mergeEnvironment(os.Environ(), command.Details.EnvironmentVariables)
	}
	return executable
}

// runExecutable treats a non-zero exit as a result rather than an error.
func runExecutable(executable *exec.Cmd) (int, error) {
	runError := executable.Run()
	if runError == nil {
		return 0, nil
	}
	var exitError *exec.ExitError
	if errors.As(runError, &exitError) {
		return exitError.ExitCode(), nil
	}
	return 0, runError
}

func mergeEnvironment(baseEnvironment []string, overrides map[string]string) []string {
	mergedEnvironment := append([]string{}, baseEnvironment...)
	for environmentKey, environmentValue := range overrides {
		mergedEnvironment = append(mergedEnvironment, environmentKey+environmentAssignmentSeparatorConstant+environmentValue)
	}
	return mergedEnvironment
}
