package commitmsg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/gitx/internal/execshell"
)

const (
	// DefaultCommandName is the AI CLI invoked when none is configured.
	DefaultCommandName = "claude"
	// DefaultMaximumDiffBytes bounds the diff embedded in the prompt.
	DefaultMaximumDiffBytes = 100000

	printFlagConstant                      = "--print"
	outputFormatFlagConstant               = "--output-format"
	outputFormatJSONConstant               = "json"
	runnerNotConfiguredMessageConstant     = "commit message command runner not configured"
	emptyDiffMessageConstant               = "no staged changes to describe"
	emptyResponseMessageConstant           = "commit message generator returned no message"
	generatorFailedTemplateConstant        = "generate commit message: %w"
	decodeResponseTemplateConstant         = "decode generator response: %w"
	generatorReportedErrorTemplateConstant = "generator reported an error: %s"
	truncatedDiffMarkerTemplateConstant    = "\n[diff truncated after %d bytes]\n"

	promptTemplateConstant = `Based on the following git diff, generate a conventional commit message.

The message should follow this format:
<type>[optional scope]: <description>

[optional body]

Choose type from: feat, fix, docs, style, refactor, test, chore
Keep the description under 50 characters, use imperative mood, and capitalize the first letter.

Respond with ONLY the commit message, no additional text or formatting.

Git diff:
%s`
)

var (
	// ErrRunnerNotConfigured indicates the generator was constructed without a command runner.
	ErrRunnerNotConfigured = errors.New(runnerNotConfiguredMessageConstant)
	// ErrEmptyDiff indicates there was nothing to describe.
	ErrEmptyDiff = errors.New(emptyDiffMessageConstant)
	// ErrEmptyResponse indicates the generator answered without a usable message.
	ErrEmptyResponse = errors.New(emptyResponseMessageConstant)
)

// CommandRunner executes an external command and reports its captured output.
type CommandRunner interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// Options tune a Generator.
type Options struct {
	CommandName      string
	MaximumDiffBytes int
}

// Generator produces commit messages through an AI CLI.
type Generator struct {
	runner           CommandRunner
	commandName      execshell.CommandName
	maximumDiffBytes int
}

type generatorResponse struct {
	Result  string `json:"result"`
	IsError bool   `json:"is_error"`
}

// NewGenerator constructs a Generator. Zero options fall back to DefaultCommandName and DefaultMaximumDiffBytes.
func NewGenerator(runner CommandRunner, options Options) (*Generator, error) {
	if runner == nil {
		return nil, ErrRunnerNotConfigured
	}
	commandName := strings.TrimSpace(options.CommandName)
	if len(commandName) == 0 {
		commandName = DefaultCommandName
	}
	maximumDiffBytes := options.MaximumDiffBytes
	if maximumDiffBytes <= 0 {
		maximumDiffBytes = DefaultMaximumDiffBytes
	}
	return &Generator{runner: runner, commandName: execshell.CommandName(commandName), maximumDiffBytes: maximumDiffBytes}, nil
}

// Generate returns a commit message describing diff.
func (generator *Generator) Generate(executionContext context.Context, diff string) (string, error) {
	if len(strings.TrimSpace(diff)) == 0 {
		return "", ErrEmptyDiff
	}

	executionResult, executionError := generator.runner.Execute(executionContext, execshell.ShellCommand{
		Name: generator.commandName,
		Details: execshell.CommandDetails{
			Arguments:     []string{printFlagConstant, outputFormatFlagConstant, outputFormatJSONConstant},
			StandardInput: []byte(BuildPrompt(diff, generator.maximumDiffBytes)),
		},
	})
	if executionError != nil {
		return "", fmt.Errorf(generatorFailedTemplateConstant, executionError)
	}

	var response generatorResponse
	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response); decodingError != nil {
		return "", fmt.Errorf(decodeResponseTemplateConstant, decodingError)
	}
	if response.IsError {
		return "", fmt.Errorf(generatorReportedErrorTemplateConstant, strings.TrimSpace(response.Result))
	}

	message := strings.TrimSpace(response.Result)
	if len(message) == 0 {
		return "", ErrEmptyResponse
	}
	return message, nil
}

// BuildPrompt embeds diff into the instruction text, keeping at most maximumDiffBytes of the diff.
func BuildPrompt(diff string, maximumDiffBytes int) string {
	if maximumDiffBytes > 0 && len(diff) > maximumDiffBytes {
		cut := maximumDiffBytes
		// back off to a rune boundary
		for cut > 0 && !isRuneStart(diff[cut]) {
			cut--
		}
		diff = diff[:cut] + fmt.Sprintf(truncatedDiffMarkerTemplateConstant, cut)
	}
	return fmt.Sprintf(promptTemplateConstant, diff)
}

func isRuneStart(value byte) bool {
	return value&0xC0 != 0x80
}
