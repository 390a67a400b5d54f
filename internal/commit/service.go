package commit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitx/internal/prompt"
)

const (
	gitCommitSubcommandConstant            = "commit"
	gitMessageFlagConstant                 = "-m"
	repositoryNotConfiguredMessageConstant = "commit staged diff reader not configured"
	generatorNotConfiguredMessageConstant  = "commit message generator not configured"
	gitRunnerNotConfiguredMessageConstant  = "commit git runner not configured"
	prompterNotConfiguredMessageConstant   = "commit confirmation prompter not configured"
	generatedMessageTemplateConstant       = "Generated commit message:\n\n%s\n\n"
	copiedMessageConstant                  = "Commit message copied to clipboard.\n"
	previewCommandTemplateConstant         = "Would run: git %s\n"
	cancelledMessageConstant               = "Commit cancelled.\n"
	confirmationPromptConstant             = "Commit with this message? [y/N] "
	confirmationErrorTemplateConstant      = "read commit confirmation: %w"
	logMessagePassthroughConstant          = "Running git commit without a generated message"
	logMessageStagedDiffFailedConstant     = "Unable to read staged changes; falling back to git commit"
	logMessageGenerationFailedConstant     = "Commit message generation failed; falling back to git commit"
	logMessageClipboardFailedConstant      = "Unable to copy commit message to clipboard"
	logFieldReasonConstant                 = "reason"
	passthroughReasonNoAIConstant          = "generation disabled"
	passthroughReasonMessageConstant       = "message provided"
	passthroughReasonEmptyDiffConstant     = "no staged changes"
	quotedArgumentTemplateConstant         = "%q"
	argumentSeparatorConstant              = " "
	argumentSpecialCharactersConstant      = " \t\n\"'"
)

var (
	// ErrRepositoryNotConfigured indicates the service was constructed without a staged diff reader.
	ErrRepositoryNotConfigured = errors.New(repositoryNotConfiguredMessageConstant)
	// ErrGeneratorNotConfigured indicates the service was constructed without a message generator.
	ErrGeneratorNotConfigured = errors.New(generatorNotConfiguredMessageConstant)
	// ErrGitRunnerNotConfigured indicates the service was constructed without a git runner.
	ErrGitRunnerNotConfigured = errors.New(gitRunnerNotConfiguredMessageConstant)
	// ErrPrompterNotConfigured indicates the service was constructed without a prompter.
	ErrPrompterNotConfigured = errors.New(prompterNotConfiguredMessageConstant)
)

// StagedDiffReader exposes the staged changes of the working repository.
type StagedDiffReader interface {
	StagedDiff(executionContext context.Context) (string, error)
}

// MessageGenerator writes a commit message for a diff.
type MessageGenerator interface {
	Generate(executionContext context.Context, diff string) (string, error)
}

// GitRunner runs git attached to the terminal.
type GitRunner interface {
	Run(executionContext context.Context, arguments []string) error
}

// ClipboardWriter stores text in the system clipboard.
type ClipboardWriter func(text string) error

// Outcome names how a commit invocation finished.
type Outcome string

// Commit outcomes.
const (
	OutcomePassthrough Outcome = Outcome("passthrough")
	OutcomeCommitted   Outcome = Outcome("committed")
	OutcomeCancelled   Outcome = Outcome("cancelled")
	OutcomePreviewed   Outcome = Outcome("previewed")
)

// Options configures one commit invocation.
type Options struct {
	Arguments       []string
	SkipGeneration  bool
	AssumeYes       bool
	CopyToClipboard bool
	DryRun          bool
}

// Result reports what the invocation did. Message is empty unless a message was generated.
type Result struct {
	Outcome Outcome
	Message string
}

// Dependencies lists the collaborators of Service.
type Dependencies struct {
	Repository StagedDiffReader
	Generator  MessageGenerator
	Git        GitRunner
	Prompter   prompt.ConfirmationPrompter
	Clipboard  ClipboardWriter
	Output     io.Writer
	Logger     *zap.Logger
}

// Service orchestrates AI-assisted commits.
type Service struct {
	repository StagedDiffReader
	generator  MessageGenerator
	git        GitRunner
	prompter   prompt.ConfirmationPrompter
	clipboard  ClipboardWriter
	output     io.Writer
	logger     *zap.Logger
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if dependencies.Generator == nil {
		return nil, ErrGeneratorNotConfigured
	}
	if dependencies.Git == nil {
		return nil, ErrGitRunnerNotConfigured
	}
	if dependencies.Prompter == nil {
		return nil, ErrPrompterNotConfigured
	}

	output := dependencies.Output
	if output == nil {
		output = io.Discard
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		repository: dependencies.Repository,
		generator:  dependencies.Generator,
		git:        dependencies.Git,
		prompter:   dependencies.Prompter,
		clipboard:  dependencies.Clipboard,
		output:     output,
		logger:     logger,
	}, nil
}

// Run commits with a generated message, or runs plain git commit when no message can or should be generated.
func (service *Service) Run(executionContext context.Context, options Options) (Result, error) {
	if options.SkipGeneration {
		return service.passthrough(executionContext, options, passthroughReasonNoAIConstant)
	}
	if providesMessage(options.Arguments) {
		return service.passthrough(executionContext, options, passthroughReasonMessageConstant)
	}

	diff, diffError := service.repository.StagedDiff(executionContext)
	if diffError != nil {
		service.logger.Warn(logMessageStagedDiffFailedConstant, zap.Error(diffError))
		return service.passthrough(executionContext, options, diffError.Error())
	}
	if len(strings.TrimSpace(diff)) == 0 {
		return service.passthrough(executionContext, options, passthroughReasonEmptyDiffConstant)
	}

	message, generationError := service.generator.Generate(executionContext, diff)
	if generationError != nil {
		service.logger.Warn(logMessageGenerationFailedConstant, zap.Error(generationError))
		return service.passthrough(executionContext, options, generationError.Error())
	}

	fmt.Fprintf(service.output, generatedMessageTemplateConstant, message)
	if options.CopyToClipboard {
		service.copyToClipboard(message)
	}

	commitArguments := append([]string{gitCommitSubcommandConstant, gitMessageFlagConstant, message}, options.Arguments...)
	if options.DryRun {
		fmt.Fprintf(service.output, previewCommandTemplateConstant, describeArguments(commitArguments))
		return Result{Outcome: OutcomePreviewed, Message: message}, nil
	}

	if !options.AssumeYes {
		confirmed, promptError := service.prompter.Confirm(confirmationPromptConstant)
		if promptError != nil {
			return Result{}, fmt.Errorf(confirmationErrorTemplateConstant, promptError)
		}
		if !confirmed {
			fmt.Fprint(service.output, cancelledMessageConstant)
			return Result{Outcome: OutcomeCancelled, Message: message}, nil
		}
	}

	if commitError := service.git.Run(executionContext, commitArguments); commitError != nil {
		return Result{Message: message}, commitError
	}
	return Result{Outcome: OutcomeCommitted, Message: message}, nil
}

func (service *Service) passthrough(executionContext context.Context, options Options, reason string) (Result, error) {
	service.logger.Debug(logMessagePassthroughConstant, zap.String(logFieldReasonConstant, reason))

	commitArguments := append([]string{gitCommitSubcommandConstant}, options.Arguments...)
	if options.DryRun {
		fmt.Fprintf(service.output, previewCommandTemplateConstant, describeArguments(commitArguments))
		return Result{Outcome: OutcomePreviewed}, nil
	}
	if commitError := service.git.Run(executionContext, commitArguments); commitError != nil {
		return Result{}, commitError
	}
	return Result{Outcome: OutcomePassthrough}, nil
}

func (service *Service) copyToClipboard(message string) {
	if service.clipboard == nil {
		return
	}
	if copyError := service.clipboard(message); copyError != nil {
		service.logger.Warn(logMessageClipboardFailedConstant, zap.Error(copyError))
		return
	}
	fmt.Fprint(service.output, copiedMessageConstant)
}

func describeArguments(arguments []string) string {
	described := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		if len(argument) == 0 || strings.ContainsAny(argument, argumentSpecialCharactersConstant) {
			described = append(described, fmt.Sprintf(quotedArgumentTemplateConstant, argument))
			continue
		}
		described = append(described, argument)
	}
	return strings.Join(described, argumentSeparatorConstant)
}
