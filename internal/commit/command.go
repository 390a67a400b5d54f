package commit

import (
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitx/internal/commitmsg"
	"github.com/temirov/gitx/internal/dependencies"
	"github.com/temirov/gitx/internal/execshell"
	"github.com/temirov/gitx/internal/gitrepo"
	"github.com/temirov/gitx/internal/passthrough"
	"github.com/temirov/gitx/internal/prompt"
	"github.com/temirov/gitx/internal/utils"
	flagutils "github.com/temirov/gitx/internal/utils/flags"
)

const (
	commandUseConstant              = "commit [flags] [-- git-commit-args]"
	commandShortDescriptionConstant = "Commit staged changes with an AI-generated message"
	commandLongDescriptionConstant  = "commit reads the staged diff, asks the configured assistant for a conventional commit message, shows it for confirmation, and runs git commit with it. When a message option such as -m or --amend is given, or --no-ai is set, or nothing is staged, or generation fails, the arguments are handed to git commit unchanged."
	commandExampleConstant          = "gitx commit\ngitx commit --yes --copy\ngitx commit -- --signoff\ngitx commit -m \"fix: typo\""
	flagNoAINameConstant            = "no-ai"
	flagNoAIDescriptionConstant     = "Skip message generation and run git commit directly"
	flagCopyNameConstant            = "copy"
	flagCopyDescriptionConstant     = "Copy the generated message to the clipboard"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the commit command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConsoleLoggerProvider        LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	Executor                     dependencies.CommandExecutor
	GitRunner                    execshell.CommandRunner
	Repository                   StagedDiffReader
	Generator                    MessageGenerator
	Prompter                     prompt.ConfirmationPrompter
	Clipboard                    ClipboardWriter
	WorkingDirectory             string
}

// Build constructs the commit command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:                commandUseConstant,
		Short:              commandShortDescriptionConstant,
		Long:               commandLongDescriptionConstant,
		Example:            commandExampleConstant,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE:               builder.run,
	}

	// parsed by hand; registered so that help lists them
	command.Flags().Bool(flagNoAINameConstant, false, flagNoAIDescriptionConstant)
	command.Flags().Bool(flagCopyNameConstant, false, flagCopyDescriptionConstant)
	command.Flags().BoolP(flagutils.AssumeYesFlagName, flagutils.AssumeYesFlagShorthand, false, flagutils.AssumeYesFlagUsage)
	command.Flags().Bool(flagutils.DryRunFlagName, false, flagutils.DryRunFlagUsage)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	remainingArguments, inheritedError := flagutils.ApplyInheritedFlags(command, arguments)
	if inheritedError != nil {
		return inheritedError
	}
	parsedInvocation := parseInvocation(remainingArguments)
	if parsedInvocation.HelpRequested {
		return command.Help()
	}

	configuration := builder.resolveConfiguration()
	logger := builder.resolveLogger()

	service, serviceError := builder.buildService(command, configuration, logger)
	if serviceError != nil {
		return serviceError
	}

	_, runError := service.Run(command.Context(), Options{
		Arguments:       parsedInvocation.GitArguments,
		SkipGeneration:  parsedInvocation.SkipGeneration,
		AssumeYes:       parsedInvocation.AssumeYes || configuration.AssumeYes,
		CopyToClipboard: parsedInvocation.CopyToClipboard || configuration.CopyToClipboard,
		DryRun:          parsedInvocation.DryRun,
	})
	return runError
}

func (builder *CommandBuilder) buildService(command *cobra.Command, configuration CommandConfiguration, logger *zap.Logger) (*Service, error) {
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	executor, executorError := dependencies.ResolveCommandExecutor(builder.Executor, logger, builder.resolveConsoleLogger(), humanReadableLogging)
	if executorError != nil {
		return nil, executorError
	}

	repository := builder.Repository
	if repository == nil {
		gitRepository, repositoryError := gitrepo.NewRepository(executor, utils.ResolveWorkingDirectory(command.Context(), builder.WorkingDirectory))
		if repositoryError != nil {
			return nil, repositoryError
		}
		repository = gitRepository
	}

	generator := builder.Generator
	if generator == nil {
		messageGenerator, generatorError := commitmsg.NewGenerator(executor, commitmsg.Options{
			CommandName:      configuration.Command,
			MaximumDiffBytes: configuration.MaxDiffBytes,
		})
		if generatorError != nil {
			return nil, generatorError
		}
		generator = messageGenerator
	}

	forwarder, forwarderError := dependencies.ResolveForwarder(builder.GitRunner, passthrough.NewAllowlist(), utils.ResolveWorkingDirectory(command.Context(), builder.WorkingDirectory), logger, command.InOrStdin(), command.OutOrStdout(), command.ErrOrStderr())
	if forwarderError != nil {
		return nil, forwarderError
	}

	clipboardWriter := builder.Clipboard
	if clipboardWriter == nil {
		clipboardWriter = clipboard.WriteAll
	}

	return NewService(Dependencies{
		Repository: repository,
		Generator:  generator,
		Git:        forwarder,
		Prompter:   dependencies.ResolvePrompter(builder.Prompter, command.InOrStdin(), command.OutOrStdout()),
		Clipboard:  clipboardWriter,
		Output:     utils.NewFlushingWriter(command.OutOrStdout()),
		Logger:     logger,
	})
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConsoleLogger() *zap.Logger {
	if builder.ConsoleLoggerProvider == nil {
		return nil
	}
	return builder.ConsoleLoggerProvider()
}
