package branches

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitx/internal/branchstate"
	"github.com/temirov/gitx/internal/dependencies"
	"github.com/temirov/gitx/internal/gitrepo"
	"github.com/temirov/gitx/internal/pullrequests"
	"github.com/temirov/gitx/internal/selector"
	"github.com/temirov/gitx/internal/utils"
	flagutils "github.com/temirov/gitx/internal/utils/flags"
)

const (
	commandUseConstant                     = "branch"
	commandShortDescriptionConstant        = "Pick, inspect, and prune local branches"
	commandLongDescriptionConstant         = "branch without flags lets you pick a local branch and switches to it. --stats shows every local branch with its merge relation to the reference branch, its pull request, and its upstream. --prune-merged deletes branches that are merged into the reference branch, are neither current nor protected, and have no open pull request; it asks which candidates to delete unless --yes is given, and --dry-run only lists them."
	commandExampleConstant                 = "gitx branch\ngitx branch --stats --format yaml\ngitx branch --prune-merged --dry-run\ngitx branch --prune-merged --reference develop --yes"
	unexpectedArgumentsMessageConstant     = "branch does not accept positional arguments"
	flagStatsNameConstant                  = "stats"
	flagStatsDescriptionConstant           = "Show merge and pull request status of every local branch"
	flagPruneMergedNameConstant            = "prune-merged"
	flagPruneMergedDescriptionConstant     = "Delete local branches that are safely merged into the reference branch"
	flagFetchNameConstant                  = "fetch"
	flagFetchDescriptionConstant           = "Fetch and prune the remote before resolving branches"
	flagFormatNameConstant                 = "format"
	flagFormatDescriptionConstant          = "Output format of --stats"
	flagRequireUpstreamNameConstant        = "require-upstream"
	flagRequireUpstreamDescriptionConstant = "Keep branches that were never pushed when pruning"
	multiplePromptConstant                 = "Select branches to delete"
	singlePromptConstant                   = "Select a branch"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

type operationMode int

const (
	operationModePick operationMode = iota
	operationModeStats
	operationModePrune
)

type commandOptions struct {
	mode            operationMode
	resolution      ResolutionOptions
	format          OutputFormat
	requireUpstream bool
	dryRun          bool
	assumeYes       bool
}

// CommandBuilder assembles the branch command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConsoleLoggerProvider        LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	Executor                     dependencies.CommandExecutor
	Repository                   BranchRepository
	Locator                      branchstate.RepositoryLocator
	Directory                    branchstate.PullRequestDirectory
	Chooser                      selector.Chooser
	WorkingDirectory             string
}

// Build constructs the branch command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		RunE:    builder.run,
	}

	defaults := builder.resolveConfiguration()
	command.Flags().Bool(flagStatsNameConstant, false, flagStatsDescriptionConstant)
	command.Flags().Bool(flagPruneMergedNameConstant, false, flagPruneMergedDescriptionConstant)
	command.Flags().Bool(flagFetchNameConstant, defaults.Fetch, flagFetchDescriptionConstant)
	command.Flags().Bool(flagRequireUpstreamNameConstant, defaults.RequireUpstream, flagRequireUpstreamDescriptionConstant)
	command.Flags().String(flagFormatNameConstant, defaults.Format, flagutils.FormatChoiceUsage(flagFormatDescriptionConstant, SupportedOutputFormats()...))
	command.MarkFlagsMutuallyExclusive(flagStatsNameConstant, flagPruneMergedNameConstant)

	flagutils.BindExecutionFlags(command, flagutils.ExecutionDefaults{}, flagutils.DefaultExecutionFlagDefinitions())
	flagutils.BindReferenceFlag(command, flagutils.ReferenceFlagValues{Name: defaults.Reference})
	flagutils.EnsureRemoteFlag(command, defaults.Remote, flagutils.RemoteFlagUsage)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.resolveConfiguration()
	options, optionsError := builder.parseOptions(command, configuration)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()
	service, serviceError := builder.buildService(command, configuration, options.resolution.Remote, logger)
	if serviceError != nil {
		return serviceError
	}

	switch options.mode {
	case operationModeStats:
		_, statsError := service.Stats(command.Context(), StatsOptions{ResolutionOptions: options.resolution, Format: options.format})
		return statsError
	case operationModePrune:
		_, pruneError := service.Prune(command.Context(), PruneOptions{
			ResolutionOptions: options.resolution,
			Protected:         configuration.Protected,
			RequireUpstream:   options.requireUpstream,
			DryRun:            options.dryRun,
			AssumeYes:         options.assumeYes,
		})
		return pruneError
	default:
		_, pickError := service.Pick(command.Context(), PickOptions{DryRun: options.dryRun})
		return pickError
	}
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, configuration CommandConfiguration) (commandOptions, error) {
	options := commandOptions{
		mode: operationModePick,
		resolution: ResolutionOptions{
			Reference:          configuration.Reference,
			FallbackReferences: configuration.FallbackReferences,
			Remote:             configuration.Remote,
			Fetch:              configuration.Fetch,
		},
		requireUpstream: configuration.RequireUpstream,
	}

	if statsValue, _ := command.Flags().GetBool(flagStatsNameConstant); statsValue {
		options.mode = operationModeStats
	}
	if pruneValue, _ := command.Flags().GetBool(flagPruneMergedNameConstant); pruneValue {
		options.mode = operationModePrune
	}

	executionFlags := flagutils.ResolveExecutionFlags(command, flagutils.ExecutionDefaults{})
	options.dryRun = executionFlags.DryRun
	options.assumeYes = executionFlags.AssumeYes

	if referenceValue, changed := changedString(command, flagutils.ReferenceFlagName); changed {
		options.resolution.Reference = referenceValue
	}
	if remoteValue, changed := changedString(command, flagutils.RemoteFlagName); changed && len(remoteValue) > 0 {
		options.resolution.Remote = remoteValue
	}
	if command.Flags().Changed(flagFetchNameConstant) {
		options.resolution.Fetch, _ = command.Flags().GetBool(flagFetchNameConstant)
	}
	if command.Flags().Changed(flagRequireUpstreamNameConstant) {
		options.requireUpstream, _ = command.Flags().GetBool(flagRequireUpstreamNameConstant)
	}

	formatValue := configuration.Format
	if changedFormat, changed := changedString(command, flagFormatNameConstant); changed {
		formatValue = changedFormat
	}
	format, formatError := ParseOutputFormat(formatValue)
	if formatError != nil {
		return commandOptions{}, formatError
	}
	options.format = format

	return options, nil
}

func (builder *CommandBuilder) buildService(command *cobra.Command, configuration CommandConfiguration, remote string, logger *zap.Logger) (*Service, error) {
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	executor, executorError := dependencies.ResolveCommandExecutor(builder.Executor, logger, builder.resolveConsoleLogger(), humanReadableLogging)
	if executorError != nil {
		return nil, executorError
	}

	repository := builder.Repository
	locator := builder.Locator
	if repository == nil {
		gitRepository, repositoryError := gitrepo.NewRepository(executor, utils.ResolveWorkingDirectory(command.Context(), builder.WorkingDirectory))
		if repositoryError != nil {
			return nil, repositoryError
		}
		repository = gitRepository
		if locator == nil {
			locator = gitrepo.NewRemoteLocator(gitRepository, remote, configuration.UpstreamRemote)
		}
	}

	directory, directoryError := dependencies.ResolvePullRequestDirectory(builder.Directory, executor, logger, pullrequests.Options{
		Timeout:     configuration.PullRequestTimeout,
		ResultLimit: configuration.PullRequestLimit,
	})
	if directoryError != nil {
		return nil, directoryError
	}

	chooser := dependencies.ResolveChooser(builder.Chooser, command.InOrStdin(), command.OutOrStdout(), selector.Prompts{
		Multiple: multiplePromptConstant,
		Single:   singlePromptConstant,
	})

	return NewService(Dependencies{
		Repository: repository,
		Locator:    locator,
		Directory:  directory,
		Chooser:    chooser,
		Output:     command.OutOrStdout(),
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

func changedString(command *cobra.Command, flagName string) (string, bool) {
	flag := command.Flags().Lookup(flagName)
	if flag == nil || !flag.Changed {
		return "", false
	}
	return strings.TrimSpace(flag.Value.String()), true
}
