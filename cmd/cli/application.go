package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/gitx/internal/branches"
	"github.com/temirov/gitx/internal/commit"
	"github.com/temirov/gitx/internal/dependencies"
	"github.com/temirov/gitx/internal/execshell"
	"github.com/temirov/gitx/internal/passthrough"
	"github.com/temirov/gitx/internal/utils"
	flagutils "github.com/temirov/gitx/internal/utils/flags"
	pathutils "github.com/temirov/gitx/internal/utils/path"
)

const (
	applicationNameConstant                 = "gitx"
	applicationShortDescriptionConstant     = "A git companion for branches, commits, and everyday commands"
	applicationLongDescriptionConstant      = "gitx picks and prunes local branches with pull request awareness, drafts commit messages from the staged diff, and forwards allowlisted git commands such as `gitx status` to git."
	applicationVersionTemplateConstant      = "gitx version: {{.Version}}\n"
	developmentVersionConstant              = "dev"
	untaggedBuildVersionConstant            = "(devel)"
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	branchConfigurationKeyConstant          = "branch"
	commitConfigurationKeyConstant          = "commit"
	passthroughConfigurationKeyConstant     = "passthrough"
	environmentPrefixConstant               = "GITX"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	rootCommandInfoMessageConstant          = "gitx executed without a command"
	rootCommandDebugMessageConstant         = "gitx diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentCountConstant           = "argument_count"
	logFieldArgumentsConstant               = "arguments"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	currentDirectorySearchPathConstant      = "."
	homeConfigurationSearchPathConstant     = "~/.gitx"
	defaultConfigurationHomeConstant        = "~/.config"
	configurationHomeEnvironmentConstant    = "XDG_CONFIG_HOME"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common      ApplicationCommonConfiguration   `mapstructure:"common"`
	Branch      branches.CommandConfiguration    `mapstructure:"branch"`
	Commit      commit.CommandConfiguration      `mapstructure:"commit"`
	Passthrough passthrough.CommandConfiguration `mapstructure:"passthrough"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string                     `mapstructure:"log_level"`
	LogFormat string                     `mapstructure:"log_format"`
	LogFile   utils.LogFileConfiguration `mapstructure:"log_file"`
}

// ApplicationOption customizes an Application.
type ApplicationOption func(*Application)

// WithGitRunner replaces the runner that forwards git commands to the terminal.
func WithGitRunner(runner execshell.CommandRunner) ApplicationOption {
	return func(application *Application) {
		application.gitRunner = runner
	}
}

// WithCommandExecutor replaces the executor used for captured git, gh, and assistant invocations.
func WithCommandExecutor(executor dependencies.CommandExecutor) ApplicationOption {
	return func(application *Application) {
		if executor != nil {
			application.commandExecutor = executor
		}
	}
}

// WithWorkingDirectory sets the repository directory commands operate in.
func WithWorkingDirectory(workingDirectory string) ApplicationOption {
	return func(application *Application) {
		application.workingDirectory = strings.TrimSpace(workingDirectory)
	}
}

// WithConfigurationSearchPaths replaces the directories searched for config.yaml.
func WithConfigurationSearchPaths(searchPaths ...string) ApplicationOption {
	return func(application *Application) {
		application.configurationSearchPaths = append([]string(nil), searchPaths...)
	}
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand              *cobra.Command
	configurationLoader      *utils.ConfigurationLoader
	configurationSearchPaths []string
	loggerFactory            *utils.LoggerFactory
	loggerOutputs            utils.LoggerOutputs
	logger                   *zap.Logger
	consoleLogger            *zap.Logger
	configuration            ApplicationConfiguration
	configurationMetadata    utils.LoadedConfiguration
	configurationFilePath    string
	logLevelFlagValue        string
	logFormatFlagValue       string
	workingDirectory         string
	gitRunner                execshell.CommandRunner
	commandExecutor          dependencies.CommandExecutor
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication(options ...ApplicationOption) *Application {
	application := &Application{
		configurationSearchPaths: defaultConfigurationSearchPaths(),
		loggerFactory:            utils.NewLoggerFactory(),
		logger:                   zap.NewNop(),
		consoleLogger:            zap.NewNop(),
	}
	if workingDirectory, workingDirectoryError := os.Getwd(); workingDirectoryError == nil {
		application.workingDirectory = workingDirectory
	}
	for _, option := range options {
		if option != nil {
			option(application)
		}
	}

	application.configurationLoader = utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		application.configurationSearchPaths,
	)
	application.configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       resolveVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command, arguments)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.SetVersionTemplate(applicationVersionTemplateConstant)
	cobraCommand.CompletionOptions.DisableDefaultCmd = true
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	branchBuilder := branches.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConsoleLoggerProvider: func() *zap.Logger {
			return application.consoleLogger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() branches.CommandConfiguration {
			return application.configuration.Branch
		},
		Executor: application.commandExecutor,
	}
	branchCommand, branchBuildError := branchBuilder.Build()
	if branchBuildError == nil {
		cobraCommand.AddCommand(branchCommand)
	}

	commitBuilder := commit.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConsoleLoggerProvider: func() *zap.Logger {
			return application.consoleLogger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() commit.CommandConfiguration {
			return application.configuration.Commit
		},
		Executor:  application.commandExecutor,
		GitRunner: application.gitRunner,
	}
	commitCommand, commitBuildError := commitBuilder.Build()
	if commitBuildError == nil {
		cobraCommand.AddCommand(commitCommand)
	}

	passthroughBuilder := passthrough.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() passthrough.CommandConfiguration {
			return application.configuration.Passthrough
		},
		Runner: application.gitRunner,
	}
	passthroughCommand, passthroughBuildError := passthroughBuilder.Build()
	if passthroughBuildError == nil {
		cobraCommand.AddCommand(passthroughCommand)
	}

	cobraCommand.InitDefaultHelpCmd()
	application.rootCommand = cobraCommand

	return application
}

// Execute runs the command hierarchy with the process arguments and ensures logger flushing.
func (application *Application) Execute() error {
	return application.ExecuteArguments(os.Args[1:])
}

// ExecuteArguments runs the command hierarchy with arguments; commands gitx does not know are forwarded to git.
func (application *Application) ExecuteArguments(arguments []string) error {
	application.rootCommand.SetArgs(application.routeArguments(arguments))
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		executionError = fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	if closeError := application.loggerOutputs.Close(); closeError != nil && executionError == nil {
		executionError = closeError
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

// routeArguments inserts the git forwarding command in front of the first positional argument
// when it does not name a gitx command.
func (application *Application) routeArguments(arguments []string) []string {
	routedArguments := append([]string{}, arguments...)
	if _, _, findError := application.rootCommand.Find(routedArguments); findError == nil {
		return routedArguments
	}

	rootFlags := pflag.NewFlagSet(applicationNameConstant, pflag.ContinueOnError)
	rootFlags.AddFlagSet(application.rootCommand.PersistentFlags())
	leadingOptions, _ := flagutils.SplitLeadingOptions(rootFlags, routedArguments)
	insertIndex := len(leadingOptions)

	routedArguments = append(routedArguments[:insertIndex], append([]string{passthrough.CommandName}, routedArguments[insertIndex:]...)...)
	return routedArguments
}

func (application *Application) initializeConfiguration(command *cobra.Command, arguments []string) error {
	if command != nil && command.DisableFlagParsing {
		leadingOptions, _ := flagutils.SplitLeadingOptions(command.InheritedFlags(), arguments)
		if _, inheritedError := flagutils.ApplyInheritedFlags(command, leadingOptions); inheritedError != nil {
			return inheritedError
		}
	}

	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelWarn),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}
	for configurationKey, configurationValue := range branches.DefaultConfigurationValues(branchConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range commit.DefaultConfigurationValues(commitConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range passthrough.DefaultConfigurationValues(passthroughConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logFileConfiguration := application.configuration.Common.LogFile
	if logFileConfiguration.Enabled() {
		logFileConfiguration.Path = pathutils.NewHomeExpander().Expand(strings.TrimSpace(logFileConfiguration.Path))
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(strings.ToLower(strings.TrimSpace(application.configuration.Common.LogLevel))),
		utils.LogFormat(strings.ToLower(strings.TrimSpace(application.configuration.Common.LogFormat))),
		logFileConfiguration,
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.loggerOutputs = loggerOutputs
	application.logger = loggerOutputs.DiagnosticLogger
	application.consoleLogger = loggerOutputs.ConsoleLogger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		updatedContext := utils.WithInvocation(command.Context(), utils.Invocation{
			ConfigurationFile: application.configurationMetadata.ConfigFileUsed,
			WorkingDirectory:  application.workingDirectory,
		})
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	return command.Help()
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

func defaultConfigurationSearchPaths() []string {
	configurationHome := strings.TrimSpace(os.Getenv(configurationHomeEnvironmentConstant))
	if len(configurationHome) == 0 {
		configurationHome = defaultConfigurationHomeConstant
	}
	return []string{
		currentDirectorySearchPathConstant,
		filepath.Join(configurationHome, applicationNameConstant),
		homeConfigurationSearchPathConstant,
	}
}

func resolveVersion() string {
	buildInfo, available := debug.ReadBuildInfo()
	if !available {
		return developmentVersionConstant
	}
	version := strings.TrimSpace(buildInfo.Main.Version)
	if len(version) == 0 || version == untaggedBuildVersionConstant {
		return developmentVersionConstant
	}
	return version
}
