package passthrough

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitx/internal/execshell"
	"github.com/temirov/gitx/internal/utils"
	flagutils "github.com/temirov/gitx/internal/utils/flags"
)

const (
	// CommandName is the name of the forwarding command; unknown gitx commands are routed to it.
	CommandName                     = "git"
	commandUseConstant              = "git <subcommand> [args...]"
	commandShortDescriptionConstant = "Forward an allowlisted subcommand to git"
	commandLongDescriptionConstant  = "git runs an allowlisted git subcommand with the terminal attached and exits with git's exit code. Any gitx command that is not built in is forwarded the same way, so `gitx status` runs `git status`. Subcommands outside the allowlist are refused; extend the list with passthrough.additional_commands in the configuration file."
	commandExampleConstant          = "gitx status --short\ngitx git log --oneline -5"
	helpLongFlagConstant            = "--help"
	helpShortFlagConstant           = "-h"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the git forwarding command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	Runner                execshell.CommandRunner
	WorkingDirectory      string
}

// Build constructs the git forwarding command.
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
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	leadingOptions, forwardedArguments := flagutils.SplitLeadingOptions(command.InheritedFlags(), arguments)
	remainingOptions, inheritedError := flagutils.ApplyInheritedFlags(command, leadingOptions)
	if inheritedError != nil {
		return inheritedError
	}
	forwardedArguments = append(remainingOptions, forwardedArguments...)

	if len(forwardedArguments) == 0 || forwardedArguments[0] == helpLongFlagConstant || forwardedArguments[0] == helpShortFlagConstant {
		return command.Help()
	}

	runner := builder.Runner
	if runner == nil {
		runner = execshell.NewTerminalCommandRunner(command.InOrStdin(), command.OutOrStdout(), command.ErrOrStderr())
	}

	forwarder, forwarderError := NewForwarder(runner, builder.resolveConfiguration().Allowlist(), utils.ResolveWorkingDirectory(command.Context(), builder.WorkingDirectory), builder.resolveLogger())
	if forwarderError != nil {
		return forwarderError
	}
	return forwarder.Forward(command.Context(), forwardedArguments)
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider()
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
