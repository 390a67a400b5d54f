package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	endOfOptionsArgument              = "--"
	longFlagPrefix                    = "--"
	optionPrefix                      = "-"
	helpLongFlag                      = "--help"
	helpShortFlag                     = "-h"
	flagValueSeparator                = "="
	missingInheritedFlagValueTemplate = "flag needs an argument: --%s"
	invalidInheritedFlagValueTemplate = "invalid argument %q for --%s: %w"
)

// ApplyInheritedFlags sets the inherited long flags found in arguments and returns the rest.
// Commands that disable flag parsing use it so global flags keep working in front of forwarded arguments.
// Nothing after "--" is inspected.
func ApplyInheritedFlags(command *cobra.Command, arguments []string) ([]string, error) {
	if command == nil {
		return arguments, nil
	}

	inheritedFlags := command.InheritedFlags()
	remaining := make([]string, 0, len(arguments))
	for argumentIndex := 0; argumentIndex < len(arguments); argumentIndex++ {
		argument := arguments[argumentIndex]
		if argument == endOfOptionsArgument {
			remaining = append(remaining, arguments[argumentIndex:]...)
			break
		}
		if !strings.HasPrefix(argument, longFlagPrefix) {
			remaining = append(remaining, argument)
			continue
		}

		flagName, flagValue, valueProvided := strings.Cut(argument[len(longFlagPrefix):], flagValueSeparator)
		inheritedFlag := inheritedFlags.Lookup(flagName)
		if inheritedFlag == nil {
			remaining = append(remaining, argument)
			continue
		}
		if !valueProvided {
			if len(inheritedFlag.NoOptDefVal) > 0 {
				flagValue = inheritedFlag.NoOptDefVal
			} else {
				if argumentIndex+1 >= len(arguments) {
					return nil, fmt.Errorf(missingInheritedFlagValueTemplate, flagName)
				}
				argumentIndex++
				flagValue = arguments[argumentIndex]
			}
		}
		if setError := inheritedFlags.Set(flagName, flagValue); setError != nil {
			return nil, fmt.Errorf(invalidInheritedFlagValueTemplate, flagValue, flagName, setError)
		}
	}
	return remaining, nil
}

// SplitLeadingOptions separates the options in front of the first positional argument from that argument and the rest.
// A long option found in flagSet without "=" consumes the following argument unless it has a default for bare use.
// A "--" ends the options and is dropped; help flags count as positional.
func SplitLeadingOptions(flagSet *pflag.FlagSet, arguments []string) ([]string, []string) {
	for argumentIndex := 0; argumentIndex < len(arguments); argumentIndex++ {
		argument := arguments[argumentIndex]
		if argument == endOfOptionsArgument {
			return arguments[:argumentIndex], arguments[argumentIndex+1:]
		}
		if !strings.HasPrefix(argument, optionPrefix) || argument == helpLongFlag || argument == helpShortFlag {
			return arguments[:argumentIndex], arguments[argumentIndex:]
		}
		if !strings.HasPrefix(argument, longFlagPrefix) || strings.Contains(argument, flagValueSeparator) || flagSet == nil {
			continue
		}
		if flag := flagSet.Lookup(argument[len(longFlagPrefix):]); flag != nil && len(flag.NoOptDefVal) == 0 {
			argumentIndex++
		}
	}
	return arguments, nil
}
