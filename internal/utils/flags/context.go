package flags

import "github.com/spf13/cobra"

const (
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Preview operations without making changes"
	// AssumeYesFlagName exposes the shared assume-yes flag name.
	AssumeYesFlagName = "yes"
	// AssumeYesFlagShorthand provides the shorthand for the assume-yes flag.
	AssumeYesFlagShorthand = "y"
	// AssumeYesFlagUsage describes the shared assume-yes flag purpose.
	AssumeYesFlagUsage = "Automatically confirm prompts"
	// RemoteFlagName exposes the shared remote flag name.
	RemoteFlagName = "remote"
	// RemoteFlagUsage describes the shared remote flag purpose.
	RemoteFlagUsage = "Remote used to identify the hosted repository and to fetch from"
	// ReferenceFlagName exposes the shared reference branch flag name.
	ReferenceFlagName = "reference"
	// ReferenceFlagUsage describes the shared reference branch flag purpose.
	ReferenceFlagUsage = "Branch that merge relations are computed against"
)

// ReferenceFlagValues stores the reference branch chosen on the command line.
type ReferenceFlagValues struct {
	Name string
}

// BindReferenceFlag attaches the reference branch flag to the provided command.
func BindReferenceFlag(command *cobra.Command, defaults ReferenceFlagValues) *ReferenceFlagValues {
	values := defaults
	if command == nil {
		return &values
	}
	if command.PersistentFlags().Lookup(ReferenceFlagName) == nil {
		command.PersistentFlags().StringVar(&values.Name, ReferenceFlagName, defaults.Name, ReferenceFlagUsage)
	}
	return &values
}

// EnsureRemoteFlag guarantees the shared remote flag is available on the command.
func EnsureRemoteFlag(command *cobra.Command, defaultValue string, usage string) {
	if command == nil {
		return
	}

	persistentSet := command.PersistentFlags()
	if persistentSet.Lookup(RemoteFlagName) == nil {
		persistentSet.String(RemoteFlagName, defaultValue, usage)
	}

	if command.Flags().Lookup(RemoteFlagName) == nil {
		if remoteFlag := persistentSet.Lookup(RemoteFlagName); remoteFlag != nil {
			command.Flags().AddFlag(remoteFlag)
		}
	}
}
