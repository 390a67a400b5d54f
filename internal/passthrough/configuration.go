package passthrough

const (
	configurationAdditionalCommandsKeyConstant = "additional_commands"
)

// CommandConfiguration captures configuration values for forwarded git subcommands.
type CommandConfiguration struct {
	AdditionalCommands []string `mapstructure:"additional_commands"`
}

// DefaultCommandConfiguration provides baseline configuration values for forwarding.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{AdditionalCommands: []string{}}
}

// DefaultConfigurationValues exposes the defaults keyed under rootKey for the configuration loader.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationAdditionalCommandsKeyConstant: defaults.AdditionalCommands,
	}
}

// Allowlist builds the allowlist of the defaults plus the configured additions.
func (configuration CommandConfiguration) Allowlist() Allowlist {
	return NewAllowlist(configuration.AdditionalCommands...)
}
