package commit

import (
	"strings"

	"github.com/temirov/gitx/internal/commitmsg"
)

const (
	configurationCommandKeyConstant         = "command"
	configurationAssumeYesKeyConstant       = "assume_yes"
	configurationCopyToClipboardKeyConstant = "copy_to_clipboard"
	configurationMaxDiffBytesKeyConstant    = "max_diff_bytes"
)

// CommandConfiguration captures configuration values for the commit command.
type CommandConfiguration struct {
	Command         string `mapstructure:"command"`
	AssumeYes       bool   `mapstructure:"assume_yes"`
	CopyToClipboard bool   `mapstructure:"copy_to_clipboard"`
	MaxDiffBytes    int    `mapstructure:"max_diff_bytes"`
}

// DefaultCommandConfiguration provides baseline configuration values for the commit command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Command:         commitmsg.DefaultCommandName,
		AssumeYes:       false,
		CopyToClipboard: false,
		MaxDiffBytes:    commitmsg.DefaultMaximumDiffBytes,
	}
}

// DefaultConfigurationValues exposes the defaults keyed under rootKey for the configuration loader.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationCommandKeyConstant:         defaults.Command,
		rootKey + "." + configurationAssumeYesKeyConstant:       defaults.AssumeYes,
		rootKey + "." + configurationCopyToClipboardKeyConstant: defaults.CopyToClipboard,
		rootKey + "." + configurationMaxDiffBytesKeyConstant:    defaults.MaxDiffBytes,
	}
}

// Sanitize trims values and restores defaults for unusable ones.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Command = strings.TrimSpace(configuration.Command)
	if len(sanitized.Command) == 0 {
		sanitized.Command = commitmsg.DefaultCommandName
	}
	if sanitized.MaxDiffBytes <= 0 {
		sanitized.MaxDiffBytes = commitmsg.DefaultMaximumDiffBytes
	}
	return sanitized
}
