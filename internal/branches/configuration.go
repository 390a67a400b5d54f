package branches

import (
	"strings"
	"time"

	"github.com/temirov/gitx/internal/gitrepo"
	"github.com/temirov/gitx/internal/pullrequests"
)

const (
	configurationReferenceKeyConstant          = "reference"
	configurationFallbackReferencesKeyConstant = "fallback_references"
	configurationRemoteKeyConstant             = "remote"
	configurationUpstreamRemoteKeyConstant     = "upstream_remote"
	configurationProtectedKeyConstant          = "protected"
	configurationPullRequestLimitKeyConstant   = "pull_request_limit"
	configurationPullRequestTimeoutKeyConstant = "pull_request_timeout"
	configurationRequireUpstreamKeyConstant    = "require_upstream"
	configurationFetchKeyConstant              = "fetch"
	configurationFormatKeyConstant             = "format"
	defaultMainReferenceConstant               = "main"
	defaultMasterReferenceConstant             = "master"
	defaultDevelopBranchConstant               = "develop"
)

// CommandConfiguration captures configuration values for the branch command.
type CommandConfiguration struct {
	Reference          string        `mapstructure:"reference"`
	FallbackReferences []string      `mapstructure:"fallback_references"`
	Remote             string        `mapstructure:"remote"`
	UpstreamRemote     string        `mapstructure:"upstream_remote"`
	Protected          []string      `mapstructure:"protected"`
	PullRequestLimit   int           `mapstructure:"pull_request_limit"`
	PullRequestTimeout time.Duration `mapstructure:"pull_request_timeout"`
	RequireUpstream    bool          `mapstructure:"require_upstream"`
	Fetch              bool          `mapstructure:"fetch"`
	Format             string        `mapstructure:"format"`
}

// DefaultCommandConfiguration provides baseline configuration values for the branch command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Reference:          "",
		FallbackReferences: []string{defaultMainReferenceConstant, defaultMasterReferenceConstant},
		Remote:             gitrepo.DefaultPrimaryRemoteName,
		UpstreamRemote:     gitrepo.DefaultUpstreamRemoteName,
		Protected:          []string{defaultMainReferenceConstant, defaultMasterReferenceConstant, defaultDevelopBranchConstant},
		PullRequestLimit:   pullrequests.DefaultResultLimit,
		PullRequestTimeout: pullrequests.DefaultLookupTimeout,
		RequireUpstream:    false,
		Fetch:              false,
		Format:             string(OutputFormatTable),
	}
}

// DefaultConfigurationValues exposes the defaults keyed under rootKey for the configuration loader.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationReferenceKeyConstant:          defaults.Reference,
		rootKey + "." + configurationFallbackReferencesKeyConstant: defaults.FallbackReferences,
		rootKey + "." + configurationRemoteKeyConstant:             defaults.Remote,
		rootKey + "." + configurationUpstreamRemoteKeyConstant:     defaults.UpstreamRemote,
		rootKey + "." + configurationProtectedKeyConstant:          defaults.Protected,
		rootKey + "." + configurationPullRequestLimitKeyConstant:   defaults.PullRequestLimit,
		rootKey + "." + configurationPullRequestTimeoutKeyConstant: defaults.PullRequestTimeout,
		rootKey + "." + configurationRequireUpstreamKeyConstant:    defaults.RequireUpstream,
		rootKey + "." + configurationFetchKeyConstant:              defaults.Fetch,
		rootKey + "." + configurationFormatKeyConstant:             defaults.Format,
	}
}

// Sanitize trims values and restores defaults for missing or unusable ones.
// An explicitly empty protected list stays empty; the reference branch is protected regardless.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.Reference = strings.TrimSpace(configuration.Reference)
	sanitized.FallbackReferences = sanitizeNames(configuration.FallbackReferences)
	if len(sanitized.FallbackReferences) == 0 {
		sanitized.FallbackReferences = defaults.FallbackReferences
	}
	sanitized.Remote = strings.TrimSpace(configuration.Remote)
	if len(sanitized.Remote) == 0 {
		sanitized.Remote = defaults.Remote
	}
	sanitized.UpstreamRemote = strings.TrimSpace(configuration.UpstreamRemote)
	if len(sanitized.UpstreamRemote) == 0 {
		sanitized.UpstreamRemote = defaults.UpstreamRemote
	}
	sanitized.Protected = sanitizeNames(configuration.Protected)
	if sanitized.PullRequestLimit <= 0 {
		sanitized.PullRequestLimit = defaults.PullRequestLimit
	}
	if sanitized.PullRequestTimeout <= 0 {
		sanitized.PullRequestTimeout = defaults.PullRequestTimeout
	}
	sanitized.Format = strings.ToLower(strings.TrimSpace(configuration.Format))
	if len(sanitized.Format) == 0 {
		sanitized.Format = defaults.Format
	}

	return sanitized
}

func sanitizeNames(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, candidate := range raw {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		if _, duplicate := seen[trimmed]; duplicate {
			continue
		}
		seen[trimmed] = struct{}{}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
