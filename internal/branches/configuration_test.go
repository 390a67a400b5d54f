package branches_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitx/internal/branches"
)

func TestCommandConfigurationSanitize(testInstance *testing.T) {
	defaults := branches.DefaultCommandConfiguration()

	testCases := []struct {
		name     string
		input    branches.CommandConfiguration
		expected branches.CommandConfiguration
	}{
		{
			name:  "empty_values_restore_defaults",
			input: branches.CommandConfiguration{Protected: []string{}},
			expected: branches.CommandConfiguration{
				FallbackReferences: defaults.FallbackReferences,
				Remote:             defaults.Remote,
				UpstreamRemote:     defaults.UpstreamRemote,
				Protected:          []string{},
				PullRequestLimit:   defaults.PullRequestLimit,
				PullRequestTimeout: defaults.PullRequestTimeout,
				Format:             defaults.Format,
			},
		},
		{
			name: "values_are_trimmed_and_deduplicated",
			input: branches.CommandConfiguration{
				Reference:          "  develop ",
				FallbackReferences: []string{" trunk", "", "trunk", "main "},
				Remote:             " fork ",
				UpstreamRemote:     "origin",
				Protected:          []string{"release", " release ", "  "},
				PullRequestLimit:   50,
				PullRequestTimeout: 5 * time.Second,
				RequireUpstream:    true,
				Fetch:              true,
				Format:             " YAML ",
			},
			expected: branches.CommandConfiguration{
				Reference:          "develop",
				FallbackReferences: []string{"trunk", "main"},
				Remote:             "fork",
				UpstreamRemote:     "origin",
				Protected:          []string{"release"},
				PullRequestLimit:   50,
				PullRequestTimeout: 5 * time.Second,
				RequireUpstream:    true,
				Fetch:              true,
				Format:             "yaml",
			},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(serviceTestCaseNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, testCase.input.Sanitize())
		})
	}
}

func TestDefaultConfigurationValuesAreKeyedUnderRoot(testInstance *testing.T) {
	values := branches.DefaultConfigurationValues("branch")
	require.Equal(testInstance, []string{"main", "master", "develop"}, values["branch.protected"])
	require.Equal(testInstance, []string{"main", "master"}, values["branch.fallback_references"])
	require.Equal(testInstance, "origin", values["branch.remote"])
	require.Equal(testInstance, "table", values["branch.format"])
	require.Equal(testInstance, false, values["branch.fetch"])
}

func TestParseOutputFormat(testInstance *testing.T) {
	format, parseError := branches.ParseOutputFormat(" YAML")
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, branches.OutputFormatYAML, format)

	_, parseError = branches.ParseOutputFormat("json")
	require.EqualError(testInstance, parseError, "unsupported output format \"json\"")
}
