package flags

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatChoiceUsage(testInstance *testing.T) {
	testCases := []struct {
		name          string
		description   string
		choices       []string
		expectedUsage string
	}{
		{name: "stats_formats", description: "Output format for --stats", choices: []string{"table", "yaml"}, expectedUsage: "Output format for --stats (one of: table, yaml)"},
		{name: "trailing_period", description: "Output format.", choices: []string{"table"}, expectedUsage: "Output format (one of: table)"},
		{name: "normalized_duplicates", description: "Layout", choices: []string{" Table ", "table", "YAML", ""}, expectedUsage: "Layout (one of: table, yaml)"},
		{name: "no_choices", description: " Layout ", expectedUsage: "Layout"},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedUsage, FormatChoiceUsage(testCase.description, testCase.choices...))
		})
	}
}
