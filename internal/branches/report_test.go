package branches_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitx/internal/branches"
	"github.com/temirov/gitx/internal/branchstate"
	"github.com/temirov/gitx/internal/prune"
)

func TestReportRendererSeparatesOutcomes(testInstance *testing.T) {
	availableEnrichment := branchstate.PullRequestEnrichment{Available: true, Repository: "octo/gitx"}

	testCases := []struct {
		name           string
		report         prune.Report
		enrichment     branchstate.PullRequestEnrichment
		expectedOutput string
	}{
		{
			name:           "nothing_to_prune",
			report:         prune.Report{Simulated: true},
			enrichment:     availableEnrichment,
			expectedOutput: "No branches to prune\n",
		},
		{
			name:           "simulated",
			report:         prune.Report{Simulated: true, WouldDelete: []string{"feature/a", "feature/b"}},
			enrichment:     availableEnrichment,
			expectedOutput: "Would delete 2 branches:\n  feature/a\n  feature/b\n",
		},
		{
			name:           "cancelled",
			report:         prune.Report{Cancelled: true, Excluded: []prune.Exclusion{{Branch: "main", Reasons: []string{"branch is protected"}}}},
			enrichment:     availableEnrichment,
			expectedOutput: "Pruning cancelled; no branches deleted\nKept 1 branch:\n  main: branch is protected\n",
		},
		{
			name: "partial_failure",
			report: prune.Report{
				Attempted: 2,
				Deleted:   []string{"feature/a"},
				Failed:    []prune.FailedDeletion{{Branch: "feature/b", Reason: "branch not found"}},
			},
			enrichment:     availableEnrichment,
			expectedOutput: "Deleted 1 branch:\n  feature/a\nFailed to delete 1 branch:\n  feature/b: branch not found\n",
		},
		{
			name:           "nothing_selected",
			report:         prune.Report{Excluded: []prune.Exclusion{{Branch: "main", Reasons: []string{"branch is protected", "branch is checked out"}}}},
			enrichment:     availableEnrichment,
			expectedOutput: "No branches deleted\nKept 1 branch:\n  main: branch is protected; branch is checked out\n",
		},
		{
			name:           "pull_requests_unavailable",
			report:         prune.Report{Simulated: true, WouldDelete: []string{"feature/a"}},
			enrichment:     branchstate.PullRequestEnrichment{Failure: errors.New("gh not found")},
			expectedOutput: "Pull request data unavailable; branches with open pull requests could not be excluded\nWould delete 1 branch:\n  feature/a\n",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(serviceTestCaseNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			output := &bytes.Buffer{}
			branches.NewReportRenderer(output).Render(testCase.report, testCase.enrichment)
			require.Equal(testInstance, testCase.expectedOutput, output.String())
		})
	}
}
