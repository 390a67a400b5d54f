package prune_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gitx/internal/branchstate"
	"github.com/temirov/gitx/internal/prune"
	"github.com/temirov/gitx/internal/selector"
)

const (
	testCaseNameTemplateConstant = "%d_%s"
	mainBranchNameConstant       = "main"
	featureABranchNameConstant   = "feature/a"
	featureBBranchNameConstant   = "feature/b"
	featureCBranchNameConstant   = "feature/c"
)

type recordingDeleter struct {
	failures     map[string]error
	deletedNames []string
}

func (deleter *recordingDeleter) DeleteBranch(_ context.Context, name string) error {
	deleter.deletedNames = append(deleter.deletedNames, name)
	if failure, found := deleter.failures[name]; found {
		return failure
	}
	return nil
}

type scriptedChooser struct {
	result       selector.Result
	err          error
	invocations  int
	offeredItems []selector.Item
}

func (chooser *scriptedChooser) ChooseMultiple(_ context.Context, items []selector.Item) (selector.Result, error) {
	chooser.invocations++
	chooser.offeredItems = items
	return chooser.result, chooser.err
}

func fourBranchStatuses() []branchstate.BranchStatus {
	return []branchstate.BranchStatus{
		{
			Branch:        branchstate.Branch{Name: mainBranchNameConstant, IsCurrent: true, Upstream: "origin/main"},
			MergeRelation: branchstate.MergeRelationMerged,
		},
		{
			Branch:        branchstate.Branch{Name: featureABranchNameConstant, Upstream: "origin/feature/a", LastActivity: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)},
			MergeRelation: branchstate.MergeRelationMerged,
			Behind:        3,
		},
		{
			Branch:        branchstate.Branch{Name: featureBBranchNameConstant, Upstream: "origin/feature/b"},
			MergeRelation: branchstate.MergeRelationMerged,
			PullRequest:   &branchstate.PullRequestInfo{Number: 7, State: branchstate.PullRequestStateOpen},
		},
		{
			Branch:        branchstate.Branch{Name: featureCBranchNameConstant},
			MergeRelation: branchstate.MergeRelationUnmerged,
			Ahead:         2,
		},
	}
}

func newTestEngine(testInstance *testing.T, deleter prune.BranchDeleter, chooser selector.MultiChooser, logger *zap.Logger, rules ...prune.Rule) *prune.Engine {
	engine, engineError := prune.NewEngine(prune.Dependencies{Deleter: deleter, Chooser: chooser, Logger: logger, Rules: rules})
	require.NoError(testInstance, engineError)
	return engine
}

func TestNewEngineRequiresDeleter(testInstance *testing.T) {
	engine, engineError := prune.NewEngine(prune.Dependencies{})
	require.ErrorIs(testInstance, engineError, prune.ErrDeleterNotConfigured)
	require.Nil(testInstance, engine)
}

func TestEnginePlanFourBranchScenario(testInstance *testing.T) {
	engine := newTestEngine(testInstance, &recordingDeleter{}, nil, nil)

	plan := engine.Plan(fourBranchStatuses(), prune.NewProtectedBranches(mainBranchNameConstant))

	require.Equal(testInstance, []string{featureABranchNameConstant}, plan.CandidateNames())
	require.Equal(testInstance, []prune.Exclusion{
		{Branch: mainBranchNameConstant, Reasons: []string{"branch is protected", "branch is checked out"}},
		{Branch: featureBBranchNameConstant, Reasons: []string{"pull request is still open"}},
		{Branch: featureCBranchNameConstant, Reasons: []string{"has commits not merged into the reference branch"}},
	}, plan.Excluded)
}

func TestEngineNeverSelectsCurrentBranch(testInstance *testing.T) {
	engine := newTestEngine(testInstance, &recordingDeleter{}, nil, nil)
	statuses := []branchstate.BranchStatus{{
		Branch:        branchstate.Branch{Name: "topic", IsCurrent: true},
		MergeRelation: branchstate.MergeRelationMerged,
	}}

	require.Empty(testInstance, engine.ComputeCandidates(statuses, prune.NewProtectedBranches()))
}

func TestEngineEligibilityByRelationAndPullRequest(testInstance *testing.T) {
	testCases := []struct {
		name           string
		relation       branchstate.MergeRelation
		pullRequest    *branchstate.PullRequestInfo
		expectEligible bool
	}{
		{name: "merged_without_pull_request", relation: branchstate.MergeRelationMerged, expectEligible: true},
		{name: "merged_with_closed_pull_request", relation: branchstate.MergeRelationMerged, pullRequest: &branchstate.PullRequestInfo{Number: 1, State: branchstate.PullRequestStateClosed}, expectEligible: true},
		{name: "merged_with_merged_pull_request", relation: branchstate.MergeRelationMerged, pullRequest: &branchstate.PullRequestInfo{Number: 2, State: branchstate.PullRequestStateMerged}, expectEligible: true},
		{name: "merged_with_open_pull_request", relation: branchstate.MergeRelationMerged, pullRequest: &branchstate.PullRequestInfo{Number: 3, State: branchstate.PullRequestStateOpen}},
		{name: "unmerged", relation: branchstate.MergeRelationUnmerged},
		{name: "diverged", relation: branchstate.MergeRelationDiverged},
		{name: "unknown", relation: branchstate.MergeRelationUnknown},
		{name: "empty", relation: branchstate.MergeRelation("")},
		{name: "unrecognized", relation: branchstate.MergeRelation("rebased")},
	}

	evaluator := prune.NewEvaluator()
	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testCaseNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			decision := evaluator.Evaluate(branchstate.BranchStatus{
				Branch:        branchstate.Branch{Name: "topic"},
				MergeRelation: testCase.relation,
				PullRequest:   testCase.pullRequest,
			}, prune.EvaluationContext{})
			require.Equal(testInstance, testCase.expectEligible, decision.Eligible)
			require.Equal(testInstance, testCase.expectEligible, len(decision.BlockingReasons) == 0)
		})
	}
}

func TestMergedRuleBlocksEveryRelationExceptMerged(testInstance *testing.T) {
	decision := prune.NewEvaluator().Evaluate(branchstate.BranchStatus{
		Branch:        branchstate.Branch{Name: "topic", Upstream: "origin/topic"},
		MergeRelation: branchstate.MergeRelation("rebased"),
	}, prune.EvaluationContext{})

	require.False(testInstance, decision.Eligible)
	require.Equal(testInstance, []string{"has commits not merged into the reference branch"}, decision.BlockingReasons)
}

func TestRequireUpstreamRuleExcludesUnpushedBranches(testInstance *testing.T) {
	engine := newTestEngine(testInstance, &recordingDeleter{}, nil, nil, prune.RequireUpstreamRule())

	plan := engine.Plan(fourBranchStatuses()[:2], prune.NewProtectedBranches(mainBranchNameConstant))
	require.Equal(testInstance, []string{featureABranchNameConstant}, plan.CandidateNames())

	unpushed := []branchstate.BranchStatus{{Branch: branchstate.Branch{Name: "local-only"}, MergeRelation: branchstate.MergeRelationMerged}}
	plan = engine.Plan(unpushed, nil)
	require.Empty(testInstance, plan.Candidates)
	require.Equal(testInstance, []string{"branch was never pushed"}, plan.Excluded[0].Reasons)
}

func TestEngineRunDryRunNeverMutates(testInstance *testing.T) {
	deleter := &recordingDeleter{}
	chooser := &scriptedChooser{}
	engine := newTestEngine(testInstance, deleter, chooser, nil)

	report, runError := engine.Run(context.Background(), fourBranchStatuses(), prune.Options{
		Protected: prune.NewProtectedBranches(mainBranchNameConstant),
		DryRun:    true,
	})

	require.NoError(testInstance, runError)
	require.True(testInstance, report.Simulated)
	require.Equal(testInstance, []string{featureABranchNameConstant}, report.WouldDelete)
	require.Empty(testInstance, report.Deleted)
	require.Zero(testInstance, report.Attempted)
	require.Empty(testInstance, deleter.deletedNames)
	require.Zero(testInstance, chooser.invocations)
}

func TestEngineRunInteractiveSelection(testInstance *testing.T) {
	statuses := []branchstate.BranchStatus{
		{Branch: branchstate.Branch{Name: "one"}, MergeRelation: branchstate.MergeRelationMerged},
		{Branch: branchstate.Branch{Name: "two"}, MergeRelation: branchstate.MergeRelationMerged, PullRequest: &branchstate.PullRequestInfo{Number: 4, State: branchstate.PullRequestStateMerged}},
		{Branch: branchstate.Branch{Name: "three"}, MergeRelation: branchstate.MergeRelationMerged},
	}

	testCases := []struct {
		name            string
		chooser         *scriptedChooser
		expectedDeleted []string
		expectCancelled bool
		expectError     bool
	}{
		{name: "subset", chooser: &scriptedChooser{result: selector.Result{Indices: []int{0, 2}}}, expectedDeleted: []string{"one", "three"}},
		{name: "cancelled", chooser: &scriptedChooser{result: selector.Result{Cancelled: true}}, expectCancelled: true},
		{name: "chooser_failure", chooser: &scriptedChooser{err: errors.New("terminal closed")}, expectError: true},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testCaseNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			deleter := &recordingDeleter{}
			engine := newTestEngine(testInstance, deleter, testCase.chooser, nil)

			report, runError := engine.Run(context.Background(), statuses, prune.Options{})
			if testCase.expectError {
				require.Error(testInstance, runError)
				require.Empty(testInstance, deleter.deletedNames)
				return
			}
			require.NoError(testInstance, runError)
			require.Equal(testInstance, testCase.expectCancelled, report.Cancelled)
			require.Equal(testInstance, testCase.expectedDeleted, report.Deleted)
			require.Equal(testInstance, testCase.expectedDeleted, nilIfEmpty(deleter.deletedNames))
			require.Len(testInstance, testCase.chooser.offeredItems, 3)
			require.Equal(testInstance, "merged · PR #4 merged", testCase.chooser.offeredItems[1].Description)
		})
	}
}

func TestEngineRunAssumeYesSkipsChooser(testInstance *testing.T) {
	deleter := &recordingDeleter{}
	engine := newTestEngine(testInstance, deleter, nil, nil)

	report, runError := engine.Run(context.Background(), fourBranchStatuses(), prune.Options{
		Protected: prune.NewProtectedBranches(mainBranchNameConstant),
		AssumeYes: true,
	})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, []string{featureABranchNameConstant}, report.Deleted)
	require.Equal(testInstance, []string{featureABranchNameConstant}, deleter.deletedNames)
	require.Len(testInstance, report.Excluded, 3)
	require.NoError(testInstance, report.Err())
}

func TestEngineRunWithoutChooserFailsBeforeDeleting(testInstance *testing.T) {
	deleter := &recordingDeleter{}
	engine := newTestEngine(testInstance, deleter, nil, nil)

	_, runError := engine.Run(context.Background(), fourBranchStatuses(), prune.Options{})
	require.ErrorIs(testInstance, runError, prune.ErrChooserNotConfigured)
	require.Empty(testInstance, deleter.deletedNames)
}

func TestEngineExecuteRecordsOutOfBandDeletion(testInstance *testing.T) {
	deleter := &recordingDeleter{failures: map[string]error{
		"second": fmt.Errorf("%w: second", branchstate.ErrBranchNotFound),
		"third":  errors.New("cannot lock ref"),
	}}
	observerCore, observedLogs := observer.New(zapcore.WarnLevel)
	engine := newTestEngine(testInstance, deleter, nil, zap.New(observerCore))

	candidates := []prune.Candidate{
		{Status: branchstate.BranchStatus{Branch: branchstate.Branch{Name: "first"}}},
		{Status: branchstate.BranchStatus{Branch: branchstate.Branch{Name: "second"}}},
		{Status: branchstate.BranchStatus{Branch: branchstate.Branch{Name: "third"}}},
		{Status: branchstate.BranchStatus{Branch: branchstate.Branch{Name: "fourth"}}},
	}
	report := engine.Execute(context.Background(), candidates, []string{"fourth", "third", "second", "first"}, false)

	require.Equal(testInstance, 4, report.Attempted)
	require.Equal(testInstance, []string{"first", "second", "third", "fourth"}, deleter.deletedNames)
	require.Equal(testInstance, []string{"first", "fourth"}, report.Deleted)
	require.Equal(testInstance, []prune.FailedDeletion{
		{Branch: "second", Reason: "branch not found"},
		{Branch: "third", Reason: "cannot lock ref"},
	}, report.Failed)
	require.ErrorIs(testInstance, report.Err(), prune.ErrDeletionsFailed)
	require.Equal(testInstance, 2, observedLogs.FilterMessage("Branch deletion failed").Len())
}

func TestEngineExecuteIgnoresSelectionsOutsideCandidates(testInstance *testing.T) {
	deleter := &recordingDeleter{}
	observerCore, observedLogs := observer.New(zapcore.WarnLevel)
	engine := newTestEngine(testInstance, deleter, nil, zap.New(observerCore))

	candidates := []prune.Candidate{{Status: branchstate.BranchStatus{Branch: branchstate.Branch{Name: "stale"}}}}
	report := engine.Execute(context.Background(), candidates, []string{"stale", mainBranchNameConstant}, false)

	require.Equal(testInstance, []string{"stale"}, deleter.deletedNames)
	require.Equal(testInstance, 1, report.Attempted)
	require.Equal(testInstance, 1, observedLogs.FilterMessage("Ignoring selection outside the candidate set").Len())
}

func TestDeleteErrorUnwrapsCause(testInstance *testing.T) {
	deleteError := prune.DeleteError{Branch: "gone", Reason: "branch not found", Cause: branchstate.ErrBranchNotFound}
	require.ErrorIs(testInstance, deleteError, branchstate.ErrBranchNotFound)
	require.Equal(testInstance, "delete gone: branch not found", deleteError.Error())
}

func nilIfEmpty(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return values
}
