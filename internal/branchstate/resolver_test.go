package branchstate_test

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
)

const (
	testCaseNameTemplateConstant = "%d_%s"
	testReferenceConstant        = "main"
	testRepositoryOwnerConstant  = "owner"
	testRepositoryNameConstant   = "project"
)

type fakeRepository struct {
	branches         []branchstate.Branch
	existingRefs     map[string]bool
	relations        map[string]branchstate.RelationDetails
	relationFailures map[string]error
	listCalls        int
	referenceLookups []string
	relationRequests []string
}

func (repository *fakeRepository) ListBranches(context.Context) ([]branchstate.Branch, error) {
	repository.listCalls++
	return append([]branchstate.Branch(nil), repository.branches...), nil
}

func (repository *fakeRepository) CurrentBranch(context.Context) (string, error) {
	for _, branch := range repository.branches {
		if branch.IsCurrent {
			return branch.Name, nil
		}
	}
	return "", nil
}

func (repository *fakeRepository) ReferenceExists(_ context.Context, reference string) (bool, error) {
	repository.referenceLookups = append(repository.referenceLookups, reference)
	return repository.existingRefs[reference], nil
}

func (repository *fakeRepository) MergeRelation(_ context.Context, branch string, reference string) (branchstate.RelationDetails, error) {
	repository.relationRequests = append(repository.relationRequests, branch)
	if failure, failed := repository.relationFailures[branch]; failed {
		return branchstate.RelationDetails{}, failure
	}
	return repository.relations[branch], nil
}

type fakeLocator struct {
	identity branchstate.RepositoryIdentity
	failure  error
}

func (locator fakeLocator) LocateRepository(context.Context) (branchstate.RepositoryIdentity, error) {
	return locator.identity, locator.failure
}

type fakeDirectory struct {
	lookup          branchstate.PullRequestLookup
	calls           int
	requestedNames  []string
	requestedTarget branchstate.RepositoryIdentity
}

func (directory *fakeDirectory) LookupForRepository(_ context.Context, repository branchstate.RepositoryIdentity, branchNames []string) branchstate.PullRequestLookup {
	directory.calls++
	directory.requestedNames = append([]string(nil), branchNames...)
	directory.requestedTarget = repository
	return directory.lookup
}

func newFourBranchRepository() *fakeRepository {
	baseTime := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	return &fakeRepository{
		branches: []branchstate.Branch{
			{Name: "feature/b", LastActivity: baseTime.Add(-2 * time.Hour)},
			{Name: "main", IsCurrent: true, LastActivity: baseTime.Add(-5 * time.Hour)},
			{Name: "feature/a", LastActivity: baseTime.Add(-1 * time.Hour)},
			{Name: "feature/c", LastActivity: baseTime.Add(-3 * time.Hour)},
		},
		existingRefs: map[string]bool{testReferenceConstant: true},
		relations: map[string]branchstate.RelationDetails{
			"main":      {Ahead: 0, Behind: 0},
			"feature/a": {Ahead: 0, Behind: 4},
			"feature/b": {Ahead: 0, Behind: 2},
			"feature/c": {Ahead: 3, Behind: 0},
		},
	}
}

func TestRelationDetailsClassify(testInstance *testing.T) {
	testCases := []struct {
		name             string
		details          branchstate.RelationDetails
		expectedRelation branchstate.MergeRelation
	}{
		{name: "identical_tips", details: branchstate.RelationDetails{}, expectedRelation: branchstate.MergeRelationMerged},
		{name: "reference_ahead", details: branchstate.RelationDetails{Behind: 5}, expectedRelation: branchstate.MergeRelationMerged},
		{name: "branch_ahead_only", details: branchstate.RelationDetails{Ahead: 2}, expectedRelation: branchstate.MergeRelationUnmerged},
		{name: "both_sides_ahead", details: branchstate.RelationDetails{Ahead: 1, Behind: 1}, expectedRelation: branchstate.MergeRelationDiverged},
		{name: "invalid_counts", details: branchstate.RelationDetails{Ahead: -1}, expectedRelation: branchstate.MergeRelationUnknown},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testCaseNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedRelation, testCase.details.Classify())
		})
	}
}

func TestResolveAllJoinsPullRequestsAndOrdersStatuses(testInstance *testing.T) {
	repository := newFourBranchRepository()
	directory := &fakeDirectory{lookup: branchstate.PullRequestLookup{
		Available: true,
		PullRequests: map[string]branchstate.PullRequestInfo{
			"feature/b": {Number: 7, State: branchstate.PullRequestStateOpen},
			"feature/a": {Number: 3, State: branchstate.PullRequestStateMerged},
			"Feature/C": {Number: 9, State: branchstate.PullRequestStateClosed},
		},
	}}
	resolver, creationError := branchstate.NewResolver(branchstate.Dependencies{
		Repository: repository,
		Locator:    fakeLocator{identity: branchstate.RepositoryIdentity{Owner: testRepositoryOwnerConstant, Name: testRepositoryNameConstant}},
		Directory:  directory,
	})
	require.NoError(testInstance, creationError)

	resolution, resolveError := resolver.ResolveAll(context.Background(), testReferenceConstant)
	require.NoError(testInstance, resolveError)

	require.Equal(testInstance, testReferenceConstant, resolution.Reference)
	require.True(testInstance, resolution.Enrichment.Available)
	require.Equal(testInstance, "owner/project", resolution.Enrichment.Repository)
	require.Equal(testInstance, 1, directory.calls)
	require.ElementsMatch(testInstance, []string{"main", "feature/a", "feature/b", "feature/c"}, directory.requestedNames)

	orderedNames := make([]string, 0, len(resolution.Statuses))
	for _, status := range resolution.Statuses {
		orderedNames = append(orderedNames, status.Branch.Name)
	}
	require.Equal(testInstance, []string{"main", "feature/a", "feature/b", "feature/c"}, orderedNames)

	statusesByName := map[string]branchstate.BranchStatus{}
	for _, status := range resolution.Statuses {
		statusesByName[status.Branch.Name] = status
	}
	require.Equal(testInstance, branchstate.MergeRelationMerged, statusesByName["feature/a"].MergeRelation)
	require.Equal(testInstance, 4, statusesByName["feature/a"].Behind)
	require.Equal(testInstance, branchstate.MergeRelationUnmerged, statusesByName["feature/c"].MergeRelation)
	require.NotNil(testInstance, statusesByName["feature/b"].PullRequest)
	require.Equal(testInstance, 7, statusesByName["feature/b"].PullRequest.Number)
	require.Nil(testInstance, statusesByName["feature/c"].PullRequest)
	require.Nil(testInstance, statusesByName["main"].PullRequest)
}

func TestResolveAllMatchesPullRequestsByUpstreamName(testInstance *testing.T) {
	repository := &fakeRepository{
		branches: []branchstate.Branch{
			{Name: "main", IsCurrent: true},
			{Name: "wip", Upstream: "origin/feature-x"},
			{Name: "topic", Upstream: "origin/topic-remote"},
			{Name: "local-only", Upstream: "main"},
			{Name: "feature-x", Upstream: "origin/feature-x"},
		},
		existingRefs: map[string]bool{testReferenceConstant: true},
		relations: map[string]branchstate.RelationDetails{
			"wip":        {Behind: 1},
			"topic":      {Behind: 1},
			"local-only": {Behind: 1},
			"feature-x":  {Behind: 1},
		},
	}
	directory := &fakeDirectory{lookup: branchstate.PullRequestLookup{
		Available: true,
		PullRequests: map[string]branchstate.PullRequestInfo{
			"feature-x":    {Number: 12, State: branchstate.PullRequestStateOpen},
			"topic":        {Number: 4, State: branchstate.PullRequestStateMerged},
			"topic-remote": {Number: 5, State: branchstate.PullRequestStateOpen},
		},
	}}
	resolver, creationError := branchstate.NewResolver(branchstate.Dependencies{
		Repository: repository,
		Locator:    fakeLocator{identity: branchstate.RepositoryIdentity{Owner: testRepositoryOwnerConstant, Name: testRepositoryNameConstant}},
		Directory:  directory,
	})
	require.NoError(testInstance, creationError)

	resolution, resolveError := resolver.ResolveAll(context.Background(), testReferenceConstant)
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, []string{"main", "wip", "topic", "local-only", "feature-x", "topic-remote"}, directory.requestedNames)

	statusesByName := map[string]branchstate.BranchStatus{}
	for _, status := range resolution.Statuses {
		statusesByName[status.Branch.Name] = status
	}
	require.NotNil(testInstance, statusesByName["wip"].PullRequest)
	require.Equal(testInstance, 12, statusesByName["wip"].PullRequest.Number)
	require.True(testInstance, statusesByName["wip"].PullRequest.IsOpen())
	require.NotNil(testInstance, statusesByName["topic"].PullRequest)
	require.Equal(testInstance, 4, statusesByName["topic"].PullRequest.Number)
	require.Equal(testInstance, 12, statusesByName["feature-x"].PullRequest.Number)
	require.Nil(testInstance, statusesByName["local-only"].PullRequest)
	require.Nil(testInstance, statusesByName["main"].PullRequest)
}

func TestBranchUpstreamBranchName(testInstance *testing.T) {
	testCases := []struct {
		name         string
		upstream     string
		expectedName string
	}{
		{name: "remote_branch", upstream: "origin/feature-x", expectedName: "feature-x"},
		{name: "nested_branch", upstream: "upstream/feature/a", expectedName: "feature/a"},
		{name: "local_upstream", upstream: "main", expectedName: ""},
		{name: "no_upstream", upstream: "", expectedName: ""},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testCaseNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedName, branchstate.Branch{Name: "local", Upstream: testCase.upstream}.UpstreamBranchName())
		})
	}
}

func TestResolveAllFailsFastOnMissingReference(testInstance *testing.T) {
	repository := newFourBranchRepository()
	directory := &fakeDirectory{}
	resolver, creationError := branchstate.NewResolver(branchstate.Dependencies{
		Repository: repository,
		Locator:    fakeLocator{},
		Directory:  directory,
	})
	require.NoError(testInstance, creationError)

	_, resolveError := resolver.ResolveAll(context.Background(), "trunk")
	require.Error(testInstance, resolveError)
	require.ErrorIs(testInstance, resolveError, branchstate.ErrReferenceBranchNotFound)

	var notFoundError branchstate.ReferenceBranchNotFoundError
	require.ErrorAs(testInstance, resolveError, &notFoundError)
	require.Equal(testInstance, "trunk", notFoundError.Reference)
	require.Zero(testInstance, repository.listCalls)
	require.Zero(testInstance, directory.calls)
}

func TestResolveSelectedSkipsReferenceVerification(testInstance *testing.T) {
	repository := newFourBranchRepository()
	resolver, creationError := branchstate.NewResolver(branchstate.Dependencies{Repository: repository})
	require.NoError(testInstance, creationError)

	reference, selectionError := resolver.SelectReference(context.Background(), "", []string{"trunk", testReferenceConstant})
	require.NoError(testInstance, selectionError)
	require.Equal(testInstance, []string{"trunk", testReferenceConstant}, repository.referenceLookups)

	resolution, resolveError := resolver.ResolveSelected(context.Background(), reference)
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, testReferenceConstant, resolution.Reference)
	require.Len(testInstance, resolution.Statuses, 4)
	require.Equal(testInstance, []string{"trunk", testReferenceConstant}, repository.referenceLookups)
	require.False(testInstance, resolution.DetachedHead)
}

func TestResolveAllReportsDetachedHead(testInstance *testing.T) {
	repository := newFourBranchRepository()
	for branchIndex := range repository.branches {
		repository.branches[branchIndex].IsCurrent = false
	}
	resolver, creationError := branchstate.NewResolver(branchstate.Dependencies{Repository: repository})
	require.NoError(testInstance, creationError)

	resolution, resolveError := resolver.ResolveAll(context.Background(), testReferenceConstant)
	require.NoError(testInstance, resolveError)
	require.True(testInstance, resolution.DetachedHead)
	require.Equal(testInstance, []string{testReferenceConstant}, repository.referenceLookups)
}

func TestResolveAllDegradesWhenPullRequestsUnavailable(testInstance *testing.T) {
	testCases := []struct {
		name      string
		locator   branchstate.RepositoryLocator
		directory *fakeDirectory
	}{
		{
			name:      "directory_failure",
			locator:   fakeLocator{identity: branchstate.RepositoryIdentity{Owner: testRepositoryOwnerConstant, Name: testRepositoryNameConstant}},
			directory: &fakeDirectory{lookup: branchstate.PullRequestLookup{Failure: errors.New("rate limited")}},
		},
		{
			name:      "repository_not_identified",
			locator:   fakeLocator{failure: errors.New("no remote")},
			directory: &fakeDirectory{},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testCaseNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.WarnLevel)
			resolver, creationError := branchstate.NewResolver(branchstate.Dependencies{
				Repository: newFourBranchRepository(),
				Locator:    testCase.locator,
				Directory:  testCase.directory,
				Logger:     zap.New(observerCore),
			})
			require.NoError(testInstance, creationError)

			resolution, resolveError := resolver.ResolveAll(context.Background(), testReferenceConstant)
			require.NoError(testInstance, resolveError)
			require.False(testInstance, resolution.Enrichment.Available)
			require.Error(testInstance, resolution.Enrichment.Failure)
			require.Len(testInstance, resolution.Statuses, 4)
			for _, status := range resolution.Statuses {
				require.Nil(testInstance, status.PullRequest)
				require.NotEqual(testInstance, branchstate.MergeRelationUnknown, status.MergeRelation)
			}
			require.Equal(testInstance, 1, observedLogs.Len())
		})
	}
}

func TestResolveAllMarksRelationFailuresUnknown(testInstance *testing.T) {
	repository := newFourBranchRepository()
	repository.relationFailures = map[string]error{"feature/b": errors.New("bad object")}

	observerCore, observedLogs := observer.New(zapcore.WarnLevel)
	resolver, creationError := branchstate.NewResolver(branchstate.Dependencies{Repository: repository, Logger: zap.New(observerCore)})
	require.NoError(testInstance, creationError)

	resolution, resolveError := resolver.ResolveAll(context.Background(), testReferenceConstant)
	require.NoError(testInstance, resolveError)
	require.Len(testInstance, resolution.Statuses, 4)
	require.Len(testInstance, repository.relationRequests, 4)

	for _, status := range resolution.Statuses {
		if status.Branch.Name == "feature/b" {
			require.Equal(testInstance, branchstate.MergeRelationUnknown, status.MergeRelation)
			continue
		}
		require.NotEqual(testInstance, branchstate.MergeRelationUnknown, status.MergeRelation)
	}

	relationWarnings := observedLogs.FilterField(zap.String("branch", "feature/b")).All()
	require.Len(testInstance, relationWarnings, 1)
}

func TestSortStatusesFallsBackToNames(testInstance *testing.T) {
	activity := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)
	statuses := []branchstate.BranchStatus{
		{Branch: branchstate.Branch{Name: "zeta"}},
		{Branch: branchstate.Branch{Name: "alpha"}},
		{Branch: branchstate.Branch{Name: "beta", LastActivity: activity}},
		{Branch: branchstate.Branch{Name: "gamma", LastActivity: activity}},
		{Branch: branchstate.Branch{Name: "current", IsCurrent: true}},
	}

	branchstate.SortStatuses(statuses)

	orderedNames := make([]string, 0, len(statuses))
	for _, status := range statuses {
		orderedNames = append(orderedNames, status.Branch.Name)
	}
	require.Equal(testInstance, []string{"current", "beta", "gamma", "alpha", "zeta"}, orderedNames)
}

func TestSelectReference(testInstance *testing.T) {
	testCases := []struct {
		name              string
		existingRefs      map[string]bool
		explicitReference string
		expectedReference string
		expectNotFound    bool
	}{
		{name: "explicit_reference", existingRefs: map[string]bool{"develop": true}, explicitReference: " develop ", expectedReference: "develop"},
		{name: "explicit_reference_missing", existingRefs: map[string]bool{"main": true}, explicitReference: "develop", expectNotFound: true},
		{name: "main_present", existingRefs: map[string]bool{"main": true, "master": true}, expectedReference: "main"},
		{name: "master_fallback", existingRefs: map[string]bool{"master": true}, expectedReference: "master"},
		{name: "no_candidate", existingRefs: map[string]bool{}, expectNotFound: true},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testCaseNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			resolver, creationError := branchstate.NewResolver(branchstate.Dependencies{Repository: &fakeRepository{existingRefs: testCase.existingRefs}})
			require.NoError(testInstance, creationError)

			reference, selectionError := resolver.SelectReference(context.Background(), testCase.explicitReference, []string{"main", "master"})
			if testCase.expectNotFound {
				require.ErrorIs(testInstance, selectionError, branchstate.ErrReferenceBranchNotFound)
				return
			}
			require.NoError(testInstance, selectionError)
			require.Equal(testInstance, testCase.expectedReference, reference)
		})
	}
}

func TestNewResolverRequiresRepository(testInstance *testing.T) {
	resolver, creationError := branchstate.NewResolver(branchstate.Dependencies{})
	require.ErrorIs(testInstance, creationError, branchstate.ErrRepositoryAccessNotConfigured)
	require.Nil(testInstance, resolver)
}
