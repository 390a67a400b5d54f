package gitrepo_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitx/internal/branchstate"
	"github.com/temirov/gitx/internal/execshell"
	"github.com/temirov/gitx/internal/gitrepo"
)

const (
	testCaseNameTemplateConstant = "%d_%s"
	testWorkingDirectoryConstant = "/workspace/project"
)

type scriptedResponse struct {
	result execshell.ExecutionResult
	err    error
}

type scriptedGitExecutor struct {
	responses       map[string]scriptedResponse
	recordedDetails []execshell.CommandDetails
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	response, found := executor.responses[strings.Join(details.Arguments, " ")]
	if !found {
		return execshell.ExecutionResult{}, nil
	}
	return response.result, response.err
}

func failedGitCommand(arguments string, standardError string) error {
	return execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{Arguments: strings.Fields(arguments)}},
		Result:  execshell.ExecutionResult{ExitCode: 1, StandardError: standardError},
	}
}

func newTestRepository(testInstance *testing.T, executor *scriptedGitExecutor) *gitrepo.Repository {
	repository, creationError := gitrepo.NewRepository(executor, testWorkingDirectoryConstant)
	require.NoError(testInstance, creationError)
	return repository
}

func TestNewRepositoryRequiresExecutor(testInstance *testing.T) {
	repository, creationError := gitrepo.NewRepository(nil, "")
	require.ErrorIs(testInstance, creationError, gitrepo.ErrGitExecutorNotConfigured)
	require.Nil(testInstance, repository)
}

func TestRepositoryListBranches(testInstance *testing.T) {
	listingArguments := "for-each-ref --format=%(refname:short)%00%(upstream:short)%00%(upstream:track)%00%(committerdate:unix)%00%(HEAD)%00%(objectname:short)%00%(contents:subject) refs/heads/"
	listingOutput := strings.Join([]string{
		strings.Join([]string{"main", "origin/main", "", "1767225600", "*", "abc1234", "Initial commit"}, "\x00"),
		strings.Join([]string{"feature/a", "origin/feature/a", "[gone]", "1767139200", " ", "def5678", "feat: add a"}, "\x00"),
		strings.Join([]string{"local-only", "", "", "", " ", "0a1b2c3", "wip"}, "\x00"),
	}, "\n") + "\n"

	executor := &scriptedGitExecutor{responses: map[string]scriptedResponse{
		listingArguments: {result: execshell.ExecutionResult{StandardOutput: listingOutput}},
	}}

	branches, listError := newTestRepository(testInstance, executor).ListBranches(context.Background())
	require.NoError(testInstance, listError)
	require.Equal(testInstance, []branchstate.Branch{
		{Name: "main", IsCurrent: true, Upstream: "origin/main", LastActivity: time.Unix(1767225600, 0).UTC(), HeadCommit: "abc1234", Subject: "Initial commit"},
		{Name: "feature/a", Upstream: "origin/feature/a", UpstreamGone: true, LastActivity: time.Unix(1767139200, 0).UTC(), HeadCommit: "def5678", Subject: "feat: add a"},
		{Name: "local-only", HeadCommit: "0a1b2c3", Subject: "wip"},
	}, branches)
	require.Equal(testInstance, testWorkingDirectoryConstant, executor.recordedDetails[0].WorkingDirectory)
}

func TestRepositoryReferenceExists(testInstance *testing.T) {
	lookupArguments := "for-each-ref --format=%(refname) refs/heads/release refs/remotes/release"
	testCases := []struct {
		name         string
		output       string
		expectExists bool
	}{
		{name: "local_branch", output: "refs/heads/release\n", expectExists: true},
		{name: "nested_only", output: "refs/heads/release/1.0\n", expectExists: false},
		{name: "absent", output: "", expectExists: false},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testCaseNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			executor := &scriptedGitExecutor{responses: map[string]scriptedResponse{
				lookupArguments: {result: execshell.ExecutionResult{StandardOutput: testCase.output}},
			}}
			exists, lookupError := newTestRepository(testInstance, executor).ReferenceExists(context.Background(), "release")
			require.NoError(testInstance, lookupError)
			require.Equal(testInstance, testCase.expectExists, exists)
		})
	}
}

func TestRepositoryMergeRelation(testInstance *testing.T) {
	relationArguments := "rev-list --left-right --count main...refs/heads/feature --"
	testCases := []struct {
		name            string
		response        scriptedResponse
		expectedDetails branchstate.RelationDetails
		expectError     bool
	}{
		{name: "merged", response: scriptedResponse{result: execshell.ExecutionResult{StandardOutput: "4\t0\n"}}, expectedDetails: branchstate.RelationDetails{Ahead: 0, Behind: 4}},
		{name: "diverged", response: scriptedResponse{result: execshell.ExecutionResult{StandardOutput: "2\t3\n"}}, expectedDetails: branchstate.RelationDetails{Ahead: 3, Behind: 2}},
		{name: "command_failure", response: scriptedResponse{err: failedGitCommand(relationArguments, "fatal: bad revision")}, expectError: true},
		{name: "garbled_output", response: scriptedResponse{result: execshell.ExecutionResult{StandardOutput: "x y"}}, expectError: true},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testCaseNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			executor := &scriptedGitExecutor{responses: map[string]scriptedResponse{relationArguments: testCase.response}}
			details, relationError := newTestRepository(testInstance, executor).MergeRelation(context.Background(), "feature", "main")
			if testCase.expectError {
				var computationError branchstate.RelationComputationError
				require.ErrorAs(testInstance, relationError, &computationError)
				require.Equal(testInstance, "feature", computationError.Branch)
				return
			}
			require.NoError(testInstance, relationError)
			require.Equal(testInstance, testCase.expectedDetails, details)
		})
	}
}

func TestRepositoryDeleteBranch(testInstance *testing.T) {
	deletionArguments := "branch --delete --force stale"
	testCases := []struct {
		name           string
		response       scriptedResponse
		expectError    bool
		expectNotFound bool
	}{
		{name: "deleted", response: scriptedResponse{}},
		{name: "already_gone", response: scriptedResponse{err: failedGitCommand(deletionArguments, "error: branch 'stale' not found.")}, expectError: true, expectNotFound: true},
		{name: "checked_out_elsewhere", response: scriptedResponse{err: failedGitCommand(deletionArguments, "error: cannot delete branch 'stale' used by worktree")}, expectError: true},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testCaseNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			executor := &scriptedGitExecutor{responses: map[string]scriptedResponse{deletionArguments: testCase.response}}
			deletionError := newTestRepository(testInstance, executor).DeleteBranch(context.Background(), "stale")
			require.Equal(testInstance, "C", executor.recordedDetails[0].EnvironmentVariables["LC_ALL"])
			if !testCase.expectError {
				require.NoError(testInstance, deletionError)
				return
			}
			require.Error(testInstance, deletionError)
			require.Equal(testInstance, testCase.expectNotFound, errors.Is(deletionError, branchstate.ErrBranchNotFound))
		})
	}
}

func TestRepositoryCurrentBranchDetached(testInstance *testing.T) {
	executor := &scriptedGitExecutor{responses: map[string]scriptedResponse{
		"rev-parse --abbrev-ref HEAD": {result: execshell.ExecutionResult{StandardOutput: "HEAD\n"}},
	}}
	currentBranch, currentError := newTestRepository(testInstance, executor).CurrentBranch(context.Background())
	require.NoError(testInstance, currentError)
	require.Empty(testInstance, currentBranch)
}

func TestRepositoryFetchAndPruneDisablesPrompts(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	require.NoError(testInstance, newTestRepository(testInstance, executor).FetchAndPrune(context.Background(), "origin"))
	require.Equal(testInstance, []string{"fetch", "--prune", "origin"}, executor.recordedDetails[0].Arguments)
	require.Equal(testInstance, "0", executor.recordedDetails[0].EnvironmentVariables["GIT_TERMINAL_PROMPT"])
}

func TestRemoteLocatorLocateRepository(testInstance *testing.T) {
	testCases := []struct {
		name             string
		responses        map[string]scriptedResponse
		expectedIdentity branchstate.RepositoryIdentity
		expectError      bool
	}{
		{
			name: "origin_only",
			responses: map[string]scriptedResponse{
				"remote":                {result: execshell.ExecutionResult{StandardOutput: "origin\n"}},
				"remote get-url origin": {result: execshell.ExecutionResult{StandardOutput: "git@github.com:owner/project.git\n"}},
			},
			expectedIdentity: branchstate.RepositoryIdentity{Host: "github.com", Owner: "owner", Name: "project"},
		},
		{
			name: "fork_with_upstream",
			responses: map[string]scriptedResponse{
				"remote":                  {result: execshell.ExecutionResult{StandardOutput: "origin\nupstream\n"}},
				"remote get-url origin":   {result: execshell.ExecutionResult{StandardOutput: "git@github.com:contributor/project.git\n"}},
				"remote get-url upstream": {result: execshell.ExecutionResult{StandardOutput: "https://github.com/owner/project.git\n"}},
			},
			expectedIdentity: branchstate.RepositoryIdentity{Host: "github.com", Owner: "owner", Name: "project", ForkOwner: "contributor"},
		},
		{
			name: "unparseable_origin_with_upstream",
			responses: map[string]scriptedResponse{
				"remote":                  {result: execshell.ExecutionResult{StandardOutput: "origin\nupstream\n"}},
				"remote get-url origin":   {result: execshell.ExecutionResult{StandardOutput: "/srv/git/project.git\n"}},
				"remote get-url upstream": {result: execshell.ExecutionResult{StandardOutput: "https://github.com/owner/project.git\n"}},
			},
			expectedIdentity: branchstate.RepositoryIdentity{Host: "github.com", Owner: "owner", Name: "project"},
		},
		{
			name: "no_remotes",
			responses: map[string]scriptedResponse{
				"remote": {result: execshell.ExecutionResult{StandardOutput: ""}},
			},
			expectError: true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testCaseNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			executor := &scriptedGitExecutor{responses: testCase.responses}
			locator := gitrepo.NewRemoteLocator(newTestRepository(testInstance, executor), "", "")

			identity, locateError := locator.LocateRepository(context.Background())
			if testCase.expectError {
				require.ErrorIs(testInstance, locateError, gitrepo.ErrRepositoryNotIdentified)
				return
			}
			require.NoError(testInstance, locateError)
			require.Equal(testInstance, testCase.expectedIdentity, identity)
		})
	}
}
