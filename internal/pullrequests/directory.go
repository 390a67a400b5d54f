package pullrequests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/gitx/internal/branchstate"
	"github.com/temirov/gitx/internal/githubauth"
	"github.com/temirov/gitx/internal/githubcli"
)

const (
	// DefaultLookupTimeout bounds the pull request queries of a run.
	DefaultLookupTimeout = 20 * time.Second
	// DefaultResultLimit caps the number of pull requests fetched per query.
	DefaultResultLimit = 200

	listerNotConfiguredMessageConstant   = "pull request lister not configured"
	repositoryRequiredMessageConstant    = "repository owner and name required"
	lookupTimedOutMessageConstant        = "pull request lookup timed out"
	openResultsTruncatedMessageConstant  = "open pull requests exceed the result limit"
	truncatedTemplateConstant            = "%w of %d"
	lookupErrorTemplateConstant          = "pull requests of %s: %v"
	timedOutTemplateConstant             = "%w after %s"
	logMessageUnauthenticatedConstant    = "No GitHub token found; querying pull requests unauthenticated"
	logMessageAuthenticatedConstant      = "Querying pull requests with GitHub token"
	logFieldTokenSourceConstant          = "token_source"
	logMessageLookupCompletedConstant    = "Fetched pull requests"
	logFieldRepositoryConstant           = "repository"
	logFieldPullRequestCountConstant     = "pull_request_count"
	logFieldOpenPullRequestCountConstant = "open_pull_request_count"
	logFieldMatchedBranchCountConstant   = "matched_branch_count"
)

var (
	// ErrListerNotConfigured indicates the directory was constructed without a lister.
	ErrListerNotConfigured = errors.New(listerNotConfiguredMessageConstant)
	// ErrRepositoryRequired indicates the lookup was asked for an unidentified repository.
	ErrRepositoryRequired = errors.New(repositoryRequiredMessageConstant)
	// ErrLookupTimedOut indicates the hosting service did not answer in time.
	ErrLookupTimedOut = errors.New(lookupTimedOutMessageConstant)
	// ErrOpenResultsTruncated indicates the open pull request query hit the result limit, so some open pull requests may be missing.
	ErrOpenResultsTruncated = errors.New(openResultsTruncatedMessageConstant)
)

// PullRequestLister lists pull requests of a hosted repository.
type PullRequestLister interface {
	ListPullRequests(executionContext context.Context, repository string, options githubcli.PullRequestListOptions) ([]githubcli.PullRequest, error)
}

// LookupError wraps a failed pull request query.
type LookupError struct {
	Repository string
	Cause      error
}

// Error describes the failed lookup.
func (lookupError LookupError) Error() string {
	return fmt.Sprintf(lookupErrorTemplateConstant, lookupError.Repository, lookupError.Cause)
}

// Unwrap exposes the underlying cause.
func (lookupError LookupError) Unwrap() error {
	return lookupError.Cause
}

// Options tune a Directory.
type Options struct {
	Timeout     time.Duration
	ResultLimit int
}

// Directory implements branchstate.PullRequestDirectory over the gh CLI.
type Directory struct {
	lister      PullRequestLister
	logger      *zap.Logger
	timeout     time.Duration
	resultLimit int
}

// NewDirectory constructs a Directory. Zero options fall back to DefaultLookupTimeout and DefaultResultLimit.
func NewDirectory(lister PullRequestLister, logger *zap.Logger, options Options) (*Directory, error) {
	if lister == nil {
		return nil, ErrListerNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	resultLimit := options.ResultLimit
	if resultLimit <= 0 {
		resultLimit = DefaultResultLimit
	}
	return &Directory{lister: lister, logger: logger, timeout: timeout, resultLimit: resultLimit}, nil
}

// NewGitHubDirectory builds a Directory backed by gh, forwarding a GitHub token from the process environment when one is set.
func NewGitHubDirectory(executor githubcli.GitHubCommandExecutor, logger *zap.Logger, options Options) (*Directory, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	token, tokenFound := githubauth.ResolveToken(nil)
	if tokenFound {
		logger.Debug(logMessageAuthenticatedConstant, zap.String(logFieldTokenSourceConstant, token.Source))
	} else {
		logger.Debug(logMessageUnauthenticatedConstant)
	}
	client, clientError := githubcli.NewClient(executor, githubcli.WithEnvironment(token.CommandEnvironment()))
	if clientError != nil {
		return nil, clientError
	}
	return NewDirectory(client, logger, options)
}

// LookupForRepository fetches the open pull requests of repository and then its recent history, keeping the best match for each branch name.
// The open query must be complete: when it fills the result limit the lookup is reported unavailable.
func (directory *Directory) LookupForRepository(executionContext context.Context, repository branchstate.RepositoryIdentity, branchNames []string) branchstate.PullRequestLookup {
	repositoryName := repository.FullName()
	if len(repositoryName) == 0 {
		return branchstate.PullRequestLookup{Failure: ErrRepositoryRequired}
	}

	lookupContext, cancel := context.WithTimeout(executionContext, directory.timeout)
	defer cancel()

	openPullRequests, openError := directory.list(lookupContext, repositoryName, githubcli.PullRequestStateOpen)
	if openError != nil {
		return branchstate.PullRequestLookup{Failure: openError}
	}
	if len(openPullRequests) >= directory.resultLimit {
		truncatedError := fmt.Errorf(truncatedTemplateConstant, ErrOpenResultsTruncated, directory.resultLimit)
		return branchstate.PullRequestLookup{Failure: LookupError{Repository: repositoryName, Cause: truncatedError}}
	}

	historyPullRequests, historyError := directory.list(lookupContext, repositoryName, githubcli.PullRequestStateAll)
	if historyError != nil {
		return branchstate.PullRequestLookup{Failure: historyError}
	}

	wantedBranches := make(map[string]struct{}, len(branchNames))
	for _, branchName := range branchNames {
		wantedBranches[branchName] = struct{}{}
	}

	preferredOwner := repository.ForkOwner
	if len(preferredOwner) == 0 {
		preferredOwner = repository.Owner
	}

	candidates := make([]githubcli.PullRequest, 0, len(openPullRequests)+len(historyPullRequests))
	candidates = append(candidates, openPullRequests...)
	candidates = append(candidates, historyPullRequests...)

	matches := make(map[string]branchstate.PullRequestInfo, len(branchNames))
	for _, pullRequest := range candidates {
		if _, wanted := wantedBranches[pullRequest.HeadRefName]; !wanted {
			continue
		}
		candidate, known := convertPullRequest(pullRequest)
		if !known {
			continue
		}
		current, exists := matches[pullRequest.HeadRefName]
		if !exists || preferPullRequest(candidate, current, preferredOwner) {
			matches[pullRequest.HeadRefName] = candidate
		}
	}

	directory.logger.Debug(logMessageLookupCompletedConstant,
		zap.String(logFieldRepositoryConstant, repositoryName),
		zap.Int(logFieldOpenPullRequestCountConstant, len(openPullRequests)),
		zap.Int(logFieldPullRequestCountConstant, len(historyPullRequests)),
		zap.Int(logFieldMatchedBranchCountConstant, len(matches)))

	return branchstate.PullRequestLookup{PullRequests: matches, Available: true}
}

func (directory *Directory) list(lookupContext context.Context, repositoryName string, state githubcli.PullRequestState) ([]githubcli.PullRequest, error) {
	pullRequests, listError := directory.lister.ListPullRequests(lookupContext, repositoryName, githubcli.PullRequestListOptions{
		State:       state,
		ResultLimit: directory.resultLimit,
	})
	if listError != nil {
		if errors.Is(lookupContext.Err(), context.DeadlineExceeded) {
			listError = fmt.Errorf(timedOutTemplateConstant, ErrLookupTimedOut, directory.timeout)
		}
		return nil, LookupError{Repository: repositoryName, Cause: listError}
	}
	return pullRequests, nil
}

// preferPullRequest orders pull requests sharing a head branch name: open first, then the preferred head owner, then the newest.
func preferPullRequest(candidate branchstate.PullRequestInfo, current branchstate.PullRequestInfo, preferredOwner string) bool {
	if candidate.IsOpen() != current.IsOpen() {
		return candidate.IsOpen()
	}
	candidateOwned := len(preferredOwner) > 0 && candidate.HeadOwner == preferredOwner
	currentOwned := len(preferredOwner) > 0 && current.HeadOwner == preferredOwner
	if candidateOwned != currentOwned {
		return candidateOwned
	}
	return candidate.Number > current.Number
}

func convertPullRequest(pullRequest githubcli.PullRequest) (branchstate.PullRequestInfo, bool) {
	var state branchstate.PullRequestState
	switch pullRequest.State {
	case githubcli.PullRequestStateOpen:
		state = branchstate.PullRequestStateOpen
	case githubcli.PullRequestStateClosed:
		state = branchstate.PullRequestStateClosed
	case githubcli.PullRequestStateMerged:
		state = branchstate.PullRequestStateMerged
	default:
		return branchstate.PullRequestInfo{}, false
	}
	return branchstate.PullRequestInfo{
		Number:    pullRequest.Number,
		State:     state,
		URL:       pullRequest.URL,
		Title:     pullRequest.Title,
		HeadOwner: pullRequest.HeadOwner,
	}, true
}
