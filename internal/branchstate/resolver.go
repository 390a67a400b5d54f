package branchstate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const (
	listBranchesErrorTemplateConstant          = "unable to list local branches: %w"
	referenceLookupErrorTemplateConstant       = "unable to verify reference branch %q: %w"
	relationFailureLogMessageConstant          = "Merge relation could not be computed; branch marked unknown"
	repositoryLocationLogMessageConstant       = "Hosted repository could not be identified; pull request data unavailable"
	enrichmentFailureLogMessageConstant        = "Pull request lookup failed; pull request data unavailable"
	enrichmentSkippedLogMessageConstant        = "Pull request lookup not configured"
	referenceFallbackLogMessageConstant        = "Using fallback reference branch"
	currentBranchFailureLogMessageConstant     = "Current branch could not be read"
	logFieldBranchConstant                     = "branch"
	logFieldReferenceConstant                  = "reference"
	logFieldRepositoryConstant                 = "repository"
	logFieldBranchCountConstant                = "branch_count"
	pullRequestDirectoryMissingMessageConstant = "pull request directory not configured"
)

// RepositoryAccess reads the local repository.
type RepositoryAccess interface {
	ListBranches(executionContext context.Context) ([]Branch, error)
	CurrentBranch(executionContext context.Context) (string, error)
	ReferenceExists(executionContext context.Context, reference string) (bool, error)
	MergeRelation(executionContext context.Context, branch string, reference string) (RelationDetails, error)
}

// RepositoryLocator identifies the hosted repository behind the local clone.
type RepositoryLocator interface {
	LocateRepository(executionContext context.Context) (RepositoryIdentity, error)
}

// PullRequestDirectory returns pull request data for many branches in one batched lookup.
// Implementations never fail; unavailability is reported through the lookup.
type PullRequestDirectory interface {
	LookupForRepository(executionContext context.Context, repository RepositoryIdentity, branchNames []string) PullRequestLookup
}

// Dependencies wires collaborators into a Resolver.
type Dependencies struct {
	Repository RepositoryAccess
	Locator    RepositoryLocator
	Directory  PullRequestDirectory
	Logger     *zap.Logger
}

// Resolver builds branch status snapshots.
type Resolver struct {
	repository RepositoryAccess
	locator    RepositoryLocator
	directory  PullRequestDirectory
	logger     *zap.Logger
}

// NewResolver constructs a Resolver. Locator and Directory are optional; without them
// statuses carry no pull request data and the enrichment is marked unavailable.
func NewResolver(dependencies Dependencies) (*Resolver, error) {
	if dependencies.Repository == nil {
		return nil, ErrRepositoryAccessNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		repository: dependencies.Repository,
		locator:    dependencies.Locator,
		directory:  dependencies.Directory,
		logger:     logger,
	}, nil
}

// SelectReference returns the explicit reference when provided, otherwise the first fallback that exists.
// Every returned reference has been verified to exist, so callers may pass it to ResolveSelected.
func (resolver *Resolver) SelectReference(executionContext context.Context, explicitReference string, fallbackReferences []string) (string, error) {
	if trimmedReference := strings.TrimSpace(explicitReference); len(trimmedReference) > 0 {
		if verifyError := resolver.verifyReference(executionContext, trimmedReference); verifyError != nil {
			return "", verifyError
		}
		return trimmedReference, nil
	}

	candidates := make([]string, 0, len(fallbackReferences))
	for _, fallbackReference := range fallbackReferences {
		trimmedFallback := strings.TrimSpace(fallbackReference)
		if len(trimmedFallback) == 0 {
			continue
		}
		candidates = append(candidates, trimmedFallback)

		exists, lookupError := resolver.repository.ReferenceExists(executionContext, trimmedFallback)
		if lookupError != nil {
			return "", fmt.Errorf(referenceLookupErrorTemplateConstant, trimmedFallback, lookupError)
		}
		if exists {
			if len(candidates) > 1 {
				resolver.logger.Debug(referenceFallbackLogMessageConstant, zap.String(logFieldReferenceConstant, trimmedFallback))
			}
			return trimmedFallback, nil
		}
	}

	return "", ReferenceBranchNotFoundError{Candidates: candidates}
}

// ResolveAll classifies every local branch against the reference and attaches pull request data.
// It is read-only. A missing reference fails before any other work is done.
func (resolver *Resolver) ResolveAll(executionContext context.Context, reference string) (Resolution, error) {
	trimmedReference := strings.TrimSpace(reference)
	if verifyError := resolver.verifyReference(executionContext, trimmedReference); verifyError != nil {
		return Resolution{}, verifyError
	}
	return resolver.ResolveSelected(executionContext, trimmedReference)
}

func (resolver *Resolver) verifyReference(executionContext context.Context, reference string) error {
	if len(reference) == 0 {
		return ReferenceBranchNotFoundError{Reference: reference}
	}
	exists, lookupError := resolver.repository.ReferenceExists(executionContext, reference)
	if lookupError != nil {
		return fmt.Errorf(referenceLookupErrorTemplateConstant, reference, lookupError)
	}
	if !exists {
		return ReferenceBranchNotFoundError{Reference: reference}
	}
	return nil
}

// ResolveSelected is ResolveAll for a reference already returned by SelectReference; it does not verify it again.
func (resolver *Resolver) ResolveSelected(executionContext context.Context, reference string) (Resolution, error) {
	trimmedReference := strings.TrimSpace(reference)
	if len(trimmedReference) == 0 {
		return Resolution{}, ReferenceBranchNotFoundError{Reference: reference}
	}

	branches, listError := resolver.repository.ListBranches(executionContext)
	if listError != nil {
		return Resolution{}, fmt.Errorf(listBranchesErrorTemplateConstant, listError)
	}

	statuses := make([]BranchStatus, 0, len(branches))
	for _, branch := range branches {
		statuses = append(statuses, resolver.resolveRelation(executionContext, branch, trimmedReference))
	}

	enrichment, pullRequests := resolver.lookupPullRequests(executionContext, pullRequestHeadNames(branches))
	if enrichment.Available {
		for statusIndex := range statuses {
			pullRequest, found := matchPullRequest(statuses[statusIndex].Branch, pullRequests)
			if !found {
				continue
			}
			statuses[statusIndex].PullRequest = &pullRequest
		}
	}

	SortStatuses(statuses)
	return Resolution{
		Reference:    trimmedReference,
		Statuses:     statuses,
		Enrichment:   enrichment,
		DetachedHead: resolver.detachedHead(executionContext),
	}, nil
}

func (resolver *Resolver) detachedHead(executionContext context.Context) bool {
	currentBranch, currentError := resolver.repository.CurrentBranch(executionContext)
	if currentError != nil {
		resolver.logger.Debug(currentBranchFailureLogMessageConstant, zap.Error(currentError))
		return false
	}
	return len(strings.TrimSpace(currentBranch)) == 0
}

// pullRequestHeadNames lists every local branch name followed by the remote names of upstreams, without duplicates.
func pullRequestHeadNames(branches []Branch) []string {
	seen := make(map[string]struct{}, len(branches)*2)
	headNames := make([]string, 0, len(branches)*2)
	appendName := func(name string) {
		if len(name) == 0 {
			return
		}
		if _, duplicate := seen[name]; duplicate {
			return
		}
		seen[name] = struct{}{}
		headNames = append(headNames, name)
	}
	for _, branch := range branches {
		appendName(branch.Name)
	}
	for _, branch := range branches {
		appendName(branch.UpstreamBranchName())
	}
	return headNames
}

// matchPullRequest joins on the local branch name and falls back to the upstream branch name.
func matchPullRequest(branch Branch, pullRequests map[string]PullRequestInfo) (PullRequestInfo, bool) {
	if pullRequest, found := pullRequests[branch.Name]; found {
		return pullRequest, true
	}
	upstreamName := branch.UpstreamBranchName()
	if len(upstreamName) == 0 {
		return PullRequestInfo{}, false
	}
	pullRequest, found := pullRequests[upstreamName]
	return pullRequest, found
}

func (resolver *Resolver) resolveRelation(executionContext context.Context, branch Branch, reference string) BranchStatus {
	status := BranchStatus{Branch: branch, MergeRelation: MergeRelationUnknown}

	details, relationError := resolver.repository.MergeRelation(executionContext, branch.Name, reference)
	if relationError != nil {
		var computationError RelationComputationError
		if !errors.As(relationError, &computationError) {
			relationError = RelationComputationError{Branch: branch.Name, Reference: reference, Cause: relationError}
		}
		resolver.logger.Warn(relationFailureLogMessageConstant,
			zap.String(logFieldBranchConstant, branch.Name),
			zap.String(logFieldReferenceConstant, reference),
			zap.Error(relationError),
		)
		return status
	}

	status.MergeRelation = details.Classify()
	status.Ahead = details.Ahead
	status.Behind = details.Behind
	return status
}

func (resolver *Resolver) lookupPullRequests(executionContext context.Context, branchNames []string) (PullRequestEnrichment, map[string]PullRequestInfo) {
	if resolver.locator == nil || resolver.directory == nil {
		resolver.logger.Debug(enrichmentSkippedLogMessageConstant)
		return PullRequestEnrichment{Failure: errors.New(pullRequestDirectoryMissingMessageConstant)}, nil
	}

	repository, locateError := resolver.locator.LocateRepository(executionContext)
	if locateError != nil {
		resolver.logger.Warn(repositoryLocationLogMessageConstant, zap.Error(locateError))
		return PullRequestEnrichment{Failure: locateError}, nil
	}

	lookup := resolver.directory.LookupForRepository(executionContext, repository, branchNames)
	enrichment := PullRequestEnrichment{Available: lookup.Available, Repository: repository.FullName(), Failure: lookup.Failure}
	if !lookup.Available {
		resolver.logger.Warn(enrichmentFailureLogMessageConstant,
			zap.String(logFieldRepositoryConstant, repository.FullName()),
			zap.Int(logFieldBranchCountConstant, len(branchNames)),
			zap.Error(lookup.Failure),
		)
		return enrichment, nil
	}
	return enrichment, lookup.PullRequests
}

// SortStatuses orders statuses with the current branch first, then by most recent activity,
// then alphabetically. Branches without a timestamp sort after those with one.
func SortStatuses(statuses []BranchStatus) {
	sort.SliceStable(statuses, func(leftIndex int, rightIndex int) bool {
		left := statuses[leftIndex].Branch
		right := statuses[rightIndex].Branch
		if left.IsCurrent != right.IsCurrent {
			return left.IsCurrent
		}
		leftKnown := !left.LastActivity.IsZero()
		rightKnown := !right.LastActivity.IsZero()
		if leftKnown != rightKnown {
			return leftKnown
		}
		if leftKnown && !left.LastActivity.Equal(right.LastActivity) {
			return left.LastActivity.After(right.LastActivity)
		}
		return left.Name < right.Name
	})
}
