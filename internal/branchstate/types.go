package branchstate

import (
	"strings"
	"time"
)

const repositoryFullNameSeparatorConstant = "/"

// Branch describes a local branch as observed in a single listing.
type Branch struct {
	Name         string
	IsCurrent    bool
	Upstream     string
	UpstreamGone bool
	LastActivity time.Time
	HeadCommit   string
	Subject      string
}

// HasUpstream reports whether the branch tracks a remote branch.
func (branch Branch) HasUpstream() bool {
	return len(strings.TrimSpace(branch.Upstream)) > 0
}

// UpstreamBranchName returns the upstream without its remote prefix, so "origin/feature-x" yields "feature-x".
// It is empty when the branch tracks nothing or tracks another local branch.
func (branch Branch) UpstreamBranchName() string {
	_, remoteBranch, found := strings.Cut(strings.TrimSpace(branch.Upstream), repositoryFullNameSeparatorConstant)
	if !found {
		return ""
	}
	return remoteBranch
}

// MergeRelation classifies a branch against the reference branch.
type MergeRelation string

// Merge relations.
const (
	MergeRelationMerged   MergeRelation = MergeRelation("merged")
	MergeRelationUnmerged MergeRelation = MergeRelation("unmerged")
	MergeRelationDiverged MergeRelation = MergeRelation("diverged")
	MergeRelationUnknown  MergeRelation = MergeRelation("unknown")
)

// RelationDetails carries commit counts between a branch and the reference.
// Ahead counts commits only on the branch, Behind counts commits only on the reference.
type RelationDetails struct {
	Ahead  int
	Behind int
}

// Classify derives the merge relation from commit counts.
func (details RelationDetails) Classify() MergeRelation {
	switch {
	case details.Ahead < 0 || details.Behind < 0:
		return MergeRelationUnknown
	case details.Ahead == 0:
		return MergeRelationMerged
	case details.Behind == 0:
		return MergeRelationUnmerged
	default:
		return MergeRelationDiverged
	}
}

// PullRequestState is the hosted state of a pull request.
type PullRequestState string

// Pull request states.
const (
	PullRequestStateOpen   PullRequestState = PullRequestState("open")
	PullRequestStateClosed PullRequestState = PullRequestState("closed")
	PullRequestStateMerged PullRequestState = PullRequestState("merged")
)

// PullRequestInfo describes the pull request whose head is a local branch.
type PullRequestInfo struct {
	Number    int
	State     PullRequestState
	URL       string
	Title     string
	HeadOwner string
}

// IsOpen reports whether the pull request is still open.
func (info PullRequestInfo) IsOpen() bool {
	return info.State == PullRequestStateOpen
}

// BranchStatus is the fully resolved view of one branch.
// PullRequest is nil when no pull request matched or when enrichment was unavailable.
type BranchStatus struct {
	Branch        Branch
	MergeRelation MergeRelation
	Ahead         int
	Behind        int
	PullRequest   *PullRequestInfo
}

// PullRequestEnrichment records whether pull request data could be gathered for a resolution.
type PullRequestEnrichment struct {
	Available  bool
	Repository string
	Failure    error
}

// Resolution is the outcome of resolving every local branch against a reference.
// DetachedHead is set when HEAD points at a commit rather than a branch.
type Resolution struct {
	Reference    string
	Statuses     []BranchStatus
	Enrichment   PullRequestEnrichment
	DetachedHead bool
}

// RepositoryIdentity names the hosted repository that owns pull requests for the local clone.
// ForkOwner is set when the local clone pushes to a fork of the identified repository.
type RepositoryIdentity struct {
	Host      string
	Owner     string
	Name      string
	ForkOwner string
}

// FullName returns the owner/name form used by the hosting service.
func (identity RepositoryIdentity) FullName() string {
	if len(identity.Owner) == 0 || len(identity.Name) == 0 {
		return ""
	}
	return identity.Owner + repositoryFullNameSeparatorConstant + identity.Name
}

// PullRequestLookup is the result of one batched pull request lookup.
// When Available is false, PullRequests is empty and Failure explains why.
type PullRequestLookup struct {
	PullRequests map[string]PullRequestInfo
	Available    bool
	Failure      error
}
