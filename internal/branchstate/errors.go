package branchstate

import (
	"errors"
	"fmt"
)

const (
	referenceBranchNotFoundMessageConstant       = "reference branch not found"
	referenceBranchNotFoundTemplateConstant      = "reference branch %q not found"
	referenceCandidatesNotFoundTemplateConstant  = "none of the reference branches %v exist"
	relationComputationErrorTemplateConstant     = "unable to compare %s with %s: %v"
	repositoryAccessNotConfiguredMessageConstant = "branch state resolver requires repository access"
	branchNotFoundMessageConstant                = "branch not found"
)

var (
	// ErrReferenceBranchNotFound indicates the reference branch exists neither locally nor as a remote-tracking ref.
	ErrReferenceBranchNotFound = errors.New(referenceBranchNotFoundMessageConstant)
	// ErrRepositoryAccessNotConfigured indicates the resolver was constructed without repository access.
	ErrRepositoryAccessNotConfigured = errors.New(repositoryAccessNotConfiguredMessageConstant)
	// ErrBranchNotFound indicates a local branch vanished between listing and use.
	ErrBranchNotFound = errors.New(branchNotFoundMessageConstant)
)

// ReferenceBranchNotFoundError names the missing reference branches.
type ReferenceBranchNotFoundError struct {
	Reference  string
	Candidates []string
}

// Error describes the missing reference.
func (notFoundError ReferenceBranchNotFoundError) Error() string {
	if len(notFoundError.Reference) == 0 && len(notFoundError.Candidates) > 0 {
		return fmt.Sprintf(referenceCandidatesNotFoundTemplateConstant, notFoundError.Candidates)
	}
	return fmt.Sprintf(referenceBranchNotFoundTemplateConstant, notFoundError.Reference)
}

// Unwrap exposes ErrReferenceBranchNotFound.
func (notFoundError ReferenceBranchNotFoundError) Unwrap() error {
	return ErrReferenceBranchNotFound
}

// RelationComputationError reports that the merge relation of a branch could not be computed.
type RelationComputationError struct {
	Branch    string
	Reference string
	Cause     error
}

// Error describes the failed comparison.
func (computationError RelationComputationError) Error() string {
	return fmt.Sprintf(relationComputationErrorTemplateConstant, computationError.Branch, computationError.Reference, computationError.Cause)
}

// Unwrap exposes the underlying cause.
func (computationError RelationComputationError) Unwrap() error {
	return computationError.Cause
}
