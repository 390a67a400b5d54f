package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/gitx/internal/branchstate"
)

const (
	// DefaultPrimaryRemoteName is the remote most clones push to.
	DefaultPrimaryRemoteName = "origin"
	// DefaultUpstreamRemoteName is the conventional remote of the repository a fork was created from.
	DefaultUpstreamRemoteName = "upstream"

	repositoryNotIdentifiedMessageConstant  = "hosted repository could not be identified"
	repositoryNotIdentifiedTemplateConstant = "%s from remotes %s: %v"
	remoteNotConfiguredTemplateConstant     = "remote %s is not configured"
	remoteListSeparatorConstant             = ", "
)

// ErrRepositoryNotIdentified indicates no configured remote points at a hosted owner/repository.
var ErrRepositoryNotIdentified = errors.New(repositoryNotIdentifiedMessageConstant)

// RemoteURLReader reads remote configuration from a local clone.
type RemoteURLReader interface {
	RemoteNames(executionContext context.Context) ([]string, error)
	RemoteURL(executionContext context.Context, remote string) (string, error)
}

// RepositoryNotIdentifiedError lists the remotes inspected while identifying the hosted repository.
type RepositoryNotIdentifiedError struct {
	Remotes []string
	Cause   error
}

// Error describes the failed identification.
func (identificationError RepositoryNotIdentifiedError) Error() string {
	return fmt.Sprintf(repositoryNotIdentifiedTemplateConstant, repositoryNotIdentifiedMessageConstant, strings.Join(identificationError.Remotes, remoteListSeparatorConstant), identificationError.Cause)
}

// Unwrap exposes ErrRepositoryNotIdentified and the last remote failure.
func (identificationError RepositoryNotIdentifiedError) Unwrap() []error {
	return []error{ErrRepositoryNotIdentified, identificationError.Cause}
}

// RemoteLocator identifies the hosted repository from the primary and upstream remotes.
// When the upstream remote parses, it owns the pull requests and the primary remote's owner is the fork owner.
type RemoteLocator struct {
	reader         RemoteURLReader
	primaryRemote  string
	upstreamRemote string
}

// NewRemoteLocator constructs a RemoteLocator. Empty remote names fall back to origin and upstream.
func NewRemoteLocator(reader RemoteURLReader, primaryRemote string, upstreamRemote string) *RemoteLocator {
	if len(strings.TrimSpace(primaryRemote)) == 0 {
		primaryRemote = DefaultPrimaryRemoteName
	}
	if len(strings.TrimSpace(upstreamRemote)) == 0 {
		upstreamRemote = DefaultUpstreamRemoteName
	}
	return &RemoteLocator{reader: reader, primaryRemote: strings.TrimSpace(primaryRemote), upstreamRemote: strings.TrimSpace(upstreamRemote)}
}

// LocateRepository implements branchstate.RepositoryLocator.
func (locator *RemoteLocator) LocateRepository(executionContext context.Context) (branchstate.RepositoryIdentity, error) {
	if locator.reader == nil {
		return branchstate.RepositoryIdentity{}, RepositoryNotIdentifiedError{Remotes: []string{locator.primaryRemote}, Cause: ErrGitExecutorNotConfigured}
	}
	remoteNames, listError := locator.reader.RemoteNames(executionContext)
	if listError != nil {
		return branchstate.RepositoryIdentity{}, RepositoryNotIdentifiedError{Remotes: []string{locator.primaryRemote, locator.upstreamRemote}, Cause: listError}
	}
	configuredRemotes := make(map[string]struct{}, len(remoteNames))
	for _, remoteName := range remoteNames {
		configuredRemotes[remoteName] = struct{}{}
	}

	primaryURL, primaryError := locator.parseRemote(executionContext, configuredRemotes, locator.primaryRemote)
	if locator.upstreamRemote == locator.primaryRemote {
		if primaryError != nil {
			return branchstate.RepositoryIdentity{}, RepositoryNotIdentifiedError{Remotes: []string{locator.primaryRemote}, Cause: primaryError}
		}
		return identityFromRemote(primaryURL), nil
	}

	upstreamURL, upstreamError := locator.parseRemote(executionContext, configuredRemotes, locator.upstreamRemote)
	switch {
	case upstreamError == nil:
		identity := identityFromRemote(upstreamURL)
		if primaryError == nil && !strings.EqualFold(primaryURL.Owner, upstreamURL.Owner) {
			identity.ForkOwner = primaryURL.Owner
		}
		return identity, nil
	case primaryError == nil:
		return identityFromRemote(primaryURL), nil
	default:
		return branchstate.RepositoryIdentity{}, RepositoryNotIdentifiedError{
			Remotes: []string{locator.primaryRemote, locator.upstreamRemote},
			Cause:   errors.Join(primaryError, upstreamError),
		}
	}
}

func (locator *RemoteLocator) parseRemote(executionContext context.Context, configuredRemotes map[string]struct{}, remote string) (RemoteURL, error) {
	if _, configured := configuredRemotes[remote]; !configured {
		return RemoteURL{}, fmt.Errorf(remoteNotConfiguredTemplateConstant, remote)
	}
	remoteAddress, readError := locator.reader.RemoteURL(executionContext, remote)
	if readError != nil {
		return RemoteURL{}, readError
	}
	return ParseRemoteURL(remoteAddress)
}

func identityFromRemote(remote RemoteURL) branchstate.RepositoryIdentity {
	return branchstate.RepositoryIdentity{Host: remote.Host, Owner: remote.Owner, Name: remote.Repository}
}
