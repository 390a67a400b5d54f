package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/temirov/gitx/internal/branchstate"
	"github.com/temirov/gitx/internal/execshell"
)

const (
	gitForEachRefSubcommandConstant     = "for-each-ref"
	gitRevParseSubcommandConstant       = "rev-parse"
	gitRevListSubcommandConstant        = "rev-list"
	gitBranchSubcommandConstant         = "branch"
	gitSwitchSubcommandConstant         = "switch"
	gitFetchSubcommandConstant          = "fetch"
	gitRemoteSubcommandConstant         = "remote"
	gitRemoteGetURLSubcommandConstant   = "get-url"
	gitDiffSubcommandConstant           = "diff"
	gitAbbrevRefFlagConstant            = "--abbrev-ref"
	gitLeftRightFlagConstant            = "--left-right"
	gitCountFlagConstant                = "--count"
	gitDeleteFlagConstant               = "--delete"
	gitForceFlagConstant                = "--force"
	gitPruneFlagConstant                = "--prune"
	gitCachedFlagConstant               = "--cached"
	gitFormatFlagTemplateConstant       = "--format=%s"
	gitEndOfOptionsConstant             = "--"
	gitHeadReferenceConstant            = "HEAD"
	localBranchNamespaceConstant        = "refs/heads/"
	remoteBranchNamespaceConstant       = "refs/remotes/"
	symmetricDifferenceTemplateConstant = "%s...%s"
	branchListingFieldSeparatorConstant = "\x00"
	branchListingFormatConstant         = "%(refname:short)%00%(upstream:short)%00%(upstream:track)%00%(committerdate:unix)%00%(HEAD)%00%(objectname:short)%00%(contents:subject)"
	branchListingFieldCountConstant     = 7
	fullReferenceNameFormatConstant     = "%(refname)"
	currentBranchMarkerConstant         = "*"
	upstreamGoneMarkerConstant          = "[gone]"
	terminalPromptEnvironmentConstant   = "GIT_TERMINAL_PROMPT"
	terminalPromptDisabledConstant      = "0"
	localeEnvironmentConstant           = "LC_ALL"
	neutralLocaleConstant               = "C"
	branchMissingMarkerConstant         = "not found"
	requiredBranchMessageConstant       = "branch name required"
	requiredRemoteMessageConstant       = "remote name required"
	unexpectedCountOutputTemplate       = "unexpected rev-list output %q"
	listBranchesErrorTemplateConstant   = "list branches: %w"
	malformedBranchRecordTemplate       = "malformed branch record %q"
	currentBranchErrorTemplateConstant  = "resolve current branch: %w"
	referenceErrorTemplateConstant      = "verify reference %s: %w"
	deleteBranchErrorTemplateConstant   = "delete branch %s: %w"
	branchMissingErrorTemplateConstant  = "%w: %s"
	switchBranchErrorTemplateConstant   = "switch to branch %s: %w"
	fetchErrorTemplateConstant          = "fetch from %s: %w"
	remoteURLErrorTemplateConstant      = "read url of remote %s: %w"
	remoteListErrorTemplateConstant     = "list remotes: %w"
	stagedDiffErrorTemplateConstant     = "read staged changes: %w"
)

var (
	// ErrGitExecutorNotConfigured indicates the repository was constructed without a git executor.
	ErrGitExecutorNotConfigured = errors.New("git executor not configured")
	errBranchNameRequired       = errors.New(requiredBranchMessageConstant)
	errRemoteNameRequired       = errors.New(requiredRemoteMessageConstant)
)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Repository reads and updates a local clone by driving the git CLI.
type Repository struct {
	executor         GitExecutor
	workingDirectory string
}

// NewRepository constructs a Repository rooted at workingDirectory; an empty directory means the process directory.
func NewRepository(executor GitExecutor, workingDirectory string) (*Repository, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &Repository{executor: executor, workingDirectory: strings.TrimSpace(workingDirectory)}, nil
}

// ListBranches returns every local branch with its upstream and last commit metadata.
func (repository *Repository) ListBranches(executionContext context.Context) ([]branchstate.Branch, error) {
	executionResult, executionError := repository.run(executionContext, nil,
		gitForEachRefSubcommandConstant,
		fmt.Sprintf(gitFormatFlagTemplateConstant, branchListingFormatConstant),
		localBranchNamespaceConstant,
	)
	if executionError != nil {
		return nil, fmt.Errorf(listBranchesErrorTemplateConstant, executionError)
	}

	var branches []branchstate.Branch
	for _, line := range strings.Split(executionResult.StandardOutput, "\n") {
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		branch, parseError := parseBranchRecord(line)
		if parseError != nil {
			return nil, fmt.Errorf(listBranchesErrorTemplateConstant, parseError)
		}
		branches = append(branches, branch)
	}
	return branches, nil
}

func parseBranchRecord(record string) (branchstate.Branch, error) {
	fields := strings.SplitN(record, branchListingFieldSeparatorConstant, branchListingFieldCountConstant)
	if len(fields) != branchListingFieldCountConstant || len(strings.TrimSpace(fields[0])) == 0 {
		return branchstate.Branch{}, fmt.Errorf(malformedBranchRecordTemplate, record)
	}

	branch := branchstate.Branch{
		Name:         strings.TrimSpace(fields[0]),
		Upstream:     strings.TrimSpace(fields[1]),
		UpstreamGone: strings.TrimSpace(fields[2]) == upstreamGoneMarkerConstant,
		IsCurrent:    strings.TrimSpace(fields[4]) == currentBranchMarkerConstant,
		HeadCommit:   strings.TrimSpace(fields[5]),
		Subject:      strings.TrimSpace(fields[6]),
	}
	if unixSeconds, conversionError := strconv.ParseInt(strings.TrimSpace(fields[3]), 10, 64); conversionError == nil && unixSeconds > 0 {
		branch.LastActivity = time.Unix(unixSeconds, 0).UTC()
	}
	return branch, nil
}

// CurrentBranch returns the checked out branch name, or an empty string for a detached HEAD.
func (repository *Repository) CurrentBranch(executionContext context.Context) (string, error) {
	executionResult, executionError := repository.run(executionContext, nil, gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant)
	if executionError != nil {
		return "", fmt.Errorf(currentBranchErrorTemplateConstant, executionError)
	}
	currentBranch := strings.TrimSpace(executionResult.StandardOutput)
	if currentBranch == gitHeadReferenceConstant {
		return "", nil
	}
	return currentBranch, nil
}

// ReferenceExists reports whether reference names a local branch or a remote-tracking branch.
func (repository *Repository) ReferenceExists(executionContext context.Context, reference string) (bool, error) {
	trimmedReference := strings.TrimSpace(reference)
	if len(trimmedReference) == 0 {
		return false, nil
	}

	candidateReferences := []string{localBranchNamespaceConstant + trimmedReference, remoteBranchNamespaceConstant + trimmedReference}
	executionResult, executionError := repository.run(executionContext, nil,
		append([]string{gitForEachRefSubcommandConstant, fmt.Sprintf(gitFormatFlagTemplateConstant, fullReferenceNameFormatConstant)}, candidateReferences...)...,
	)
	if executionError != nil {
		return false, fmt.Errorf(referenceErrorTemplateConstant, trimmedReference, executionError)
	}

	// for-each-ref patterns also match nested refs, so require an exact name.
	for _, listedReference := range strings.Split(executionResult.StandardOutput, "\n") {
		trimmedListedReference := strings.TrimSpace(listedReference)
		if trimmedListedReference == candidateReferences[0] || trimmedListedReference == candidateReferences[1] {
			return true, nil
		}
	}
	return false, nil
}

// MergeRelation counts commits unique to the branch (Ahead) and unique to the reference (Behind).
func (repository *Repository) MergeRelation(executionContext context.Context, branch string, reference string) (branchstate.RelationDetails, error) {
	executionResult, executionError := repository.run(executionContext, nil,
		gitRevListSubcommandConstant,
		gitLeftRightFlagConstant,
		gitCountFlagConstant,
		fmt.Sprintf(symmetricDifferenceTemplateConstant, reference, localBranchNamespaceConstant+branch),
		gitEndOfOptionsConstant,
	)
	if executionError != nil {
		return branchstate.RelationDetails{}, branchstate.RelationComputationError{Branch: branch, Reference: reference, Cause: executionError}
	}

	counts := strings.Fields(executionResult.StandardOutput)
	if len(counts) != 2 {
		return branchstate.RelationDetails{}, branchstate.RelationComputationError{Branch: branch, Reference: reference, Cause: fmt.Errorf(unexpectedCountOutputTemplate, executionResult.StandardOutput)}
	}
	behind, behindError := strconv.Atoi(counts[0])
	ahead, aheadError := strconv.Atoi(counts[1])
	if conversionError := errors.Join(behindError, aheadError); conversionError != nil {
		return branchstate.RelationDetails{}, branchstate.RelationComputationError{Branch: branch, Reference: reference, Cause: conversionError}
	}
	return branchstate.RelationDetails{Ahead: ahead, Behind: behind}, nil
}

// DeleteBranch force-deletes a local branch. A branch that no longer exists yields branchstate.ErrBranchNotFound.
func (repository *Repository) DeleteBranch(executionContext context.Context, branch string) error {
	trimmedBranch := strings.TrimSpace(branch)
	if len(trimmedBranch) == 0 {
		return errBranchNameRequired
	}

	_, executionError := repository.run(executionContext, map[string]string{localeEnvironmentConstant: neutralLocaleConstant},
		gitBranchSubcommandConstant, gitDeleteFlagConstant, gitForceFlagConstant, trimmedBranch)
	if executionError == nil {
		return nil
	}

	var failedError execshell.CommandFailedError
	if errors.As(executionError, &failedError) && strings.Contains(strings.ToLower(failedError.Result.StandardError), branchMissingMarkerConstant) {
		return fmt.Errorf(branchMissingErrorTemplateConstant, branchstate.ErrBranchNotFound, trimmedBranch)
	}
	return fmt.Errorf(deleteBranchErrorTemplateConstant, trimmedBranch, executionError)
}

// SwitchBranch checks out an existing local branch.
func (repository *Repository) SwitchBranch(executionContext context.Context, branch string) error {
	trimmedBranch := strings.TrimSpace(branch)
	if len(trimmedBranch) == 0 {
		return errBranchNameRequired
	}
	if _, executionError := repository.run(executionContext, nil, gitSwitchSubcommandConstant, trimmedBranch); executionError != nil {
		return fmt.Errorf(switchBranchErrorTemplateConstant, trimmedBranch, executionError)
	}
	return nil
}

// FetchAndPrune updates remote-tracking branches of remote and drops the ones deleted upstream.
func (repository *Repository) FetchAndPrune(executionContext context.Context, remote string) error {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return errRemoteNameRequired
	}
	_, executionError := repository.run(executionContext, map[string]string{terminalPromptEnvironmentConstant: terminalPromptDisabledConstant},
		gitFetchSubcommandConstant, gitPruneFlagConstant, trimmedRemote)
	if executionError != nil {
		return fmt.Errorf(fetchErrorTemplateConstant, trimmedRemote, executionError)
	}
	return nil
}

// RemoteNames lists the configured remotes.
func (repository *Repository) RemoteNames(executionContext context.Context) ([]string, error) {
	executionResult, executionError := repository.run(executionContext, nil, gitRemoteSubcommandConstant)
	if executionError != nil {
		return nil, fmt.Errorf(remoteListErrorTemplateConstant, executionError)
	}
	return strings.Fields(executionResult.StandardOutput), nil
}

// RemoteURL returns the fetch URL configured for remote.
func (repository *Repository) RemoteURL(executionContext context.Context, remote string) (string, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return "", errRemoteNameRequired
	}
	executionResult, executionError := repository.run(executionContext, nil, gitRemoteSubcommandConstant, gitRemoteGetURLSubcommandConstant, trimmedRemote)
	if executionError != nil {
		return "", fmt.Errorf(remoteURLErrorTemplateConstant, trimmedRemote, executionError)
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// StagedDiff returns the diff of the index against HEAD.
func (repository *Repository) StagedDiff(executionContext context.Context) (string, error) {
	executionResult, executionError := repository.run(executionContext, nil, gitDiffSubcommandConstant, gitCachedFlagConstant)
	if executionError != nil {
		return "", fmt.Errorf(stagedDiffErrorTemplateConstant, executionError)
	}
	return executionResult.StandardOutput, nil
}

func (repository *Repository) run(executionContext context.Context, environment map[string]string, arguments ...string) (execshell.ExecutionResult, error) {
	return repository.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     repository.workingDirectory,
		EnvironmentVariables: environment,
	})
}
