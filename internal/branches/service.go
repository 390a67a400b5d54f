package branches

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitx/internal/branchstate"
	"github.com/temirov/gitx/internal/prune"
	"github.com/temirov/gitx/internal/selector"
)

const (
	repositoryNotConfiguredMessageConstant = "branch repository not configured"
	chooserNotConfiguredMessageConstant    = "branch chooser not configured"
	listBranchesErrorTemplateConstant      = "list branches: %w"
	branchSelectionErrorTemplateConstant   = "select branch: %w"
	pickerSwitchedTemplateConstant         = "Switched to branch: %s\n"
	pickerAlreadyOnTemplateConstant        = "Already on branch: %s\n"
	pickerWouldSwitchTemplateConstant      = "Would switch to branch: %s\n"
	pickerCancelledMessageConstant         = "Selection cancelled\n"
	pickerCurrentDescriptionConstant       = "current"
	pickerDescriptionSeparatorConstant     = " · "
	logMessageFetchingConstant             = "Fetching remote before resolving branches"
	logMessageFetchFailedConstant          = "Fetch failed; continuing with local remote-tracking data"
	logMessagePruneUnavailableConstant     = "Pull request data unavailable; open pull requests cannot be excluded"
	logMessageSwitchedConstant             = "Switched branch"
	logFieldRemoteConstant                 = "remote"
	logFieldBranchConstant                 = "branch"
)

var (
	// ErrRepositoryNotConfigured indicates the service was constructed without a repository.
	ErrRepositoryNotConfigured = errors.New(repositoryNotConfiguredMessageConstant)
	// ErrChooserNotConfigured indicates an interactive operation ran without a chooser.
	ErrChooserNotConfigured = errors.New(chooserNotConfiguredMessageConstant)
)

// BranchRepository is the local repository surface the branch command needs.
type BranchRepository interface {
	branchstate.RepositoryAccess
	prune.BranchDeleter
	SwitchBranch(executionContext context.Context, branch string) error
	FetchAndPrune(executionContext context.Context, remote string) error
}

// Dependencies lists the collaborators of Service. Locator and Directory are optional.
type Dependencies struct {
	Repository BranchRepository
	Locator    branchstate.RepositoryLocator
	Directory  branchstate.PullRequestDirectory
	Chooser    selector.Chooser
	Output     io.Writer
	Logger     *zap.Logger
}

// ResolutionOptions selects the reference branch and whether to fetch first.
type ResolutionOptions struct {
	Reference          string
	FallbackReferences []string
	Remote             string
	Fetch              bool
}

// StatsOptions configures Stats.
type StatsOptions struct {
	ResolutionOptions
	Format OutputFormat
}

// PruneOptions configures Prune.
type PruneOptions struct {
	ResolutionOptions
	Protected       []string
	RequireUpstream bool
	DryRun          bool
	AssumeYes       bool
}

// PickOptions configures Pick.
type PickOptions struct {
	DryRun bool
}

// PickResult reports the outcome of the branch picker.
type PickResult struct {
	Branch    string
	Switched  bool
	Cancelled bool
}

// Service runs the branch operations.
type Service struct {
	repository BranchRepository
	resolver   *branchstate.Resolver
	chooser    selector.Chooser
	output     io.Writer
	logger     *zap.Logger
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Repository == nil {
		return nil, ErrRepositoryNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	output := dependencies.Output
	if output == nil {
		output = io.Discard
	}

	resolver, resolverError := branchstate.NewResolver(branchstate.Dependencies{
		Repository: dependencies.Repository,
		Locator:    dependencies.Locator,
		Directory:  dependencies.Directory,
		Logger:     logger,
	})
	if resolverError != nil {
		return nil, resolverError
	}

	return &Service{
		repository: dependencies.Repository,
		resolver:   resolver,
		chooser:    dependencies.Chooser,
		output:     output,
		logger:     logger,
	}, nil
}

// Resolve validates the reference branch, optionally fetches, and resolves every local branch.
// A missing reference fails before any network access.
func (service *Service) Resolve(executionContext context.Context, options ResolutionOptions) (branchstate.Resolution, error) {
	reference, selectionError := service.resolver.SelectReference(executionContext, options.Reference, options.FallbackReferences)
	if selectionError != nil {
		return branchstate.Resolution{}, selectionError
	}

	if options.Fetch {
		remote := strings.TrimSpace(options.Remote)
		service.logger.Debug(logMessageFetchingConstant, zap.String(logFieldRemoteConstant, remote))
		if fetchError := service.repository.FetchAndPrune(executionContext, remote); fetchError != nil {
			service.logger.Warn(logMessageFetchFailedConstant, zap.String(logFieldRemoteConstant, remote), zap.Error(fetchError))
		}
	}

	return service.resolver.ResolveSelected(executionContext, reference)
}

// Stats resolves every branch and renders the result.
func (service *Service) Stats(executionContext context.Context, options StatsOptions) (branchstate.Resolution, error) {
	resolution, resolutionError := service.Resolve(executionContext, options.ResolutionOptions)
	if resolutionError != nil {
		return branchstate.Resolution{}, resolutionError
	}
	if renderError := NewStatsRenderer(service.output, options.Format).Render(resolution); renderError != nil {
		return resolution, renderError
	}
	return resolution, nil
}

// Prune deletes merged branches that pass every safety rule, after confirmation unless AssumeYes.
// The reference branch is always protected. A report with failed deletions is returned together with its error.
func (service *Service) Prune(executionContext context.Context, options PruneOptions) (prune.Report, error) {
	resolution, resolutionError := service.Resolve(executionContext, options.ResolutionOptions)
	if resolutionError != nil {
		return prune.Report{}, resolutionError
	}
	if !resolution.Enrichment.Available {
		service.logger.Warn(logMessagePruneUnavailableConstant, zap.Error(resolution.Enrichment.Failure))
	}

	var additionalRules []prune.Rule
	if options.RequireUpstream {
		additionalRules = append(additionalRules, prune.RequireUpstreamRule())
	}

	var chooser selector.MultiChooser
	if service.chooser != nil {
		chooser = service.chooser
	}
	engine, engineError := prune.NewEngine(prune.Dependencies{
		Deleter: service.repository,
		Chooser: chooser,
		Logger:  service.logger,
		Rules:   additionalRules,
	})
	if engineError != nil {
		return prune.Report{}, engineError
	}

	protectedNames := append(append([]string(nil), options.Protected...), resolution.Reference)
	report, runError := engine.Run(executionContext, resolution.Statuses, prune.Options{
		Protected: prune.NewProtectedBranches(protectedNames...),
		DryRun:    options.DryRun,
		AssumeYes: options.AssumeYes,
	})
	if runError != nil {
		return prune.Report{}, runError
	}

	NewReportRenderer(service.output).Render(report, resolution.Enrichment)
	return report, report.Err()
}

// Pick lists local branches, lets the user choose one, and switches to it.
func (service *Service) Pick(executionContext context.Context, options PickOptions) (PickResult, error) {
	if service.chooser == nil {
		return PickResult{}, ErrChooserNotConfigured
	}

	localBranches, listError := service.repository.ListBranches(executionContext)
	if listError != nil {
		return PickResult{}, fmt.Errorf(listBranchesErrorTemplateConstant, listError)
	}
	if len(localBranches) == 0 {
		fmt.Fprint(service.output, noBranchesMessageConstant)
		return PickResult{Cancelled: true}, nil
	}

	statuses := make([]branchstate.BranchStatus, 0, len(localBranches))
	for _, localBranch := range localBranches {
		statuses = append(statuses, branchstate.BranchStatus{Branch: localBranch})
	}
	branchstate.SortStatuses(statuses)

	items := make([]selector.Item, 0, len(statuses))
	for _, status := range statuses {
		items = append(items, selector.Item{Label: status.Branch.Name, Description: describePickerBranch(status.Branch)})
	}

	selection, selectionError := service.chooser.ChooseOne(executionContext, items)
	if selectionError != nil {
		return PickResult{}, fmt.Errorf(branchSelectionErrorTemplateConstant, selectionError)
	}
	if selection.Cancelled || len(selection.Indices) == 0 || selection.Indices[0] < 0 || selection.Indices[0] >= len(statuses) {
		fmt.Fprint(service.output, pickerCancelledMessageConstant)
		return PickResult{Cancelled: true}, nil
	}

	chosen := statuses[selection.Indices[0]].Branch
	if chosen.IsCurrent {
		fmt.Fprintf(service.output, pickerAlreadyOnTemplateConstant, chosen.Name)
		return PickResult{Branch: chosen.Name}, nil
	}
	if options.DryRun {
		fmt.Fprintf(service.output, pickerWouldSwitchTemplateConstant, chosen.Name)
		return PickResult{Branch: chosen.Name}, nil
	}

	if switchError := service.repository.SwitchBranch(executionContext, chosen.Name); switchError != nil {
		return PickResult{Branch: chosen.Name}, switchError
	}
	service.logger.Debug(logMessageSwitchedConstant, zap.String(logFieldBranchConstant, chosen.Name))
	fmt.Fprintf(service.output, pickerSwitchedTemplateConstant, chosen.Name)
	return PickResult{Branch: chosen.Name, Switched: true}, nil
}

func describePickerBranch(branch branchstate.Branch) string {
	parts := make([]string, 0, 3)
	if branch.IsCurrent {
		parts = append(parts, pickerCurrentDescriptionConstant)
	}
	if !branch.LastActivity.IsZero() {
		parts = append(parts, branch.LastActivity.Format(lastActivityLayoutConstant))
	}
	if subject := strings.TrimSpace(branch.Subject); len(subject) > 0 {
		parts = append(parts, subject)
	}
	return strings.Join(parts, pickerDescriptionSeparatorConstant)
}
