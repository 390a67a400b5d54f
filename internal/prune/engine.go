package prune

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitx/internal/branchstate"
	"github.com/temirov/gitx/internal/selector"
)

const (
	deleterNotConfiguredMessageConstant     = "branch deleter not configured"
	chooserNotConfiguredMessageConstant     = "candidate chooser not configured"
	deletionsFailedMessageConstant          = "some branches could not be deleted"
	branchNotFoundReasonConstant            = "branch not found"
	deleteErrorTemplateConstant             = "delete %s: %s"
	deletionsFailedTemplateConstant         = "%s: %s"
	candidateSelectionErrorTemplateConstant = "choose branches to delete: %w"
	failedBranchSeparatorConstant           = ", "
	descriptionSeparatorConstant            = " · "
	pullRequestDescriptionTemplateConstant  = "PR #%d %s"
	activityDescriptionLayoutConstant       = "2006-01-02"
	relationMergedDescriptionConstant       = "merged"
	logMessageCandidateExcludedConstant     = "Branch is not eligible for pruning"
	logMessageSelectionIgnoredConstant      = "Ignoring selection outside the candidate set"
	logMessageDeletionSucceededConstant     = "Deleted branch"
	logMessageDeletionFailedConstant        = "Branch deletion failed"
	logMessageSelectionCancelledConstant    = "Branch pruning cancelled"
	logFieldBranchConstant                  = "branch"
	logFieldReasonsConstant                 = "reasons"
	logFieldReasonConstant                  = "reason"
)

var (
	// ErrDeleterNotConfigured indicates the engine was constructed without a deleter.
	ErrDeleterNotConfigured = errors.New(deleterNotConfiguredMessageConstant)
	// ErrChooserNotConfigured indicates an interactive run had no chooser to present candidates.
	ErrChooserNotConfigured = errors.New(chooserNotConfiguredMessageConstant)
	// ErrDeletionsFailed indicates at least one selected branch was not deleted.
	ErrDeletionsFailed = errors.New(deletionsFailedMessageConstant)
)

// BranchDeleter removes local branches.
type BranchDeleter interface {
	DeleteBranch(executionContext context.Context, name string) error
}

// Candidate is a branch every rule allows deleting.
type Candidate struct {
	Status branchstate.BranchStatus
}

// Exclusion is a branch at least one rule blocked, with the reasons.
type Exclusion struct {
	Branch  string
	Reasons []string
}

// Plan splits resolved branches into candidates and exclusions, both in status order.
type Plan struct {
	Candidates []Candidate
	Excluded   []Exclusion
}

// CandidateNames lists candidate branch names in order.
func (plan Plan) CandidateNames() []string {
	return candidateNames(plan.Candidates)
}

// DeleteError records why one branch could not be deleted.
type DeleteError struct {
	Branch string
	Reason string
	Cause  error
}

// Error describes the deletion failure.
func (deleteError DeleteError) Error() string {
	return fmt.Sprintf(deleteErrorTemplateConstant, deleteError.Branch, deleteError.Reason)
}

// Unwrap exposes the deleter's error.
func (deleteError DeleteError) Unwrap() error {
	return deleteError.Cause
}

// FailedDeletion is a report entry for a branch that was attempted but not deleted.
type FailedDeletion struct {
	Branch string
	Reason string
}

// Report summarizes a prune run. Simulated reports list WouldDelete and never Deleted.
type Report struct {
	Excluded    []Exclusion
	WouldDelete []string
	Attempted   int
	Deleted     []string
	Failed      []FailedDeletion
	Simulated   bool
	Cancelled   bool
}

// Err returns ErrDeletionsFailed naming the failed branches, or nil.
func (report Report) Err() error {
	if len(report.Failed) == 0 {
		return nil
	}
	failedBranches := make([]string, 0, len(report.Failed))
	for _, failure := range report.Failed {
		failedBranches = append(failedBranches, failure.Branch)
	}
	return fmt.Errorf(deletionsFailedTemplateConstant, ErrDeletionsFailed, strings.Join(failedBranches, failedBranchSeparatorConstant))
}

// Options control a full prune run.
type Options struct {
	Protected ProtectedBranches
	DryRun    bool
	AssumeYes bool
}

// Dependencies enumerates collaborators required by the engine.
type Dependencies struct {
	Deleter BranchDeleter
	Chooser selector.MultiChooser
	Logger  *zap.Logger
	Rules   []Rule
}

// Engine computes prune candidates and deletes the selected ones.
type Engine struct {
	deleter   BranchDeleter
	chooser   selector.MultiChooser
	logger    *zap.Logger
	evaluator Evaluator
}

// NewEngine constructs an Engine. Dependencies.Rules are applied in addition to DefaultRules.
func NewEngine(dependencies Dependencies) (*Engine, error) {
	if dependencies.Deleter == nil {
		return nil, ErrDeleterNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		deleter:   dependencies.Deleter,
		chooser:   dependencies.Chooser,
		logger:    logger,
		evaluator: NewEvaluator(dependencies.Rules...),
	}, nil
}

// Plan evaluates every status and keeps the eligible ones as candidates.
func (engine *Engine) Plan(statuses []branchstate.BranchStatus, protected ProtectedBranches) Plan {
	evaluationContext := EvaluationContext{Protected: protected}
	plan := Plan{}
	for _, status := range statuses {
		decision := engine.evaluator.Evaluate(status, evaluationContext)
		if decision.Eligible {
			plan.Candidates = append(plan.Candidates, Candidate{Status: status})
			continue
		}
		plan.Excluded = append(plan.Excluded, Exclusion{Branch: status.Branch.Name, Reasons: decision.BlockingReasons})
		engine.logger.Debug(logMessageCandidateExcludedConstant,
			zap.String(logFieldBranchConstant, status.Branch.Name),
			zap.Strings(logFieldReasonsConstant, decision.BlockingReasons))
	}
	return plan
}

// ComputeCandidates returns the branches every rule allows deleting.
func (engine *Engine) ComputeCandidates(statuses []branchstate.BranchStatus, protected ProtectedBranches) []Candidate {
	return engine.Plan(statuses, protected).Candidates
}

// Execute deletes the selected candidates in candidate order, attempting every one.
// Selections that are not candidates are ignored. A dry run reports every candidate as WouldDelete and deletes nothing.
func (engine *Engine) Execute(executionContext context.Context, candidates []Candidate, selections []string, dryRun bool) Report {
	if dryRun {
		return Report{WouldDelete: candidateNames(candidates), Simulated: true}
	}

	candidateSet := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		candidateSet[candidate.Status.Branch.Name] = struct{}{}
	}
	selectedSet := make(map[string]struct{}, len(selections))
	for _, selection := range selections {
		if _, isCandidate := candidateSet[selection]; !isCandidate {
			engine.logger.Warn(logMessageSelectionIgnoredConstant, zap.String(logFieldBranchConstant, selection))
			continue
		}
		selectedSet[selection] = struct{}{}
	}

	report := Report{}
	for _, candidate := range candidates {
		branchName := candidate.Status.Branch.Name
		if _, selected := selectedSet[branchName]; !selected {
			continue
		}

		report.Attempted++
		deletionError := engine.deleter.DeleteBranch(executionContext, branchName)
		if deletionError == nil {
			report.Deleted = append(report.Deleted, branchName)
			engine.logger.Debug(logMessageDeletionSucceededConstant, zap.String(logFieldBranchConstant, branchName))
			continue
		}

		classifiedError := classifyDeletionError(branchName, deletionError)
		report.Failed = append(report.Failed, FailedDeletion{Branch: classifiedError.Branch, Reason: classifiedError.Reason})
		engine.logger.Warn(logMessageDeletionFailedConstant,
			zap.String(logFieldBranchConstant, branchName),
			zap.String(logFieldReasonConstant, classifiedError.Reason),
			zap.Error(classifiedError.Cause))
	}
	return report
}

// Run plans, asks which candidates to delete unless options skip the question, and executes.
func (engine *Engine) Run(executionContext context.Context, statuses []branchstate.BranchStatus, options Options) (Report, error) {
	plan := engine.Plan(statuses, options.Protected)
	if len(plan.Candidates) == 0 {
		return Report{Excluded: plan.Excluded, Simulated: options.DryRun}, nil
	}

	if options.DryRun {
		report := engine.Execute(executionContext, plan.Candidates, nil, true)
		report.Excluded = plan.Excluded
		return report, nil
	}

	selections := plan.CandidateNames()
	if !options.AssumeYes {
		if engine.chooser == nil {
			return Report{}, ErrChooserNotConfigured
		}
		selectionResult, selectionError := engine.chooser.ChooseMultiple(executionContext, describeCandidates(plan.Candidates))
		if selectionError != nil {
			return Report{}, fmt.Errorf(candidateSelectionErrorTemplateConstant, selectionError)
		}
		if selectionResult.Cancelled {
			engine.logger.Debug(logMessageSelectionCancelledConstant)
			return Report{Excluded: plan.Excluded, Cancelled: true}, nil
		}
		selections = selectedNames(plan.Candidates, selectionResult.Indices)
	}

	report := engine.Execute(executionContext, plan.Candidates, selections, false)
	report.Excluded = plan.Excluded
	return report, nil
}

func classifyDeletionError(branchName string, deletionError error) DeleteError {
	reason := deletionError.Error()
	if errors.Is(deletionError, branchstate.ErrBranchNotFound) {
		reason = branchNotFoundReasonConstant
	}
	return DeleteError{Branch: branchName, Reason: reason, Cause: deletionError}
}

func candidateNames(candidates []Candidate) []string {
	names := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		names = append(names, candidate.Status.Branch.Name)
	}
	return names
}

func selectedNames(candidates []Candidate, indices []int) []string {
	names := make([]string, 0, len(indices))
	for _, index := range indices {
		if index < 0 || index >= len(candidates) {
			continue
		}
		names = append(names, candidates[index].Status.Branch.Name)
	}
	return names
}

func describeCandidates(candidates []Candidate) []selector.Item {
	items := make([]selector.Item, 0, len(candidates))
	for _, candidate := range candidates {
		descriptionParts := []string{relationMergedDescriptionConstant}
		if candidate.Status.PullRequest != nil {
			descriptionParts = append(descriptionParts, fmt.Sprintf(pullRequestDescriptionTemplateConstant, candidate.Status.PullRequest.Number, candidate.Status.PullRequest.State))
		}
		if !candidate.Status.Branch.LastActivity.IsZero() {
			descriptionParts = append(descriptionParts, candidate.Status.Branch.LastActivity.Format(activityDescriptionLayoutConstant))
		}
		items = append(items, selector.Item{Label: candidate.Status.Branch.Name, Description: strings.Join(descriptionParts, descriptionSeparatorConstant)})
	}
	return items
}
