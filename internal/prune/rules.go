package prune

import (
	"strings"

	"github.com/temirov/gitx/internal/branchstate"
)

const (
	ruleNameMergeStatusKnownConstant  = "merge_status_known"
	ruleNameMergedConstant            = "merged"
	ruleNameNotProtectedConstant      = "not_protected"
	ruleNameNotCurrentConstant        = "not_current"
	ruleNameNoOpenPullRequestConstant = "no_open_pull_request"
	ruleNameHasUpstreamConstant       = "has_upstream"

	reasonMergeStatusUnknownConstant = "merge status could not be determined"
	reasonNotMergedConstant          = "has commits not merged into the reference branch"
	reasonProtectedConstant          = "branch is protected"
	reasonCurrentConstant            = "branch is checked out"
	reasonOpenPullRequestConstant    = "pull request is still open"
	reasonNeverPushedConstant        = "branch was never pushed"
)

// ProtectedBranches is the set of branch names that are never pruned.
type ProtectedBranches map[string]struct{}

// NewProtectedBranches builds a set from names, ignoring blanks.
func NewProtectedBranches(names ...string) ProtectedBranches {
	protected := make(ProtectedBranches, len(names))
	for _, name := range names {
		trimmedName := strings.TrimSpace(name)
		if len(trimmedName) == 0 {
			continue
		}
		protected[trimmedName] = struct{}{}
	}
	return protected
}

// Contains reports whether name is protected. Matching is exact.
func (protected ProtectedBranches) Contains(name string) bool {
	_, found := protected[name]
	return found
}

// EvaluationContext carries run-wide facts rules may consult.
type EvaluationContext struct {
	Protected ProtectedBranches
}

// Rule blocks a branch from pruning when Blocks returns true.
type Rule struct {
	Name   string
	Reason string
	Blocks func(status branchstate.BranchStatus, evaluationContext EvaluationContext) bool
}

// Decision is the outcome of evaluating every rule for one branch.
type Decision struct {
	Eligible        bool
	BlockingReasons []string
}

// DefaultRules returns the rules every prune run applies.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:   ruleNameMergeStatusKnownConstant,
			Reason: reasonMergeStatusUnknownConstant,
			Blocks: func(status branchstate.BranchStatus, _ EvaluationContext) bool {
				return status.MergeRelation == branchstate.MergeRelationUnknown || len(status.MergeRelation) == 0
			},
		},
		{
			Name:   ruleNameMergedConstant,
			Reason: reasonNotMergedConstant,
			Blocks: func(status branchstate.BranchStatus, _ EvaluationContext) bool {
				return status.MergeRelation != branchstate.MergeRelationMerged
			},
		},
		{
			Name:   ruleNameNotProtectedConstant,
			Reason: reasonProtectedConstant,
			Blocks: func(status branchstate.BranchStatus, evaluationContext EvaluationContext) bool {
				return evaluationContext.Protected.Contains(status.Branch.Name)
			},
		},
		{
			Name:   ruleNameNotCurrentConstant,
			Reason: reasonCurrentConstant,
			Blocks: func(status branchstate.BranchStatus, _ EvaluationContext) bool {
				return status.Branch.IsCurrent
			},
		},
		{
			Name:   ruleNameNoOpenPullRequestConstant,
			Reason: reasonOpenPullRequestConstant,
			Blocks: func(status branchstate.BranchStatus, _ EvaluationContext) bool {
				return status.PullRequest != nil && status.PullRequest.IsOpen()
			},
		},
	}
}

// RequireUpstreamRule blocks branches that have no upstream configured.
func RequireUpstreamRule() Rule {
	return Rule{
		Name:   ruleNameHasUpstreamConstant,
		Reason: reasonNeverPushedConstant,
		Blocks: func(status branchstate.BranchStatus, _ EvaluationContext) bool {
			return !status.Branch.HasUpstream()
		},
	}
}

// Evaluator applies a fixed rule set.
type Evaluator struct {
	rules []Rule
}

// NewEvaluator constructs an Evaluator over the default rules followed by additionalRules.
func NewEvaluator(additionalRules ...Rule) Evaluator {
	rules := DefaultRules()
	for _, rule := range additionalRules {
		if rule.Blocks == nil {
			continue
		}
		rules = append(rules, rule)
	}
	return Evaluator{rules: rules}
}

// Evaluate runs every rule and collects the reasons of those that block.
func (evaluator Evaluator) Evaluate(status branchstate.BranchStatus, evaluationContext EvaluationContext) Decision {
	rules := evaluator.rules
	if rules == nil {
		rules = DefaultRules()
	}

	blockingReasons := make([]string, 0, len(rules))
	for _, rule := range rules {
		if rule.Blocks(status, evaluationContext) {
			blockingReasons = append(blockingReasons, rule.Reason)
		}
	}
	return Decision{Eligible: len(blockingReasons) == 0, BlockingReasons: blockingReasons}
}
