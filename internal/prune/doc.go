// Package prune decides which local branches are safe to delete and deletes the ones the user keeps selected.
//
// Eligibility is a composition of rules evaluated against a resolved branchstate.BranchStatus.
// A branch is a candidate only when no rule blocks it; the current branch, protected branches,
// branches with open pull requests, and branches that are not fully merged never qualify.
// Deletions run sequentially and every failure is recorded without stopping the remaining deletions.
package prune
