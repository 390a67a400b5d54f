// Package branches implements `gitx branch`: the branch picker, merge and pull request
// statistics, and the safety-checked pruning of merged branches.
package branches
