// Package branchstate builds a consistent snapshot of local branches.
//
// A Resolver lists the local branches once, classifies each one against a
// reference branch, and joins the result with pull request data fetched in a
// single batched lookup. Enrichment failures never abort resolution; they are
// reported through PullRequestEnrichment so callers can tell "no pull request"
// apart from "pull request data unavailable".
package branchstate
