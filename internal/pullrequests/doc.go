// Package pullrequests answers, in one GitHub query per run, which pull request belongs to each local branch.
package pullrequests
