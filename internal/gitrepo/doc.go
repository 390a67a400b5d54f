// Package gitrepo drives the git CLI for gitx.
//
// Repository lists branches, compares them with a reference, deletes and
// switches branches, and reads remotes and staged changes. RemoteLocator maps
// the origin and upstream remotes to the hosted repository that owns pull
// requests.
package gitrepo
