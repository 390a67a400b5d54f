// Package githubcli wraps the GitHub CLI for gitx.
//
// Requests go through execshell so the hosting service can be faked in tests.
package githubcli
