// Package githubauth locates GitHub credentials for gh invocations.
package githubauth

import (
	"os"
	"strings"
)

// Environment variable names consulted for a GitHub token, in order of preference.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

var tokenVariables = [...]string{EnvGitHubCLIToken, EnvGitHubToken, EnvGitHubAPIToken}

// Token is a resolved credential and the variable it was read from.
type Token struct {
	Value  string
	Source string
}

// ResolveToken looks for a token in environment first and in the process environment second.
// Blank values are skipped.
func ResolveToken(environment map[string]string) (Token, bool) {
	lookups := []func(string) string{
		func(name string) string { return environment[name] },
		os.Getenv,
	}
	for _, lookupVariable := range lookups {
		for _, variableName := range tokenVariables {
			if value := strings.TrimSpace(lookupVariable(variableName)); len(value) > 0 {
				return Token{Value: value, Source: variableName}, true
			}
		}
	}
	return Token{}, false
}

// CommandEnvironment exports token as GH_TOKEN, the variable gh reads first.
func (token Token) CommandEnvironment() map[string]string {
	if len(token.Value) == 0 {
		return nil
	}
	return map[string]string{EnvGitHubCLIToken: token.Value}
}
