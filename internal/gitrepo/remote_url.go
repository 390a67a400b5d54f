package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant           = "ssh://"
	httpsProtocolPrefixConstant         = "https://"
	httpProtocolPrefixConstant          = "http://"
	sshUserDelimiterConstant            = "@"
	scpPathDelimiterConstant            = ":"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	requiredValueMessageConstant        = "value required"
	invalidRemoteURLMessageConstant     = "invalid remote url"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
)

// RemoteURL represents a structured git remote URL.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// ParseRemoteURL converts scp-like ssh, ssh://, and http(s) remote URLs into owner and repository parts.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSuffix(strings.TrimSpace(remote), pathSeparatorConstant)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	switch {
	case strings.HasPrefix(trimmedRemote, sshProtocolPrefixConstant):
		return parseHierarchicalRemote(remote, RemoteProtocolSSH, strings.TrimPrefix(trimmedRemote, sshProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, httpsProtocolPrefixConstant):
		return parseHierarchicalRemote(remote, RemoteProtocolHTTPS, strings.TrimPrefix(trimmedRemote, httpsProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, httpProtocolPrefixConstant):
		return parseHierarchicalRemote(remote, RemoteProtocolHTTPS, strings.TrimPrefix(trimmedRemote, httpProtocolPrefixConstant))
	case strings.Contains(trimmedRemote, scpPathDelimiterConstant):
		return parseScpRemote(remote, trimmedRemote)
	default:
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
}

// parseHierarchicalRemote handles [user@]host[:port]/owner/repository forms.
func parseHierarchicalRemote(input string, protocol RemoteProtocol, remainder string) (RemoteURL, error) {
	hostPart, pathPart, found := strings.Cut(remainder, pathSeparatorConstant)
	if !found {
		return RemoteURL{}, RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	if userSplitIndex := strings.LastIndex(hostPart, sshUserDelimiterConstant); userSplitIndex >= 0 {
		hostPart = hostPart[userSplitIndex+1:]
	}
	if portSplitIndex := strings.Index(hostPart, scpPathDelimiterConstant); portSplitIndex >= 0 {
		hostPart = hostPart[:portSplitIndex]
	}
	return buildRemoteURL(input, protocol, hostPart, pathPart)
}

// parseScpRemote handles [user@]host:owner/repository forms.
func parseScpRemote(input string, remainder string) (RemoteURL, error) {
	hostPart, pathPart, _ := strings.Cut(remainder, scpPathDelimiterConstant)
	if userSplitIndex := strings.LastIndex(hostPart, sshUserDelimiterConstant); userSplitIndex >= 0 {
		hostPart = hostPart[userSplitIndex+1:]
	}
	return buildRemoteURL(input, RemoteProtocolSSH, hostPart, strings.TrimPrefix(pathPart, pathSeparatorConstant))
}

func buildRemoteURL(input string, protocol RemoteProtocol, host string, path string) (RemoteURL, error) {
	segments := strings.Split(path, pathSeparatorConstant)
	if len(host) == 0 || len(segments) != 2 {
		return RemoteURL{}, RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	owner := strings.TrimSpace(segments[0])
	repository := strings.TrimSuffix(strings.TrimSpace(segments[1]), gitSuffixConstant)
	if len(owner) == 0 || len(repository) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	return RemoteURL{Protocol: protocol, Host: host, Owner: owner, Repository: repository}, nil
}
