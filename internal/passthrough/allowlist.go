package passthrough

import (
	"sort"
	"strings"
)

var defaultAllowedCommands = []string{
	"add",
	"status",
	"log",
	"diff",
	"show",
	"remote",
	"fetch",
	"pull",
	"push",
	"checkout",
	"switch",
	"merge",
	"rebase",
	"reset",
	"clean",
	"stash",
	"tag",
	"blame",
	"grep",
	"ls-files",
	"describe",
	"reflog",
	"cherry-pick",
	"revert",
	"bisect",
	"submodule",
	"worktree",
	"config",
	"help",
	"version",
}

// DefaultAllowedCommands returns the git subcommands forwarded without configuration.
func DefaultAllowedCommands() []string {
	return append([]string(nil), defaultAllowedCommands...)
}

// Allowlist is the set of git subcommands gitx forwards.
type Allowlist struct {
	commands map[string]struct{}
}

// NewAllowlist builds an allowlist from the defaults plus additionalCommands.
func NewAllowlist(additionalCommands ...string) Allowlist {
	commands := make(map[string]struct{}, len(defaultAllowedCommands)+len(additionalCommands))
	for _, command := range defaultAllowedCommands {
		commands[command] = struct{}{}
	}
	for _, command := range additionalCommands {
		trimmedCommand := strings.TrimSpace(command)
		if len(trimmedCommand) == 0 || strings.HasPrefix(trimmedCommand, "-") {
			continue
		}
		commands[trimmedCommand] = struct{}{}
	}
	return Allowlist{commands: commands}
}

// Allows reports whether subcommand may be forwarded.
func (allowlist Allowlist) Allows(subcommand string) bool {
	_, allowed := allowlist.commands[subcommand]
	return allowed
}

// Commands lists the allowed subcommands alphabetically.
func (allowlist Allowlist) Commands() []string {
	commands := make([]string, 0, len(allowlist.commands))
	for command := range allowlist.commands {
		commands = append(commands, command)
	}
	sort.Strings(commands)
	return commands
}
