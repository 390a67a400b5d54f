package commit

import "strings"

const (
	noAIFlagConstant          = "--no-ai"
	copyFlagConstant          = "--copy"
	yesFlagConstant           = "--yes"
	yesShorthandFlagConstant  = "-y"
	dryRunFlagConstant        = "--dry-run"
	helpFlagConstant          = "--help"
	helpShorthandFlagConstant = "-h"
	endOfOptionsConstant      = "--"
	longFlagPrefixConstant    = "--"
	shortFlagPrefixConstant   = "-"
	longFlagValueSeparator    = "="
	messageShortFlagsConstant = "mFCc"
)

// messageLongFlags are git commit options that supply or reuse a message.
var messageLongFlags = map[string]struct{}{
	"--message":        {},
	"--file":           {},
	"--reuse-message":  {},
	"--reedit-message": {},
	"--fixup":          {},
	"--squash":         {},
	"--amend":          {},
	"--no-edit":        {},
}

// invocation is a parsed `gitx commit` command line.
type invocation struct {
	GitArguments    []string
	SkipGeneration  bool
	AssumeYes       bool
	CopyToClipboard bool
	DryRun          bool
	HelpRequested   bool
}

// parseInvocation separates gitx's own flags from the arguments forwarded to git commit.
// Everything after "--" is forwarded untouched.
func parseInvocation(arguments []string) invocation {
	parsed := invocation{GitArguments: make([]string, 0, len(arguments))}
	for argumentIndex, argument := range arguments {
		if argument == endOfOptionsConstant {
			parsed.GitArguments = append(parsed.GitArguments, arguments[argumentIndex+1:]...)
			break
		}
		switch argument {
		case noAIFlagConstant:
			parsed.SkipGeneration = true
		case copyFlagConstant:
			parsed.CopyToClipboard = true
		case yesFlagConstant, yesShorthandFlagConstant:
			parsed.AssumeYes = true
		case dryRunFlagConstant:
			parsed.DryRun = true
		case helpFlagConstant, helpShorthandFlagConstant:
			parsed.HelpRequested = true
		default:
			parsed.GitArguments = append(parsed.GitArguments, argument)
		}
	}
	return parsed
}

// providesMessage reports whether git arguments already determine the commit message.
func providesMessage(gitArguments []string) bool {
	for _, argument := range gitArguments {
		if strings.HasPrefix(argument, longFlagPrefixConstant) {
			flagName, _, _ := strings.Cut(argument, longFlagValueSeparator)
			if _, isMessageFlag := messageLongFlags[flagName]; isMessageFlag {
				return true
			}
			continue
		}
		if strings.HasPrefix(argument, shortFlagPrefixConstant) && len(argument) > 1 {
			for _, flagCharacter := range argument[1:] {
				if strings.ContainsRune(messageShortFlagsConstant, flagCharacter) {
					return true
				}
			}
		}
	}
	return false
}
