package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitRevParseSubcommandNameConstant   = "rev-parse"
	gitForEachRefSubcommandNameConstant = "for-each-ref"
	gitRevListSubcommandNameConstant    = "rev-list"
	gitBranchSubcommandNameConstant     = "branch"
	gitSwitchSubcommandNameConstant     = "switch"
	gitCheckoutSubcommandNameConstant   = "checkout"
	gitFetchSubcommandNameConstant      = "fetch"
	gitRemoteSubcommandNameConstant     = "remote"
	gitRemoteGetURLSubcommandConstant   = "get-url"
	gitDiffSubcommandNameConstant       = "diff"
	gitCommitSubcommandNameConstant     = "commit"
	gitAbbrevRefFlagConstant            = "--abbrev-ref"
	gitVerifyFlagConstant               = "--verify"
	gitDeleteFlagConstant               = "--delete"
	gitDeleteShortFlagConstant          = "-d"
	gitForceDeleteShortFlagConstant     = "-D"
	gitForceFlagConstant                = "--force"
	gitCachedFlagConstant               = "--cached"
	gitMessageFlagConstant              = "-m"
	gitHeadReferenceConstant            = "HEAD"
	gitFetchAllRemotesLabelConstant     = "all remotes"
)

const (
	gitCurrentBranchStartTemplateConstant             = "Identifying current branch in %s"
	gitCurrentBranchSuccessTemplateConstant           = "Current branch in %s is %s"
	gitCurrentBranchDetachedSuccessTemplateConstant   = "%s is in a detached HEAD state"
	gitCurrentBranchFailureTemplateConstant           = "Failed to identify current branch in %s (exit code %d%s)"
	gitCurrentBranchExecutionFailureTemplateConstant  = "Unable to identify current branch in %s: %s"
	gitRevisionStartTemplateConstant                  = "Resolving %s in %s"
	gitRevisionSuccessTemplateConstant                = "%s in %s resolved to %s"
	gitRevisionFailureTemplateConstant                = "Failed to resolve %s in %s (exit code %d%s)"
	gitRevisionExecutionFailureTemplateConstant       = "Unable to resolve %s in %s: %s"
	gitBranchListStartTemplateConstant                = "Listing local branches in %s"
	gitBranchListSuccessTemplateConstant              = "Listed local branches in %s"
	gitBranchListFailureTemplateConstant              = "Failed to list local branches in %s (exit code %d%s)"
	gitBranchListExecutionFailureTemplateConstant     = "Unable to list local branches in %s: %s"
	gitCompareStartTemplateConstant                   = "Comparing %s in %s"
	gitCompareSuccessTemplateConstant                 = "Compared %s in %s"
	gitCompareFailureTemplateConstant                 = "Failed to compare %s in %s (exit code %d%s)"
	gitCompareExecutionFailureTemplateConstant        = "Unable to compare %s in %s: %s"
	gitBranchDeletionStartTemplateConstant            = "Removing local branch %s in %s"
	gitBranchForceDeletionStartTemplateConstant       = "Force removing local branch %s in %s"
	gitBranchDeletionSuccessTemplateConstant          = "Removed local branch %s in %s"
	gitBranchDeletionFailureTemplateConstant          = "Failed to remove local branch %s in %s (exit code %d%s)"
	gitBranchDeletionExecutionFailureTemplateConstant = "Unable to remove local branch %s in %s: %s"
	gitSwitchStartTemplateConstant                    = "Switching %s to branch %s"
	gitSwitchSuccessTemplateConstant                  = "%s now on branch %s"
	gitSwitchFailureTemplateConstant                  = "Failed to switch %s to branch %s (exit code %d%s)"
	gitSwitchExecutionFailureTemplateConstant         = "Unable to switch %s to branch %s: %s"
	gitFetchStartTemplateConstant                     = "Fetching from %s in %s"
	gitFetchSuccessTemplateConstant                   = "Fetched from %s in %s"
	gitFetchFailureTemplateConstant                   = "Failed to fetch from %s in %s (exit code %d%s)"
	gitFetchExecutionFailureTemplateConstant          = "Unable to fetch from %s in %s: %s"
	gitRemoteLookupStartTemplateConstant              = "Checking %s remote for %s"
	gitRemoteLookupSuccessTemplateConstant            = "%s remote for %s points to %s"
	gitRemoteLookupFailureTemplateConstant            = "Failed to read %s remote for %s (exit code %d%s)"
	gitRemoteLookupExecutionFailureTemplateConstant   = "Unable to read %s remote for %s: %s"
	gitStagedDiffStartTemplateConstant                = "Collecting staged changes in %s"
	gitStagedDiffSuccessTemplateConstant              = "Collected staged changes in %s"
	gitStagedDiffFailureTemplateConstant              = "Failed to collect staged changes in %s (exit code %d%s)"
	gitStagedDiffExecutionFailureTemplateConstant     = "Unable to collect staged changes in %s: %s"
	gitCommitStartTemplateConstant                    = "Creating commit in %s with message %q"
	gitCommitSuccessTemplateConstant                  = "Created commit in %s with message %q"
	gitCommitFailureTemplateConstant                  = "Failed to create commit in %s with message %q (exit code %d%s)"
	gitCommitExecutionFailureTemplateConstant         = "Unable to create commit in %s with message %q: %s"
)

const (
	githubPullRequestSubcommandNameConstant               = "pr"
	githubPullRequestListSubcommandNameConstant           = "list"
	githubRepoFlagConstant                                = "--repo"
	githubCurrentRepositoryLabelConstant                  = "current repository"
	githubPullRequestListStartTemplateConstant            = "Listing pull requests for %s"
	githubPullRequestListSuccessTemplateConstant          = "Listed pull requests for %s"
	githubPullRequestListFailureTemplateConstant          = "Failed to list pull requests for %s (exit code %d%s)"
	githubPullRequestListExecutionFailureTemplateConstant = "Unable to list pull requests for %s: %s"
	claudeStartTemplateConstant                           = "Generating commit message with %s"
	claudeSuccessTemplateConstant                         = "Generated commit message with %s"
	claudeFailureTemplateConstant                         = "%s could not generate a commit message (exit code %d%s)"
	claudeExecutionFailureTemplateConstant                = "Unable to run %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandGitHub:
		return formatter.describeGitHubMessage(command, result, failure, stage)
	case CommandClaude:
		return formatter.describeStagedTemplates(command, result, failure, stage, stagedTemplates{
			start:            claudeStartTemplateConstant,
			success:          claudeSuccessTemplateConstant,
			failure:          claudeFailureTemplateConstant,
			executionFailure: claudeExecutionFailureTemplateConstant,
		}, string(command.Name))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

type stagedTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

// describeStagedTemplates renders templates sharing the same leading arguments across stages.
func (formatter CommandMessageFormatter) describeStagedTemplates(command ShellCommand, result ExecutionResult, failure error, stage messageStage, templates stagedTemplates, leadingArguments ...any) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, leadingArguments...)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, leadingArguments...)
	case messageStageFailure:
		failureArguments := append(append([]any{}, leadingArguments...), result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		return fmt.Sprintf(templates.failure, failureArguments...)
	case messageStageExecutionFailure:
		executionFailureArguments := append(append([]any{}, leadingArguments...), formatter.describeFailure(failure))
		return fmt.Sprintf(templates.executionFailure, executionFailureArguments...)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	switch strings.TrimSpace(arguments[0]) {
	case gitRevParseSubcommandNameConstant:
		return formatter.describeGitRevParseMessage(command, result, failure, stage)
	case gitForEachRefSubcommandNameConstant:
		return formatter.describeStagedTemplates(command, result, failure, stage, stagedTemplates{
			start:            gitBranchListStartTemplateConstant,
			success:          gitBranchListSuccessTemplateConstant,
			failure:          gitBranchListFailureTemplateConstant,
			executionFailure: gitBranchListExecutionFailureTemplateConstant,
		}, workingDirectory)
	case gitRevListSubcommandNameConstant:
		comparedRange := formatter.ensureValue(formatter.lastNonFlagArgument(arguments[1:]))
		return formatter.describeStagedTemplates(command, result, failure, stage, stagedTemplates{
			start:            gitCompareStartTemplateConstant,
			success:          gitCompareSuccessTemplateConstant,
			failure:          gitCompareFailureTemplateConstant,
			executionFailure: gitCompareExecutionFailureTemplateConstant,
		}, comparedRange, workingDirectory)
	case gitBranchSubcommandNameConstant:
		return formatter.describeGitBranchMessage(command, result, failure, stage)
	case gitSwitchSubcommandNameConstant, gitCheckoutSubcommandNameConstant:
		branchName := formatter.ensureValue(formatter.lastNonFlagArgument(arguments[1:]))
		return formatter.describeStagedTemplates(command, result, failure, stage, stagedTemplates{
			start:            gitSwitchStartTemplateConstant,
			success:          gitSwitchSuccessTemplateConstant,
			failure:          gitSwitchFailureTemplateConstant,
			executionFailure: gitSwitchExecutionFailureTemplateConstant,
		}, workingDirectory, branchName)
	case gitFetchSubcommandNameConstant:
		remoteName := formatter.firstNonFlagArgument(arguments[1:])
		if len(remoteName) == 0 {
			remoteName = gitFetchAllRemotesLabelConstant
		}
		return formatter.describeStagedTemplates(command, result, failure, stage, stagedTemplates{
			start:            gitFetchStartTemplateConstant,
			success:          gitFetchSuccessTemplateConstant,
			failure:          gitFetchFailureTemplateConstant,
			executionFailure: gitFetchExecutionFailureTemplateConstant,
		}, remoteName, workingDirectory)
	case gitRemoteSubcommandNameConstant:
		return formatter.describeGitRemoteMessage(command, result, failure, stage)
	case gitDiffSubcommandNameConstant:
		if !containsArgument(arguments, gitCachedFlagConstant) {
			return formatter.buildGenericMessage(command, result, failure, stage)
		}
		return formatter.describeStagedTemplates(command, result, failure, stage, stagedTemplates{
			start:            gitStagedDiffStartTemplateConstant,
			success:          gitStagedDiffSuccessTemplateConstant,
			failure:          gitStagedDiffFailureTemplateConstant,
			executionFailure: gitStagedDiffExecutionFailureTemplateConstant,
		}, workingDirectory)
	case gitCommitSubcommandNameConstant:
		commitMessage := findFlagValue(arguments, gitMessageFlagConstant)
		if len(commitMessage) == 0 {
			return formatter.buildGenericMessage(command, result, failure, stage)
		}
		return formatter.describeStagedTemplates(command, result, failure, stage, stagedTemplates{
			start:            gitCommitStartTemplateConstant,
			success:          gitCommitSuccessTemplateConstant,
			failure:          gitCommitFailureTemplateConstant,
			executionFailure: gitCommitExecutionFailureTemplateConstant,
		}, workingDirectory, formatter.firstLine(commitMessage))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitRevParseMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	if containsArgument(arguments, gitAbbrevRefFlagConstant) {
		if stage == messageStageSuccess {
			trimmed := strings.TrimSpace(result.StandardOutput)
			if strings.EqualFold(trimmed, gitHeadReferenceConstant) || len(trimmed) == 0 {
				return fmt.Sprintf(gitCurrentBranchDetachedSuccessTemplateConstant, workingDirectory)
			}
			return fmt.Sprintf(gitCurrentBranchSuccessTemplateConstant, workingDirectory, trimmed)
		}
		return formatter.describeStagedTemplates(command, result, failure, stage, stagedTemplates{
			start:            gitCurrentBranchStartTemplateConstant,
			failure:          gitCurrentBranchFailureTemplateConstant,
			executionFailure: gitCurrentBranchExecutionFailureTemplateConstant,
		}, workingDirectory)
	}

	reference := formatter.ensureValue(formatter.lastNonFlagArgument(arguments[1:]))
	if stage == messageStageSuccess {
		return fmt.Sprintf(gitRevisionSuccessTemplateConstant, reference, workingDirectory, formatter.ensureValue(result.StandardOutput))
	}
	return formatter.describeStagedTemplates(command, result, failure, stage, stagedTemplates{
		start:            gitRevisionStartTemplateConstant,
		failure:          gitRevisionFailureTemplateConstant,
		executionFailure: gitRevisionExecutionFailureTemplateConstant,
	}, reference, workingDirectory)
}

func (formatter CommandMessageFormatter) describeGitBranchMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	deletesBranch := containsArgument(arguments, gitDeleteFlagConstant) || containsArgument(arguments, gitDeleteShortFlagConstant) || containsArgument(arguments, gitForceDeleteShortFlagConstant)
	if !deletesBranch {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	branchName := formatter.ensureValue(formatter.lastNonFlagArgument(arguments[1:]))
	startTemplate := gitBranchDeletionStartTemplateConstant
	if containsArgument(arguments, gitForceFlagConstant) || containsArgument(arguments, gitForceDeleteShortFlagConstant) {
		startTemplate = gitBranchForceDeletionStartTemplateConstant
	}

	return formatter.describeStagedTemplates(command, result, failure, stage, stagedTemplates{
		start:            startTemplate,
		success:          gitBranchDeletionSuccessTemplateConstant,
		failure:          gitBranchDeletionFailureTemplateConstant,
		executionFailure: gitBranchDeletionExecutionFailureTemplateConstant,
	}, branchName, workingDirectory)
}

func (formatter CommandMessageFormatter) describeGitRemoteMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) < 3 || strings.TrimSpace(arguments[1]) != gitRemoteGetURLSubcommandConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	remoteName := formatter.ensureValue(arguments[2])
	if stage == messageStageSuccess {
		return fmt.Sprintf(gitRemoteLookupSuccessTemplateConstant, remoteName, workingDirectory, formatter.ensureValue(result.StandardOutput))
	}
	return formatter.describeStagedTemplates(command, result, failure, stage, stagedTemplates{
		start:            gitRemoteLookupStartTemplateConstant,
		failure:          gitRemoteLookupFailureTemplateConstant,
		executionFailure: gitRemoteLookupExecutionFailureTemplateConstant,
	}, remoteName, workingDirectory)
}

func (formatter CommandMessageFormatter) describeGitHubMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) < 2 || arguments[0] != githubPullRequestSubcommandNameConstant || arguments[1] != githubPullRequestListSubcommandNameConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	repository := findFlagValue(arguments, githubRepoFlagConstant)
	if len(repository) == 0 {
		repository = githubCurrentRepositoryLabelConstant
	}
	return formatter.describeStagedTemplates(command, result, failure, stage, stagedTemplates{
		start:            githubPullRequestListStartTemplateConstant,
		success:          githubPullRequestListSuccessTemplateConstant,
		failure:          githubPullRequestListFailureTemplateConstant,
		executionFailure: githubPullRequestListExecutionFailureTemplateConstant,
	}, repository)
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	label := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, label)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, label)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, label, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, label, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	label := describeCommandLabel(command)
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return label
	}
	return label + fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) firstLine(value string) string {
	firstLine, _, _ := strings.Cut(strings.TrimSpace(value), "\n")
	return firstLine
}

func (formatter CommandMessageFormatter) firstNonFlagArgument(arguments []string) string {
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		return trimmed
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) lastNonFlagArgument(arguments []string) string {
	for index := len(arguments) - 1; index >= 0; index-- {
		trimmed := strings.TrimSpace(arguments[index])
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		return trimmed
	}
	return emptyStringConstant
}

func containsArgument(arguments []string, expected string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == expected {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == flag && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}
