// Package execshell runs the external tools gitx depends on.
//
// ShellExecutor wraps a CommandRunner with lifecycle logging and typed
// failures. OSCommandRunner captures output for git plumbing, gh, and the
// commit message generator, while TerminalCommandRunner streams a command
// straight to the user's terminal for passthrough invocations.
package execshell
