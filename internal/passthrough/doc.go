// Package passthrough forwards allowlisted git subcommands to git with the caller's terminal attached.
//
// git's exit code is reported through ExitError so the process can exit with the same code.
package passthrough
