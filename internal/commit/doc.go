// Package commit implements `gitx commit`: git commit with an AI-written message when none was given.
//
// Whenever generation is skipped or fails, the invocation degrades to a plain `git commit`
// with the caller's arguments, so the command never does less than git itself.
package commit
