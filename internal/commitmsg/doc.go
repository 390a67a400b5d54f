// Package commitmsg asks an external AI CLI for a conventional commit message describing a staged diff.
//
// The generator treats the CLI as text in, text out: the prompt is written to its standard input
// and the message is read from the result field of its JSON output.
package commitmsg
