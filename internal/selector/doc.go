// Package selector presents lists of items and returns the user's choice.
//
// On a terminal the choice is made in a bubbletea list with fuzzy filtering. When either
// stream is not a terminal, a numbered line prompt is used instead. Cancelling is a
// normal outcome reported through Result.Cancelled.
package selector
