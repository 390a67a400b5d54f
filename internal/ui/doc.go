// Package ui turns command lifecycle events into console progress messages.
//
// When gitx runs with the console log format, repository-changing git commands
// are narrated at info level while structured telemetry keeps flowing through
// the diagnostic logger.
package ui
