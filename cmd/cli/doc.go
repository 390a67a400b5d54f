// Package cli constructs the gitx command-line interface, wiring the Cobra
// command hierarchy, the configuration loader, and structured logging. Commands
// gitx does not define are routed to the git forwarding command.
package cli
