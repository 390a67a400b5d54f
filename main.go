package main

import (
	"fmt"
	"os"

	"github.com/temirov/gitx/cmd/cli"
	"github.com/temirov/gitx/internal/passthrough"
)

const (
	exitErrorTemplateConstant = "%v\n"
	failureExitCodeConstant   = 1
)

// main executes the gitx command-line application.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}
	if exitCode, forwarded := passthrough.ExitCode(executionError); forwarded {
		os.Exit(exitCode)
	}
	fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	os.Exit(failureExitCodeConstant)
}
