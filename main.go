package main

import (
	"fmt"
	"os"

	"github.com/temirov/issuehelper/cmd/cli"
	"github.com/temirov/issuehelper/internal/actionio"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the issue-helper command-line application.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}

	fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	if actionio.NewEnvironment(nil).RunningInActions() {
		_ = actionio.WriteError(os.Stdout, executionError.Error())
	}
	os.Exit(1)
}
