package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
)

// version is set via ldflags during build
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and maps its outcome to an exit code.
func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		printError(stderr, err)
		return 1
	}
	return 0
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, text.FgRed.Sprint("Error: "+err.Error()))

	var pe *pushError
	if errors.As(err, &pe) {
		fmt.Fprintln(w, text.FgYellow.Sprintf("Entry was committed as %s but not pushed; run git push in %s to retry.", pe.commit, pe.repo))
	}
}
