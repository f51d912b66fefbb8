// Command projecthub is a terminal client for the ProjectHub backend. It
// shares one session with the local console gateway started by
// `projecthub console`.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	a := &app{out: os.Stdout, errOut: os.Stderr, in: os.Stdin}
	return newRootCmd(a).Execute()
}
