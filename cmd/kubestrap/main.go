// Package main is the entry point for the kubestrap CLI.
//
// kubestrap brings a machine from a bare OS install to a functioning
// member of a Kubernetes cluster: control planes bootstrap a new
// cluster, workers join an existing one. Progress is durable, so an
// interrupted run resumes where it stopped.
//
// Commands: provision, token, verify, status, reset.
//
// For detailed usage information, run:
//
//	kubestrap --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/kubestrap/cmd/kubestrap/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
