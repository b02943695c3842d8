package main

import (
	"os"

	"github.com/spec-kit/helpdesk/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
