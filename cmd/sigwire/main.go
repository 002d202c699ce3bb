package main

import (
	"os"

	"github.com/plexarc/sigwire/cmd/sigwire/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
