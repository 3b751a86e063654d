package main

import (
	"os"

	"github.com/dshills/fpml-mcp/internal/cli/commands"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	commands.Version = version
	commands.BuildTime = buildTime

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
