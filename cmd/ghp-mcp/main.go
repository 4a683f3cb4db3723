package main

import (
	"fmt"
	"os"

	"github-projects-mcp/cmd/ghp-mcp/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
