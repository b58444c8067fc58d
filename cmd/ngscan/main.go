package main

import (
	"os"

	"github.com/sincro/ngscan/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
