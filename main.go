package main

import (
	"os"

	"github.com/bitrise-io/docs-ai-assistant/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
