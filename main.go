package main

import (
	"os"

	"github.com/aidev-education/contentindex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
