package main

import (
	"os"

	"taskmate/cmd/taskmate/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
