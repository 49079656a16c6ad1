package main

import (
	"os"

	"blechat/cmd/blechat/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
