package main

import (
	"os"

	"dinescout/cmd/dinescout/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
