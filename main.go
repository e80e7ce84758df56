package main

import (
	"os"

	"colony/cmd"
	"colony/internal/log"
)

var version = "dev"

func main() {
	defer log.Close()

	cmd.SetVersion(version)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
