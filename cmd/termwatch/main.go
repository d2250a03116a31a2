package main

import (
	"os"

	"github.com/rustyeddy/termwatch/cmd/termwatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
