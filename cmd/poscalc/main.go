package main

import (
	"os"

	"github.com/rustyeddy/poscalc/cmd/poscalc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
