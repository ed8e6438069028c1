// Package main is the entry point for the harmony CLI.
package main

import (
	"os"

	"github.com/juliuspor/Harmony/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
