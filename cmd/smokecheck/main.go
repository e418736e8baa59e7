// Package main is the entry point for the smokecheck CLI.
package main

import (
	"os"

	"github.com/hamed0406/smokecheck/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
