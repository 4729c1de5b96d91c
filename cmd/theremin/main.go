// Package main is the entry point for the theremin service.
package main

import (
	"os"

	"github.com/ayusman/theremin/cmd/theremin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
