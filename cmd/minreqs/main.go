// Package main is the entry point for the minreqs CLI.
package main

import (
	"github.com/minreqs/go-minreqs/cmd/minreqs/cmd"
)

func main() {
	cmd.Execute()
}
