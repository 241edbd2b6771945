package main

import (
	"os"

	"github.com/abhisek/testdrill/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
