package main

import (
	"os"

	"github.com/msto63/mdispatch/cmd/mdispatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
