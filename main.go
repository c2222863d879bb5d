package main

import (
	"os"

	"github.com/coinchrono/coinchrono/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
