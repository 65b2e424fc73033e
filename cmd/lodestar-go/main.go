package main

import (
	"os"

	"github.com/LodestarLearning/lodestar-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
