package main

import (
	"os"

	"github.com/medwatch/claimscan/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
