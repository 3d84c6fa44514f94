package main

import (
	"os"

	"github.com/eculver/vault-gcp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
