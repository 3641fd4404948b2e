package main

import (
	"os"

	"github.com/boddenberg/retail-ledger-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
