package main

import (
	"os"

	"github.com/mahmoud375/peace-cake/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
