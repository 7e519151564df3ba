package main

import (
	"fmt"
	"os"

	"github.com/mithrel/mudawwana/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "mudawwana:", err)
		os.Exit(1)
	}
}
