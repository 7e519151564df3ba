//go:build ignore
// +build ignore

package main

import (
	"log"

	"github.com/spf13/cobra/doc"

	"github.com/mithrel/mudawwana/internal/cli"
)

func main() {
	root := cli.NewRootCmd()

	if err := doc.GenMarkdownTree(root, "./docs/markdown"); err != nil {
		log.Fatal(err)
	}

	header := &doc.GenManHeader{
		Title:   "MUDAWWANA",
		Section: "1",
	}
	if err := doc.GenManTree(root, header, "./docs/man"); err != nil {
		log.Fatal(err)
	}
}
