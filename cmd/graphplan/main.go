package main

import (
	"fmt"
	"os"

	"github.com/matthewbaird/graphplan/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "graphplan:", err)
		os.Exit(1)
	}
}
