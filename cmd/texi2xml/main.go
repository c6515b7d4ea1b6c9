package main

import (
	"os"

	"github.com/dgallion1/texi2xml/cmd/texi2xml/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
