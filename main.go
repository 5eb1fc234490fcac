package main

import (
	"os"

	"github.com/nayidisha/disha/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
