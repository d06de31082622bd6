package main

import (
	"os"

	"github.com/pastrypath/pastrypath/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
