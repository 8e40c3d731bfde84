package main

import (
	"os"

	"github.com/agrosoluce/agrosoluce/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
