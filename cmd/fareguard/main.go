package main

import (
	"os"

	"github.com/skylane/fareguard/cmd/fareguard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
