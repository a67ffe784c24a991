package main

import (
	"os"

	"github.com/lugondev/go-vaultswap/cmd/vaultswap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
