package main

import (
	"fmt"
	"os"

	"model-governance-service/cmd/govctl/commands"
)

func main() {
	if err := commands.NewRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
