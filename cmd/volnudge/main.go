package main

import (
	"fmt"
	"os"

	"volnudge/internal/adapter/primary/cli"
	"volnudge/internal/logging"
)

func main() {
	err := cli.NewRootCmd().Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
