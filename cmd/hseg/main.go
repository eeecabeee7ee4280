package main

import (
	"fmt"
	"os"

	"hseg/cmd/hseg/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
