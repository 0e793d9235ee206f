package main

import (
	"fmt"
	"os"

	"github.com/solatis/strbounds/cmd/strbounds/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
