package main

import (
	"fmt"
	"os"

	"github.com/confrag/confrag/cmd/confrag"
)

func main() {
	rootCmd := confrag.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
