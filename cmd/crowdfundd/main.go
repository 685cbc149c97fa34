package main

import (
	"fmt"
	"os"
)

// Version is overwritten at build time with
// -ldflags "-X main.Version=<tag>"
var Version = "dev"

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}
