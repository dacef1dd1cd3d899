package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	var (
		timeoutMs = flag.Int("timeout", 25, "default timeout in milliseconds for the timeout demo operation")
	)
	flag.Parse()

	if err := runInteractive(*timeoutMs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
