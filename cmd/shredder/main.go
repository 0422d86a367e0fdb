package main

import (
	"fmt"
	"os"
)

func main() {
	c := newCLI()
	if err := c.root().Execute(); err != nil {
		fmt.Fprintln(c.stderr, "Error:", err)
		os.Exit(1)
	}
}
