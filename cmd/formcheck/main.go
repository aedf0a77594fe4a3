// Command formcheck checks values files against YAML form definitions.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/forms/cmd/formcheck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
