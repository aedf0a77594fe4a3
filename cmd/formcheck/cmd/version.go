package cmd

import "fmt"

func init() {
	RegisterCommand(&Command{
		Name:  "version",
		Short: "Show version information",
		Long:  "Show the formcheck version and build time.",
		Usage: "formcheck version",
		Run: func(args []string) error {
			fmt.Fprintf(stdout, "formcheck version %s (built %s)\n", Version, BuildTime)
			return nil
		},
	})
}
