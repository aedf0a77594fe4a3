package cmd

import (
	"fmt"

	"github.com/go-drift/forms/pkg/dispatch"
	"github.com/go-drift/forms/pkg/form"
	"github.com/go-drift/forms/pkg/schema"
)

func init() {
	RegisterCommand(&Command{
		Name:  "tree",
		Short: "Show the control tree of a definition",
		Long: `Build the form described by a definition and print its controls with
their kind, initial status and value.`,
		Usage: "formcheck tree <definition.yaml>",
		Run:   runTree,
	})
}

func runTree(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("definition file is required\n\nUsage: formcheck tree <definition.yaml>")
	}
	doc, err := schema.Load(args[0])
	if err != nil {
		return err
	}
	root, err := doc.Build(form.WithDispatcher(dispatch.NewQueue()))
	if err != nil {
		return err
	}
	printTree(stdout, root)
	return nil
}
