package cmd

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/go-drift/forms/pkg/form"
)

// walk visits c and its descendants depth first, in declared order.
func walk(c form.Control, name string, depth int, fn func(c form.Control, name string, depth int)) {
	fn(c, name, depth)
	switch n := c.(type) {
	case *form.Group:
		for _, key := range n.Names() {
			walk(n.Control(key), key, depth+1, fn)
		}
	case *form.List:
		for i, child := range n.Controls() {
			walk(child, strconv.Itoa(i), depth+1, fn)
		}
	}
}

func kindOf(c form.Control) string {
	switch c.(type) {
	case *form.Group:
		return "group"
	case *form.List:
		return "list"
	}
	return "field"
}

func displayPath(c form.Control) string {
	if p := form.Path(c); p != "" {
		return p
	}
	return "."
}

// printReport writes one line per control: path, status and errors.
func printReport(w io.Writer, root form.Control) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	walk(root, "", 0, func(c form.Control, _ string, _ int) {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", displayPath(c), c.Status(), formatErrors(c.Errors()))
	})
	return tw.Flush()
}

// printTree writes the control tree indented by depth.
func printTree(w io.Writer, root form.Control) {
	walk(root, ".", 0, func(c form.Control, name string, depth int) {
		indent := strings.Repeat("  ", depth)
		line := fmt.Sprintf("%s%s (%s) %s", indent, name, kindOf(c), c.Status())
		if kindOf(c) == "field" {
			line += " = " + formatValue(c.RawValue())
		}
		if c.UpdateOn() != form.UpdateOnChange {
			line += " [updateOn " + c.UpdateOn().String() + "]"
		}
		fmt.Fprintln(w, line)
	})
}

func formatErrors(errs form.ValidationErrors) string {
	if len(errs) == 0 {
		return "-"
	}
	codes := make([]string, 0, len(errs))
	for code := range errs {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		if detail, ok := errs[code].(bool); ok && detail {
			parts = append(parts, code)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", code, errs[code]))
	}
	return strings.Join(parts, " ")
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprint(v)
}
