package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/go-drift/forms/pkg/dispatch"
	formerrors "github.com/go-drift/forms/pkg/errors"
	"github.com/go-drift/forms/pkg/form"
	"github.com/go-drift/forms/pkg/schema"
)

// ErrInvalid is returned by validate when the form does not validate.
var ErrInvalid = errors.New("form is INVALID")

func init() {
	RegisterCommand(&Command{
		Name:  "validate",
		Short: "Check a values file against a definition",
		Long: `Build the form described by a definition, apply a values file and
report the status and errors of every control.

The values replace the form's value, so every enabled control needs one.
With --patch only the controls named in the values file are updated.

Every control is marked touched before reporting. Pending async validators
are awaited. The command fails when the form is INVALID.

Flags:
  --patch              Patch the values instead of setting them
  --log-level LEVEL    trace, debug, info, warn or error (default: warn)`,
		Usage: "formcheck validate [--patch] [--log-level LEVEL] <definition.yaml> <values.yaml>",
		Run:   runValidate,
	})
}

type validateOptions struct {
	patch      bool
	logLevel   string
	definition string
	values     string
}

func parseValidateArgs(args []string) (validateOptions, error) {
	opts := validateOptions{logLevel: "warn"}
	var positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--patch" || arg == "-patch":
			opts.patch = true
		case arg == "--log-level" || arg == "-log-level":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("%s requires a level", arg)
			}
			opts.logLevel = args[i+1]
			i++
		case strings.HasPrefix(arg, "--log-level="):
			opts.logLevel = strings.TrimPrefix(arg, "--log-level=")
		case strings.HasPrefix(arg, "-") && arg != "-":
			return opts, fmt.Errorf("unknown flag %q", arg)
		default:
			positional = append(positional, arg)
		}
	}
	if len(positional) != 2 {
		return opts, fmt.Errorf("expected a definition and a values file\n\nUsage: formcheck validate [--patch] [--log-level LEVEL] <definition.yaml> <values.yaml>")
	}
	if hclog.LevelFromString(opts.logLevel) == hclog.NoLevel {
		return opts, fmt.Errorf("unknown log level %q", opts.logLevel)
	}
	opts.definition, opts.values = positional[0], positional[1]
	return opts, nil
}

func runValidate(args []string) error {
	opts, err := parseValidateArgs(args)
	if err != nil {
		return err
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "formcheck",
		Level:  hclog.LevelFromString(opts.logLevel),
		Output: stderr,
	})
	formerrors.SetHandler(&formerrors.LogHandler{Logger: logger})
	defer formerrors.SetHandler(nil)

	doc, err := schema.Load(opts.definition)
	if err != nil {
		return err
	}
	values, err := schema.LoadValues(opts.values)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	q := dispatch.NewQueue()
	root, err := doc.Build(form.WithDispatcher(q), form.WithContext(ctx), form.WithLogger(logger))
	if err != nil {
		return err
	}
	logger.Debug("form built", "definition", opts.definition, "controls", len(root.Names()))

	if opts.patch {
		err = root.PatchValue(values)
	} else {
		err = root.SetValue(values)
	}
	if err != nil {
		return fmt.Errorf("failed to apply %s: %w", opts.values, err)
	}
	root.MarkAllAsTouched()

	if err := form.WaitSettled(ctx, q, root); err != nil {
		return fmt.Errorf("failed waiting for async validators: %w", err)
	}
	if err := printReport(stdout, root); err != nil {
		return err
	}
	if root.Invalid() {
		return ErrInvalid
	}
	return nil
}
