package errors

import (
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// LogHandler is an ErrorHandler that writes reports through an hclog.Logger.
type LogHandler struct {
	// Logger receives the reports. When nil, a logger named "forms" writing
	// to stderr is created on first use.
	Logger hclog.Logger
	// Verbose enables detailed output including stack traces.
	Verbose bool

	once sync.Once
}

func (h *LogHandler) logger() hclog.Logger {
	h.once.Do(func() {
		if h.Logger == nil {
			h.Logger = hclog.New(&hclog.LoggerOptions{
				Name:   "forms",
				Level:  hclog.Info,
				Output: os.Stderr,
			})
		}
	})
	return h.Logger
}

// HandleError logs a FormError.
func (h *LogHandler) HandleError(err *FormError) {
	if err == nil {
		return
	}
	args := []any{"op", err.Op, "kind", err.Kind.String(), "error", err.Err}
	if err.Path != "" {
		args = append(args, "path", err.Path)
	}
	if h.Verbose && err.StackTrace != "" {
		args = append(args, "stack", err.StackTrace)
	}
	h.logger().Error("form error", args...)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	args := []any{"value", err.Value}
	if err.Op != "" {
		args = append(args, "op", err.Op)
	}
	if h.Verbose && err.StackTrace != "" {
		args = append(args, "stack", err.StackTrace)
	}
	h.logger().Error("recovered panic", args...)
}
