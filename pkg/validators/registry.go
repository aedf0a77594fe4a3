package validators

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/go-drift/forms/pkg/form"
)

// ErrUnknownValidator is returned when a name has no registered factory.
var ErrUnknownValidator = errors.New("validators: unknown validator")

// ErrInvalidArgument is returned when a factory cannot use its argument.
var ErrInvalidArgument = errors.New("validators: invalid argument")

// Factory builds a validator from an optional argument, such as the n of
// MinLength. Factories for validators without arguments ignore it.
type Factory func(arg any) (form.ValidatorFn, error)

// AsyncFactory builds an async validator from an optional argument.
type AsyncFactory func(arg any) (form.AsyncValidatorFn, error)

// Registry maps names to validator factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	asyncs    map[string]AsyncFactory
}

// NewRegistry returns a registry holding the built-in validators under the
// names required, requiredTrue, email, nullable, minLength, maxLength, min,
// max and pattern.
func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
		asyncs:    make(map[string]AsyncFactory),
	}
	r.Register("required", static(Required))
	r.Register("requiredTrue", static(RequiredTrue))
	r.Register("email", static(Email))
	r.Register("nullable", static(Nullable))
	r.Register("minLength", func(arg any) (form.ValidatorFn, error) {
		n, err := intArg("minLength", arg)
		if err != nil {
			return nil, err
		}
		return MinLength(n), nil
	})
	r.Register("maxLength", func(arg any) (form.ValidatorFn, error) {
		n, err := intArg("maxLength", arg)
		if err != nil {
			return nil, err
		}
		return MaxLength(n), nil
	})
	r.Register("min", func(arg any) (form.ValidatorFn, error) {
		f, err := floatArg("min", arg)
		if err != nil {
			return nil, err
		}
		return Min(f), nil
	})
	r.Register("max", func(arg any) (form.ValidatorFn, error) {
		f, err := floatArg("max", arg)
		if err != nil {
			return nil, err
		}
		return Max(f), nil
	})
	r.Register("pattern", func(arg any) (form.ValidatorFn, error) {
		expr, ok := arg.(string)
		if !ok {
			return nil, fmt.Errorf("%w: pattern needs a string, got %T", ErrInvalidArgument, arg)
		}
		fn, err := Pattern(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		return fn, nil
	})
	return r
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the shared registry. Hosts register their own validators
// on it so definitions loaded anywhere in the process can use them.
func Default() *Registry {
	defaultOnce.Do(func() { defaultRegistry = NewRegistry() })
	return defaultRegistry
}

func static(fn form.ValidatorFn) Factory {
	return func(any) (form.ValidatorFn, error) { return fn, nil }
}

// Register adds or replaces a synchronous validator factory.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// RegisterAsync adds or replaces an async validator factory.
func (r *Registry) RegisterAsync(name string, f AsyncFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.asyncs[name] = f
}

// Build returns the validator registered as name, built with arg.
func (r *Registry) Build(name string, arg any) (form.ValidatorFn, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, r.unknown(name)
	}
	return f(arg)
}

// BuildAsync returns the async validator registered as name, built with arg.
func (r *Registry) BuildAsync(name string, arg any) (form.AsyncValidatorFn, error) {
	r.mu.RLock()
	f, ok := r.asyncs[name]
	r.mu.RUnlock()
	if !ok {
		return nil, r.unknown(name)
	}
	return f(arg)
}

// Has reports whether name is registered, sync or async.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, s := r.factories[name]
	_, a := r.asyncs[name]
	return s || a
}

// Names returns every registered name in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories)+len(r.asyncs))
	for n := range r.factories {
		names = append(names, n)
	}
	for n := range r.asyncs {
		if _, dup := r.factories[n]; !dup {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// Suggest returns the registered name closest to name, or "" when nothing is
// close enough to be a likely typo.
func (r *Registry) Suggest(name string) string {
	best, bestDist := "", -1
	for _, candidate := range r.Names() {
		d := levenshtein.ComputeDistance(name, candidate)
		if bestDist < 0 || d < bestDist {
			best, bestDist = candidate, d
		}
	}
	if bestDist < 0 || bestDist > maxSuggestDistance(name) {
		return ""
	}
	return best
}

func maxSuggestDistance(name string) int {
	return min(3, max(2, len(name)/3))
}

func (r *Registry) unknown(name string) error {
	if s := r.Suggest(name); s != "" && s != name {
		return fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownValidator, name, s)
	}
	return fmt.Errorf("%w %q", ErrUnknownValidator, name)
}

func intArg(name string, arg any) (int, error) {
	switch v := arg.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v == float64(int(v)) {
			return int(v), nil
		}
	}
	return 0, fmt.Errorf("%w: %s needs an integer, got %v", ErrInvalidArgument, name, arg)
}

func floatArg(name string, arg any) (float64, error) {
	if f, ok := number(arg); ok {
		if _, isString := arg.(string); !isString {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %s needs a number, got %v", ErrInvalidArgument, name, arg)
}
