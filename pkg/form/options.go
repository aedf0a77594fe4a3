package form

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/go-drift/forms/pkg/dispatch"
)

type config struct {
	validators      []ValidatorFn
	asyncValidators []AsyncValidatorFn
	updateOn        UpdateOn
	dispatcher      dispatch.Dispatcher
	ctx             context.Context
	logger          hclog.Logger
	disabled        bool
}

// Option configures a control at construction.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

// WithValidators appends synchronous validators.
func WithValidators(fns ...ValidatorFn) Option {
	return optionFunc(func(c *config) {
		c.validators = append(c.validators, compactValidators(fns)...)
	})
}

// WithAsyncValidators appends asynchronous validators.
func WithAsyncValidators(fns ...AsyncValidatorFn) Option {
	return optionFunc(func(c *config) {
		c.asyncValidators = append(c.asyncValidators, compactAsyncValidators(fns)...)
	})
}

// WithUpdateOn sets when input is committed. See [UpdateOn].
func WithUpdateOn(u UpdateOn) Option {
	return optionFunc(func(c *config) { c.updateOn = u })
}

// WithDispatcher sets the dispatcher that delivers async results for this
// control and, unless they set their own, its descendants.
func WithDispatcher(d dispatch.Dispatcher) Option {
	return optionFunc(func(c *config) { c.dispatcher = d })
}

// WithContext sets the context handed to async tasks started by this control
// and its descendants.
func WithContext(ctx context.Context) Option {
	return optionFunc(func(c *config) { c.ctx = ctx })
}

// WithLogger sets a logger for trace output about validation passes.
// Descendants without their own logger use it too.
func WithLogger(l hclog.Logger) Option {
	return optionFunc(func(c *config) { c.logger = l })
}

// WithDisabled constructs the control disabled.
func WithDisabled() Option {
	return optionFunc(func(c *config) { c.disabled = true })
}

// Options is the struct form of the common construction options.
type Options struct {
	Validators      []ValidatorFn
	AsyncValidators []AsyncValidatorFn
	UpdateOn        UpdateOn
}

func (o Options) apply(c *config) {
	c.validators = append(c.validators, compactValidators(o.Validators)...)
	c.asyncValidators = append(c.asyncValidators, compactAsyncValidators(o.AsyncValidators)...)
	if o.UpdateOn != UpdateOnDefault {
		c.updateOn = o.UpdateOn
	}
}

// LegacyOptions is the flat single-validator option shape.
//
// Deprecated: use [Options] or [WithValidators]; LegacyOptions behaves
// exactly like an Options value holding the same validators.
type LegacyOptions struct {
	Validator      ValidatorFn
	AsyncValidator AsyncValidatorFn
}

func (o LegacyOptions) apply(c *config) {
	Options{
		Validators:      []ValidatorFn{o.Validator},
		AsyncValidators: []AsyncValidatorFn{o.AsyncValidator},
	}.apply(c)
}

func resolveOptions(opts []Option) config {
	var cfg config
	for _, o := range opts {
		if o != nil {
			o.apply(&cfg)
		}
	}
	return cfg
}

type updateConfig struct {
	onlySelf           bool
	silent             bool
	includeDescendants bool
}

// self returns a copy that does not propagate to the parent.
func (u updateConfig) self() updateConfig {
	u.onlySelf = true
	return u
}

// UpdateOption adjusts how a mutation propagates.
type UpdateOption func(*updateConfig)

// OnlySelf stops propagation to ancestors.
func OnlySelf() UpdateOption {
	return func(u *updateConfig) { u.onlySelf = true }
}

// Silent suppresses event emission.
func Silent() UpdateOption {
	return func(u *updateConfig) { u.silent = true }
}

// IncludeDescendants makes Enable clear the disabled flag of every
// descendant instead of restoring the previously enabled subset.
func IncludeDescendants() UpdateOption {
	return func(u *updateConfig) { u.includeDescendants = true }
}

func resolveUpdate(opts []UpdateOption) updateConfig {
	var u updateConfig
	for _, o := range opts {
		if o != nil {
			o(&u)
		}
	}
	return u
}
