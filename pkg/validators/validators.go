// Package validators provides the common synchronous validators and a
// registry that builds them by name.
//
// Validators that check a property of the value, such as Email or MinLength,
// treat an empty value as valid so they can be combined with Required.
package validators

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-drift/forms/pkg/form"
)

// emailPattern accepts what browsers accept for input type=email.
var emailPattern = regexp.MustCompile(`^(?:[a-zA-Z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+(?:\.[a-zA-Z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+)*)@(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*)$`)

// Required fails on nil, the empty string, and empty slices and maps.
func Required(c form.Control) form.ValidationErrors {
	if isEmpty(c.Value()) {
		return form.ValidationErrors{"required": true}
	}
	return nil
}

// RequiredTrue fails unless the value is the boolean true. Used for
// checkboxes that must be ticked.
func RequiredTrue(c form.Control) form.ValidationErrors {
	if v, ok := c.Value().(bool); ok && v {
		return nil
	}
	return form.ValidationErrors{"required": true}
}

// Email fails when a non-empty string value is not an email address.
func Email(c form.Control) form.ValidationErrors {
	v := c.Value()
	if isEmpty(v) {
		return nil
	}
	s, ok := v.(string)
	if !ok || !emailPattern.MatchString(s) {
		return form.ValidationErrors{"email": true}
	}
	return nil
}

// Nullable never fails. It stands in where a validator is required but none
// is wanted.
func Nullable(form.Control) form.ValidationErrors { return nil }

// MinLength fails when a non-empty string, slice or map is shorter than n.
// Strings are measured in runes.
func MinLength(n int) form.ValidatorFn {
	return func(c form.Control) form.ValidationErrors {
		v := c.Value()
		if isEmpty(v) {
			return nil
		}
		size, ok := length(v)
		if !ok || size >= n {
			return nil
		}
		return form.ValidationErrors{"minlength": map[string]any{
			"requiredLength": n,
			"actualLength":   size,
		}}
	}
}

// MaxLength fails when a string, slice or map is longer than n.
func MaxLength(n int) form.ValidatorFn {
	return func(c form.Control) form.ValidationErrors {
		size, ok := length(c.Value())
		if !ok || size <= n {
			return nil
		}
		return form.ValidationErrors{"maxlength": map[string]any{
			"requiredLength": n,
			"actualLength":   size,
		}}
	}
}

// Min fails when a numeric value, or a string holding a number, is below min.
func Min(min float64) form.ValidatorFn {
	return func(c form.Control) form.ValidationErrors {
		v := c.Value()
		f, ok := number(v)
		if !ok || f >= min {
			return nil
		}
		return form.ValidationErrors{"min": map[string]any{"min": min, "actual": v}}
	}
}

// Max fails when a numeric value, or a string holding a number, is above max.
func Max(max float64) form.ValidatorFn {
	return func(c form.Control) form.ValidationErrors {
		v := c.Value()
		f, ok := number(v)
		if !ok || f <= max {
			return nil
		}
		return form.ValidationErrors{"max": map[string]any{"max": max, "actual": v}}
	}
}

// Pattern fails when a non-empty string value does not match expr as a
// whole. The expression is wrapped in a group before anchoring, so "a|b"
// accepts exactly "a" or "b".
func Pattern(expr string) (form.ValidatorFn, error) {
	// Checked alone first so "a)|(b" cannot close the wrapping group.
	if _, err := regexp.Compile(expr); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", expr, err)
	}
	re, err := regexp.Compile("^(?:" + expr + ")$")
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", expr, err)
	}
	return PatternRegexp(re), nil
}

// PatternRegexp is Pattern for a compiled expression, used as given.
func PatternRegexp(re *regexp.Regexp) form.ValidatorFn {
	return func(c form.Control) form.ValidationErrors {
		v := c.Value()
		if isEmpty(v) {
			return nil
		}
		s := fmt.Sprint(v)
		if re.MatchString(s) {
			return nil
		}
		return form.ValidationErrors{"pattern": map[string]any{
			"requiredPattern": re.String(),
			"actualValue":     v,
		}}
	}
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func length(v any) (int, bool) {
	if s, ok := v.(string); ok {
		return utf8.RuneCountInString(s), true
	}
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len(), true
	}
	return 0, false
}

func number(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	var f float64
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f = float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f = float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		f = rv.Float()
	case reflect.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(rv.String()), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
