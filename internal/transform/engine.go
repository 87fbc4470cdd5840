package transform

import (
	"errors"
	"fmt"
)

// ErrMissingRequiredField is returned when a required canonical field is
// absent from the request body and carries no default.
var ErrMissingRequiredField = errors.New("transform: missing required field")

// ErrOutOfRange is returned when a numeric field falls outside its
// configured min/max.
var ErrOutOfRange = errors.New("transform: value out of range")

// FieldError wraps ErrMissingRequiredField/ErrOutOfRange with the
// offending canonical field name, so callers can build ValidationError
// envelopes per spec.md §7 without string-matching messages.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("transform: field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Single is one canonical-field-to-provider-param rule.
type Single struct {
	// CanonicalField is the dotted path read from the inbound body.
	CanonicalField string
	// ParamPath is the dotted path written into the provider body.
	ParamPath string
	Required  bool
	// Default supplies a value when CanonicalField is absent and not
	// Required. It may inspect the full canonical body and the
	// in-progress provider tree, e.g. to derive a default from a sibling
	// field.
	Default func(body interface{}, target Tree) (interface{}, bool)
	Min, Max *float64
	// Transform replaces the read value before range checks and
	// placement. It receives the full canonical body, not just the
	// field value, so it can combine several canonical fields.
	Transform func(body interface{}) (interface{}, error)
	// Skip vetoes placement entirely (e.g. a field that only applies to
	// certain model families) even if a value was resolved.
	Skip func(body interface{}) bool
}

// Multi fans one canonical field out to several provider params, e.g. a
// `messages` field that is split into both `system` and `messages` in
// Bedrock Converse. Entries are applied in order.
type Multi struct {
	CanonicalField string
	Entries        []Single
}

// FieldRule is either a Single or a Multi entry in a FunctionConfig.
type FieldRule interface {
	isFieldRule()
}

func (Single) isFieldRule() {}
func (Multi) isFieldRule()  {}

// FunctionConfig is the full declarative mapping for one
// (provider-family, operation) pair.
type FunctionConfig struct {
	Rules []FieldRule
}

// Apply builds a provider Tree from a canonical body by walking cfg's
// rules in order, per spec.md §4.2.
func Apply(cfg FunctionConfig, body interface{}) (Tree, error) {
	target := Tree{}
	for _, rule := range cfg.Rules {
		switch r := rule.(type) {
		case Single:
			if err := applySingle(r, body, target); err != nil {
				return nil, err
			}
		case Multi:
			for _, entry := range r.Entries {
				if err := applySingle(entry, body, target); err != nil {
					return nil, err
				}
			}
		default:
			return nil, fmt.Errorf("transform: unknown field rule %T", rule)
		}
	}
	return target, nil
}

func applySingle(r Single, body interface{}, target Tree) error {
	value, present := Get(body, r.CanonicalField)

	if !present {
		if r.Required {
			return &FieldError{Field: r.CanonicalField, Err: ErrMissingRequiredField}
		}
		if r.Default == nil {
			return nil
		}
		v, ok := r.Default(body, target)
		if !ok {
			return nil
		}
		value = v
		present = true
	}

	if r.Transform != nil {
		v, err := r.Transform(body)
		if err != nil {
			return fmt.Errorf("transform: field %q: %w", r.CanonicalField, err)
		}
		value = v
	}

	if r.Skip != nil && r.Skip(body) {
		return nil
	}

	if err := checkRange(r, value); err != nil {
		return err
	}

	if !present && value == nil {
		return nil
	}

	return target.Set(r.ParamPath, value)
}

func checkRange(r Single, value interface{}) error {
	if r.Min == nil && r.Max == nil {
		return nil
	}
	num, ok := asFloat(value)
	if !ok {
		return nil
	}
	if r.Min != nil && num < *r.Min {
		return &FieldError{Field: r.CanonicalField, Err: ErrOutOfRange}
	}
	if r.Max != nil && num > *r.Max {
		return &FieldError{Field: r.CanonicalField, Err: ErrOutOfRange}
	}
	return nil
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
