package payload

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Validator normalizes payloads against schemas. Rule expressions are
// evaluated with go-playground/validator.
type Validator struct {
	vd *validator.Validate
}

// New creates a Validator.
func New() *Validator {
	return &Validator{vd: validator.New()}
}

// Validate checks p against the schema and returns the normalized payload:
// absent fields are defaulted, declared kinds are coerced (string inputs
// from query parameters and path segments included), and rule expressions
// are applied to the coerced values. Fields not named by the schema pass
// through untouched. The input map is not mutated.
//
// On failure Validate returns a *ValidationError naming every offending
// field.
func (v *Validator) Validate(ctx context.Context, p map[string]any, schema Schema) (map[string]any, error) {
	out := make(map[string]any, len(p))
	maps.Copy(out, p)

	fields := make(map[string]string)

	for name, f := range schema {
		raw, ok := out[name]
		if !ok || raw == nil {
			if f.Default != nil {
				out[name] = f.Default
				raw = f.Default
			} else if f.Required {
				fields[name] = "required"
				continue
			} else {
				continue
			}
		}

		coerced, err := coerce(raw, f.Type)
		if err != nil {
			fields[name] = err.Error()
			continue
		}
		out[name] = coerced

		if f.Rules != "" {
			if err := v.vd.VarCtx(ctx, coerced, f.Rules); err != nil {
				fields[name] = ruleMessage(err)
			}
		}
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return out, nil
}

// coerce converts raw to the declared kind. String inputs are parsed for
// numeric and boolean kinds; anything else of the wrong type is rejected.
func coerce(raw any, kind Kind) (any, error) {
	switch kind {
	case "", Any:
		return raw, nil

	case String:
		if s, ok := raw.(string); ok {
			return s, nil
		}
		return nil, errors.New("must be a string")

	case Int:
		switch n := raw.(type) {
		case int:
			return int64(n), nil
		case int64:
			return n, nil
		case float64:
			if n == float64(int64(n)) {
				return int64(n), nil
			}
			return nil, errors.New("must be an integer")
		case string:
			parsed, err := strconv.ParseInt(n, 10, 64)
			if err != nil {
				return nil, errors.New("must be an integer")
			}
			return parsed, nil
		}
		return nil, errors.New("must be an integer")

	case Float:
		switch n := raw.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case string:
			parsed, err := strconv.ParseFloat(n, 64)
			if err != nil {
				return nil, errors.New("must be a number")
			}
			return parsed, nil
		}
		return nil, errors.New("must be a number")

	case Bool:
		switch b := raw.(type) {
		case bool:
			return b, nil
		case string:
			parsed, err := strconv.ParseBool(b)
			if err != nil {
				return nil, errors.New("must be a boolean")
			}
			return parsed, nil
		}
		return nil, errors.New("must be a boolean")
	}

	return nil, fmt.Errorf("unknown kind %q", kind)
}

// ruleMessage renders the first failed rule of a validator error.
func ruleMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("failed rule %q", verrs[0].ActualTag())
	}
	return err.Error()
}
