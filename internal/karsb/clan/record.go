package clan

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Record is one row of a dataset: a flat field→value map as decoded from the
// hosted JSON (numbers are json.Number). Records are shared between queries
// through the fetch cache and must not be mutated.
type Record map[string]any

var (
	// ErrBlank is returned by Record.Int when the field is present but null
	// or the empty string, i.e. not recorded.
	ErrBlank = errors.New("value not recorded")
	// ErrNotNumeric is returned by Record.Int when the value cannot be
	// coerced to an integer.
	ErrNotNumeric = errors.New("value is not numeric")
)

// Name returns the display name of the record, or "" when absent.
func (r Record) Name() string {
	switch v := r[NameField].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Int coerces field to an integer. A missing field counts as 0. Floats are
// truncated toward zero and numeric strings may carry surrounding spaces.
func (r Record) Int(field string) (int, error) {
	v, ok := r[field]
	if !ok {
		return 0, nil
	}
	return toInt(v)
}

func toInt(v any) (int, error) {
	switch x := v.(type) {
	case nil:
		return 0, ErrBlank
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return int(n), nil
		}
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNotNumeric, x.String())
		}
		return truncate(f)
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		return truncate(x)
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		if x == "" {
			return 0, ErrBlank
		}
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNotNumeric, x)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: %T", ErrNotNumeric, v)
}

func truncate(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrNotNumeric, f)
	}
	return int(f), nil
}

// Fold returns the trimmed, case-folded form of s used for name matching.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
