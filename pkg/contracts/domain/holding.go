package domain

import (
	"encoding/json"
	"math"
)

// FlatRecord is one (entity, category, metric, value) observation recovered
// from a flattened document before it is reshaped into a wide table.
type FlatRecord struct {
	Entity   string       `json:"entity" validate:"required"`
	Category *string      `json:"category"`
	Metric   string       `json:"metric" validate:"required"`
	Value    string       `json:"value"`
	Numeric  NumericValue `json:"numeric"`
}

// CategoryOrEmpty returns the category text or "" when it is absent.
func (r FlatRecord) CategoryOrEmpty() string {
	if r.Category == nil {
		return ""
	}
	return *r.Category
}

// NumericValue is a value string coerced to float64. Valid is false when the
// source text could not be parsed; such values are excluded from aggregates.
type NumericValue struct {
	Value float64
	Valid bool
}

// Missing is the marker for an unparseable value.
var Missing = NumericValue{Value: math.NaN()}

// Number wraps a parsed float.
func Number(v float64) NumericValue {
	return NumericValue{Value: v, Valid: true}
}

// Float returns the value, or NaN when it is missing.
func (n NumericValue) Float() float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.Value
}

// MarshalJSON encodes missing values as null.
func (n NumericValue) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// UnmarshalJSON accepts a number or null.
func (n *NumericValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = Missing
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Number(v)
	return nil
}
