package reconstruct

import (
	"math"
	"strconv"
	"strings"

	"lgpsreport/pkg/contracts/domain"
)

const thousandsSeparator = ","

// ParseNumeric strips thousands separators from s and parses it as a 64-bit
// float. Text that does not parse, and spellings of NaN or infinity, yield
// domain.Missing.
func ParseNumeric(s string) domain.NumericValue {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), thousandsSeparator, "")
	if cleaned == "" {
		return domain.Missing
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return domain.Missing
	}
	return domain.Number(v)
}

// ParseValues fills the Numeric field of every record and returns the
// number of values that could not be parsed.
func ParseValues(records []domain.FlatRecord) int {
	unparseable := 0
	for i := range records {
		records[i].Numeric = ParseNumeric(records[i].Value)
		if !records[i].Numeric.Valid {
			unparseable++
		}
	}
	return unparseable
}
