package reconstruct

// DefaultStructuralLabels are the title and column headers of the compiled
// LGPS report. They carry no data and would otherwise shift the
// metric/value pairing.
var DefaultStructuralLabels = []string{
	"LGPS Compiled Financial Report",
	"Fund Name",
	"Market",
	"Metric",
	"Value",
}

// Normalizer removes structural label lines from a line sequence.
type Normalizer struct {
	labels map[string]struct{}
}

// NewNormalizer builds a normalizer for the given labels. A nil slice selects
// DefaultStructuralLabels; an empty non-nil slice removes nothing.
func NewNormalizer(labels []string) *Normalizer {
	if labels == nil {
		labels = DefaultStructuralLabels
	}
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	return &Normalizer{labels: set}
}

// Normalize returns lines without the exact label matches, in the original
// order, and the number of lines removed. The input slice is not modified.
func (n *Normalizer) Normalize(lines []string) ([]string, int) {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, isLabel := n.labels[line]; isLabel {
			continue
		}
		out = append(out, line)
	}
	return out, len(lines) - len(out)
}

// Normalize filters lines with the default label set.
func Normalize(lines []string) []string {
	out, _ := NewNormalizer(nil).Normalize(lines)
	return out
}
