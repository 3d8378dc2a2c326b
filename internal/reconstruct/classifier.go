package reconstruct

import "strings"

// headerSeparator joins the parts of fund report titles such as
// "UK Listed Equity-Fund-2023".
const headerSeparator = "-"

var headerKeywords = []string{"Report", "Fund"}

// categorySentinel is used in place of a year by some source reports.
const categorySentinel = "fund"

// IsEntityHeader reports whether line looks like a fund header: it contains
// the title separator and one of the header keywords. The keyword match is
// case-sensitive. This is a heuristic and metric text that happens to match
// will be taken as a header.
func IsEntityHeader(line string) bool {
	if !strings.Contains(line, headerSeparator) {
		return false
	}
	for _, kw := range headerKeywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}

// IsCategoryTag reports whether line is a category tag: all ASCII digits
// (a reporting year) or the sentinel keyword in any case.
func IsCategoryTag(line string) bool {
	if line == "" {
		return false
	}
	if strings.EqualFold(line, categorySentinel) {
		return true
	}
	for i := 0; i < len(line); i++ {
		if line[i] < '0' || line[i] > '9' {
			return false
		}
	}
	return true
}

// Classifier bundles the two line predicates used by the assembler.
type Classifier struct {
	IsHeader   func(string) bool
	IsCategory func(string) bool
}

// DefaultClassifier uses IsEntityHeader and IsCategoryTag.
func DefaultClassifier() Classifier {
	return Classifier{IsHeader: IsEntityHeader, IsCategory: IsCategoryTag}
}

func (c Classifier) withDefaults() Classifier {
	if c.IsHeader == nil {
		c.IsHeader = IsEntityHeader
	}
	if c.IsCategory == nil {
		c.IsCategory = IsCategoryTag
	}
	return c
}
