package analytics

import "strings"

// Classifier maps an entity name to a group label.
type Classifier func(entity string) string

// Group labels produced by the keyword classifiers.
const (
	AssetPublicStocks  = "Public Stocks"
	AssetBonds         = "Bonds"
	AssetPrivateEquity = "Private Equity"
	AssetAlternatives  = "Alternatives"
	AssetMultiAsset    = "Multi-Asset"

	InvestmentDirect   = "Direct"
	InvestmentIndirect = "Indirect"

	SectorEmergingMarkets = "Emerging Markets"
	SectorGlobalEquities  = "Global Equities"

	GroupOther = "Other"
)

// ClassifyAssetClass assigns an asset class from keywords in the fund name.
func ClassifyAssetClass(entity string) string {
	name := strings.ToLower(entity)
	switch {
	case containsAny(name, "equity", "stocks", "listed"):
		return AssetPublicStocks
	case containsAny(name, "bond", "credit"):
		return AssetBonds
	case containsAny(name, "private-market", "private equity"):
		return AssetPrivateEquity
	case strings.Contains(name, "alternatives"):
		return AssetAlternatives
	case strings.Contains(name, "multi-asset"):
		return AssetMultiAsset
	default:
		return GroupOther
	}
}

// ClassifyInvestmentType reports funds held through a manager ("fund" in the
// name) as Indirect and everything else as Direct.
func ClassifyInvestmentType(entity string) string {
	if strings.Contains(strings.ToLower(entity), "fund") {
		return InvestmentIndirect
	}
	return InvestmentDirect
}

// ClassifySector assigns a sector from keywords in the fund name.
func ClassifySector(entity string) string {
	name := strings.ToLower(entity)
	switch {
	case strings.Contains(name, "emerging"):
		return SectorEmergingMarkets
	case strings.Contains(name, "global"):
		return SectorGlobalEquities
	case strings.Contains(name, "uk"):
		return AssetPublicStocks
	case containsAny(name, "credit", "bond"):
		return AssetBonds
	case strings.Contains(name, "private-market"):
		return AssetPrivateEquity
	default:
		return GroupOther
	}
}

// IsUK reports whether the entity name mentions the UK.
func IsUK(entity string) bool {
	return strings.Contains(strings.ToLower(entity), "uk")
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
