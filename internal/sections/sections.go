// Package sections provides the per-section metric analyzers
package sections

import (
	"github.com/quantfold/vantage/internal/interfaces"
	"github.com/quantfold/vantage/internal/models"
)

// DefaultNewsDigest is the default cap on news items in a report.
const DefaultNewsDigest = 5

// All returns one analyzer per SectionKind in canonical order.
func All(newsDigest int) []interfaces.SectionAnalyzer {
	if newsDigest <= 0 {
		newsDigest = DefaultNewsDigest
	}
	return []interfaces.SectionAnalyzer{
		NewFinancialAnalyzer(),
		NewMarketAnalyzer(),
		NewSectorAnalyzer(),
		NewConsensusAnalyzer(),
		NewNewsAnalyzer(newsDigest),
	}
}

// ForKind returns the analyzer for a single section kind, or nil.
func ForKind(kind models.SectionKind, newsDigest int) interfaces.SectionAnalyzer {
	for _, a := range All(newsDigest) {
		if a.Kind() == kind {
			return a
		}
	}
	return nil
}
