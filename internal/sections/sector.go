package sections

import (
	"fmt"

	"github.com/quantfold/vantage/internal/interfaces"
	"github.com/quantfold/vantage/internal/models"
)

// benchmarkPairs maps a company ratio to its sector benchmark key.
var benchmarkPairs = []struct {
	metric    string
	benchmark string
}{
	{"pe_ratio", "sector_pe"},
	{"profit_margin", "sector_profit_margin"},
	{"dividend_yield", "sector_dividend_yield"},
	{"revenue_growth", "sector_revenue_growth"},
	{"return_on_equity", "sector_return_on_equity"},
}

// SectorAnalyzer compares company ratios against supplied sector
// benchmarks. Absent benchmarks are flagged, not treated as an error.
type SectorAnalyzer struct{}

// NewSectorAnalyzer creates an industry/sector section analyzer
func NewSectorAnalyzer() *SectorAnalyzer {
	return &SectorAnalyzer{}
}

func (a *SectorAnalyzer) Kind() models.SectionKind {
	return models.SectionIndustry
}

func (a *SectorAnalyzer) Analyze(dataset *models.DataSet) (models.SectionMetrics, error) {
	metrics := models.NewSectionMetrics(a.Kind())

	if dataset == nil || (dataset.Sector == "" && len(dataset.Fundamentals) == 0) {
		return metrics, fmt.Errorf("no sector data for %s: %w",
			tickerOf(dataset), models.ErrSectionDataMissing)
	}

	if dataset.Sector != "" {
		metrics.Notes = append(metrics.Notes, "Sector: "+dataset.Sector)
	}
	if dataset.Industry != "" {
		metrics.Notes = append(metrics.Notes, "Industry: "+dataset.Industry)
	}

	if len(dataset.Benchmarks) == 0 {
		metrics.Values["benchmark_available"] = models.Num(0)
		metrics.Notes = append(metrics.Notes, "Sector benchmarks unavailable; no relative standing computed")
		return metrics, nil
	}

	metrics.Values["benchmark_available"] = models.Num(1)

	for _, pair := range benchmarkPairs {
		company, companyOK := dataset.Fundamental(pair.metric).Float()
		bench, benchOK := dataset.Benchmark(pair.benchmark).Float()

		if benchOK {
			metrics.Values[pair.benchmark] = models.Num(bench)
		}
		if companyOK && benchOK && bench != 0 {
			metrics.Values[pair.metric+"_vs_sector"] = models.Num(company / bench)
		}
	}

	return metrics, nil
}

var _ interfaces.SectionAnalyzer = (*SectorAnalyzer)(nil)
