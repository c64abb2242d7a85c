package sections

import (
	"fmt"

	"github.com/quantfold/vantage/internal/interfaces"
	"github.com/quantfold/vantage/internal/models"
)

// financialKeys are the fundamentals carried into the financial section
// when present. Missing keys stay out of the metric set entirely.
var financialKeys = []string{
	"revenue",
	"net_income",
	"operating_cash_flow",
	"capital_expenditures",
	"free_cash_flow",
	"eps",
	"market_cap",
	"pe_ratio",
	"forward_pe_ratio",
	"price_to_book",
	"price_to_sales",
	"dividend_yield",
	"payout_ratio",
	"revenue_growth",
	"earnings_growth",
	"profit_margin",
	"gross_margin",
	"return_on_equity",
	"return_on_assets",
	"current_ratio",
	"quick_ratio",
	"debt_to_equity",
}

// FinancialAnalyzer derives growth, margin, leverage and cash-flow
// metrics from a dataset's fundamentals.
type FinancialAnalyzer struct{}

// NewFinancialAnalyzer creates a financial section analyzer
func NewFinancialAnalyzer() *FinancialAnalyzer {
	return &FinancialAnalyzer{}
}

func (a *FinancialAnalyzer) Kind() models.SectionKind {
	return models.SectionFinancial
}

func (a *FinancialAnalyzer) Analyze(dataset *models.DataSet) (models.SectionMetrics, error) {
	metrics := models.NewSectionMetrics(a.Kind())

	if dataset == nil || len(dataset.Fundamentals) == 0 {
		return metrics, fmt.Errorf("no fundamentals for %s: %w",
			tickerOf(dataset), models.ErrSectionDataMissing)
	}

	for _, key := range financialKeys {
		if m := dataset.Fundamental(key); m.Valid {
			metrics.Values[key] = m
		}
	}

	// Derive net margin when the source didn't supply one
	if _, ok := metrics.Values["profit_margin"]; !ok {
		revenue, revOK := dataset.Fundamental("revenue").Float()
		netIncome, niOK := dataset.Fundamental("net_income").Float()
		if revOK && niOK && revenue != 0 {
			metrics.Values["profit_margin"] = models.Num(netIncome / revenue)
		}
	}

	// Derive free cash flow from operating cash flow and capex
	if _, ok := metrics.Values["free_cash_flow"]; !ok {
		ocf, ocfOK := dataset.Fundamental("operating_cash_flow").Float()
		capex, capexOK := dataset.Fundamental("capital_expenditures").Float()
		if ocfOK && capexOK {
			metrics.Values["free_cash_flow"] = models.Num(ocf - capex)
		}
	}

	return metrics, nil
}

func tickerOf(dataset *models.DataSet) string {
	if dataset == nil {
		return "<nil>"
	}
	return dataset.Ticker
}

var _ interfaces.SectionAnalyzer = (*FinancialAnalyzer)(nil)
