package sections

import (
	"fmt"

	"github.com/quantfold/vantage/internal/interfaces"
	"github.com/quantfold/vantage/internal/models"
)

// ConsensusAnalyzer aggregates analyst rating counts into proportions and
// a consensus target-price midpoint.
type ConsensusAnalyzer struct{}

// NewConsensusAnalyzer creates an analyst consensus section analyzer
func NewConsensusAnalyzer() *ConsensusAnalyzer {
	return &ConsensusAnalyzer{}
}

func (a *ConsensusAnalyzer) Kind() models.SectionKind {
	return models.SectionConsensus
}

func (a *ConsensusAnalyzer) Analyze(dataset *models.DataSet) (models.SectionMetrics, error) {
	metrics := models.NewSectionMetrics(a.Kind())

	if dataset == nil || dataset.Ratings.Total() == 0 {
		return metrics, fmt.Errorf("no analyst ratings for %s: %w",
			tickerOf(dataset), models.ErrSectionDataMissing)
	}

	r := dataset.Ratings
	total := float64(r.Total())

	metrics.Values["strong_buy"] = models.Num(float64(r.StrongBuy))
	metrics.Values["buy"] = models.Num(float64(r.Buy))
	metrics.Values["hold"] = models.Num(float64(r.Hold))
	metrics.Values["sell"] = models.Num(float64(r.Sell))
	metrics.Values["strong_sell"] = models.Num(float64(r.StrongSell))
	metrics.Values["total_ratings"] = models.Num(total)

	metrics.Values["bullish_ratio"] = models.Num(float64(r.StrongBuy+r.Buy) / total)
	metrics.Values["bearish_ratio"] = models.Num(float64(r.Sell+r.StrongSell) / total)

	// Weighted consensus on the bullish-bearish axis, +2 .. -2
	score := (2*float64(r.StrongBuy) + float64(r.Buy) - float64(r.Sell) - 2*float64(r.StrongSell)) / total
	metrics.Values["consensus_score"] = models.Num(score)

	if r.TargetHigh.Valid {
		metrics.Values["target_high"] = r.TargetHigh
	}
	if r.TargetLow.Valid {
		metrics.Values["target_low"] = r.TargetLow
	}
	if r.TargetMean.Valid {
		metrics.Values["target_mean"] = r.TargetMean
	}

	high, highOK := r.TargetHigh.Float()
	low, lowOK := r.TargetLow.Float()
	if highOK && lowOK {
		metrics.Values["target_midpoint"] = models.Num((high + low) / 2)
	}

	return metrics, nil
}

var _ interfaces.SectionAnalyzer = (*ConsensusAnalyzer)(nil)
