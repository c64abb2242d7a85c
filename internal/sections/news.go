package sections

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quantfold/vantage/internal/interfaces"
	"github.com/quantfold/vantage/internal/models"
)

// NewsAnalyzer produces a bounded digest of the most recent news items.
// The only numeric metric is the item count.
type NewsAnalyzer struct {
	maxItems int
}

// NewNewsAnalyzer creates a news section analyzer with a digest cap
func NewNewsAnalyzer(maxItems int) *NewsAnalyzer {
	if maxItems <= 0 {
		maxItems = DefaultNewsDigest
	}
	return &NewsAnalyzer{maxItems: maxItems}
}

func (a *NewsAnalyzer) Kind() models.SectionKind {
	return models.SectionNews
}

func (a *NewsAnalyzer) Analyze(dataset *models.DataSet) (models.SectionMetrics, error) {
	metrics := models.NewSectionMetrics(a.Kind())

	if dataset == nil || len(dataset.News) == 0 {
		return metrics, fmt.Errorf("no news for %s: %w",
			tickerOf(dataset), models.ErrSectionDataMissing)
	}

	// Most recent first; the input order is not guaranteed for news
	items := make([]models.NewsItem, len(dataset.News))
	copy(items, dataset.News)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})

	if len(items) > a.maxItems {
		items = items[:a.maxItems]
	}

	metrics.Values["news_count"] = models.Num(float64(len(dataset.News)))
	metrics.Values["digest_count"] = models.Num(float64(len(items)))

	for _, item := range items {
		metrics.Notes = append(metrics.Notes, formatNewsLine(item))
	}

	return metrics, nil
}

func formatNewsLine(item models.NewsItem) string {
	var sb strings.Builder
	sb.WriteString(item.PublishedAt.Format("2006-01-02"))
	sb.WriteString(": ")
	sb.WriteString(item.Headline)
	if item.Source != "" {
		sb.WriteString(" (")
		sb.WriteString(item.Source)
		sb.WriteString(")")
	}
	if item.Summary != "" {
		sb.WriteString(" - ")
		sb.WriteString(item.Summary)
	}
	return sb.String()
}

var _ interfaces.SectionAnalyzer = (*NewsAnalyzer)(nil)
