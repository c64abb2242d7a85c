package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/vantage/internal/models"
)

// stubModel is a scriptable ModelClient for tests.
type stubModel struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (m *stubModel) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	i := m.calls
	m.calls++
	m.prompts = append(m.prompts, prompt)
	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return "", fmt.Errorf("unscripted call %d", i)
}

func (m *stubModel) ModelName() string { return "stub-model" }

func sampleMetrics() models.SectionMetrics {
	metrics := models.NewSectionMetrics(models.SectionFinancial)
	metrics.Values["revenue"] = models.Num(391_035_000_000)
	metrics.Values["pe_ratio"] = models.Num(31.2)
	metrics.Values["dividend_yield"] = models.Unavailable()
	return metrics
}

func TestGenerate(t *testing.T) {
	model := &stubModel{responses: []string{
		"Revenue growth is robust with healthy margins. Recommendation: Buy",
	}}
	svc := NewService(model)

	insight, signal, err := svc.Generate(context.Background(), models.SectionFinancial, sampleMetrics())
	require.NoError(t, err)
	assert.Equal(t, models.Buy, signal)
	assert.Contains(t, insight, "Revenue growth")
	assert.Equal(t, 1, model.calls)
}

func TestGenerateStrongSignal(t *testing.T) {
	model := &stubModel{responses: []string{"Exceptional quarter on all fronts. Strong Buy."}}
	svc := NewService(model)

	_, signal, err := svc.Generate(context.Background(), models.SectionMarket, sampleMetrics())
	require.NoError(t, err)
	assert.Equal(t, models.StrongBuy, signal)
}

func TestGenerateNoRecommendation(t *testing.T) {
	model := &stubModel{responses: []string{"The metrics are mixed and hard to interpret."}}
	svc := NewService(model)

	_, _, err := svc.Generate(context.Background(), models.SectionFinancial, sampleMetrics())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func TestGenerateEmptyResponse(t *testing.T) {
	model := &stubModel{responses: []string{"   \n"}}
	svc := NewService(model)

	_, _, err := svc.Generate(context.Background(), models.SectionNews, sampleMetrics())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func TestGenerateRetriesTransientFailure(t *testing.T) {
	model := &stubModel{
		errs:      []error{errors.New("503 service unavailable"), nil},
		responses: []string{"", "Steady performance. Hold."},
	}
	svc := NewService(model, WithRetries(2))

	_, signal, err := svc.Generate(context.Background(), models.SectionConsensus, sampleMetrics())
	require.NoError(t, err)
	assert.Equal(t, models.Hold, signal)
	assert.Equal(t, 2, model.calls)
}

func TestGenerateBackendExhausted(t *testing.T) {
	model := &stubModel{errs: []error{
		errors.New("connection refused"),
		errors.New("connection refused"),
		errors.New("connection refused"),
	}}
	svc := NewService(model, WithRetries(2))

	_, _, err := svc.Generate(context.Background(), models.SectionFinancial, sampleMetrics())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackendUnavailable))
	assert.Equal(t, 3, model.calls)
}

func TestGenerateCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	model := &stubModel{responses: []string{"Buy"}}
	svc := NewService(model)

	_, _, err := svc.Generate(ctx, models.SectionFinancial, sampleMetrics())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, ErrBackendUnavailable))
}

func TestBuildSectionPromptDeterministic(t *testing.T) {
	metrics := sampleMetrics()
	first := BuildSectionPrompt(models.SectionFinancial, metrics)
	second := BuildSectionPrompt(models.SectionFinancial, metrics)
	assert.Equal(t, first, second)

	// Metric keys appear in lexical order regardless of map iteration
	assert.Less(t, strings.Index(first, "dividend_yield"), strings.Index(first, "pe_ratio"))
	assert.Less(t, strings.Index(first, "pe_ratio"), strings.Index(first, "revenue"))
	assert.Contains(t, first, "dividend_yield: N/A")
	assert.Contains(t, first, "Strong Buy, Buy, Hold, Sell, Strong Sell")
}

func TestSummarize(t *testing.T) {
	model := &stubModel{responses: []string{"A balanced quarter with upside in services."}}
	svc := NewService(model)

	results := []models.SectionResult{
		{Kind: models.SectionFinancial, Signal: models.Buy, Status: models.StatusOk, Insight: "Margins expanding."},
		{Kind: models.SectionNews, Signal: models.Hold, Status: models.StatusDegraded},
	}

	summary, err := svc.Summarize(context.Background(), "AAPL", results, models.Buy)
	require.NoError(t, err)
	assert.Equal(t, "A balanced quarter with upside in services.", summary)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "AAPL")
	assert.Contains(t, model.prompts[0], "Margins expanding.")
	assert.Contains(t, model.prompts[0], "No analysis available for this section.")
	assert.Contains(t, model.prompts[0], "Overall signal: Buy")
}
