// Package insight turns section metrics into AI-generated commentary
// and discrete signals via a model backend.
package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quantfold/vantage/internal/common"
	"github.com/quantfold/vantage/internal/interfaces"
	"github.com/quantfold/vantage/internal/models"
)

var (
	// ErrMalformedResponse means the backend answered but the answer could
	// not be used (empty text or no recognizable signal).
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrBackendUnavailable means the backend could not be reached or kept
	// failing after retries.
	ErrBackendUnavailable = errors.New("model backend unavailable")
)

const (
	// DefaultRetries is the number of additional attempts after the first
	// call fails with a transient error.
	DefaultRetries = 2

	// DefaultCallTimeout bounds a single backend call.
	DefaultCallTimeout = 45 * time.Second
)

// Service generates per-section insights and report summaries.
type Service struct {
	client  interfaces.ModelClient
	logger  *common.Logger
	retries int
	timeout time.Duration
}

// ServiceOption configures the service
type ServiceOption func(*Service)

// WithRetries sets the retry count for transient backend failures
func WithRetries(retries int) ServiceOption {
	return func(s *Service) {
		if retries >= 0 {
			s.retries = retries
		}
	}
}

// WithCallTimeout bounds each individual backend call
func WithCallTimeout(timeout time.Duration) ServiceOption {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates an insight service over a model client
func NewService(client interfaces.ModelClient, opts ...ServiceOption) *Service {
	s := &Service{
		client:  client,
		logger:  common.NewSilentLogger(),
		retries: DefaultRetries,
		timeout: DefaultCallTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Generate produces free-text insight and a signal for one section. The
// backend response must contain a recommendation token; a response
// without one is malformed, never silently mapped to a signal.
func (s *Service) Generate(ctx context.Context, kind models.SectionKind, metrics models.SectionMetrics) (string, models.Signal, error) {
	prompt := BuildSectionPrompt(kind, metrics)

	text, err := s.callWithRetry(ctx, prompt)
	if err != nil {
		return "", models.Hold, err
	}

	signal, ok := models.ParseSignal(text)
	if !ok {
		s.logger.Warn().
			Str("section", string(kind)).
			Str("model", s.client.ModelName()).
			Msg("Model response carried no recommendation")
		return "", models.Hold, fmt.Errorf("no recommendation in response for %s section: %w", kind, ErrMalformedResponse)
	}

	s.logger.Debug().
		Str("section", string(kind)).
		Str("signal", signal.String()).
		Msg("Section insight generated")

	return strings.TrimSpace(text), signal, nil
}

// Summarize synthesizes the overall report summary from section results.
func (s *Service) Summarize(ctx context.Context, ticker string, results []models.SectionResult, overall models.Signal) (string, error) {
	prompt := BuildSummaryPrompt(ticker, results, overall)

	text, err := s.callWithRetry(ctx, prompt)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(text), nil
}

// callWithRetry executes one prompt with per-call timeout and retries.
// Context cancellation propagates raw so callers can detect it with
// errors.Is; everything else is classified into the service sentinels.
func (s *Service) callWithRetry(ctx context.Context, prompt string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("no model client configured: %w", ErrBackendUnavailable)
	}

	var lastErr error

	for attempt := 0; attempt <= s.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		text, err := s.client.GenerateContent(callCtx, prompt)
		cancel()

		if err == nil {
			if strings.TrimSpace(text) == "" {
				return "", fmt.Errorf("empty response: %w", ErrMalformedResponse)
			}
			return text, nil
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		lastErr = err
		s.logger.Warn().
			Int("attempt", attempt+1).
			Int("max_attempts", s.retries+1).
			Err(err).
			Msg("Model call failed")
	}

	return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, lastErr)
}

// BuildSectionPrompt renders a deterministic prompt for one section.
// Metric names are emitted in lexical order so identical metrics always
// produce an identical prompt.
func BuildSectionPrompt(kind models.SectionKind, metrics models.SectionMetrics) string {
	var sb strings.Builder

	sb.WriteString("You are an equity research analyst. Analyze the following ")
	sb.WriteString(strings.ToLower(kind.Title()))
	sb.WriteString(" data and write a concise assessment (2-4 sentences).\n\n")

	sb.WriteString("Metrics:\n")
	for _, key := range metrics.SortedKeys() {
		sb.WriteString("- ")
		sb.WriteString(key)
		sb.WriteString(": ")
		sb.WriteString(metrics.Values[key].String())
		sb.WriteString("\n")
	}

	if len(metrics.Notes) > 0 {
		sb.WriteString("\nContext:\n")
		for _, note := range metrics.Notes {
			sb.WriteString("- ")
			sb.WriteString(note)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\nEnd with exactly one recommendation from: Strong Buy, Buy, Hold, Sell, Strong Sell.")
	return sb.String()
}

// BuildSummaryPrompt renders a deterministic prompt for the overall
// report summary.
func BuildSummaryPrompt(ticker string, results []models.SectionResult, overall models.Signal) string {
	var sb strings.Builder

	sb.WriteString("You are an equity research analyst preparing the executive summary for ")
	sb.WriteString(ticker)
	sb.WriteString(".\n\nSection findings:\n")

	for _, r := range results {
		sb.WriteString("## ")
		sb.WriteString(r.Kind.Title())
		sb.WriteString(" (")
		sb.WriteString(r.Signal.String())
		sb.WriteString(")\n")
		if r.Status == models.StatusOk {
			sb.WriteString(r.Insight)
		} else {
			sb.WriteString("No analysis available for this section.")
		}
		sb.WriteString("\n\n")
	}

	sb.WriteString("Overall signal: ")
	sb.WriteString(overall.String())
	sb.WriteString("\n\nWrite a 3-5 sentence executive summary consistent with the overall signal. Do not invent data beyond the findings above.")
	return sb.String()
}

// Ensure Service implements InsightGenerator
var _ interfaces.InsightGenerator = (*Service)(nil)
