// Package models defines data structures for Vantage
package models

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
)

func init() {
	gob.Register(ReportDocument{})
	gob.Register(SectionResult{})
}

// SectionKind identifies one analytical dimension of a report.
type SectionKind string

const (
	SectionFinancial SectionKind = "financial"
	SectionMarket    SectionKind = "market"
	SectionIndustry  SectionKind = "industry_sector"
	SectionConsensus SectionKind = "analyst_consensus"
	SectionNews      SectionKind = "news"
)

// SectionOrder returns the canonical document order of sections.
func SectionOrder() []SectionKind {
	return []SectionKind{
		SectionFinancial,
		SectionMarket,
		SectionIndustry,
		SectionConsensus,
		SectionNews,
	}
}

// Title returns the display title for a section.
func (k SectionKind) Title() string {
	switch k {
	case SectionFinancial:
		return "Financial Performance"
	case SectionMarket:
		return "Market Performance"
	case SectionIndustry:
		return "Industry & Sector"
	case SectionConsensus:
		return "Analyst Recommendations"
	case SectionNews:
		return "Recent News"
	default:
		return string(k)
	}
}

// Signal is a discrete recommendation on a five-point bullish-bearish scale.
type Signal int

const (
	StrongSell Signal = iota - 2
	Sell
	Hold
	Buy
	StrongBuy
)

func (s Signal) String() string {
	switch s {
	case StrongBuy:
		return "Strong Buy"
	case Buy:
		return "Buy"
	case Hold:
		return "Hold"
	case Sell:
		return "Sell"
	case StrongSell:
		return "Strong Sell"
	default:
		return fmt.Sprintf("Signal(%d)", int(s))
	}
}

// MarshalJSON emits the signal as its display string.
func (s Signal) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses a signal from its display string.
func (s *Signal) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	sig, ok := ParseSignal(str)
	if !ok {
		return fmt.Errorf("invalid signal %q", str)
	}
	*s = sig
	return nil
}

// signalTokens maps normalized recommendation phrases to signals.
// Two-word phrases come first so "strong buy" never parses as "buy".
var signalTokens = []struct {
	phrase string
	signal Signal
}{
	{"strong buy", StrongBuy},
	{"strong sell", StrongSell},
	{"buy", Buy},
	{"sell", Sell},
	{"hold", Hold},
}

// ParseSignal scans text for a recommendation token. Matching is
// case-insensitive and tolerant of surrounding prose; underscores and
// hyphens are treated as spaces. When several tokens appear, the earliest
// occurrence wins, with longer phrases taking precedence at the same
// position. Returns false when no token is found.
func ParseSignal(text string) (Signal, bool) {
	norm := normalizeSignalText(text)

	best := -1
	var found Signal
	for _, tok := range signalTokens {
		idx := indexWord(norm, tok.phrase)
		if idx >= 0 && (best < 0 || idx < best) {
			best = idx
			found = tok.signal
		}
	}
	if best < 0 {
		return Hold, false
	}
	return found, true
}

func normalizeSignalText(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r == '_' || r == '-':
			sb.WriteRune(' ')
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ':
			sb.WriteRune(r)
		default:
			sb.WriteRune(' ')
		}
	}
	return sb.String()
}

// indexWord finds phrase in s at a word boundary.
func indexWord(s, phrase string) int {
	offset := 0
	for {
		idx := strings.Index(s[offset:], phrase)
		if idx < 0 {
			return -1
		}
		abs := offset + idx
		end := abs + len(phrase)
		leftOK := abs == 0 || s[abs-1] == ' '
		rightOK := end == len(s) || s[end] == ' '
		if leftOK && rightOK {
			return abs
		}
		offset = abs + 1
	}
}

// MajoritySignal aggregates section signals by majority vote. The unique
// mode wins; any tie resolves to Hold. Deterministic and order-independent.
func MajoritySignal(signals []Signal) Signal {
	if len(signals) == 0 {
		return Hold
	}

	counts := make(map[Signal]int, 5)
	for _, s := range signals {
		counts[s]++
	}

	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}

	var winners []Signal
	for s, n := range counts {
		if n == max {
			winners = append(winners, s)
		}
	}
	if len(winners) == 1 {
		return winners[0]
	}
	return Hold
}

// SectionStatus records how a section's pipeline completed.
type SectionStatus string

const (
	StatusOk       SectionStatus = "ok"
	StatusDegraded SectionStatus = "degraded" // analysis succeeded, AI insight failed
	StatusFailed   SectionStatus = "failed"   // section data entirely absent
)

// SectionMetrics holds derived metrics for one section. Values carries
// numeric metrics (unavailable values stay explicit); Notes carries
// free-text lines such as news digest entries. Immutable once produced.
type SectionMetrics struct {
	Kind   SectionKind       `json:"kind"`
	Values map[string]Metric `json:"values,omitempty"`
	Notes  []string          `json:"notes,omitempty"`
}

// NewSectionMetrics creates an empty metrics set for a section.
func NewSectionMetrics(kind SectionKind) SectionMetrics {
	return SectionMetrics{Kind: kind, Values: make(map[string]Metric)}
}

// SortedKeys returns metric names in lexical order, for deterministic
// prompt construction and rendering.
func (m SectionMetrics) SortedKeys() []string {
	keys := make([]string, 0, len(m.Values))
	for k := range m.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SectionResult is the finalized outcome of one section's pipeline.
// Created once per run and immutable afterwards.
type SectionResult struct {
	Kind    SectionKind    `json:"kind"`
	Metrics SectionMetrics `json:"metrics"`
	Insight string         `json:"insight"`
	Signal  Signal         `json:"signal"`
	Status  SectionStatus  `json:"status"`
	Reason  string         `json:"reason,omitempty"`
}

// ReportDocument is the finalized structured report for one ticker.
// Sections always holds exactly one entry per SectionKind in canonical
// order, whatever each section's status.
type ReportDocument struct {
	ID             string          `json:"id"`
	Ticker         string          `json:"ticker" badgerhold:"key"`
	Name           string          `json:"name,omitempty"`
	GeneratedAt    time.Time       `json:"generated_at" badgerhold:"index"`
	WindowStart    time.Time       `json:"window_start,omitempty"`
	WindowEnd      time.Time       `json:"window_end,omitempty"`
	Sections       []SectionResult `json:"sections"`
	OverallSignal  Signal          `json:"overall_signal"`
	OverallSummary string          `json:"overall_summary"`
}

// Section returns the result for the given kind, or nil.
func (d *ReportDocument) Section(kind SectionKind) *SectionResult {
	for i := range d.Sections {
		if d.Sections[i].Kind == kind {
			return &d.Sections[i]
		}
	}
	return nil
}

// DegradedSections returns the kinds of sections that did not complete Ok.
func (d *ReportDocument) DegradedSections() []SectionKind {
	var kinds []SectionKind
	for _, s := range d.Sections {
		if s.Status != StatusOk {
			kinds = append(kinds, s.Kind)
		}
	}
	return kinds
}
