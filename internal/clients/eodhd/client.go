// Package eodhd provides a client for the EODHD API
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/quantfold/vantage/internal/common"
	"github.com/quantfold/vantage/internal/interfaces"
	"github.com/quantfold/vantage/internal/models"
)

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
	DefaultNewsLimit = 10
)

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetDataSet fetches price history, fundamentals, analyst ratings and news
// for a ticker and assembles them into a DataSet. Individual feeds may be
// missing; the dataset is only an error when every feed came back empty.
func (c *Client) GetDataSet(ctx context.Context, ticker string, opts ...interfaces.DataSetOption) (*models.DataSet, error) {
	params := &interfaces.DataSetParams{
		NewsLimit: DefaultNewsLimit,
	}
	for _, opt := range opts {
		opt(params)
	}

	dataset := &models.DataSet{
		Ticker:      ticker,
		WindowStart: params.From,
		WindowEnd:   params.To,
		FetchedAt:   time.Now(),
	}

	if err := c.fillPriceHistory(ctx, dataset, params); err != nil {
		c.logger.Warn().Str("ticker", ticker).Err(err).Msg("Price history unavailable")
	}
	if err := c.fillFundamentals(ctx, dataset); err != nil {
		c.logger.Warn().Str("ticker", ticker).Err(err).Msg("Fundamentals unavailable")
	}
	if err := c.fillNews(ctx, dataset, params.NewsLimit); err != nil {
		c.logger.Warn().Str("ticker", ticker).Err(err).Msg("News unavailable")
	}

	if dataset.Empty() {
		return nil, fmt.Errorf("no data for ticker %s: %w", ticker, models.ErrDataUnavailable)
	}

	return dataset, nil
}

func (c *Client) fillPriceHistory(ctx context.Context, dataset *models.DataSet, params *interfaces.DataSetParams) error {
	urlParams := url.Values{}
	urlParams.Set("period", "d")
	urlParams.Set("order", "a") // ascending, oldest first

	if !params.From.IsZero() {
		urlParams.Set("from", params.From.Format("2006-01-02"))
	}
	if !params.To.IsZero() {
		urlParams.Set("to", params.To.Format("2006-01-02"))
	}

	path := fmt.Sprintf("/eod/%s", dataset.Ticker)

	var bars []eodBarResponse
	if err := c.get(ctx, path, urlParams, &bars); err != nil {
		return err
	}

	history := make([]models.PriceBar, 0, len(bars))
	for _, bar := range bars {
		date, err := time.Parse("2006-01-02", bar.Date)
		if err != nil {
			continue
		}
		history = append(history, models.PriceBar{
			Date:     date,
			Open:     bar.Open,
			High:     bar.High,
			Low:      bar.Low,
			Close:    bar.Close,
			AdjClose: bar.AdjustedClose,
			Volume:   bar.Volume,
		})
	}

	// The feed is requested ascending but the invariant is ours to keep
	sort.Slice(history, func(i, j int) bool { return history[i].Date.Before(history[j].Date) })
	dataset.PriceHistory = history
	return nil
}

func (c *Client) fillFundamentals(ctx context.Context, dataset *models.DataSet) error {
	path := fmt.Sprintf("/fundamentals/%s", dataset.Ticker)

	var resp fundamentalsResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return err
	}

	dataset.Name = resp.General.Name
	dataset.Sector = resp.General.Sector
	dataset.Industry = resp.General.Industry

	dataset.Fundamentals = map[string]models.Metric{
		"market_cap":          resp.Highlights.MarketCapitalization,
		"pe_ratio":            resp.Highlights.PERatio,
		"eps":                 resp.Highlights.EarningsShare,
		"dividend_yield":      resp.Highlights.DividendYield,
		"profit_margin":       resp.Highlights.ProfitMargin,
		"gross_margin":        resp.Highlights.GrossProfitTTM,
		"return_on_equity":    resp.Highlights.ReturnOnEquityTTM,
		"return_on_assets":    resp.Highlights.ReturnOnAssetsTTM,
		"revenue":             resp.Highlights.RevenueTTM,
		"revenue_growth":      resp.Highlights.QuarterlyRevenueGrowthYOY,
		"earnings_growth":     resp.Highlights.QuarterlyEarningsGrowthYOY,
		"operating_cash_flow": resp.Highlights.OperatingCashFlowTTM,
		"price_to_book":       resp.Valuation.PriceBookMRQ,
		"price_to_sales":      resp.Valuation.PriceSalesTTM,
		"forward_pe_ratio":    resp.Valuation.ForwardPE,
		"beta":                resp.Technicals.Beta,
		"week52_high":         resp.Technicals.WeekHigh52,
		"week52_low":          resp.Technicals.WeekLow52,
	}

	// Drop explicit unavailable entries so missing stays missing
	for k, v := range dataset.Fundamentals {
		if !v.Valid {
			delete(dataset.Fundamentals, k)
		}
	}

	if resp.AnalystRatings.total() > 0 {
		dataset.Ratings = &models.AnalystRatings{
			StrongBuy:  resp.AnalystRatings.StrongBuy,
			Buy:        resp.AnalystRatings.Buy,
			Hold:       resp.AnalystRatings.Hold,
			Sell:       resp.AnalystRatings.Sell,
			StrongSell: resp.AnalystRatings.StrongSell,
			TargetMean: resp.AnalystRatings.TargetPrice,
			TargetHigh: resp.Highlights.WallStreetTargetHigh,
			TargetLow:  resp.Highlights.WallStreetTargetLow,
		}
	}

	return nil
}

func (c *Client) fillNews(ctx context.Context, dataset *models.DataSet, limit int) error {
	params := url.Values{}
	params.Set("s", dataset.Ticker)
	params.Set("limit", strconv.Itoa(limit))

	var newsResp []newsResponse
	if err := c.get(ctx, "/news", params, &newsResp); err != nil {
		return err
	}

	news := make([]models.NewsItem, 0, len(newsResp))
	for _, item := range newsResp {
		publishedAt, _ := time.Parse("2006-01-02T15:04:05+00:00", item.Date)
		news = append(news, models.NewsItem{
			Headline:    item.Title,
			Summary:     item.Content,
			URL:         item.Link,
			Source:      item.Source,
			PublishedAt: publishedAt,
		})
	}

	dataset.News = news
	return nil
}

// eodBarResponse represents the API response for EOD data
type eodBarResponse struct {
	Date          string  `json:"date"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"`
	AdjustedClose float64 `json:"adjusted_close"`
	Volume        int64   `json:"volume"`
}

// fundamentalsResponse represents the API response structure. Numeric
// fields decode through models.Metric so "N/A" and null survive as
// explicitly unavailable values.
type fundamentalsResponse struct {
	General struct {
		Code     string `json:"Code"`
		Name     string `json:"Name"`
		Sector   string `json:"Sector"`
		Industry string `json:"Industry"`
	} `json:"General"`
	Highlights struct {
		MarketCapitalization       models.Metric `json:"MarketCapitalization"`
		PERatio                    models.Metric `json:"PERatio"`
		EarningsShare              models.Metric `json:"EarningsShare"`
		DividendYield              models.Metric `json:"DividendYield"`
		ProfitMargin               models.Metric `json:"ProfitMargin"`
		GrossProfitTTM             models.Metric `json:"GrossProfitTTM"`
		ReturnOnEquityTTM          models.Metric `json:"ReturnOnEquityTTM"`
		ReturnOnAssetsTTM          models.Metric `json:"ReturnOnAssetsTTM"`
		RevenueTTM                 models.Metric `json:"RevenueTTM"`
		QuarterlyRevenueGrowthYOY  models.Metric `json:"QuarterlyRevenueGrowthYOY"`
		QuarterlyEarningsGrowthYOY models.Metric `json:"QuarterlyEarningsGrowthYOY"`
		OperatingCashFlowTTM       models.Metric `json:"OperatingCashFlowTTM"`
		WallStreetTargetHigh       models.Metric `json:"WallStreetTargetHigh"`
		WallStreetTargetLow        models.Metric `json:"WallStreetTargetLow"`
	} `json:"Highlights"`
	Valuation struct {
		PriceBookMRQ  models.Metric `json:"PriceBookMRQ"`
		PriceSalesTTM models.Metric `json:"PriceSalesTTM"`
		ForwardPE     models.Metric `json:"ForwardPE"`
	} `json:"Valuation"`
	Technicals struct {
		Beta       models.Metric `json:"Beta"`
		WeekHigh52 models.Metric `json:"52WeekHigh"`
		WeekLow52  models.Metric `json:"52WeekLow"`
	} `json:"Technicals"`
	AnalystRatings analystRatingsResponse `json:"AnalystRatings"`
}

type analystRatingsResponse struct {
	Rating      models.Metric `json:"Rating"`
	TargetPrice models.Metric `json:"TargetPrice"`
	StrongBuy   int           `json:"StrongBuy"`
	Buy         int           `json:"Buy"`
	Hold        int           `json:"Hold"`
	Sell        int           `json:"Sell"`
	StrongSell  int           `json:"StrongSell"`
}

func (r analystRatingsResponse) total() int {
	return r.StrongBuy + r.Buy + r.Hold + r.Sell + r.StrongSell
}

type newsResponse struct {
	Date    string `json:"date"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Link    string `json:"link"`
	Source  string `json:"source"`
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
