package dataflows

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/MmaoM0225/TradingAgents-M/internal/config"
)

// FinnhubClient wraps the Finnhub REST API for news and insider data.
type FinnhubClient struct {
	client  *resty.Client
	cache   *CacheManager
	apiKey  string
	dataDir string
}

func NewFinnhubClient(cfg *config.Config) *FinnhubClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "finnhub")

	client := resty.New()
	client.SetBaseURL("https://finnhub.io/api/v1")
	client.SetTimeout(30 * time.Second)

	return &FinnhubClient{
		client:  client,
		cache:   NewCacheManager(cacheDir, 6*time.Hour, cfg.CacheEnabled),
		apiKey:  cfg.FinnhubAPIKey,
		dataDir: cfg.DataDir,
	}
}

type finnhubNews struct {
	DateTime int64  `json:"datetime"`
	Headline string `json:"headline"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

type finnhubInsiderSentimentResponse struct {
	Data []struct {
		Symbol string  `json:"symbol"`
		Year   int     `json:"year"`
		Month  int     `json:"month"`
		Change int64   `json:"change"`
		MSPR   float64 `json:"mspr"`
	} `json:"data"`
}

type finnhubInsiderTransactionsResponse struct {
	Data []struct {
		Name                 string  `json:"name"`
		Share                int64   `json:"share"`
		Change               int64   `json:"change"`
		FilingDate           string  `json:"filingDate"`
		TransactionDate      string  `json:"transactionDate"`
		TransactionCode      string  `json:"transactionCode"`
		TransactionPrice     float64 `json:"transactionPrice"`
	} `json:"data"`
}

// GetCompanyNews fetches articles about symbol in [from, to].
func (fc *FinnhubClient) GetCompanyNews(symbol string, from, to time.Time) ([]*NewsArticle, error) {
	if fc.apiKey == "" {
		return nil, fmt.Errorf("finnhub api key not configured")
	}
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	cacheKey := map[string]interface{}{
		"symbol": symbol,
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
	}
	var cached []*NewsArticle
	if fc.cache.Get("finnhub", "company_news", cacheKey, &cached) {
		return cached, nil
	}

	var raw []finnhubNews
	err := WithRetry(DefaultRetryConfig(), func() error {
		resp, err := fc.client.R().
			SetQueryParams(map[string]string{
				"symbol": symbol,
				"from":   from.Format("2006-01-02"),
				"to":     to.Format("2006-01-02"),
				"token":  fc.apiKey,
			}).
			SetResult(&raw).
			Get("/company-news")
		if err != nil {
			return fmt.Errorf("finnhub company news request: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("finnhub company news: status %d", resp.StatusCode())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	articles := make([]*NewsArticle, 0, len(raw))
	for _, n := range raw {
		articles = append(articles, &NewsArticle{
			Title:       n.Headline,
			Summary:     n.Summary,
			URL:         n.URL,
			Source:      n.Source,
			PublishedAt: time.Unix(n.DateTime, 0),
		})
	}
	sort.Slice(articles, func(i, j int) bool {
		return articles[i].PublishedAt.Before(articles[j].PublishedAt)
	})

	fc.cache.Set("finnhub", "company_news", cacheKey, articles)
	return articles, nil
}

// GetInsiderSentiment fetches monthly insider sentiment aggregates.
func (fc *FinnhubClient) GetInsiderSentiment(symbol string, from, to time.Time) ([]*InsiderSentiment, error) {
	if fc.apiKey == "" {
		return nil, fmt.Errorf("finnhub api key not configured")
	}
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	cacheKey := map[string]interface{}{
		"symbol": symbol,
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
	}
	var cached []*InsiderSentiment
	if fc.cache.Get("finnhub", "insider_sentiment", cacheKey, &cached) {
		return cached, nil
	}

	var raw finnhubInsiderSentimentResponse
	err := WithRetry(DefaultRetryConfig(), func() error {
		resp, err := fc.client.R().
			SetQueryParams(map[string]string{
				"symbol": symbol,
				"from":   from.Format("2006-01-02"),
				"to":     to.Format("2006-01-02"),
				"token":  fc.apiKey,
			}).
			SetResult(&raw).
			Get("/stock/insider-sentiment")
		if err != nil {
			return fmt.Errorf("finnhub insider sentiment request: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("finnhub insider sentiment: status %d", resp.StatusCode())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sentiments := make([]*InsiderSentiment, 0, len(raw.Data))
	for _, d := range raw.Data {
		sentiments = append(sentiments, &InsiderSentiment{
			Symbol: d.Symbol,
			Year:   d.Year,
			Month:  d.Month,
			Change: d.Change,
			MSPR:   decimal.NewFromFloat(d.MSPR),
		})
	}

	fc.cache.Set("finnhub", "insider_sentiment", cacheKey, sentiments)
	return sentiments, nil
}

// GetInsiderTransactions fetches individual insider filings.
func (fc *FinnhubClient) GetInsiderTransactions(symbol string, from, to time.Time) ([]*InsiderTransaction, error) {
	if fc.apiKey == "" {
		return nil, fmt.Errorf("finnhub api key not configured")
	}
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	cacheKey := map[string]interface{}{
		"symbol": symbol,
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
	}
	var cached []*InsiderTransaction
	if fc.cache.Get("finnhub", "insider_transactions", cacheKey, &cached) {
		return cached, nil
	}

	var raw finnhubInsiderTransactionsResponse
	err := WithRetry(DefaultRetryConfig(), func() error {
		resp, err := fc.client.R().
			SetQueryParams(map[string]string{
				"symbol": symbol,
				"from":   from.Format("2006-01-02"),
				"to":     to.Format("2006-01-02"),
				"token":  fc.apiKey,
			}).
			SetResult(&raw).
			Get("/stock/insider-transactions")
		if err != nil {
			return fmt.Errorf("finnhub insider transactions request: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("finnhub insider transactions: status %d", resp.StatusCode())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	transactions := make([]*InsiderTransaction, 0, len(raw.Data))
	for _, d := range raw.Data {
		transactions = append(transactions, &InsiderTransaction{
			Symbol:           symbol,
			PersonName:       d.Name,
			Share:            d.Share,
			Change:           d.Change,
			FilingDate:       d.FilingDate,
			TransactionDate:  d.TransactionDate,
			TransactionCode:  d.TransactionCode,
			TransactionPrice: decimal.NewFromFloat(d.TransactionPrice),
		})
	}

	fc.cache.Set("finnhub", "insider_transactions", cacheKey, transactions)
	return transactions, nil
}

// GetOfflineNews loads downloaded day-keyed news data from the local data
// directory, mirroring the offline file layout of the downloader.
func (fc *FinnhubClient) GetOfflineNews(symbol string, from, to time.Time) ([]*NewsArticle, error) {
	symbol = NormalizeSymbol(symbol)
	filePath := filepath.Join(fc.dataDir, "finnhub_data", "news_data", symbol+".json")

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("offline news not available for %s: %w", symbol, err)
	}

	// Day-keyed map: "2006-01-02" -> entries for that day.
	var byDay map[string][]finnhubNews
	if err := json.Unmarshal(data, &byDay); err != nil {
		return nil, fmt.Errorf("decode offline news for %s: %w", symbol, err)
	}

	var articles []*NewsArticle
	for day, entries := range byDay {
		d, err := time.Parse("2006-01-02", day)
		if err != nil || d.Before(from) || d.After(to) {
			continue
		}
		for _, n := range entries {
			articles = append(articles, &NewsArticle{
				Title:       n.Headline,
				Summary:     n.Summary,
				URL:         n.URL,
				Source:      n.Source,
				PublishedAt: d,
			})
		}
	}
	sort.Slice(articles, func(i, j int) bool {
		return articles[i].PublishedAt.Before(articles[j].PublishedAt)
	})
	return articles, nil
}

// FormatNewsReport renders articles in the markdown layout the analyst
// prompts expect.
func FormatNewsReport(symbol string, from, to time.Time, articles []*NewsArticle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s News, from %s to %s:\n\n", symbol, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if len(articles) == 0 {
		fmt.Fprintf(&b, "暂无 %s 公司在该期间的新闻数据。\n", symbol)
		return b.String()
	}
	for _, a := range articles {
		fmt.Fprintf(&b, "### %s (%s)\n%s\n\n", a.Title, a.PublishedAt.Format("2006-01-02"), a.Summary)
	}
	return b.String()
}
