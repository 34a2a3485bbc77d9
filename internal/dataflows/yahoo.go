package dataflows

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"

	"github.com/MmaoM0225/TradingAgents-M/internal/config"
)

// YahooFinanceClient fetches quotes and daily candles from Yahoo Finance.
type YahooFinanceClient struct {
	cache   *CacheManager
	dataDir string
}

func NewYahooFinanceClient(cfg *config.Config) *YahooFinanceClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "yahoo_finance")
	return &YahooFinanceClient{
		cache:   NewCacheManager(cacheDir, 24*time.Hour, cfg.CacheEnabled),
		dataDir: cfg.DataDir,
	}
}

// GetQuote gets the latest quote for a symbol.
func (yf *YahooFinanceClient) GetQuote(symbol string) (*MarketData, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	var cached MarketData
	if yf.cache.Get("yahoo", "quote", symbol, &cached) {
		return &cached, nil
	}

	var result *MarketData
	err := WithRetry(DefaultRetryConfig(), func() error {
		q, err := quote.Get(symbol)
		if err != nil {
			return fmt.Errorf("failed to get quote for %s: %w", symbol, err)
		}
		result = &MarketData{
			Symbol:   symbol,
			Date:     time.Now(),
			Open:     decimal.NewFromFloat(q.RegularMarketOpen),
			High:     decimal.NewFromFloat(q.RegularMarketDayHigh),
			Low:      decimal.NewFromFloat(q.RegularMarketDayLow),
			Close:    decimal.NewFromFloat(q.RegularMarketPrice),
			AdjClose: decimal.NewFromFloat(q.RegularMarketPrice),
			Volume:   int64(q.RegularMarketVolume),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	yf.cache.Set("yahoo", "quote", symbol, result)
	return result, nil
}

// GetHistoricalData gets daily candles in [start, end].
func (yf *YahooFinanceClient) GetHistoricalData(symbol string, start, end time.Time) ([]*MarketData, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	cacheKey := map[string]interface{}{
		"symbol": symbol,
		"start":  start.Format("2006-01-02"),
		"end":    end.Format("2006-01-02"),
	}
	var cached []*MarketData
	if yf.cache.Get("yahoo", "historical", cacheKey, &cached) {
		return cached, nil
	}

	var result []*MarketData
	err := WithRetry(DefaultRetryConfig(), func() error {
		params := &chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.OneDay,
		}
		iter := chart.Get(params)

		result = make([]*MarketData, 0)
		for iter.Next() {
			bar := iter.Bar()
			result = append(result, &MarketData{
				Symbol:   symbol,
				Date:     time.Unix(int64(bar.Timestamp), 0),
				Open:     bar.Open,
				High:     bar.High,
				Low:      bar.Low,
				Close:    bar.Close,
				AdjClose: bar.AdjClose,
				Volume:   int64(bar.Volume),
			})
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to get historical data for %s: %w", symbol, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	yf.cache.Set("yahoo", "historical", cacheKey, result)
	return result, nil
}

// GetOfflineData loads candles from a previously downloaded file.
func (yf *YahooFinanceClient) GetOfflineData(symbol string, start, end time.Time) ([]*MarketData, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	filePath := filepath.Join(yf.dataDir, "market_data", "price_data",
		fmt.Sprintf("%s_%s_%s.json", symbol, start.Format("2006-01-02"), end.Format("2006-01-02")))

	var result []*MarketData
	if err := LoadDataFromFile(filePath, &result); err != nil {
		return nil, fmt.Errorf("offline data not available for %s (%s): %w",
			symbol, FormatDateRange(start, end), err)
	}
	return result, nil
}

// FormatCandlesCSV renders candles in the CSV layout the analyst prompts
// expect for indicator work.
func FormatCandlesCSV(symbol string, candles []*MarketData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s daily price data (%d bars)\n", symbol, len(candles))
	b.WriteString("Date,Open,High,Low,Close,AdjClose,Volume\n")
	for _, c := range candles {
		fmt.Fprintf(&b, "%s,%s,%s,%s,%s,%s,%d\n",
			c.Date.Format("2006-01-02"),
			c.Open.StringFixed(2), c.High.StringFixed(2), c.Low.StringFixed(2),
			c.Close.StringFixed(2), c.AdjClose.StringFixed(2), c.Volume)
	}
	return b.String()
}
