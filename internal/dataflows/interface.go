// Package dataflows turns external market, news and fundamentals sources
// into the text artifacts the analyst tools hand to the model.
package dataflows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MmaoM0225/TradingAgents-M/internal/config"
	"github.com/MmaoM0225/TradingAgents-M/internal/logx"
)

// DataFlows bundles every data client behind (ticker, date, lookback)
// report methods. Each method returns markdown text; a failure is returned
// as an error and the caller substitutes a placeholder, never aborting the
// run.
type DataFlows struct {
	cfg      *config.Config
	yahoo    *YahooFinanceClient
	finnhub  *FinnhubClient
	news     *GoogleNewsClient
	longport *LongportClient
}

func New(cfg *config.Config) *DataFlows {
	df := &DataFlows{
		cfg:     cfg,
		yahoo:   NewYahooFinanceClient(cfg),
		finnhub: NewFinnhubClient(cfg),
		news:    NewGoogleNewsClient(cfg),
	}
	// Longport is optional; without credentials Yahoo serves everything.
	if lp, err := NewLongportClient(cfg); err == nil {
		df.longport = lp
	} else {
		logx.Debug().Err(err).Msg("longport client unavailable")
	}
	return df
}

func lookbackWindow(currDate string, lookBackDays int) (time.Time, time.Time, error) {
	end, err := time.Parse("2006-01-02", currDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: %w", currDate, err)
	}
	if lookBackDays <= 0 {
		lookBackDays = 30
	}
	return end.AddDate(0, 0, -lookBackDays), end, nil
}

// MarketDataCSV returns daily candles as CSV for the window ending at
// currDate. Longport serves suffixed symbols (e.g. 700.HK) when configured.
func (df *DataFlows) MarketDataCSV(ctx context.Context, symbol, currDate string, lookBackDays int) (string, error) {
	start, end, err := lookbackWindow(currDate, lookBackDays)
	if err != nil {
		return "", err
	}

	var candles []*MarketData
	if !df.cfg.OnlineTools {
		candles, err = df.yahoo.GetOfflineData(symbol, start, end)
	} else if df.longport != nil && strings.Contains(symbol, ".") {
		candles, err = df.longport.GetDailyCandles(ctx, symbol, lookBackDays)
	} else {
		candles, err = df.yahoo.GetHistoricalData(symbol, start, end)
	}
	if err != nil {
		return "", err
	}
	return FormatCandlesCSV(NormalizeSymbol(symbol), candles), nil
}

// IndicatorsReport computes the named technical indicators over a window
// wide enough for the slowest one.
func (df *DataFlows) IndicatorsReport(ctx context.Context, symbol, currDate string, indicators []string) (string, error) {
	// 300 calendar days covers the 200 SMA with margin.
	start, end, err := lookbackWindow(currDate, 300)
	if err != nil {
		return "", err
	}

	var candles []*MarketData
	if df.cfg.OnlineTools {
		candles, err = df.yahoo.GetHistoricalData(symbol, start, end)
	} else {
		candles, err = df.yahoo.GetOfflineData(symbol, start, end)
	}
	if err != nil {
		return "", err
	}
	if len(indicators) == 0 {
		indicators = []string{"close_50_sma", "close_10_ema", "macd", "rsi", "boll", "atr"}
	}
	return IndicatorReport(NormalizeSymbol(symbol), candles, indicators), nil
}

// CompanyNewsReport returns company news from Finnhub (online) or the local
// download directory (offline).
func (df *DataFlows) CompanyNewsReport(symbol, currDate string, lookBackDays int) (string, error) {
	start, end, err := lookbackWindow(currDate, lookBackDays)
	if err != nil {
		return "", err
	}

	var articles []*NewsArticle
	if df.cfg.OnlineTools {
		articles, err = df.finnhub.GetCompanyNews(symbol, start, end)
	} else {
		articles, err = df.finnhub.GetOfflineNews(symbol, start, end)
	}
	if err != nil {
		return "", err
	}
	return FormatNewsReport(NormalizeSymbol(symbol), start, end, articles), nil
}

// GlobalNewsReport searches Google News for macro coverage.
func (df *DataFlows) GlobalNewsReport(query, currDate string, lookBackDays int) (string, error) {
	if _, _, err := lookbackWindow(currDate, lookBackDays); err != nil {
		return "", err
	}
	articles, err := df.news.Search(GoogleNewsParams{
		Query:    query,
		DaysBack: lookBackDays,
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Google News: %q (last %d days)\n\n", query, lookBackDays)
	if len(articles) == 0 {
		b.WriteString("No matching articles found.\n")
	}
	for _, a := range articles {
		fmt.Fprintf(&b, "### %s (%s, %s)\n%s\n\n", a.Title, a.Source, a.PublishedAt.Format("2006-01-02"), a.Summary)
	}
	return b.String(), nil
}

// SocialSentimentReport searches discussion-heavy sources for retail
// sentiment around the ticker.
func (df *DataFlows) SocialSentimentReport(symbol, currDate string, lookBackDays int) (string, error) {
	query := fmt.Sprintf("%s stock (site:reddit.com OR site:stocktwits.com)", NormalizeSymbol(symbol))
	report, err := df.GlobalNewsReport(query, currDate, lookBackDays)
	if err != nil {
		return "", err
	}
	return "## Social sentiment scan\n\n" + report, nil
}

// InsiderSentimentReport returns Finnhub monthly insider sentiment.
func (df *DataFlows) InsiderSentimentReport(symbol, currDate string, lookBackDays int) (string, error) {
	start, end, err := lookbackWindow(currDate, lookBackDays)
	if err != nil {
		return "", err
	}
	sentiments, err := df.finnhub.GetInsiderSentiment(symbol, start, end)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s insider sentiment, %s:\n\n", NormalizeSymbol(symbol), FormatDateRange(start, end))
	if len(sentiments) == 0 {
		b.WriteString("No insider sentiment data in this window.\n")
	}
	for _, s := range sentiments {
		fmt.Fprintf(&b, "- %04d-%02d: net change %d shares, MSPR %s\n", s.Year, s.Month, s.Change, s.MSPR.StringFixed(2))
	}
	return b.String(), nil
}

// InsiderTransactionsReport returns individual insider filings.
func (df *DataFlows) InsiderTransactionsReport(symbol, currDate string, lookBackDays int) (string, error) {
	start, end, err := lookbackWindow(currDate, lookBackDays)
	if err != nil {
		return "", err
	}
	transactions, err := df.finnhub.GetInsiderTransactions(symbol, start, end)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s insider transactions, %s:\n\n", NormalizeSymbol(symbol), FormatDateRange(start, end))
	if len(transactions) == 0 {
		b.WriteString("No insider transactions in this window.\n")
	}
	for _, t := range transactions {
		fmt.Fprintf(&b, "- %s: %s %s %d shares @ %s (filed %s)\n",
			t.TransactionDate, t.PersonName, t.TransactionCode, t.Change, t.TransactionPrice.StringFixed(2), t.FilingDate)
	}
	return b.String(), nil
}
