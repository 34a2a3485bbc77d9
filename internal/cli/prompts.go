package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"

	"github.com/MmaoM0225/TradingAgents-M/internal/dataflows"
)

// PromptForTicker asks for the stock symbol to analyze.
func PromptForTicker() (string, error) {
	var ticker string
	prompt := &survey.Input{
		Message: "Enter the stock ticker symbol (e.g., AAPL, 700.HK):",
		Help:    "US symbols plain (AAPL), HK symbols with suffix (700.HK)",
	}

	err := survey.AskOne(prompt, &ticker, survey.WithValidator(func(val interface{}) error {
		return dataflows.ValidateSymbol(val.(string))
	}))
	if err != nil {
		return "", err
	}
	return dataflows.NormalizeSymbol(ticker), nil
}

// PromptForAnalysisDate asks for the trade date, defaulting to today.
func PromptForAnalysisDate() (time.Time, error) {
	var dateStr string
	prompt := &survey.Input{
		Message: "Enter the analysis date (YYYY-MM-DD):",
		Default: time.Now().Format("2006-01-02"),
	}

	err := survey.AskOne(prompt, &dateStr, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(val.(string))
		if str == "" {
			return nil
		}
		parsed, err := time.Parse("2006-01-02", str)
		if err != nil {
			return fmt.Errorf("invalid date format, use YYYY-MM-DD")
		}
		if parsed.After(time.Now().AddDate(0, 0, 1)) {
			return fmt.Errorf("analysis date cannot be in the future")
		}
		return nil
	}))
	if err != nil {
		return time.Time{}, err
	}

	if strings.TrimSpace(dateStr) == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", strings.TrimSpace(dateStr))
}
