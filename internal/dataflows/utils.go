package dataflows

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9.\-]{1,12}$`)

// ValidateSymbol rejects obviously malformed ticker symbols before they reach
// an upstream API.
func ValidateSymbol(symbol string) error {
	s := strings.TrimSpace(strings.ToUpper(symbol))
	if s == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if !symbolPattern.MatchString(s) {
		return fmt.Errorf("invalid symbol %q", symbol)
	}
	return nil
}

func NormalizeSymbol(symbol string) string {
	return strings.TrimSpace(strings.ToUpper(symbol))
}

// RetryConfig controls WithRetry behavior.
type RetryConfig struct {
	MaxAttempts int
	Backoff     time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, Backoff: 500 * time.Millisecond}
}

// WithRetry runs fn up to MaxAttempts times with linear backoff, returning
// the last error if all attempts fail.
func WithRetry(cfg RetryConfig, fn func() error) error {
	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt < cfg.MaxAttempts {
			time.Sleep(time.Duration(attempt) * cfg.Backoff)
		}
	}
	return err
}

// LoadDataFromFile reads a JSON artifact saved by a previous download.
func LoadDataFromFile(path string, result interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, result)
}

// SaveDataToFile writes a JSON artifact for later offline use.
func SaveDataToFile(path string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func FormatDateRange(start, end time.Time) string {
	return fmt.Sprintf("%s ~ %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
}
