package dataflows

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSymbol(t *testing.T) {
	for _, ok := range []string{"AAPL", "aapl", "700.HK", "BRK-B", " tsm "} {
		assert.NoError(t, ValidateSymbol(ok), ok)
	}
	for _, bad := range []string{"", "not a symbol", "超长超长超长", "TOOLONGSYMBOL"} {
		assert.Error(t, ValidateSymbol(bad), bad)
	}
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "AAPL", NormalizeSymbol(" aapl "))
	assert.Equal(t, "700.HK", NormalizeSymbol("700.hk"))
}

func TestWithRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	err := WithRetry(RetryConfig{MaxAttempts: 3, Backoff: time.Millisecond}, func() error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetryReturnsLastError(t *testing.T) {
	calls := 0
	err := WithRetry(RetryConfig{MaxAttempts: 3, Backoff: time.Millisecond}, func() error {
		calls++
		return errors.New("down")
	})
	assert.EqualError(t, err, "down")
	assert.Equal(t, 3, calls)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.json")
	in := candlesFromCloses(10, 11, 12)
	require.NoError(t, SaveDataToFile(path, in))

	var out []*MarketData
	require.NoError(t, LoadDataFromFile(path, &out))
	require.Len(t, out, 3)
	assert.True(t, in[2].Close.Equal(out[2].Close))
}

func TestCacheManagerRoundTrip(t *testing.T) {
	cm := NewCacheManager(t.TempDir(), time.Hour, true)
	params := map[string]string{"symbol": "AAPL"}

	var miss []string
	assert.False(t, cm.Get("yahoo", "quote", params, &miss))

	cm.Set("yahoo", "quote", params, []string{"a", "b"})

	var hit []string
	require.True(t, cm.Get("yahoo", "quote", params, &hit))
	assert.Equal(t, []string{"a", "b"}, hit)
}

func TestCacheManagerDisabled(t *testing.T) {
	cm := NewCacheManager(t.TempDir(), time.Hour, false)
	cm.Set("yahoo", "quote", "p", "value")

	var out string
	assert.False(t, cm.Get("yahoo", "quote", "p", &out))
}

func TestCacheManagerExpiry(t *testing.T) {
	cm := NewCacheManager(t.TempDir(), -time.Second, true)
	cm.Set("yahoo", "quote", "p", "value")

	var out string
	assert.False(t, cm.Get("yahoo", "quote", "p", &out), "expired entries must miss")
}
