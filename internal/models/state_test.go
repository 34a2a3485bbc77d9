package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewTradingState(t *testing.T) {
	state := NewTradingState("AAPL", time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC))

	assert.Equal(t, "AAPL", state.CompanyOfInterest)
	assert.Equal(t, "2026-03-02", state.TradeDate)
	assert.NotNil(t, state.InvestmentDebateState)
	assert.NotNil(t, state.RiskDebateState)
	for _, kind := range ReportKinds {
		_, ok := state.Reports[kind]
		assert.True(t, ok, "report slot %s must exist", kind)
	}
}

func TestSituationJoinsReportsInOrder(t *testing.T) {
	state := NewTradingState("AAPL", time.Now())
	state.Reports[ReportMarket] = "M"
	state.Reports[ReportSentiment] = "S"
	state.Reports[ReportNews] = "N"
	state.Reports[ReportFundamentals] = "F"

	assert.Equal(t, "M\n\nS\n\nN\n\nF", state.Situation())
}

func TestActionValid(t *testing.T) {
	assert.True(t, ActionBuy.Valid())
	assert.True(t, ActionSell.Valid())
	assert.True(t, ActionHold.Valid())
	assert.False(t, Action("LONG").Valid())
	assert.False(t, Action("").Valid())
}
