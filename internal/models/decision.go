package models

import "time"

// Action is the canonical trade signal extracted from the free-text final
// decision.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Valid reports whether a is one of the three closed labels.
func (a Action) Valid() bool {
	switch a {
	case ActionBuy, ActionSell, ActionHold:
		return true
	}
	return false
}

// TradingDecision is the run's final artifact.
type TradingDecision struct {
	Symbol    string    `json:"symbol"`
	TradeDate string    `json:"trade_date"`
	Action    Action    `json:"action"`
	Rationale string    `json:"rationale"`
	CreatedAt time.Time `json:"created_at"`
}
