package models

import (
	"time"

	"github.com/cloudwego/eino/schema"
)

// ReportKind names one of the four analyst report fields. Each is written
// exactly once, by exactly one analyst node.
type ReportKind string

const (
	ReportMarket       ReportKind = "market"
	ReportSentiment    ReportKind = "sentiment"
	ReportNews         ReportKind = "news"
	ReportFundamentals ReportKind = "fundamentals"
)

// ReportKinds lists every analyst report slot in dispatch order.
var ReportKinds = []ReportKind{ReportMarket, ReportSentiment, ReportNews, ReportFundamentals}

// InvestDebateState tracks the bull/bear exchange. Count increments once per
// turn, not per full round; the debate is terminal when
// Count >= 2*MaxDebateRounds.
type InvestDebateState struct {
	BullHistory     string `json:"bull_history"`
	BearHistory     string `json:"bear_history"`
	History         string `json:"history"`
	CurrentResponse string `json:"current_response"`
	JudgeDecision   string `json:"judge_decision"`
	Count           int    `json:"count"`
}

// RiskDebateState tracks the three-way risk discussion. LatestSpeaker drives
// the fixed aggressive -> conservative -> neutral rotation.
type RiskDebateState struct {
	RiskyHistory           string `json:"risky_history"`
	SafeHistory            string `json:"safe_history"`
	NeutralHistory         string `json:"neutral_history"`
	History                string `json:"history"`
	CurrentRiskyResponse   string `json:"current_risky_response"`
	CurrentSafeResponse    string `json:"current_safe_response"`
	CurrentNeutralResponse string `json:"current_neutral_response"`
	JudgeDecision          string `json:"judge_decision"`
	LatestSpeaker          string `json:"latest_speaker"`
	Count                  int    `json:"count"`
}

// TradingState is the single shared record threaded through every stage of a
// run. It is owned by the stage sequencer; nodes receive it read-only and
// return patches that the sequencer merges.
type TradingState struct {
	CompanyOfInterest string `json:"company_of_interest"`
	TradeDate         string `json:"trade_date"`

	// Conversation accumulates every model turn and tool result, append-only.
	Messages []*schema.Message `json:"messages"`

	Reports map[ReportKind]string `json:"reports"`

	InvestmentDebateState *InvestDebateState `json:"investment_debate_state"`
	RiskDebateState       *RiskDebateState   `json:"risk_debate_state"`

	InvestmentPlan       string `json:"investment_plan"`
	TraderInvestmentPlan string `json:"trader_investment_plan"`
	FinalTradeDecision   string `json:"final_trade_decision"`

	Decision *TradingDecision `json:"decision"`
}

func NewTradingState(symbol string, date time.Time) *TradingState {
	return &TradingState{
		CompanyOfInterest: symbol,
		TradeDate:         date.Format("2006-01-02"),
		Messages:          []*schema.Message{},
		Reports: map[ReportKind]string{
			ReportMarket:       "",
			ReportSentiment:    "",
			ReportNews:         "",
			ReportFundamentals: "",
		},
		InvestmentDebateState: &InvestDebateState{},
		RiskDebateState:       &RiskDebateState{},
	}
}

// Situation concatenates the four analyst reports. It is the similarity key
// for every memory lookup.
func (s *TradingState) Situation() string {
	return s.Reports[ReportMarket] + "\n\n" +
		s.Reports[ReportSentiment] + "\n\n" +
		s.Reports[ReportNews] + "\n\n" +
		s.Reports[ReportFundamentals]
}
