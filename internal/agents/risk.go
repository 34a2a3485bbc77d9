package agents

import (
	"context"

	"github.com/cloudwego/eino/components/model"

	"github.com/MmaoM0225/TradingAgents-M/internal/models"
)

// Speaker names recorded in RiskDebateState.LatestSpeaker.
const (
	SpeakerRisky   = "Risky"
	SpeakerSafe    = "Safe"
	SpeakerNeutral = "Neutral"
)

// silentStance stands in for a persona that has not spoken yet, so a prompt
// never shows an empty quote the model might invent a reply to.
const silentStance = "（尚未发言）"

// RiskDebater is one of the three risk personas discussing the trader's plan.
type RiskDebater struct {
	cm model.ChatModel
}

func NewRiskDebater(cm model.ChatModel) *RiskDebater {
	return &RiskDebater{cm: cm}
}

// RiskyTurn argues the aggressive, high-reward position.
func (d *RiskDebater) RiskyTurn(ctx context.Context, state *models.TradingState) (*models.RiskDebateState, error) {
	return d.turn(ctx, state, "risk/risky_debator", SpeakerRisky)
}

// SafeTurn argues the conservative, capital-preserving position.
func (d *RiskDebater) SafeTurn(ctx context.Context, state *models.TradingState) (*models.RiskDebateState, error) {
	return d.turn(ctx, state, "risk/safe_debator", SpeakerSafe)
}

// NeutralTurn argues the balanced position.
func (d *RiskDebater) NeutralTurn(ctx context.Context, state *models.TradingState) (*models.RiskDebateState, error) {
	return d.turn(ctx, state, "risk/neutral_debator", SpeakerNeutral)
}

func (d *RiskDebater) turn(ctx context.Context, state *models.TradingState, promptPath, speaker string) (*models.RiskDebateState, error) {
	debate := *state.RiskDebateState

	vars := map[string]any{
		"trader_decision":          state.TraderInvestmentPlan,
		"market_research_report":   state.Reports[models.ReportMarket],
		"sentiment_report":         state.Reports[models.ReportSentiment],
		"news_report":              state.Reports[models.ReportNews],
		"fundamentals_report":      state.Reports[models.ReportFundamentals],
		"history":                  debate.History,
		"current_risky_response":   orSilent(debate.CurrentRiskyResponse),
		"current_safe_response":    orSilent(debate.CurrentSafeResponse),
		"current_neutral_response": orSilent(debate.CurrentNeutralResponse),
	}
	prompt, err := RenderPrompt(ctx, promptPath, vars)
	if err != nil {
		return nil, err
	}

	reply, err := generateText(ctx, d.cm, prompt)
	if err != nil {
		return nil, err
	}

	switch speaker {
	case SpeakerRisky:
		argument := "Risky Analyst: " + reply
		debate.RiskyHistory += "\n" + argument
		debate.CurrentRiskyResponse = argument
		debate.History += "\n" + argument
	case SpeakerSafe:
		argument := "Safe Analyst: " + reply
		debate.SafeHistory += "\n" + argument
		debate.CurrentSafeResponse = argument
		debate.History += "\n" + argument
	case SpeakerNeutral:
		argument := "Neutral Analyst: " + reply
		debate.NeutralHistory += "\n" + argument
		debate.CurrentNeutralResponse = argument
		debate.History += "\n" + argument
	}
	debate.LatestSpeaker = speaker
	debate.Count++
	return &debate, nil
}

func orSilent(s string) string {
	if s == "" {
		return silentStance
	}
	return s
}
