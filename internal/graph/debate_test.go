package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MmaoM0225/TradingAgents-M/internal/agents"
	"github.com/MmaoM0225/TradingAgents-M/internal/models"
)

func TestInvestDebateTurnBudget(t *testing.T) {
	d := &models.InvestDebateState{}

	// One round means one bull turn and one bear turn.
	assert.False(t, InvestDebateDone(d, 1))
	assert.Equal(t, "bull", NextInvestSpeaker(d))

	d.Count = 1
	assert.False(t, InvestDebateDone(d, 1))
	assert.Equal(t, "bear", NextInvestSpeaker(d))

	d.Count = 2
	assert.True(t, InvestDebateDone(d, 1))

	d.Count = 3
	assert.False(t, InvestDebateDone(d, 2))
}

func TestRiskDebateRotation(t *testing.T) {
	d := &models.RiskDebateState{}

	assert.Equal(t, agents.SpeakerRisky, NextRiskSpeaker(d))

	d.LatestSpeaker = agents.SpeakerRisky
	assert.Equal(t, agents.SpeakerSafe, NextRiskSpeaker(d))

	d.LatestSpeaker = agents.SpeakerSafe
	assert.Equal(t, agents.SpeakerNeutral, NextRiskSpeaker(d))

	// The rotation wraps for a second round.
	d.LatestSpeaker = agents.SpeakerNeutral
	assert.Equal(t, agents.SpeakerRisky, NextRiskSpeaker(d))
}

func TestRiskDebateTurnBudget(t *testing.T) {
	d := &models.RiskDebateState{}
	assert.False(t, RiskDebateDone(d, 1))

	d.Count = 2
	assert.False(t, RiskDebateDone(d, 1))

	d.Count = 3
	assert.True(t, RiskDebateDone(d, 1))
	assert.False(t, RiskDebateDone(d, 2))
}

func TestNextStageHappyPath(t *testing.T) {
	state := models.NewTradingState("AAPL", mustDate(t, "2026-03-02"))

	assert.Equal(t, StageInvestDebate, NextStage(StageAnalysts, state, 1, 1))

	state.InvestmentDebateState.Count = 1
	assert.Equal(t, StageInvestDebate, NextStage(StageInvestDebate, state, 1, 1))
	state.InvestmentDebateState.Count = 2
	assert.Equal(t, StageResearchManager, NextStage(StageInvestDebate, state, 1, 1))

	assert.Equal(t, StageTrader, NextStage(StageResearchManager, state, 1, 1))
	assert.Equal(t, StageRiskDebate, NextStage(StageTrader, state, 1, 1))

	state.RiskDebateState.Count = 2
	assert.Equal(t, StageRiskDebate, NextStage(StageRiskDebate, state, 1, 1))
	state.RiskDebateState.Count = 3
	assert.Equal(t, StageRiskJudge, NextStage(StageRiskDebate, state, 1, 1))

	assert.Equal(t, StageSignal, NextStage(StageRiskJudge, state, 1, 1))
	assert.Equal(t, StageDone, NextStage(StageSignal, state, 1, 1))
}
