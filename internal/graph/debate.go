package graph

import (
	"github.com/MmaoM0225/TradingAgents-M/internal/agents"
	"github.com/MmaoM0225/TradingAgents-M/internal/models"
)

// Debate control is pure state inspection. The sequencer calls these to pick
// the next speaker and to decide when a debate hands off to its judge.

// InvestDebateDone reports whether the bull/bear exchange has run its
// allotted turns. Each round is one bull turn plus one bear turn.
func InvestDebateDone(d *models.InvestDebateState, maxRounds int) bool {
	return d.Count >= 2*maxRounds
}

// NextInvestSpeaker alternates speakers starting with the bull.
func NextInvestSpeaker(d *models.InvestDebateState) string {
	if d.Count%2 == 0 {
		return "bull"
	}
	return "bear"
}

// RiskDebateDone reports whether every persona has spoken in each allotted
// round of the three-way discussion.
func RiskDebateDone(d *models.RiskDebateState, maxRounds int) bool {
	return d.Count >= 3*maxRounds
}

// NextRiskSpeaker walks the fixed aggressive, conservative, neutral rotation
// keyed off whoever spoke last.
func NextRiskSpeaker(d *models.RiskDebateState) string {
	switch d.LatestSpeaker {
	case agents.SpeakerRisky:
		return agents.SpeakerSafe
	case agents.SpeakerSafe:
		return agents.SpeakerNeutral
	default:
		return agents.SpeakerRisky
	}
}
