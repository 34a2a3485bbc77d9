package agents

import (
	"context"

	"github.com/cloudwego/eino/components/model"

	"github.com/MmaoM0225/TradingAgents-M/internal/memory"
	"github.com/MmaoM0225/TradingAgents-M/internal/models"
)

// ResearchManager judges the bull/bear debate and writes the investment plan
// the trader works from.
type ResearchManager struct {
	cm      model.ChatModel
	mem     *memory.Memory
	matches int
}

func NewResearchManager(cm model.ChatModel, mem *memory.Memory, matches int) *ResearchManager {
	return &ResearchManager{cm: cm, mem: mem, matches: matches}
}

// Judge closes the investment debate. It returns the debate state carrying
// the verdict; the verdict doubles as the investment plan.
func (m *ResearchManager) Judge(ctx context.Context, state *models.TradingState) (*models.InvestDebateState, error) {
	prompt, err := RenderPrompt(ctx, "managers/research_manager", map[string]any{
		"past_memory_str": pastMemoryString(ctx, m.mem, state.Situation(), m.matches),
		"history":         state.InvestmentDebateState.History,
	})
	if err != nil {
		return nil, err
	}

	decision, err := generateText(ctx, m.cm, prompt)
	if err != nil {
		return nil, err
	}

	debate := *state.InvestmentDebateState
	debate.JudgeDecision = decision
	debate.CurrentResponse = decision
	return &debate, nil
}

// RiskManager judges the three-way risk discussion and issues the final
// trade decision text.
type RiskManager struct {
	cm      model.ChatModel
	mem     *memory.Memory
	matches int
}

func NewRiskManager(cm model.ChatModel, mem *memory.Memory, matches int) *RiskManager {
	return &RiskManager{cm: cm, mem: mem, matches: matches}
}

// Judge closes the risk debate. The returned state carries the verdict that
// becomes the run's final trade decision.
func (m *RiskManager) Judge(ctx context.Context, state *models.TradingState) (*models.RiskDebateState, error) {
	prompt, err := RenderPrompt(ctx, "managers/risk_manager", map[string]any{
		"past_memory_str": pastMemoryString(ctx, m.mem, state.Situation(), m.matches),
		"trader_plan":     state.TraderInvestmentPlan,
		"history":         state.RiskDebateState.History,
	})
	if err != nil {
		return nil, err
	}

	decision, err := generateText(ctx, m.cm, prompt)
	if err != nil {
		return nil, err
	}

	debate := *state.RiskDebateState
	debate.JudgeDecision = decision
	return &debate, nil
}
