package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/MmaoM0225/TradingAgents-M/internal/agents"
	"github.com/MmaoM0225/TradingAgents-M/internal/logx"
	"github.com/MmaoM0225/TradingAgents-M/internal/memory"
	"github.com/MmaoM0225/TradingAgents-M/internal/models"
)

// Memories groups the five role memories of one orchestrator instance.
type Memories struct {
	Bull        *memory.Memory
	Bear        *memory.Memory
	Trader      *memory.Memory
	InvestJudge *memory.Memory
	RiskJudge   *memory.Memory
}

// Close releases every open memory. Nil members are skipped.
func (m *Memories) Close() {
	for _, mem := range []*memory.Memory{m.Bull, m.Bear, m.Trader, m.InvestJudge, m.RiskJudge} {
		if mem != nil {
			if err := mem.Close(); err != nil {
				logx.Warn().Err(err).Msg("closing memory")
			}
		}
	}
}

// Reflector reviews a finished run against its realized returns and writes
// the lessons into each role's memory.
type Reflector struct {
	cm model.ChatModel
}

func NewReflector(cm model.ChatModel) *Reflector {
	return &Reflector{cm: cm}
}

// ReflectAll reflects on every role's contribution to the run and stores the
// lessons keyed by the run's situation. A nil memory skips its role.
func (r *Reflector) ReflectAll(ctx context.Context, state *models.TradingState, returnsLosses string, mems *Memories) error {
	situation := state.Situation()

	components := []struct {
		mem    *memory.Memory
		report string
	}{
		{mems.Bull, state.InvestmentDebateState.BullHistory},
		{mems.Bear, state.InvestmentDebateState.BearHistory},
		{mems.Trader, state.TraderInvestmentPlan},
		{mems.InvestJudge, state.InvestmentDebateState.JudgeDecision},
		{mems.RiskJudge, state.FinalTradeDecision},
	}

	for _, c := range components {
		if c.mem == nil {
			continue
		}
		lesson, err := r.reflect(ctx, c.report, situation, returnsLosses)
		if err != nil {
			return fmt.Errorf("reflect %s: %w", c.mem.Role(), err)
		}
		if err := c.mem.AddSituations(ctx, [][2]string{{situation, lesson}}); err != nil {
			return fmt.Errorf("store reflection for %s: %w", c.mem.Role(), err)
		}
		logx.Info().Str("role", c.mem.Role()).Msg("reflection stored")
	}
	return nil
}

func (r *Reflector) reflect(ctx context.Context, report, situation, returnsLosses string) (string, error) {
	system, err := agents.LoadPrompt("graph/reflection")
	if err != nil {
		return "", err
	}
	resp, err := r.cm.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(fmt.Sprintf(
			"Returns: %s\n\nAnalysis/Decision: %s\n\nObjective Market Reports for Reference: %s",
			returnsLosses, report, situation,
		)),
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
