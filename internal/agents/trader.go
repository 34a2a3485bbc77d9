package agents

import (
	"context"

	"github.com/cloudwego/eino/components/model"

	"github.com/MmaoM0225/TradingAgents-M/internal/memory"
	"github.com/MmaoM0225/TradingAgents-M/internal/models"
)

// Trader turns the research manager's investment plan into a concrete trade
// proposal ending in 最终交易提案：**买入/持有/卖出**.
type Trader struct {
	cm      model.ChatModel
	mem     *memory.Memory
	matches int
}

func NewTrader(cm model.ChatModel, mem *memory.Memory, matches int) *Trader {
	return &Trader{cm: cm, mem: mem, matches: matches}
}

// Plan produces the trader's investment plan text.
func (t *Trader) Plan(ctx context.Context, state *models.TradingState) (string, error) {
	prompt, err := RenderPrompt(ctx, "trader/trader", map[string]any{
		"past_memory_str": pastMemoryString(ctx, t.mem, state.Situation(), t.matches),
		"ticker":          state.CompanyOfInterest,
		"investment_plan": state.InvestmentPlan,
	})
	if err != nil {
		return "", err
	}
	return generateText(ctx, t.cm, prompt)
}
