package agents

import (
	"context"

	"github.com/cloudwego/eino/components/model"

	"github.com/MmaoM0225/TradingAgents-M/internal/logx"
	"github.com/MmaoM0225/TradingAgents-M/internal/memory"
	"github.com/MmaoM0225/TradingAgents-M/internal/models"
)

// pastMemoryString retrieves the most similar past situations and joins
// their recommendations. A memory failure degrades to an empty string; the
// debate must not stall on a broken embedding backend.
func pastMemoryString(ctx context.Context, mem *memory.Memory, situation string, k int) string {
	if mem == nil {
		return ""
	}
	records, err := mem.Query(ctx, situation, k)
	if err != nil {
		logx.Warn().Err(err).Msg("memory query failed, continuing without past reflections")
		return ""
	}
	out := ""
	for _, rec := range records {
		out += rec.Recommendation + "\n\n"
	}
	return out
}

// Researcher is one side of the bull/bear investment debate.
type Researcher struct {
	cm      model.ChatModel
	mem     *memory.Memory
	matches int
}

func NewResearcher(cm model.ChatModel, mem *memory.Memory, matches int) *Researcher {
	return &Researcher{cm: cm, mem: mem, matches: matches}
}

// BullTurn produces one bull argument and returns the advanced debate state.
func (r *Researcher) BullTurn(ctx context.Context, state *models.TradingState) (*models.InvestDebateState, error) {
	return r.turn(ctx, state, "researchers/bull_researcher", "Bull Analyst: ", true)
}

// BearTurn produces one bear argument and returns the advanced debate state.
func (r *Researcher) BearTurn(ctx context.Context, state *models.TradingState) (*models.InvestDebateState, error) {
	return r.turn(ctx, state, "researchers/bear_researcher", "Bear Analyst: ", false)
}

func (r *Researcher) turn(ctx context.Context, state *models.TradingState, promptPath, label string, bull bool) (*models.InvestDebateState, error) {
	debate := *state.InvestmentDebateState

	prompt, err := RenderPrompt(ctx, promptPath, map[string]any{
		"market_research_report": state.Reports[models.ReportMarket],
		"sentiment_report":       state.Reports[models.ReportSentiment],
		"news_report":            state.Reports[models.ReportNews],
		"fundamentals_report":    state.Reports[models.ReportFundamentals],
		"history":                debate.History,
		"current_response":       debate.CurrentResponse,
		"past_memory_str":        pastMemoryString(ctx, r.mem, state.Situation(), r.matches),
	})
	if err != nil {
		return nil, err
	}

	reply, err := generateText(ctx, r.cm, prompt)
	if err != nil {
		return nil, err
	}

	argument := label + reply
	debate.History += "\n" + argument
	if bull {
		debate.BullHistory += "\n" + argument
	} else {
		debate.BearHistory += "\n" + argument
	}
	debate.CurrentResponse = argument
	debate.Count++
	return &debate, nil
}
