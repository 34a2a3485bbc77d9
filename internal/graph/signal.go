package graph

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/MmaoM0225/TradingAgents-M/internal/agents"
	"github.com/MmaoM0225/TradingAgents-M/internal/logx"
	"github.com/MmaoM0225/TradingAgents-M/internal/models"
)

// SignalExtractor reduces a full trade decision text to BUY, SELL or HOLD.
type SignalExtractor struct {
	cm model.ChatModel
}

func NewSignalExtractor(cm model.ChatModel) *SignalExtractor {
	return &SignalExtractor{cm: cm}
}

// Extract asks the quick-thinking model for the decision and parses the
// reply. Extracting an already-extracted signal yields the same action.
func (e *SignalExtractor) Extract(ctx context.Context, fullSignal string) (models.Action, error) {
	system, err := agents.LoadPrompt("graph/signal_extraction")
	if err != nil {
		return models.ActionHold, err
	}
	resp, err := e.cm.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(fullSignal),
	})
	if err != nil {
		return models.ActionHold, err
	}
	return ParseAction(resp.Content), nil
}

// actionLabels maps every accepted spelling to its action. English labels
// are matched case-insensitively, Chinese labels verbatim.
var actionLabels = []struct {
	label  string
	action models.Action
}{
	{"BUY", models.ActionBuy},
	{"SELL", models.ActionSell},
	{"HOLD", models.ActionHold},
	{"买入", models.ActionBuy},
	{"卖出", models.ActionSell},
	{"持有", models.ActionHold},
}

// ParseAction maps free text to an action. When several labels appear the
// earliest occurrence wins. Unrecognized text falls back to HOLD.
func ParseAction(text string) models.Action {
	normalized := strings.ToUpper(strings.TrimSpace(text))

	for _, l := range actionLabels {
		if normalized == l.label {
			return l.action
		}
	}

	best, bestIdx := models.ActionHold, -1
	for _, l := range actionLabels {
		if idx := strings.Index(normalized, l.label); idx >= 0 && (bestIdx < 0 || idx < bestIdx) {
			best, bestIdx = l.action, idx
		}
	}
	if bestIdx < 0 {
		logx.Warn().Str("signal", text).Msg("no actionable decision found, defaulting to HOLD")
		return models.ActionHold
	}
	return best
}
