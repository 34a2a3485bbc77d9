// Package agents implements the role nodes of the deliberation pipeline:
// tool-calling analysts, debating researchers and risk personas, and the
// manager/trader roles that consume the debate transcripts.
package agents

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/MmaoM0225/TradingAgents-M/internal/logx"
	"github.com/MmaoM0225/TradingAgents-M/internal/tools"
)

// ToolRoundLimitNotice is returned as the report body when an analyst keeps
// requesting tools past the round cap.
const ToolRoundLimitNotice = "（工具调用轮次达到上限，本报告基于已获取的数据，内容可能不完整）"

// ToolCallingAgent drives one chat model through a bounded
// generate/execute-tools loop. The model is bound to a fixed subset of the
// toolkit at construction time.
type ToolCallingAgent struct {
	chatModel model.ChatModel
	toolkit   *tools.Toolkit
	maxRounds int
}

// NewToolCallingAgent binds the named tools to the model. maxRounds caps how
// many model turns may request tools before the loop gives up.
func NewToolCallingAgent(ctx context.Context, cm model.ChatModel, tk *tools.Toolkit, toolNames []string, maxRounds int) (*ToolCallingAgent, error) {
	infos, err := tk.Infos(ctx, toolNames)
	if err != nil {
		return nil, err
	}
	if err := cm.BindTools(infos); err != nil {
		return nil, fmt.Errorf("bind tools: %w", err)
	}
	if maxRounds <= 0 {
		maxRounds = 1
	}
	return &ToolCallingAgent{chatModel: cm, toolkit: tk, maxRounds: maxRounds}, nil
}

// Run feeds the messages to the model and executes every tool call it emits,
// appending tool results and re-invoking until the model answers in plain
// text or the round cap is hit. It returns the final text and the full
// conversation including tool turns.
func (a *ToolCallingAgent) Run(ctx context.Context, messages []*schema.Message) (string, []*schema.Message, error) {
	convo := make([]*schema.Message, len(messages))
	copy(convo, messages)

	for round := 0; round < a.maxRounds; round++ {
		resp, err := a.chatModel.Generate(ctx, convo)
		if err != nil {
			return "", convo, fmt.Errorf("chat model generate: %w", err)
		}
		convo = append(convo, resp)

		if len(resp.ToolCalls) == 0 {
			return resp.Content, convo, nil
		}

		for _, tc := range resp.ToolCalls {
			convo = append(convo, schema.ToolMessage(a.execute(ctx, tc), tc.ID))
		}
	}

	logx.Warn().Int("max_rounds", a.maxRounds).Msg("tool round cap reached, returning partial report")
	return ToolRoundLimitNotice, convo, nil
}

// execute runs one tool call. Failures come back as text so the model can
// work around a degraded data source instead of aborting the run.
func (a *ToolCallingAgent) execute(ctx context.Context, tc schema.ToolCall) string {
	name := tc.Function.Name
	t, ok := a.toolkit.Get(name)
	if !ok {
		logx.Warn().Str("tool", name).Msg("model requested unknown tool")
		return fmt.Sprintf("unknown tool %q", name)
	}

	result, err := t.InvokableRun(ctx, tc.Function.Arguments)
	if err != nil {
		logx.Error().Err(err).Str("tool", name).Msg("tool execution failed")
		return fmt.Sprintf("[%s] execution failed: %v", name, err)
	}
	logx.Debug().Str("tool", name).Int("result_len", len(result)).Msg("tool executed")
	return result
}

// generateText is the single-shot path used by the debate and manager roles:
// one rendered prompt in, one text completion out, no tools.
func generateText(ctx context.Context, cm model.ChatModel, prompt string) (string, error) {
	resp, err := cm.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("chat model generate: %w", err)
	}
	return resp.Content, nil
}
