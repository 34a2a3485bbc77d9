package agents

import (
	"context"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MmaoM0225/TradingAgents-M/internal/models"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func debateState(t *testing.T) *models.TradingState {
	t.Helper()
	state := models.NewTradingState("AAPL", mustDate(t, "2026-03-02"))
	state.Reports[models.ReportMarket] = "市场报告"
	state.Reports[models.ReportSentiment] = "情绪报告"
	state.Reports[models.ReportNews] = "新闻报告"
	state.Reports[models.ReportFundamentals] = "基础面报告"
	return state
}

func TestBullTurnAdvancesDebate(t *testing.T) {
	cm := &scriptedModel{replies: []*schema.Message{reply("增长前景强劲。")}}
	r := NewResearcher(cm, nil, 2)
	state := debateState(t)

	next, err := r.BullTurn(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, 1, next.Count)
	assert.Contains(t, next.BullHistory, "Bull Analyst: 增长前景强劲。")
	assert.Contains(t, next.History, "Bull Analyst:")
	assert.Empty(t, next.BearHistory)
	assert.Equal(t, "Bull Analyst: 增长前景强劲。", next.CurrentResponse)

	// The rendered prompt carries the analyst reports.
	prompt := cm.lastInput[0].Content
	assert.Contains(t, prompt, "市场报告")
	assert.Contains(t, prompt, "基础面报告")

	// The original state is untouched; the sequencer owns the merge.
	assert.Equal(t, 0, state.InvestmentDebateState.Count)
}

func TestBearTurnSeesBullArgument(t *testing.T) {
	state := debateState(t)
	state.InvestmentDebateState.History = "\nBull Analyst: 增长前景强劲。"
	state.InvestmentDebateState.CurrentResponse = "Bull Analyst: 增长前景强劲。"
	state.InvestmentDebateState.Count = 1

	cm := &scriptedModel{replies: []*schema.Message{reply("估值难以支撑。")}}
	r := NewResearcher(cm, nil, 2)

	next, err := r.BearTurn(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, 2, next.Count)
	assert.Contains(t, next.BearHistory, "Bear Analyst: 估值难以支撑。")
	assert.Contains(t, cm.lastInput[0].Content, "Bull Analyst: 增长前景强劲。")
}

func TestRiskyTurnMarksSilentOpponents(t *testing.T) {
	state := debateState(t)
	state.TraderInvestmentPlan = "最终交易提案：**买入**"

	cm := &scriptedModel{replies: []*schema.Message{reply("应该加仓。")}}
	d := NewRiskDebater(cm)

	next, err := d.RiskyTurn(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, 1, next.Count)
	assert.Equal(t, SpeakerRisky, next.LatestSpeaker)
	assert.Contains(t, next.RiskyHistory, "Risky Analyst: 应该加仓。")

	// Opponents have not spoken yet; the prompt must say so instead of
	// quoting empty text.
	assert.Contains(t, cm.lastInput[0].Content, silentStance)
	assert.Contains(t, cm.lastInput[0].Content, "最终交易提案")
}

func TestRiskRotationStateThreading(t *testing.T) {
	state := debateState(t)
	state.TraderInvestmentPlan = "计划"

	d := NewRiskDebater(&scriptedModel{replies: []*schema.Message{
		reply("激进观点"), reply("保守观点"), reply("中立观点"),
	}})
	ctx := context.Background()

	next, err := d.RiskyTurn(ctx, state)
	require.NoError(t, err)
	state.RiskDebateState = next

	next, err = d.SafeTurn(ctx, state)
	require.NoError(t, err)
	state.RiskDebateState = next

	next, err = d.NeutralTurn(ctx, state)
	require.NoError(t, err)

	assert.Equal(t, 3, next.Count)
	assert.Equal(t, SpeakerNeutral, next.LatestSpeaker)
	assert.Contains(t, next.History, "Risky Analyst: 激进观点")
	assert.Contains(t, next.History, "Safe Analyst: 保守观点")
	assert.Contains(t, next.History, "Neutral Analyst: 中立观点")
}

func TestResearchManagerJudge(t *testing.T) {
	state := debateState(t)
	state.InvestmentDebateState.History = "\nBull Analyst: 看涨\nBear Analyst: 看跌"

	cm := &scriptedModel{replies: []*schema.Message{reply("采纳多头观点，买入。")}}
	m := NewResearchManager(cm, nil, 2)

	next, err := m.Judge(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, "采纳多头观点，买入。", next.JudgeDecision)
	assert.Contains(t, cm.lastInput[0].Content, "Bear Analyst: 看跌")
}

func TestRiskManagerJudge(t *testing.T) {
	state := debateState(t)
	state.TraderInvestmentPlan = "分批买入计划"
	state.RiskDebateState.History = "\nRisky Analyst: 加仓"

	cm := &scriptedModel{replies: []*schema.Message{reply("决策：买入")}}
	m := NewRiskManager(cm, nil, 2)

	next, err := m.Judge(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, "决策：买入", next.JudgeDecision)
	assert.Contains(t, cm.lastInput[0].Content, "分批买入计划")
}

func TestTraderPlan(t *testing.T) {
	state := debateState(t)
	state.InvestmentPlan = "研究经理的投资计划"

	cm := &scriptedModel{replies: []*schema.Message{reply("最终交易提案：**买入**")}}
	tr := NewTrader(cm, nil, 2)

	plan, err := tr.Plan(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, "最终交易提案：**买入**", plan)
	assert.Contains(t, cm.lastInput[0].Content, "研究经理的投资计划")
	assert.Contains(t, cm.lastInput[0].Content, "AAPL")
}
