package graph

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MmaoM0225/TradingAgents-M/internal/agents"
	"github.com/MmaoM0225/TradingAgents-M/internal/config"
	"github.com/MmaoM0225/TradingAgents-M/internal/dataflows"
	"github.com/MmaoM0225/TradingAgents-M/internal/models"
	"github.com/MmaoM0225/TradingAgents-M/internal/tools"
)

// scriptedModel replays canned replies in order, repeating the last one.
type scriptedModel struct {
	replies []*schema.Message
	calls   int
}

func reply(content string) *schema.Message {
	return &schema.Message{Role: schema.Assistant, Content: content}
}

func (m *scriptedModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	if len(m.replies) == 0 {
		return nil, errors.New("no scripted reply")
	}
	idx := m.calls
	if idx >= len(m.replies) {
		idx = len(m.replies) - 1
	}
	m.calls++
	return m.replies[idx], nil
}

func (m *scriptedModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func (m *scriptedModel) BindTools(_ []*schema.ToolInfo) error { return nil }

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	dir := t.TempDir()
	cfg.ProjectDir = dir
	cfg.ResultsDir = dir + "/results"
	cfg.DataDir = dir + "/data"
	cfg.DataCacheDir = dir + "/cache"
	cfg.MemoryDir = dir + "/memory"
	cfg.OnlineTools = false
	cfg.CacheEnabled = false
	return cfg
}

// newTestGraph wires every role to a scripted model. Analysts answer without
// requesting tools, so no data source is touched.
func newTestGraph(t *testing.T, cfg *config.Config) *TradingAgentsGraph {
	t.Helper()
	ctx := context.Background()
	tk := tools.NewToolkit(cfg, dataflows.New(cfg))

	analystReports := map[string]string{
		"market_analyst":       "技术面走强，均线多头排列。",
		"social_analyst":       "社交媒体情绪偏乐观。",
		"news_analyst":         "行业新闻整体正面。",
		"fundamentals_analyst": "基础面稳健，内部人增持。",
	}
	var analysts []*agents.Analyst
	for _, role := range agents.AnalystRoles() {
		analyst, err := agents.NewAnalyst(ctx, cfg, &scriptedModel{replies: []*schema.Message{reply(analystReports[role.Name])}}, tk, role)
		require.NoError(t, err)
		analysts = append(analysts, analyst)
	}

	return &TradingAgentsGraph{
		cfg:             cfg,
		analysts:        analysts,
		bull:            agents.NewResearcher(&scriptedModel{replies: []*schema.Message{reply("看涨：增长动能强劲。")}}, nil, cfg.MemoryMatches),
		bear:            agents.NewResearcher(&scriptedModel{replies: []*schema.Message{reply("看跌：估值过高。")}}, nil, cfg.MemoryMatches),
		researchManager: agents.NewResearchManager(&scriptedModel{replies: []*schema.Message{reply("多头论点更有说服力，建议买入。")}}, nil, cfg.MemoryMatches),
		trader:          agents.NewTrader(&scriptedModel{replies: []*schema.Message{reply("分批建仓。最终交易提案：**买入**")}}, nil, cfg.MemoryMatches),
		riskDebater:     agents.NewRiskDebater(&scriptedModel{replies: []*schema.Message{reply("加大仓位。"), reply("控制回撤。"), reply("折中配置。")}}),
		riskManager:     agents.NewRiskManager(&scriptedModel{replies: []*schema.Message{reply("决策：买入")}}, nil, cfg.MemoryMatches),
		extractor:       NewSignalExtractor(&scriptedModel{replies: []*schema.Message{reply("买入")}}),
		reflector:       NewReflector(&scriptedModel{replies: []*schema.Message{reply("经验教训：及时止盈。")}}),
		memories:        &Memories{},
	}
}

func TestPropagateFullRun(t *testing.T) {
	cfg := testConfig(t)
	g := newTestGraph(t, cfg)

	state, err := g.Propagate(context.Background(), "aapl", mustDate(t, "2026-03-02"))
	require.NoError(t, err)

	// Symbol is normalized and every report slot is filled by its analyst.
	assert.Equal(t, "AAPL", state.CompanyOfInterest)
	for _, kind := range models.ReportKinds {
		assert.NotEmpty(t, state.Reports[kind], "report %s", kind)
	}
	assert.Contains(t, state.Reports[models.ReportMarket], "技术面")
	assert.Contains(t, state.Reports[models.ReportFundamentals], "基础面")

	// One debate round: bull speaks first, then bear.
	debate := state.InvestmentDebateState
	assert.Equal(t, 2, debate.Count)
	assert.Contains(t, debate.BullHistory, "Bull Analyst: 看涨")
	assert.Contains(t, debate.BearHistory, "Bear Analyst: 看跌")
	assert.Less(t,
		strings.Index(debate.History, "Bull Analyst"),
		strings.Index(debate.History, "Bear Analyst"),
		"bull must open the debate")

	assert.NotEmpty(t, state.InvestmentPlan)
	assert.Contains(t, state.TraderInvestmentPlan, "最终交易提案")

	// One risk round: all three personas, aggressive first, neutral last.
	risk := state.RiskDebateState
	assert.Equal(t, 3, risk.Count)
	assert.Equal(t, agents.SpeakerNeutral, risk.LatestSpeaker)
	assert.Contains(t, risk.RiskyHistory, "加大仓位")
	assert.Contains(t, risk.SafeHistory, "控制回撤")
	assert.Contains(t, risk.NeutralHistory, "折中配置")

	assert.Equal(t, "决策：买入", state.FinalTradeDecision)
	require.NotNil(t, state.Decision)
	assert.Equal(t, models.ActionBuy, state.Decision.Action)
	assert.Equal(t, "2026-03-02", state.Decision.TradeDate)
}

func TestPropagateRejectsBadSymbol(t *testing.T) {
	cfg := testConfig(t)
	g := newTestGraph(t, cfg)

	_, err := g.Propagate(context.Background(), "not a symbol!!", mustDate(t, "2026-03-02"))
	assert.Error(t, err)
}

// A failing analyst degrades to a placeholder report; the run still reaches
// a decision.
func TestPropagateSurvivesAnalystFailure(t *testing.T) {
	cfg := testConfig(t)
	g := newTestGraph(t, cfg)

	ctx := context.Background()
	tk := tools.NewToolkit(cfg, dataflows.New(cfg))
	broken, err := agents.NewAnalyst(ctx, cfg, &scriptedModel{}, tk, agents.AnalystRoles()[0])
	require.NoError(t, err)
	g.analysts[0] = broken

	state, err := g.Propagate(ctx, "AAPL", mustDate(t, "2026-03-02"))
	require.NoError(t, err)
	assert.Contains(t, state.Reports[models.ReportMarket], "报告生成失败")
	require.NotNil(t, state.Decision)
	assert.Equal(t, models.ActionBuy, state.Decision.Action)
}
