package agents

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/MmaoM0225/TradingAgents-M/internal/config"
	"github.com/MmaoM0225/TradingAgents-M/internal/models"
	"github.com/MmaoM0225/TradingAgents-M/internal/tools"
)

// AnalystRole declares one analyst node: which report slot it fills, which
// prompt it speaks with, and which tools it may call.
type AnalystRole struct {
	Name       string
	Kind       models.ReportKind
	PromptPath string
	ToolNames  []string
}

// AnalystRoles returns the four analyst roles in dispatch order. The set is
// static; selection of online vs offline data happens inside dataflows.
func AnalystRoles() []AnalystRole {
	return []AnalystRole{
		{
			Name:       "market_analyst",
			Kind:       models.ReportMarket,
			PromptPath: "analysts/market_analyst",
			ToolNames:  []string{tools.ToolYFinData, tools.ToolStockstatsReport},
		},
		{
			Name:       "social_analyst",
			Kind:       models.ReportSentiment,
			PromptPath: "analysts/social_analyst",
			ToolNames:  []string{tools.ToolSocialSentiment},
		},
		{
			Name:       "news_analyst",
			Kind:       models.ReportNews,
			PromptPath: "analysts/news_analyst",
			ToolNames:  []string{tools.ToolGoogleNews, tools.ToolFinnhubNews},
		},
		{
			Name:       "fundamentals_analyst",
			Kind:       models.ReportFundamentals,
			PromptPath: "analysts/fundamentals_analyst",
			ToolNames:  []string{tools.ToolInsiderSentiment, tools.ToolInsiderTransactions},
		},
	}
}

// Analyst runs one tool-calling analyst role and yields its report.
type Analyst struct {
	role  AnalystRole
	agent *ToolCallingAgent
}

// NewAnalyst binds the role's tools to a dedicated chat model instance. Each
// analyst needs its own model because tool binding is per-instance state.
func NewAnalyst(ctx context.Context, cfg *config.Config, cm model.ChatModel, tk *tools.Toolkit, role AnalystRole) (*Analyst, error) {
	agent, err := NewToolCallingAgent(ctx, cm, tk, role.ToolNames, cfg.MaxToolRounds)
	if err != nil {
		return nil, err
	}
	return &Analyst{role: role, agent: agent}, nil
}

// Role returns the role this analyst was built for.
func (a *Analyst) Role() AnalystRole { return a.role }

// Run produces the analyst's report for the given company and date. The
// returned messages are the full tool conversation, for tracing.
func (a *Analyst) Run(ctx context.Context, state *models.TradingState) (string, []*schema.Message, error) {
	msgs, err := a.BuildMessages(ctx, state)
	if err != nil {
		return "", nil, err
	}
	return a.agent.Run(ctx, msgs)
}

// BuildMessages renders the shared collaborator frame around the role's own
// system message.
func (a *Analyst) BuildMessages(ctx context.Context, state *models.TradingState) ([]*schema.Message, error) {
	roleMsg, err := LoadPrompt(a.role.PromptPath)
	if err != nil {
		return nil, err
	}
	system, err := RenderPrompt(ctx, "analysts/collaborator_system", map[string]any{
		"tool_names":     strings.Join(a.role.ToolNames, ", "),
		"system_message": roleMsg,
		"current_date":   state.TradeDate,
		"ticker":         state.CompanyOfInterest,
	})
	if err != nil {
		return nil, err
	}
	return []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(state.CompanyOfInterest),
	}, nil
}
