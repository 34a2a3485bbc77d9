// Package tools exposes the closed set of named data tools an analyst role
// may bind. Each tool wraps one dataflows report behind an eino tool schema;
// the online/offline variant is selected by configuration inside dataflows.
package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/MmaoM0225/TradingAgents-M/internal/config"
	"github.com/MmaoM0225/TradingAgents-M/internal/dataflows"
)

// Tool names. Role configs reference these tags; there is no runtime tool
// discovery.
const (
	ToolYFinData            = "get_YFin_data"
	ToolStockstatsReport    = "get_stockstats_indicators_report"
	ToolFinnhubNews         = "get_finnhub_news"
	ToolGoogleNews          = "get_google_news"
	ToolSocialSentiment     = "get_social_sentiment"
	ToolInsiderSentiment    = "get_finnhub_company_insider_sentiment"
	ToolInsiderTransactions = "get_finnhub_company_insider_transactions"
)

// Toolkit is the registry the agent loop executes tool calls against.
type Toolkit struct {
	tools map[string]tool.InvokableTool
}

type tickerDateInput struct {
	Ticker       string `json:"ticker"`
	CurrDate     string `json:"curr_date"`
	LookBackDays int    `json:"look_back_days"`
}

type indicatorInput struct {
	Ticker     string   `json:"ticker"`
	CurrDate   string   `json:"curr_date"`
	Indicators []string `json:"indicators"`
}

type newsSearchInput struct {
	Query        string `json:"query"`
	CurrDate     string `json:"curr_date"`
	LookBackDays int    `json:"look_back_days"`
}

type textOutput struct {
	Report string `json:"report"`
}

func tickerDateParams() *schema.ParamsOneOf {
	return schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
		"ticker": {
			Type:     "string",
			Desc:     "Ticker symbol of the company, e.g. AAPL, TSM",
			Required: true,
		},
		"curr_date": {
			Type:     "string",
			Desc:     "Current trading date in yyyy-MM-dd format",
			Required: true,
		},
		"look_back_days": {
			Type:     "integer",
			Desc:     "How many days to look back (default 30)",
			Required: false,
		},
	})
}

// NewToolkit builds every tool against one DataFlows instance.
func NewToolkit(cfg *config.Config, df *dataflows.DataFlows) *Toolkit {
	tk := &Toolkit{tools: map[string]tool.InvokableTool{}}

	tk.tools[ToolYFinData] = t_utils.NewTool(
		&schema.ToolInfo{
			Name:        ToolYFinData,
			Desc:        "Get daily OHLCV price data for a symbol over a lookback window, as CSV",
			ParamsOneOf: tickerDateParams(),
		},
		func(ctx context.Context, input tickerDateInput) (*textOutput, error) {
			report, err := df.MarketDataCSV(ctx, input.Ticker, input.CurrDate, input.LookBackDays)
			if err != nil {
				return failureReport(ToolYFinData, err), nil
			}
			return &textOutput{Report: report}, nil
		},
	)

	tk.tools[ToolStockstatsReport] = t_utils.NewTool(
		&schema.ToolInfo{
			Name: ToolStockstatsReport,
			Desc: "Compute technical indicators (SMA/EMA/MACD/RSI/Bollinger/ATR/VWMA) for a symbol",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"ticker": {
					Type:     "string",
					Desc:     "Ticker symbol of the company",
					Required: true,
				},
				"curr_date": {
					Type:     "string",
					Desc:     "Current trading date in yyyy-MM-dd format",
					Required: true,
				},
				"indicators": {
					Type: "array",
					Desc: "Indicator names, e.g. close_50_sma, macd, rsi, boll_ub, atr, vwma (max 8)",
					ElemInfo: &schema.ParameterInfo{
						Type: "string",
					},
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input indicatorInput) (*textOutput, error) {
			if len(input.Indicators) > 8 {
				input.Indicators = input.Indicators[:8]
			}
			report, err := df.IndicatorsReport(ctx, input.Ticker, input.CurrDate, input.Indicators)
			if err != nil {
				return failureReport(ToolStockstatsReport, err), nil
			}
			return &textOutput{Report: report}, nil
		},
	)

	tk.tools[ToolFinnhubNews] = t_utils.NewTool(
		&schema.ToolInfo{
			Name:        ToolFinnhubNews,
			Desc:        "Retrieve company news from Finnhub within a lookback window",
			ParamsOneOf: tickerDateParams(),
		},
		func(ctx context.Context, input tickerDateInput) (*textOutput, error) {
			report, err := df.CompanyNewsReport(input.Ticker, input.CurrDate, input.LookBackDays)
			if err != nil {
				return failureReport(ToolFinnhubNews, err), nil
			}
			return &textOutput{Report: report}, nil
		},
	)

	tk.tools[ToolGoogleNews] = t_utils.NewTool(
		&schema.ToolInfo{
			Name: ToolGoogleNews,
			Desc: "Search Google News for macro and world events relevant to trading",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "Search query, e.g. 'US inflation' or a company name",
					Required: true,
				},
				"curr_date": {
					Type:     "string",
					Desc:     "Current trading date in yyyy-MM-dd format",
					Required: true,
				},
				"look_back_days": {
					Type:     "integer",
					Desc:     "How many days to look back (default 7)",
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input newsSearchInput) (*textOutput, error) {
			if input.LookBackDays <= 0 {
				input.LookBackDays = 7
			}
			report, err := df.GlobalNewsReport(input.Query, input.CurrDate, input.LookBackDays)
			if err != nil {
				return failureReport(ToolGoogleNews, err), nil
			}
			return &textOutput{Report: report}, nil
		},
	)

	tk.tools[ToolSocialSentiment] = t_utils.NewTool(
		&schema.ToolInfo{
			Name:        ToolSocialSentiment,
			Desc:        "Scan social discussion sources for retail sentiment on a symbol",
			ParamsOneOf: tickerDateParams(),
		},
		func(ctx context.Context, input tickerDateInput) (*textOutput, error) {
			if input.LookBackDays <= 0 {
				input.LookBackDays = 7
			}
			report, err := df.SocialSentimentReport(input.Ticker, input.CurrDate, input.LookBackDays)
			if err != nil {
				return failureReport(ToolSocialSentiment, err), nil
			}
			return &textOutput{Report: report}, nil
		},
	)

	tk.tools[ToolInsiderSentiment] = t_utils.NewTool(
		&schema.ToolInfo{
			Name:        ToolInsiderSentiment,
			Desc:        "Get monthly aggregated insider sentiment (MSPR) for a company",
			ParamsOneOf: tickerDateParams(),
		},
		func(ctx context.Context, input tickerDateInput) (*textOutput, error) {
			report, err := df.InsiderSentimentReport(input.Ticker, input.CurrDate, input.LookBackDays)
			if err != nil {
				return failureReport(ToolInsiderSentiment, err), nil
			}
			return &textOutput{Report: report}, nil
		},
	)

	tk.tools[ToolInsiderTransactions] = t_utils.NewTool(
		&schema.ToolInfo{
			Name:        ToolInsiderTransactions,
			Desc:        "Get individual insider transaction filings for a company",
			ParamsOneOf: tickerDateParams(),
		},
		func(ctx context.Context, input tickerDateInput) (*textOutput, error) {
			report, err := df.InsiderTransactionsReport(input.Ticker, input.CurrDate, input.LookBackDays)
			if err != nil {
				return failureReport(ToolInsiderTransactions, err), nil
			}
			return &textOutput{Report: report}, nil
		},
	)

	return tk
}

// failureReport converts a data-source error into a descriptive text result.
// Tool failures surface to the model as text, never as a raised error, so a
// degraded report field stays plain prose.
func failureReport(toolName string, err error) *textOutput {
	return &textOutput{Report: fmt.Sprintf("[%s] data unavailable: %v", toolName, err)}
}

// Get returns the tool registered under name.
func (tk *Toolkit) Get(name string) (tool.InvokableTool, bool) {
	t, ok := tk.tools[name]
	return t, ok
}

// Infos resolves tool names to their schemas for model binding. Unknown
// names error out loudly; role configs are static and must stay valid.
func (tk *Toolkit) Infos(ctx context.Context, names []string) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(names))
	for _, name := range names {
		t, ok := tk.tools[name]
		if !ok {
			return nil, fmt.Errorf("unknown tool %q", name)
		}
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info for %q: %w", name, err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}
