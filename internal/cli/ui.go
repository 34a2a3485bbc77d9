package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MmaoM0225/TradingAgents-M/internal/models"
	"github.com/MmaoM0225/TradingAgents-M/internal/results"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	decisionBoxStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#3B82F6")).
				Padding(1, 2).
				Width(80)

	buyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#10B981"))

	sellStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#EF4444"))

	holdStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F59E0B"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

func actionStyle(a models.Action) lipgloss.Style {
	switch a {
	case models.ActionBuy:
		return buyStyle
	case models.ActionSell:
		return sellStyle
	default:
		return holdStyle
	}
}

// RenderBanner prints the program header.
func RenderBanner() string {
	return titleStyle.Render("TradingAgents-M · 多智能体交易分析")
}

// RenderDecision formats the final decision box for one finished run.
func RenderDecision(state *models.TradingState, runDir string) string {
	var b strings.Builder

	action := models.ActionHold
	if state.Decision != nil {
		action = state.Decision.Action
	}

	b.WriteString(fmt.Sprintf("%s  %s\n\n", state.CompanyOfInterest, state.TradeDate))
	b.WriteString("最终决策: " + actionStyle(action).Render(string(action)) + "\n")
	if runDir != "" {
		b.WriteString(dimStyle.Render("完整报告: "+runDir) + "\n")
	}
	return decisionBoxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// RenderHistory formats the saved-run listing.
func RenderHistory(rows []results.Summary) string {
	if len(rows) == 0 {
		return dimStyle.Render("暂无历史分析记录")
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%-8s %s  %s  %s\n",
			r.Symbol, r.TradeDate,
			actionStyle(r.Action).Render(fmt.Sprintf("%-4s", r.Action)),
			dimStyle.Render(r.Path)))
	}
	return strings.TrimRight(b.String(), "\n")
}
