// Package results persists finished runs under the results directory, one
// folder per symbol and trade date, and reads them back for reflection.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/MmaoM0225/TradingAgents-M/internal/config"
	"github.com/MmaoM0225/TradingAgents-M/internal/models"
)

const (
	stateFile  = "state.json"
	reportFile = "report.md"
)

// Recorder writes and lists run artifacts.
type Recorder struct {
	resultsDir string
}

func NewRecorder(cfg *config.Config) *Recorder {
	return &Recorder{resultsDir: cfg.ResultsDir}
}

// Dir returns the artifact directory for one run.
func (r *Recorder) Dir(symbol, tradeDate string) string {
	return filepath.Join(r.resultsDir, strings.ToUpper(symbol), tradeDate)
}

// Save writes the run's full state as JSON and a human-readable markdown
// report. It returns the run directory.
func (r *Recorder) Save(state *models.TradingState) (string, error) {
	dir := r.Dir(state.CompanyOfInterest, state.TradeDate)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}

	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, stateFile), raw, 0o644); err != nil {
		return "", fmt.Errorf("write state: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, reportFile), []byte(renderMarkdown(state)), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return dir, nil
}

// Load reads a previously saved run state.
func (r *Recorder) Load(symbol, tradeDate string) (*models.TradingState, error) {
	raw, err := os.ReadFile(filepath.Join(r.Dir(symbol, tradeDate), stateFile))
	if err != nil {
		return nil, fmt.Errorf("read run state: %w", err)
	}
	var state models.TradingState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("parse run state: %w", err)
	}
	return &state, nil
}

// Summary is one row of the run history listing.
type Summary struct {
	Symbol    string
	TradeDate string
	Action    models.Action
	CreatedAt time.Time
	Path      string
}

// List walks the results directory and returns every saved run, newest
// first.
func (r *Recorder) List() ([]Summary, error) {
	var out []Summary

	symbols, err := os.ReadDir(r.resultsDir)
	if os.IsNotExist(err) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	for _, sym := range symbols {
		if !sym.IsDir() {
			continue
		}
		dates, err := os.ReadDir(filepath.Join(r.resultsDir, sym.Name()))
		if err != nil {
			continue
		}
		for _, d := range dates {
			if !d.IsDir() {
				continue
			}
			path := filepath.Join(r.resultsDir, sym.Name(), d.Name())
			state, err := r.Load(sym.Name(), d.Name())
			if err != nil || state.Decision == nil {
				continue
			}
			out = append(out, Summary{
				Symbol:    state.CompanyOfInterest,
				TradeDate: state.TradeDate,
				Action:    state.Decision.Action,
				CreatedAt: state.Decision.CreatedAt,
				Path:      path,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func renderMarkdown(state *models.TradingState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s 交易分析报告（%s）\n\n", state.CompanyOfInterest, state.TradeDate)
	if state.Decision != nil {
		fmt.Fprintf(&b, "**最终决策：%s**\n\n", state.Decision.Action)
	}

	sections := []struct {
		title string
		body  string
	}{
		{"市场分析", state.Reports[models.ReportMarket]},
		{"社交媒体情绪分析", state.Reports[models.ReportSentiment]},
		{"新闻分析", state.Reports[models.ReportNews]},
		{"基础面分析", state.Reports[models.ReportFundamentals]},
		{"多空辩论", state.InvestmentDebateState.History},
		{"投资计划", state.InvestmentPlan},
		{"交易员计划", state.TraderInvestmentPlan},
		{"风险辩论", state.RiskDebateState.History},
		{"最终交易决策", state.FinalTradeDecision},
	}
	for _, s := range sections {
		if strings.TrimSpace(s.body) == "" {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", s.title, strings.TrimSpace(s.body))
	}
	return b.String()
}
