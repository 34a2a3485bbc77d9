// Package graph sequences a full deliberation run: analyst fan-out, the two
// debates with their judges, the trader, and final signal extraction. Control
// flow is an explicit stage machine over one shared TradingState.
package graph

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cloudwego/eino/schema"
	"golang.org/x/sync/errgroup"

	"github.com/MmaoM0225/TradingAgents-M/internal/agents"
	"github.com/MmaoM0225/TradingAgents-M/internal/config"
	"github.com/MmaoM0225/TradingAgents-M/internal/dataflows"
	"github.com/MmaoM0225/TradingAgents-M/internal/llm"
	"github.com/MmaoM0225/TradingAgents-M/internal/logx"
	"github.com/MmaoM0225/TradingAgents-M/internal/memory"
	"github.com/MmaoM0225/TradingAgents-M/internal/models"
	"github.com/MmaoM0225/TradingAgents-M/internal/tools"
)

// Stage names one phase of a run. The sequencer executes the current stage,
// then asks NextStage where to go; debate stages loop until their turn
// budget is spent.
type Stage string

const (
	StageAnalysts        Stage = "analysts"
	StageInvestDebate    Stage = "investment_debate"
	StageResearchManager Stage = "research_manager"
	StageTrader          Stage = "trader"
	StageRiskDebate      Stage = "risk_debate"
	StageRiskJudge       Stage = "risk_judge"
	StageSignal          Stage = "signal"
	StageDone            Stage = "done"
)

// NextStage is the pure transition function of the stage machine.
func NextStage(cur Stage, state *models.TradingState, maxDebateRounds, maxRiskRounds int) Stage {
	switch cur {
	case StageAnalysts:
		return StageInvestDebate
	case StageInvestDebate:
		if InvestDebateDone(state.InvestmentDebateState, maxDebateRounds) {
			return StageResearchManager
		}
		return StageInvestDebate
	case StageResearchManager:
		return StageTrader
	case StageTrader:
		return StageRiskDebate
	case StageRiskDebate:
		if RiskDebateDone(state.RiskDebateState, maxRiskRounds) {
			return StageRiskJudge
		}
		return StageRiskDebate
	case StageRiskJudge:
		return StageSignal
	default:
		return StageDone
	}
}

// TradingAgentsGraph wires every role node to one configuration and drives
// complete runs.
type TradingAgentsGraph struct {
	cfg *config.Config

	analysts        []*agents.Analyst
	bull            *agents.Researcher
	bear            *agents.Researcher
	researchManager *agents.ResearchManager
	trader          *agents.Trader
	riskDebater     *agents.RiskDebater
	riskManager     *agents.RiskManager
	extractor       *SignalExtractor
	reflector       *Reflector

	memories *Memories
}

// New builds the full graph: data flows, toolkit, per-role chat models and
// the five role memories. Memory is optional; without an embedding backend
// the run proceeds with no past reflections.
func New(ctx context.Context, cfg *config.Config) (*TradingAgentsGraph, error) {
	df := dataflows.New(cfg)
	tk := tools.NewToolkit(cfg, df)

	mems := openMemories(cfg)

	analysts := make([]*agents.Analyst, 0, len(agents.AnalystRoles()))
	for _, role := range agents.AnalystRoles() {
		// Tool binding is per model instance, so every analyst gets its own.
		cm, err := llm.NewChatModel(ctx, cfg, cfg.QuickThinkLLM)
		if err != nil {
			return nil, fmt.Errorf("chat model for %s: %w", role.Name, err)
		}
		analyst, err := agents.NewAnalyst(ctx, cfg, cm, tk, role)
		if err != nil {
			return nil, fmt.Errorf("analyst %s: %w", role.Name, err)
		}
		analysts = append(analysts, analyst)
	}

	quick, err := llm.NewChatModel(ctx, cfg, cfg.QuickThinkLLM)
	if err != nil {
		return nil, fmt.Errorf("quick-thinking chat model: %w", err)
	}
	deep, err := llm.NewChatModel(ctx, cfg, cfg.DeepThinkLLM)
	if err != nil {
		return nil, fmt.Errorf("deep-thinking chat model: %w", err)
	}

	return &TradingAgentsGraph{
		cfg:             cfg,
		analysts:        analysts,
		bull:            agents.NewResearcher(quick, mems.Bull, cfg.MemoryMatches),
		bear:            agents.NewResearcher(quick, mems.Bear, cfg.MemoryMatches),
		researchManager: agents.NewResearchManager(deep, mems.InvestJudge, cfg.MemoryMatches),
		trader:          agents.NewTrader(quick, mems.Trader, cfg.MemoryMatches),
		riskDebater:     agents.NewRiskDebater(quick),
		riskManager:     agents.NewRiskManager(deep, mems.RiskJudge, cfg.MemoryMatches),
		extractor:       NewSignalExtractor(quick),
		reflector:       NewReflector(quick),
		memories:        mems,
	}, nil
}

// openMemories opens the five role memories backed by one sqlite file. Any
// failure leaves the corresponding memory nil.
func openMemories(cfg *config.Config) *Memories {
	embedder, err := llm.NewOpenAIEmbedder(cfg)
	if err != nil {
		logx.Warn().Err(err).Msg("no embedding backend, running without memories")
		return &Memories{}
	}

	dbPath := filepath.Join(cfg.MemoryDir, "memories.db")
	open := func(role string) *memory.Memory {
		mem, err := memory.Open(dbPath, role, embedder)
		if err != nil {
			logx.Warn().Err(err).Str("role", role).Msg("opening memory failed")
			return nil
		}
		return mem
	}
	return &Memories{
		Bull:        open(memory.RoleBull),
		Bear:        open(memory.RoleBear),
		Trader:      open(memory.RoleTrader),
		InvestJudge: open(memory.RoleInvestJudge),
		RiskJudge:   open(memory.RoleRiskJudge),
	}
}

// Propagate runs one complete deliberation for the symbol on the trade date
// and returns the final state, decision included.
func (g *TradingAgentsGraph) Propagate(ctx context.Context, symbol string, date time.Time) (*models.TradingState, error) {
	symbol = dataflows.NormalizeSymbol(symbol)
	if err := dataflows.ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	state := models.NewTradingState(symbol, date)

	stage := StageAnalysts
	for stage != StageDone {
		logx.Info().Str("stage", string(stage)).Str("symbol", symbol).Msg("entering stage")
		if err := g.step(ctx, stage, state); err != nil {
			return state, fmt.Errorf("stage %s: %w", stage, err)
		}
		stage = NextStage(stage, state, g.cfg.MaxDebateRounds, g.cfg.MaxRiskDiscussRounds)
	}
	return state, nil
}

func (g *TradingAgentsGraph) step(ctx context.Context, stage Stage, state *models.TradingState) error {
	switch stage {
	case StageAnalysts:
		return g.runAnalysts(ctx, state)

	case StageInvestDebate:
		var (
			next *models.InvestDebateState
			err  error
		)
		if NextInvestSpeaker(state.InvestmentDebateState) == "bull" {
			next, err = g.bull.BullTurn(ctx, state)
		} else {
			next, err = g.bear.BearTurn(ctx, state)
		}
		if err != nil {
			return err
		}
		state.InvestmentDebateState = next
		return nil

	case StageResearchManager:
		next, err := g.researchManager.Judge(ctx, state)
		if err != nil {
			return err
		}
		state.InvestmentDebateState = next
		state.InvestmentPlan = next.JudgeDecision
		return nil

	case StageTrader:
		plan, err := g.trader.Plan(ctx, state)
		if err != nil {
			return err
		}
		state.TraderInvestmentPlan = plan
		return nil

	case StageRiskDebate:
		var (
			next *models.RiskDebateState
			err  error
		)
		switch NextRiskSpeaker(state.RiskDebateState) {
		case agents.SpeakerRisky:
			next, err = g.riskDebater.RiskyTurn(ctx, state)
		case agents.SpeakerSafe:
			next, err = g.riskDebater.SafeTurn(ctx, state)
		default:
			next, err = g.riskDebater.NeutralTurn(ctx, state)
		}
		if err != nil {
			return err
		}
		state.RiskDebateState = next
		return nil

	case StageRiskJudge:
		next, err := g.riskManager.Judge(ctx, state)
		if err != nil {
			return err
		}
		state.RiskDebateState = next
		state.FinalTradeDecision = next.JudgeDecision
		return nil

	case StageSignal:
		action, err := g.extractor.Extract(ctx, state.FinalTradeDecision)
		if err != nil {
			logx.Warn().Err(err).Msg("signal extraction failed, defaulting to HOLD")
			action = models.ActionHold
		}
		state.Decision = &models.TradingDecision{
			Symbol:    state.CompanyOfInterest,
			TradeDate: state.TradeDate,
			Action:    action,
			Rationale: state.FinalTradeDecision,
			CreatedAt: time.Now(),
		}
		return nil
	}
	return nil
}

// runAnalysts fans the four analysts out concurrently. A failed analyst
// degrades to a placeholder report; the run continues on whatever data the
// remaining analysts produced.
func (g *TradingAgentsGraph) runAnalysts(ctx context.Context, state *models.TradingState) error {
	eg, egCtx := errgroup.WithContext(ctx)
	reports := make([]string, len(g.analysts))
	convos := make([][]*schema.Message, len(g.analysts))

	for i, analyst := range g.analysts {
		eg.Go(func() error {
			report, convo, err := analyst.Run(egCtx, state)
			if err != nil {
				logx.Error().Err(err).Str("analyst", analyst.Role().Name).Msg("analyst failed, using placeholder report")
				report = fmt.Sprintf("（%s 报告生成失败：%v）", analyst.Role().Name, err)
			}
			reports[i], convos[i] = report, convo
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	// Merge in dispatch order so the shared conversation is deterministic.
	for i, analyst := range g.analysts {
		state.Reports[analyst.Role().Kind] = reports[i]
		state.Messages = append(state.Messages, convos[i]...)
	}
	return nil
}

// Reflect reviews a finished run against realized returns or losses and
// updates every role memory.
func (g *TradingAgentsGraph) Reflect(ctx context.Context, state *models.TradingState, returnsLosses string) error {
	return g.reflector.ReflectAll(ctx, state, returnsLosses, g.memories)
}

// Close releases the role memories.
func (g *TradingAgentsGraph) Close() {
	g.memories.Close()
}
