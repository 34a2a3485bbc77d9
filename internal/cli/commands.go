// Package cli provides the command-line interface of TradingAgents-M.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MmaoM0225/TradingAgents-M/internal/config"
	"github.com/MmaoM0225/TradingAgents-M/internal/debug"
	"github.com/MmaoM0225/TradingAgents-M/internal/graph"
	"github.com/MmaoM0225/TradingAgents-M/internal/logx"
	"github.com/MmaoM0225/TradingAgents-M/internal/results"
)

const version = "1.0.0"

// NewRootCmd creates the root command. Running it without a subcommand
// starts an interactive session.
func NewRootCmd() *cobra.Command {
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:   "tradingagents",
		Short: "TradingAgents-M - 多智能体大语言模型交易分析",
		Long: `TradingAgents-M runs a team of LLM agents through market analysis,
bull/bear debate, trading and risk review to produce a BUY/SELL/HOLD decision.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			if v, _ := cmd.Flags().GetBool("debug"); v {
				loaded.Debug = true
			}
			logx.Init(loaded.Debug)
			if err := loaded.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			cfg = loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(RenderBanner())
			symbol, err := PromptForTicker()
			if err != nil {
				return err
			}
			date, err := PromptForAnalysisDate()
			if err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), cfg, symbol, date)
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(newAnalyzeCmd(&cfg))
	rootCmd.AddCommand(newReflectCmd(&cfg))
	rootCmd.AddCommand(newHistoryCmd(&cfg))
	rootCmd.AddCommand(newConfigCmd(&cfg))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newAnalyzeCmd(cfg **config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze SYMBOL",
		Short: "Run a full trading analysis for a stock symbol",
		Example: `  tradingagents analyze AAPL --date 2026-03-15
  tradingagents analyze 700.HK`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dateStr, _ := cmd.Flags().GetString("date")
			date := time.Now()
			if dateStr != "" {
				parsed, err := time.Parse("2006-01-02", dateStr)
				if err != nil {
					return fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
				}
				date = parsed
			}
			return runAnalyze(cmd.Context(), *cfg, args[0], date)
		},
	}
	cmd.Flags().String("date", "", "Analysis date in YYYY-MM-DD format (defaults to today)")
	return cmd
}

func newReflectCmd(cfg **config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reflect SYMBOL",
		Short: "Reflect on a past run against realized returns and update agent memories",
		Example: `  tradingagents reflect AAPL --date 2026-03-15 --returns "+5.2%"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dateStr, _ := cmd.Flags().GetString("date")
			returns, _ := cmd.Flags().GetString("returns")
			return runReflect(cmd.Context(), *cfg, args[0], dateStr, returns)
		},
	}
	cmd.Flags().String("date", "", "Trade date of the saved run (YYYY-MM-DD)")
	cmd.Flags().String("returns", "", "Realized returns or losses since the decision, e.g. +5.2% or -3.1%")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("returns")
	return cmd
}

func newHistoryCmd(cfg **config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List saved analysis runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := results.NewRecorder(*cfg).List()
			if err != nil {
				return err
			}
			fmt.Println(RenderHistory(rows))
			return nil
		},
	}
}

func newConfigCmd(cfg **config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(*cfg)
		},
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*cfg).Validate(); err != nil {
				return err
			}
			fmt.Println("configuration OK")
			return nil
		},
	})
	return configCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("TradingAgents-M v%s\n", version)
		},
	}
}

func runAnalyze(ctx context.Context, cfg *config.Config, symbol string, date time.Time) error {
	if err := debug.NewEinoDebugger(cfg).Initialize(ctx); err != nil {
		logx.Warn().Err(err).Msg("eino debug server unavailable")
	}

	g, err := graph.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("building trading graph: %w", err)
	}
	defer g.Close()

	fmt.Printf("开始分析 %s（%s）...\n", symbol, date.Format("2006-01-02"))
	state, err := g.Propagate(ctx, symbol, date)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	runDir, err := results.NewRecorder(cfg).Save(state)
	if err != nil {
		logx.Warn().Err(err).Msg("saving run artifacts failed")
	}

	fmt.Println(RenderDecision(state, runDir))
	return nil
}

func runReflect(ctx context.Context, cfg *config.Config, symbol, dateStr, returns string) error {
	if _, err := time.Parse("2006-01-02", dateStr); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
	}

	state, err := results.NewRecorder(cfg).Load(symbol, dateStr)
	if err != nil {
		return err
	}

	g, err := graph.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("building trading graph: %w", err)
	}
	defer g.Close()

	if err := g.Reflect(ctx, state, returns); err != nil {
		return err
	}
	fmt.Printf("已根据收益 %s 更新 %s（%s）的反思记忆\n", returns, symbol, dateStr)
	return nil
}

func showConfig(cfg *config.Config) {
	fmt.Println("当前配置:")
	fmt.Printf("  Results Directory:     %s\n", cfg.ResultsDir)
	fmt.Printf("  Data Directory:        %s\n", cfg.DataDir)
	fmt.Printf("  Cache Directory:       %s\n", cfg.DataCacheDir)
	fmt.Printf("  Memory Directory:      %s\n", cfg.MemoryDir)
	fmt.Printf("  LLM Provider:          %s\n", cfg.LLMProvider)
	fmt.Printf("  Deep-Think Model:      %s\n", cfg.DeepThinkLLM)
	fmt.Printf("  Quick-Think Model:     %s\n", cfg.QuickThinkLLM)
	fmt.Printf("  Embedding Model:       %s\n", cfg.EmbeddingModel)
	fmt.Printf("  Debate Rounds:         %d\n", cfg.MaxDebateRounds)
	fmt.Printf("  Risk Discuss Rounds:   %d\n", cfg.MaxRiskDiscussRounds)
	fmt.Printf("  Max Tool Rounds:       %d\n", cfg.MaxToolRounds)
	fmt.Printf("  Online Tools:          %t\n", cfg.OnlineTools)
	fmt.Printf("  Cache Enabled:         %t\n", cfg.CacheEnabled)
}
