// Package debug hosts the optional eino visual debug server.
package debug

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/devops"

	"github.com/MmaoM0225/TradingAgents-M/internal/config"
	"github.com/MmaoM0225/TradingAgents-M/internal/logx"
)

// EinoDebugger starts the eino devops plugin when enabled in config.
type EinoDebugger struct {
	cfg *config.Config
}

func NewEinoDebugger(cfg *config.Config) *EinoDebugger {
	return &EinoDebugger{cfg: cfg}
}

// Initialize starts the debug server. It is a no-op when disabled.
func (d *EinoDebugger) Initialize(ctx context.Context) error {
	if !d.cfg.EinoDebugEnabled {
		return nil
	}
	if err := devops.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize eino debug plugin: %w", err)
	}
	logx.Info().Str("url", d.URL()).Msg("eino debug server started")
	return nil
}

// URL returns the local debug UI address, empty when disabled.
func (d *EinoDebugger) URL() string {
	if !d.cfg.EinoDebugEnabled {
		return ""
	}
	return fmt.Sprintf("http://localhost:%d", d.cfg.EinoDebugPort)
}
