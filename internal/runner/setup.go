package runner

import (
	"context"
	"fmt"

	"netgraphx/internal/config"
	"netgraphx/internal/layout"
	"netgraphx/internal/oracle"
	"netgraphx/internal/render"

	"go.uber.org/zap"
)

// NewFromConfig wires a Runner with the Gemini oracle and the Graphviz
// renderer described by cfg.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Runner, error) {
	gemini, err := oracle.NewGemini(ctx, cfg.Oracle.APIKey, cfg.Oracle.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create oracle client: %w", err)
	}

	renderer, err := NewRenderer(cfg.Render)
	if err != nil {
		return nil, err
	}

	r := New(oracle.WithRetry(gemini, cfg.Oracle.RetryAttempts, cfg.Oracle.RetryBackoff), renderer, logger)
	r.Logger.Debug("runner configured",
		zap.String("model", gemini.Model()),
		zap.String("renderer", renderer.Command),
		zap.Int("oracle_attempts", cfg.Oracle.RetryAttempts))
	r.OracleTimeout = cfg.Oracle.Timeout
	if len(cfg.Filter.Keywords) > 0 {
		r.Keywords = cfg.Filter.Keywords
	}
	return r, nil
}

// NewRenderer builds the Graphviz renderer from the render settings.
func NewRenderer(cfg config.RenderConfig) (*render.Graphviz, error) {
	l, err := layout.New(cfg.Layout, layout.Config{
		Width:      cfg.Width,
		Height:     cfg.Height,
		Iterations: cfg.Iterations,
		Seed:       cfg.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create layout: %w", err)
	}

	icons := render.DefaultIcons()
	if len(cfg.Icons) > 0 {
		icons, err = render.NewIconSet(cfg.Icons)
		if err != nil {
			return nil, fmt.Errorf("failed to load icons: %w", err)
		}
	}

	return render.NewGraphviz(l, icons, cfg.Command, cfg.Timeout), nil
}
