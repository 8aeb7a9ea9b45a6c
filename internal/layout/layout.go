// Package layout computes 2D node positions for rendering a topology graph.
// Positions only matter to the renderer; nothing else depends on them.
package layout

import (
	"fmt"
	"math"

	"netgraphx/internal/graph"
)

// Position is a 2D coordinate in points.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Config configures layout parameters.
type Config struct {
	Width      float64 // Canvas width
	Height     float64 // Canvas height
	Iterations int     // Number of iterations for iterative algorithms
	Padding    float64 // Padding from edges
	Seed       int64   // Random seed; 0 seeds from the clock
}

// Layout assigns a position to every node.
type Layout interface {
	Compute(nodes []string, edges []graph.Edge) (map[string]Position, error)
}

// New returns the layout registered under name.
func New(name string, cfg Config) (Layout, error) {
	switch name {
	case "", "spring", "force":
		return NewForceDirected(cfg), nil
	case "circular":
		return NewCircular(cfg), nil
	default:
		return nil, fmt.Errorf("unknown layout %q", name)
	}
}

func withDefaults(cfg Config) Config {
	if cfg.Width == 0 {
		cfg.Width = 600
	}
	if cfg.Height == 0 {
		cfg.Height = 400
	}
	if cfg.Iterations == 0 {
		cfg.Iterations = 50
	}
	if cfg.Padding == 0 {
		cfg.Padding = 50
	}
	return cfg
}

// normalize scales positions to fit within the canvas minus padding.
func normalize(positions map[string]Position, cfg Config) map[string]Position {
	if len(positions) == 0 {
		return positions
	}

	minX, maxX := math.MaxFloat64, -math.MaxFloat64
	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	for _, pos := range positions {
		minX = math.Min(minX, pos.X)
		maxX = math.Max(maxX, pos.X)
		minY = math.Min(minY, pos.Y)
		maxY = math.Max(maxY, pos.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX < 0.01 {
		rangeX = 1
	}
	if rangeY < 0.01 {
		rangeY = 1
	}

	targetWidth := cfg.Width - 2*cfg.Padding
	targetHeight := cfg.Height - 2*cfg.Padding

	normalized := make(map[string]Position, len(positions))
	for id, pos := range positions {
		normalized[id] = Position{
			X: cfg.Padding + ((pos.X-minX)/rangeX)*targetWidth,
			Y: cfg.Padding + ((pos.Y-minY)/rangeY)*targetHeight,
		}
	}
	return normalized
}
