package layout

import (
	"math"

	"netgraphx/internal/graph"
)

// Circular places nodes evenly on a circle in the given order. It is
// deterministic, which makes it the layout of choice in tests.
type Circular struct {
	config Config
}

// NewCircular creates a circular layout.
func NewCircular(cfg Config) *Circular {
	return &Circular{config: withDefaults(cfg)}
}

// Compute arranges nodes in a circle; edges are ignored.
func (c *Circular) Compute(nodes []string, _ []graph.Edge) (map[string]Position, error) {
	positions := make(map[string]Position, len(nodes))
	if len(nodes) == 0 {
		return positions, nil
	}

	centerX := c.config.Width / 2
	centerY := c.config.Height / 2
	radius := math.Min(centerX, centerY) - c.config.Padding
	step := 2 * math.Pi / float64(len(nodes))

	for i, id := range nodes {
		angle := float64(i) * step
		positions[id] = Position{
			X: centerX + radius*math.Cos(angle),
			Y: centerY + radius*math.Sin(angle),
		}
	}
	return positions, nil
}
