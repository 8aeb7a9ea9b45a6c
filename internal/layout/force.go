package layout

import (
	"math"
	"math/rand"
	"time"

	"netgraphx/internal/graph"
)

// ForceDirected is a spring layout: every pair of nodes repels, connected
// nodes attract, and the step size cools each iteration.
type ForceDirected struct {
	config Config
}

// NewForceDirected creates a force-directed layout.
func NewForceDirected(cfg Config) *ForceDirected {
	return &ForceDirected{config: withDefaults(cfg)}
}

// Compute positions nodes. With a zero seed the result differs per call.
func (f *ForceDirected) Compute(nodes []string, edges []graph.Edge) (map[string]Position, error) {
	cfg := f.config

	if len(nodes) == 0 {
		return make(map[string]Position), nil
	}
	if len(nodes) == 1 {
		return map[string]Position{
			nodes[0]: {X: cfg.Width / 2, Y: cfg.Height / 2},
		}, nil
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	positions := make(map[string]Position, len(nodes))
	for _, id := range nodes {
		positions[id] = Position{
			X: rng.Float64()*(cfg.Width-2*cfg.Padding) + cfg.Padding,
			Y: rng.Float64()*(cfg.Height-2*cfg.Padding) + cfg.Padding,
		}
	}

	// Neighbor lists are slices so that force sums happen in a fixed order
	neighbors := make(map[string][]string, len(nodes))
	seen := make(map[[2]string]bool, len(edges)*2)
	link := func(a, b string) {
		if _, ok := positions[a]; !ok || seen[[2]string{a, b}] {
			return
		}
		if _, ok := positions[b]; !ok {
			return
		}
		seen[[2]string{a, b}] = true
		neighbors[a] = append(neighbors[a], b)
	}
	for _, e := range edges {
		if e.From == e.To {
			continue
		}
		link(e.From, e.To)
		link(e.To, e.From)
	}

	// Optimal distance between nodes
	k := math.Sqrt((cfg.Width * cfg.Height) / float64(len(nodes)))
	temperature := cfg.Width / 10.0

	for iter := 0; iter < cfg.Iterations; iter++ {
		forces := make(map[string]Position, len(nodes))

		// Repulsion between all pairs
		for i, a := range nodes {
			for j := i + 1; j < len(nodes); j++ {
				b := nodes[j]
				dx := positions[a].X - positions[b].X
				dy := positions[a].Y - positions[b].Y
				dist := math.Max(math.Sqrt(dx*dx+dy*dy), 0.01)

				force := (k * k) / dist
				fx := (dx / dist) * force
				fy := (dy / dist) * force

				forces[a] = Position{X: forces[a].X + fx, Y: forces[a].Y + fy}
				forces[b] = Position{X: forces[b].X - fx, Y: forces[b].Y - fy}
			}
		}

		// Attraction along edges
		for _, a := range nodes {
			for _, b := range neighbors[a] {
				dx := positions[a].X - positions[b].X
				dy := positions[a].Y - positions[b].Y
				dist := math.Sqrt(dx*dx + dy*dy)
				if dist < 0.01 {
					continue
				}

				force := (dist * dist) / k
				forces[a] = Position{
					X: forces[a].X - (dx/dist)*force,
					Y: forces[a].Y - (dy/dist)*force,
				}
			}
		}

		cool := 1.0 - float64(iter)/float64(cfg.Iterations)
		for _, id := range nodes {
			fx, fy := forces[id].X, forces[id].Y
			force := math.Sqrt(fx*fx + fy*fy)
			if force == 0 {
				continue
			}
			step := math.Min(force, temperature) * cool
			positions[id] = Position{
				X: positions[id].X + (fx/force)*step,
				Y: positions[id].Y + (fy/force)*step,
			}
		}

		temperature *= 0.95
	}

	return normalize(positions, cfg), nil
}
