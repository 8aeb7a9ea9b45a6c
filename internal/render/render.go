// Package render draws a topology graph as a PNG image.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"netgraphx/internal/graph"
	"netgraphx/internal/layout"
)

// ErrEmptyGraph is returned for graphs without nodes; there is nothing to draw.
var ErrEmptyGraph = errors.New("cannot render an empty graph")

// Rendering is the output of a renderer.
type Rendering struct {
	DOT       string
	PNG       []byte
	Positions map[string]layout.Position
}

// Renderer turns a topology graph into an image.
type Renderer interface {
	Render(ctx context.Context, g *graph.Graph) (*Rendering, error)
}

// Graphviz lays out the graph with Layout and rasterizes it with a Graphviz
// binary that honours pinned positions.
type Graphviz struct {
	Layout  layout.Layout
	Icons   IconSet
	Command string
	Timeout time.Duration
}

// DefaultCommand is the Graphviz engine used when none is configured.
const DefaultCommand = "neato"

// NewGraphviz creates a Graphviz renderer. Missing icon files are dropped so
// those roles render as plain shapes.
func NewGraphviz(l layout.Layout, icons IconSet, command string, timeout time.Duration) *Graphviz {
	if command == "" {
		command = DefaultCommand
	}
	if icons == nil {
		icons = DefaultIcons()
	}
	return &Graphviz{
		Layout:  l,
		Icons:   icons.Available(),
		Command: command,
		Timeout: timeout,
	}
}

// Render computes a layout, builds the DOT source and runs Graphviz on it.
func (r *Graphviz) Render(ctx context.Context, g *graph.Graph) (*Rendering, error) {
	if g == nil || g.Len() == 0 {
		return nil, ErrEmptyGraph
	}

	positions, err := r.Layout.Compute(g.NodeIDs(), g.Edges)
	if err != nil {
		return nil, fmt.Errorf("failed to compute layout: %w", err)
	}

	dot, err := DOT(g, positions, r.Icons)
	if err != nil {
		return nil, fmt.Errorf("failed to build DOT source: %w", err)
	}

	png, err := r.rasterize(ctx, dot)
	if err != nil {
		return nil, err
	}

	return &Rendering{DOT: dot, PNG: png, Positions: positions}, nil
}

// rasterize runs `<command> -n2 -Tpng` with the DOT source on stdin.
func (r *Graphviz) rasterize(ctx context.Context, dot string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.Command, "-n2", "-Tpng")
	cmd.Stdin = strings.NewReader(dot)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s timed out: %w", r.Command, ctx.Err())
		}
		return nil, fmt.Errorf("%s command failed: %w - %s", r.Command, err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%s produced no output", r.Command)
	}

	return stdout.Bytes(), nil
}

// Available reports whether the configured Graphviz command is on PATH.
func (r *Graphviz) Available() (string, error) {
	return exec.LookPath(r.Command)
}
