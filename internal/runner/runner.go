// Package runner drives one reconciliation of a configuration document
// against the diagram rendered from it.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"netgraphx/internal/builder"
	"netgraphx/internal/compare"
	"netgraphx/internal/document"
	"netgraphx/internal/extract"
	"netgraphx/internal/graph"
	"netgraphx/internal/metrics"
	"netgraphx/internal/oracle"
	"netgraphx/internal/render"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultOracleTimeout bounds each oracle call when no timeout is set.
const DefaultOracleTimeout = 60 * time.Second

// Runner holds the collaborators of a reconciliation. It keeps no per-run
// state and is safe for concurrent use when its collaborators are.
type Runner struct {
	Oracle        oracle.Client
	Renderer      render.Renderer
	Keywords      []string
	OracleTimeout time.Duration
	Logger        *zap.Logger
}

// New creates a Runner with the default filter keywords and oracle timeout.
func New(client oracle.Client, renderer render.Renderer, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		Oracle:        client,
		Renderer:      renderer,
		Keywords:      graph.DefaultExternalKeywords,
		OracleTimeout: DefaultOracleTimeout,
		Logger:        logger,
	}
}

// Report is the result of a completed run.
type Report struct {
	RunID    string `json:"run_id"`
	Filename string `json:"filename"`
	// ConfigTopology is the adjacency list derived from the document.
	ConfigTopology graph.Adjacency `json:"config_topology"`
	// ImageTopology is the adjacency list read back from the diagram, after
	// external infrastructure was removed.
	ImageTopology graph.Adjacency `json:"image_topology"`
	// Removed lists the diagram keys dropped by the external filter.
	Removed   []string           `json:"removed,omitempty"`
	Graph     *graph.Graph       `json:"graph"`
	Match     bool               `json:"match"`
	Diff      compare.Difference `json:"diff"`
	State     State              `json:"state"`
	Processed []byte             `json:"-"`
	Rendering *render.Rendering  `json:"-"`
}

// run is the mutable state of a single reconciliation.
type run struct {
	id       string
	filename string
	content  []byte
	doc      *document.Document
	answer   string
	report   *Report
}

type step func(r *Runner, ctx context.Context, st *run) (State, Kind, error)

var transitions = map[State]step{
	Received:               (*Runner).decode,
	ConfigLoaded:           (*Runner).askConfig,
	ConfigTopologyAnswered: (*Runner).buildGraph,
	GraphBuilt:             (*Runner).render,
	ImageTopologyRequested: (*Runner).askDiagram,
	ImageTopologyAnswered:  (*Runner).filter,
	Filtered:               (*Runner).compare,
	Compared:               (*Runner).report,
}

// RunFile reconciles a raw uploaded file.
func (r *Runner) RunFile(ctx context.Context, filename string, content []byte) (*Report, error) {
	return r.execute(ctx, &run{filename: filename, content: content}, Received)
}

// Run reconciles an already decoded document.
func (r *Runner) Run(ctx context.Context, doc *document.Document) (*Report, error) {
	if doc == nil {
		return nil, &StageError{State: Received, Kind: KindInputFormat, Err: errors.New("no document")}
	}
	return r.execute(ctx, &run{filename: doc.Filename, doc: doc}, ConfigLoaded)
}

func (r *Runner) execute(ctx context.Context, st *run, start State) (*Report, error) {
	st.id = uuid.NewString()
	st.report = &Report{RunID: st.id, Filename: st.filename}
	logger := r.logger().With(zap.String("run_id", st.id), zap.String("filename", st.filename))
	begin := time.Now()
	defer func() { metrics.RunDuration.Observe(time.Since(begin).Seconds()) }()

	state := start
	for !state.Terminal() {
		next, kind, err := transitions[state](r, ctx, st)
		if err != nil {
			serr := &StageError{State: state, Kind: kind, Err: err}
			metrics.StageFailures.WithLabelValues(state.String(), kind.String()).Inc()
			metrics.Runs.WithLabelValues("failed").Inc()
			logger.Error("reconciliation failed",
				zap.Stringer("state", state),
				zap.Stringer("kind", kind),
				zap.Error(err))
			return nil, serr
		}
		logger.Debug("state transition", zap.Stringer("from", state), zap.Stringer("to", next))
		state = next
	}

	st.report.State = state
	outcome := "mismatch"
	if st.report.Match {
		outcome = "match"
	}
	metrics.Runs.WithLabelValues(outcome).Inc()
	logger.Info("reconciliation finished", zap.Bool("match", st.report.Match))
	return st.report, nil
}

func (r *Runner) decode(_ context.Context, st *run) (State, Kind, error) {
	doc, err := document.Decode(st.filename, st.content)
	if err != nil {
		return Failed, KindInputFormat, err
	}
	st.doc = doc
	return ConfigLoaded, 0, nil
}

func (r *Runner) askConfig(ctx context.Context, st *run) (State, Kind, error) {
	processed, err := st.doc.Processed()
	if err != nil {
		return Failed, KindInputFormat, err
	}
	st.report.Processed = processed

	answer, err := r.ask(ctx, "config", oracle.ConfigRequest(string(processed)))
	if err != nil {
		return Failed, KindOracleUnavailable, err
	}
	st.answer = answer
	return ConfigTopologyAnswered, 0, nil
}

func (r *Runner) buildGraph(_ context.Context, st *run) (State, Kind, error) {
	adj, kind, err := parseAnswer(st.answer)
	if err != nil {
		return Failed, kind, err
	}
	st.report.ConfigTopology = adj
	st.report.Graph = builder.Build(adj)
	return GraphBuilt, 0, nil
}

func (r *Runner) render(ctx context.Context, st *run) (State, Kind, error) {
	if r.Renderer == nil {
		return Failed, KindRender, errors.New("no renderer configured")
	}
	rendering, err := r.Renderer.Render(ctx, st.report.Graph)
	if err != nil {
		return Failed, KindRender, err
	}
	st.report.Rendering = rendering
	return ImageTopologyRequested, 0, nil
}

func (r *Runner) askDiagram(ctx context.Context, st *run) (State, Kind, error) {
	answer, err := r.ask(ctx, "diagram", oracle.DiagramRequest(st.report.Rendering.PNG))
	if err != nil {
		return Failed, KindOracleUnavailable, err
	}
	st.answer = answer
	return ImageTopologyAnswered, 0, nil
}

func (r *Runner) filter(_ context.Context, st *run) (State, Kind, error) {
	adj, kind, err := parseAnswer(st.answer)
	if err != nil {
		return Failed, kind, err
	}
	filtered := adj.FilterExternal(r.Keywords)
	for _, key := range adj.Keys() {
		if _, kept := filtered[key]; !kept {
			st.report.Removed = append(st.report.Removed, key)
		}
	}
	st.report.ImageTopology = filtered
	return Filtered, 0, nil
}

func (r *Runner) compare(_ context.Context, st *run) (State, Kind, error) {
	st.report.Match = compare.Equivalent(st.report.ConfigTopology, st.report.ImageTopology)
	return Compared, 0, nil
}

func (r *Runner) report(_ context.Context, st *run) (State, Kind, error) {
	if !st.report.Match {
		st.report.Diff = compare.Diff(st.report.ConfigTopology, st.report.ImageTopology)
	}
	return Reported, 0, nil
}

// ask performs one bounded oracle call.
func (r *Runner) ask(ctx context.Context, name string, req oracle.Request) (string, error) {
	if r.Oracle == nil {
		return "", errors.New("no oracle configured")
	}
	timeout := r.OracleTimeout
	if timeout <= 0 {
		timeout = DefaultOracleTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	begin := time.Now()
	answer, err := r.Oracle.Generate(ctx, req)
	metrics.OracleDuration.WithLabelValues(name).Observe(time.Since(begin).Seconds())
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%s request timed out after %s: %w", name, timeout, err)
		}
		return "", fmt.Errorf("%s request failed: %w", name, err)
	}
	return answer, nil
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func parseAnswer(answer string) (graph.Adjacency, Kind, error) {
	adj, err := extract.Adjacency(answer)
	if err != nil {
		if extract.IsExtractionError(err) {
			return nil, KindAnswerExtraction, err
		}
		return nil, KindAnswerParse, err
	}
	return adj, 0, nil
}
