package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"netgraphx/internal/graph"
	"netgraphx/internal/render"
	"netgraphx/internal/runner"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reconcilerFunc func(ctx context.Context, filename string, content []byte) (*runner.Report, error)

func (f reconcilerFunc) RunFile(ctx context.Context, filename string, content []byte) (*runner.Report, error) {
	return f(ctx, filename, content)
}

func upload(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reconcile", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestReconcile(t *testing.T) {
	var gotName, gotContent string
	rec := reconcilerFunc(func(ctx context.Context, filename string, content []byte) (*runner.Report, error) {
		gotName, gotContent = filename, string(content)
		return &runner.Report{
			RunID:          "abc",
			Filename:       filename,
			ConfigTopology: graph.Adjacency{"R1": {}},
			ImageTopology:  graph.Adjacency{"R1": {}},
			Match:          true,
			State:          runner.Reported,
			Processed:      []byte(`{"filename": "net.yaml"}`),
			Rendering:      &render.Rendering{PNG: []byte("png"), DOT: "graph topology {}"},
		}, nil
	})
	engine := NewEngine(NewHandler(rec, nil), nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, upload(t, "file", "net.yaml", "devices: []"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, "net.yaml", gotName)
	assert.Equal(t, "devices: []", gotContent)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "abc", resp["run_id"])
	assert.Equal(t, true, resp["match"])
	assert.Equal(t, "Reported", resp["state"])
	assert.Equal(t, "cG5n", resp["image"])
	assert.Equal(t, `{"filename": "net.yaml"}`, resp["processed"])
}

func TestReconcileMissingFile(t *testing.T) {
	engine := NewEngine(NewHandler(reconcilerFunc(nil), nil), nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, upload(t, "document", "net.yaml", "x: 1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReconcileErrorStatus(t *testing.T) {
	tests := []struct {
		kind runner.Kind
		want int
	}{
		{runner.KindInputFormat, http.StatusBadRequest},
		{runner.KindOracleUnavailable, http.StatusServiceUnavailable},
		{runner.KindAnswerExtraction, http.StatusBadGateway},
		{runner.KindAnswerParse, http.StatusBadGateway},
		{runner.KindRender, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			rec := reconcilerFunc(func(ctx context.Context, filename string, content []byte) (*runner.Report, error) {
				return nil, &runner.StageError{State: runner.ConfigLoaded, Kind: tt.kind, Err: errors.New("boom")}
			})
			engine := NewEngine(NewHandler(rec, nil), nil)

			w := httptest.NewRecorder()
			engine.ServeHTTP(w, upload(t, "file", "net.json", "{}"))
			assert.Equal(t, tt.want, w.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.kind.String(), resp["kind"])
			assert.Contains(t, resp["error"], "boom")
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "netgraphx_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	engine := NewEngine(NewHandler(reconcilerFunc(nil), nil), reg)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "netgraphx_test_total 1")
}
