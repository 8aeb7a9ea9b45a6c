// Package server exposes reconciliation over HTTP.
package server

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"netgraphx/internal/runner"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MaxUploadSize bounds the uploaded configuration document.
const MaxUploadSize = 8 << 20

// Reconciler runs one reconciliation of an uploaded file.
type Reconciler interface {
	RunFile(ctx context.Context, filename string, content []byte) (*runner.Report, error)
}

// Handler serves the reconciliation API.
type Handler struct {
	reconciler Reconciler
	logger     *zap.Logger
}

// NewHandler builds a Handler.
func NewHandler(reconciler Reconciler, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{reconciler: reconciler, logger: logger}
}

// RegisterRoutes adds the API routes to rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/reconcile", h.handleReconcile)
}

type reconcileResponse struct {
	*runner.Report
	Processed string `json:"processed"`
	Image     string `json:"image,omitempty"`
	DOT       string `json:"dot,omitempty"`
}

func (h *Handler) handleReconcile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" is required"})
		return
	}
	if header.Size > MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file is too large"})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read upload"})
		return
	}
	content, err := io.ReadAll(io.LimitReader(f, MaxUploadSize))
	f.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read upload"})
		return
	}

	report, err := h.reconciler.RunFile(c.Request.Context(), header.Filename, content)
	if err != nil {
		status := StatusFor(err)
		h.logger.Error("reconcile failed", zap.String("filename", header.Filename), zap.Int("status", status), zap.Error(err))
		c.JSON(status, gin.H{"error": err.Error(), "kind": runner.KindOf(err).String()})
		return
	}

	resp := reconcileResponse{Report: report, Processed: string(report.Processed)}
	if report.Rendering != nil {
		resp.Image = base64.StdEncoding.EncodeToString(report.Rendering.PNG)
		resp.DOT = report.Rendering.DOT
	}
	c.JSON(http.StatusOK, resp)
}

// StatusFor maps a run failure to an HTTP status code.
func StatusFor(err error) int {
	switch runner.KindOf(err) {
	case runner.KindInputFormat:
		return http.StatusBadRequest
	case runner.KindAnswerExtraction, runner.KindAnswerParse:
		return http.StatusBadGateway
	case runner.KindOracleUnavailable:
		return http.StatusServiceUnavailable
	default:
		if errors.Is(err, context.Canceled) {
			return 499
		}
		return http.StatusInternalServerError
	}
}

// NewEngine builds the gin engine with the API, health and metrics routes.
func NewEngine(h *Handler, gatherer prometheus.Gatherer) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.MaxMultipartMemory = MaxUploadSize

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := engine.Group("/api/v1")
	h.RegisterRoutes(api)

	return engine
}

// Run serves engine on listen until ctx is cancelled.
func Run(ctx context.Context, engine *gin.Engine, listen string, logger *zap.Logger) error {
	listen = strings.TrimSpace(listen)
	if listen == "" {
		listen = ":8080"
	}
	srv := &http.Server{
		Addr:              listen,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("listen", listen))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("http server stopping")
		return srv.Shutdown(shutdownCtx)
	}
}
