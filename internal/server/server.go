// Package server is the web front end: an HTML page plus a JSON search
// endpoint that runs the pipeline for every request.
package server

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hejijunhao/camscan/internal/connector"
	"github.com/hejijunhao/camscan/internal/output"
	"github.com/hejijunhao/camscan/internal/pipeline"
)

// Config wires the server to its device sources and classifier.
type Config struct {
	Live       connector.Connector
	LiveConfig connector.ConnectorConfig
	Demo       connector.Connector
	DemoConfig connector.ConnectorConfig
	Processor  pipeline.Processor
	// Output, when set, receives every successful report. It should not
	// block; wrap slow sinks with output/async.
	Output  output.Output
	GinMode string
}

// Server serves the web UI and the search API.
type Server struct {
	cfg    Config
	router *gin.Engine
}

// New builds the gin router. Panics if the embedded assets are malformed.
func New(cfg Config) *Server {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger())

	tmpl := template.Must(template.ParseFS(assets, "web/templates/*.html"))
	r.SetHTMLTemplate(tmpl)
	static, err := fs.Sub(assets, "web/static")
	if err != nil {
		panic(err)
	}
	r.StaticFS("/static", http.FS(static))

	s := &Server{cfg: cfg, router: r}
	r.GET("/", s.handleIndex)
	r.GET("/health", s.handleHealth)
	r.POST("/search", s.handleSearch)
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully,
// giving in-flight requests up to shutdownTimeout to finish.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server", "timeout", shutdownTimeout)
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

// Close releases the report output, if any.
func (s *Server) Close() error {
	if s.cfg.Output == nil {
		return nil
	}
	return s.cfg.Output.Close()
}
