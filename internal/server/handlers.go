package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hejijunhao/camscan/internal/config"
	"github.com/hejijunhao/camscan/internal/connector"
	"github.com/hejijunhao/camscan/internal/connector/httpclient"
	"github.com/hejijunhao/camscan/internal/engine/classifier"
	"github.com/hejijunhao/camscan/internal/logging"
	"github.com/hejijunhao/camscan/internal/model"
	"github.com/hejijunhao/camscan/internal/pipeline"
)

type searchRequest struct {
	Query   string `json:"query"`
	UseDemo bool   `json:"use_demo"`
}

type searchResponse struct {
	Success   bool                  `json:"success"`
	Total     int                   `json:"total"`
	Devices   []model.ScoredDevice  `json:"devices"`
	DemoMode  bool                  `json:"demo_mode,omitempty"`
	MLResults *model.Classification `json:"ml_results"`
}

type errorResponse struct {
	Error       string `json:"error"`
	SuggestDemo bool   `json:"suggest_demo,omitempty"`
}

const (
	msgInvalidKey = "Invalid API key. Try Demo Mode instead."
	msgNoCredits  = "No query credits available. Try Demo Mode to see how the app works with sample data."
)

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{"Version": config.Version})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" && !req.UseDemo {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Query is required"})
		return
	}

	ctx := logging.ContextAttrs(c.Request.Context(),
		slog.String("query", req.Query), slog.Bool("demo", req.UseDemo))

	var p *pipeline.Pipeline
	if req.UseDemo {
		p = pipeline.New(s.cfg.Demo, s.cfg.DemoConfig, s.cfg.Processor,
			pipeline.WithDemoMode(), pipeline.WithOutput(s.cfg.Output))
	} else {
		p = pipeline.New(s.cfg.Live, s.cfg.LiveConfig, s.cfg.Processor,
			pipeline.WithOutput(s.cfg.Output))
	}

	report, err := p.Run(ctx, req.Query)
	if err != nil && report == nil {
		status, body := errorStatus(err, req.UseDemo)
		slog.Log(ctx, levelFor(status), "search failed", "status", status, "error", err)
		c.JSON(status, body)
		return
	}
	if err != nil {
		// report produced, delivery to the configured output failed
		slog.WarnContext(ctx, "report output failed", "error", err)
	}

	slog.InfoContext(ctx, "search complete",
		"total", report.Total,
		"devices", len(report.Devices),
		"classified", report.Classification != nil,
	)
	c.JSON(http.StatusOK, searchResponse{
		Success:   true,
		Total:     report.Total,
		Devices:   report.Devices,
		DemoMode:  report.DemoMode,
		MLResults: report.Classification,
	})
}

// errorStatus maps a pipeline error to the HTTP status and body shown to
// the user.
func errorStatus(err error, demo bool) (int, errorResponse) {
	if demo {
		return http.StatusInternalServerError, errorResponse{Error: "Demo mode error: " + err.Error()}
	}

	var apiErr *httpclient.APIError
	switch {
	case errors.Is(err, connector.ErrUnauthorized):
		return http.StatusUnauthorized, errorResponse{Error: msgInvalidKey, SuggestDemo: true}
	case errors.Is(err, connector.ErrNoCredits):
		return http.StatusForbidden, errorResponse{Error: msgNoCredits, SuggestDemo: true}
	case errors.As(err, &apiErr):
		return http.StatusBadRequest, errorResponse{Error: "Shodan API Error: " + apiErr.Message()}
	case errors.Is(err, classifier.ErrTraining):
		return http.StatusUnprocessableEntity, errorResponse{Error: "Classification failed: " + trainingMessage(err)}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorResponse{Error: "Error: search timed out"}
	}
	return http.StatusInternalServerError, errorResponse{Error: "Error: " + err.Error()}
}

func trainingMessage(err error) string {
	switch {
	case errors.Is(err, classifier.ErrSingleClass):
		return "every device received the same heuristic label, so there is nothing to learn from"
	case errors.Is(err, classifier.ErrInsufficientData):
		return "at least 2 devices are required to train the classifier"
	}
	return err.Error()
}

func levelFor(status int) slog.Level {
	if status >= 500 {
		return slog.LevelError
	}
	return slog.LevelWarn
}
