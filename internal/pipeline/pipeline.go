package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hejijunhao/camscan/internal/connector"
	"github.com/hejijunhao/camscan/internal/model"
	"github.com/hejijunhao/camscan/internal/output"
)

// Processor turns a batch of devices into scored devices plus an aggregate
// classification. *engine.Engine implements it.
type Processor interface {
	Process(ctx context.Context, devices []model.Device) ([]model.ScoredDevice, *model.Classification, error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithOutput sends every report produced by Run to out.
func WithOutput(out output.Output) Option {
	return func(p *Pipeline) { p.output = out }
}

// WithDemoMode marks produced reports as coming from sample data.
func WithDemoMode() Option {
	return func(p *Pipeline) { p.demo = true }
}

// Pipeline connects a connector, processor, and optional output.
type Pipeline struct {
	connector connector.Connector
	cfg       connector.ConnectorConfig
	processor Processor
	output    output.Output
	demo      bool
}

// New creates a Pipeline from the given components.
func New(conn connector.Connector, cfg connector.ConnectorConfig, proc Processor, opts ...Option) *Pipeline {
	p := &Pipeline{
		connector: conn,
		cfg:       cfg,
		processor: proc,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run fetches devices for query, classifies them and returns the report.
// The report is also written to the configured output, if any. Errors keep
// their cause in the chain so callers can match connector and classifier
// sentinels with errors.Is.
func (p *Pipeline) Run(ctx context.Context, query string) (*model.Report, error) {
	res, err := p.Collect(ctx, query)
	if err != nil {
		return nil, err
	}

	scored, cls, err := p.processor.Process(ctx, res.Devices)
	if err != nil {
		return nil, fmt.Errorf("pipeline process: %w", err)
	}

	// An empty page reports no matches even when upstream counts some.
	total := res.Total
	if len(res.Devices) == 0 {
		total = 0
	}

	report := &model.Report{
		Query:          query,
		Total:          total,
		DemoMode:       p.demo,
		Devices:        scored,
		Classification: cls,
	}
	if p.output != nil {
		if err := p.output.Write(ctx, report); err != nil {
			return report, fmt.Errorf("pipeline output: %w", err)
		}
	}
	return report, nil
}

// Collect fetches devices for query without classifying them.
func (p *Pipeline) Collect(ctx context.Context, query string) (model.SearchResult, error) {
	res, err := p.connector.Search(ctx, p.cfg, query)
	if err != nil {
		return model.SearchResult{}, fmt.Errorf("pipeline search: %w", err)
	}
	slog.DebugContext(ctx, "search complete",
		"provider", p.cfg.Provider,
		"total", res.Total,
		"devices", len(res.Devices),
	)
	return res, nil
}

// Close shuts down the output.
func (p *Pipeline) Close() error {
	if p.output == nil {
		return nil
	}
	return p.output.Close()
}
