package camscan

import (
	"context"
	"fmt"
	"io"

	"github.com/hejijunhao/camscan/internal/connector"
	"github.com/hejijunhao/camscan/internal/connector/csvfile"
	"github.com/hejijunhao/camscan/internal/connector/shodan"
	"github.com/hejijunhao/camscan/internal/engine"
	"github.com/hejijunhao/camscan/internal/engine/classifier"
	"github.com/hejijunhao/camscan/internal/engine/compactor"
	"github.com/hejijunhao/camscan/internal/engine/labeler"
)

// Errors callers are expected to match with errors.Is.
var (
	ErrTraining     = classifier.ErrTraining // too few records or a single label class
	ErrUnauthorized = connector.ErrUnauthorized
	ErrNoCredits    = connector.ErrNoCredits
)

// Scanner labels and classifies device banners.
type Scanner struct {
	opts    options
	labeler *labeler.Labeler
	engine  *engine.Engine
}

// New creates a Scanner. It never fails; bad training data surfaces from
// Classify.
func New(opts ...Option) *Scanner {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	lab := labeler.New(o.keywords)
	return &Scanner{
		opts:    o,
		labeler: lab,
		engine:  engine.New(lab, classifier.New(o.cls)),
	}
}

// Label returns 1 when banner contains any keyword, ignoring case, else 0.
func (s *Scanner) Label(banner string) int {
	return s.labeler.Label(banner)
}

// Keywords returns the case-folded keywords in use.
func (s *Scanner) Keywords() []string {
	return s.labeler.Keywords()
}

// Classify labels devices, trains a fresh forest on a random split and
// scores every device. Zero devices returns an empty Result and no error.
func (s *Scanner) Classify(ctx context.Context, devices []Device) (Result, error) {
	scored, cls, err := s.engine.Process(ctx, toModel(devices))
	if err != nil {
		return Result{}, err
	}
	res := Result{Devices: make([]ScoredDevice, len(scored))}
	for i, d := range scored {
		res.Devices[i] = ScoredDevice{
			Device:     Device(d.Device),
			Label:      d.Label,
			Prediction: d.Prediction,
			RiskLevel:  d.RiskLevel,
		}
	}
	if cls != nil {
		res.Accuracy = cls.Accuracy
		res.ExposedCount = cls.ExposedCount
		res.BenignCount = cls.BenignCount
		if s.opts.chart {
			res.Chart = cls.Chart
		}
	}
	return res, nil
}

// Search runs one Shodan host search and returns the upstream total match
// count with the devices of the first page.
func (s *Scanner) Search(ctx context.Context, query string) (int, []Device, error) {
	res, err := (&shodan.Connector{}).Search(ctx, connector.ConnectorConfig{
		Provider:    "shodan",
		APIKey:      s.opts.apiKey,
		Endpoint:    s.opts.endpoint,
		Timeout:     s.opts.timeout,
		BannerBytes: s.opts.bannerBytes,
	}, query)
	if err != nil {
		return 0, nil, fmt.Errorf("camscan: %w", err)
	}
	return res.Total, fromModel(res.Devices), nil
}

// ReadCSV parses devices from an ip,port,location,org,data CSV.
func (s *Scanner) ReadCSV(r io.Reader) ([]Device, error) {
	devices, err := csvfile.Read(r)
	if err != nil {
		return nil, fmt.Errorf("camscan: %w", err)
	}
	return fromModel(compactor.New(s.opts.bannerBytes).CompactAll(devices)), nil
}
