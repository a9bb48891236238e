package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hejijunhao/camscan/internal/chart"
	"github.com/hejijunhao/camscan/internal/engine/classifier"
	"github.com/hejijunhao/camscan/internal/engine/labeler"
	"github.com/hejijunhao/camscan/internal/engine/taxonomy"
	"github.com/hejijunhao/camscan/internal/model"
)

// Engine orchestrates the label → classify → chart pipeline.
type Engine struct {
	labeler    *labeler.Labeler
	classifier *classifier.Classifier
}

// New creates an Engine with the provided components.
func New(lab *labeler.Labeler, cls *classifier.Classifier) *Engine {
	return &Engine{
		labeler:    lab,
		classifier: cls,
	}
}

// Process labels, classifies and charts a batch of devices.
// An empty batch is not an error: it returns no devices and a nil
// classification. Training failures wrap classifier.ErrTraining.
func (e *Engine) Process(ctx context.Context, devices []model.Device) ([]model.ScoredDevice, *model.Classification, error) {
	if len(devices) == 0 {
		return []model.ScoredDevice{}, nil, nil
	}

	banners := make([]string, len(devices))
	for i, d := range devices {
		banners[i] = d.Banner
	}
	labels := e.labeler.LabelAll(banners)

	res, err := e.classifier.Train(ctx, banners, labels)
	if err != nil {
		return nil, nil, err
	}

	scored := make([]model.ScoredDevice, len(devices))
	exposed := 0
	for i, d := range devices {
		p := res.Predictions[i]
		if p == taxonomy.Exposed {
			exposed++
		}
		scored[i] = model.ScoredDevice{
			Device:     d,
			Label:      labels[i],
			Prediction: p,
			RiskLevel:  taxonomy.ClassName(p),
		}
	}
	benign := len(devices) - exposed

	png, err := chart.BarChart(benign, exposed)
	if err != nil {
		return nil, nil, fmt.Errorf("engine: %w", err)
	}

	slog.DebugContext(ctx, "classification complete",
		"devices", len(devices),
		"exposed", exposed,
		"accuracy", res.Accuracy,
		"features", len(res.Features),
		"seed", res.Seed,
	)

	return scored, &model.Classification{
		Accuracy:     res.Accuracy,
		TotalDevices: len(devices),
		ExposedCount: exposed,
		BenignCount:  benign,
		Predictions:  res.Predictions,
		Chart:        png,
	}, nil
}
