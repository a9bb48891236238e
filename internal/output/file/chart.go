package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hejijunhao/camscan/internal/model"
)

// ChartOutput saves the classification chart of each report as a PNG file,
// overwriting the previous one. Reports without a classification are skipped.
type ChartOutput struct {
	path string
}

// NewChart creates a ChartOutput targeting path.
func NewChart(path string) *ChartOutput {
	return &ChartOutput{path: path}
}

func (c *ChartOutput) Write(_ context.Context, report *model.Report) error {
	if report.Classification == nil || len(report.Classification.Chart) == 0 {
		return nil
	}
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("chart output: mkdir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(c.path, report.Classification.Chart, 0o644); err != nil {
		return fmt.Errorf("chart output: %w", err)
	}
	return nil
}

func (c *ChartOutput) Close() error {
	return nil
}
