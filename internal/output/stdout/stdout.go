package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/hejijunhao/camscan/internal/model"
	"github.com/hejijunhao/camscan/internal/output"
)

// Output writes JSON-encoded reports to stdout.
type Output struct {
	enc       *json.Encoder
	withChart bool
}

// New creates a new stdout Output with optional pretty-printed JSON.
// The chart PNG is only included when withChart is set.
func New(pretty, withChart bool) *Output {
	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return &Output{enc: enc, withChart: withChart}
}

func (o *Output) Write(_ context.Context, report *model.Report) error {
	if err := o.enc.Encode(output.FormatReport(report, o.withChart)); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
