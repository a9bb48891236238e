package output

import "github.com/hejijunhao/camscan/internal/model"

// FormatReport returns a shallow copy of the report suitable for text sinks.
// Without withChart the PNG is dropped; it is by far the largest field and
// is only useful to renderers.
func FormatReport(r *model.Report, withChart bool) *model.Report {
	if r == nil {
		return nil
	}
	out := *r
	if r.Classification != nil && !withChart {
		c := *r.Classification
		c.Chart = nil
		out.Classification = &c
	}
	return &out
}
