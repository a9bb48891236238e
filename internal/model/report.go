package model

// Classification is the aggregate outcome of one classifier run.
type Classification struct {
	Accuracy     float64 `json:"accuracy"` // percent over the held-out split
	TotalDevices int     `json:"total_devices"`
	ExposedCount int     `json:"exposed_count"`
	BenignCount  int     `json:"benign_count"`
	Predictions  []int   `json:"-"`
	Chart        []byte  `json:"visualization,omitempty"` // PNG
}

// Report is the result of running the pipeline for a single query.
type Report struct {
	Query          string          `json:"query,omitempty"`
	Total          int             `json:"total"`
	DemoMode       bool            `json:"demo_mode,omitempty"`
	Devices        []ScoredDevice  `json:"devices"`
	Classification *Classification `json:"ml_results"`
}
