package camscan

import "github.com/hejijunhao/camscan/internal/model"

// Device is one internet-facing host and its service banner.
// This is the stable public type; internal representations may change
// without breaking callers.
type Device struct {
	IP      string `json:"ip"`
	Port    int    `json:"port"`
	City    string `json:"location"`
	Country string `json:"country"`
	Org     string `json:"org"`
	Product string `json:"product"`
	Banner  string `json:"data"`
}

// ScoredDevice is a Device with its keyword label and model prediction.
type ScoredDevice struct {
	Device
	Label      int    `json:"label"`         // 1 when a keyword matched
	Prediction int    `json:"ml_prediction"` // 1 when the forest predicts exposed
	RiskLevel  string `json:"risk_level"`    // "Benign" or "Exposed"
}

// Result is the outcome of one Classify call.
type Result struct {
	Devices      []ScoredDevice `json:"devices"`
	Accuracy     float64        `json:"accuracy"` // percent, held-out split only
	ExposedCount int            `json:"exposed_count"`
	BenignCount  int            `json:"benign_count"`
	Chart        []byte         `json:"-"` // PNG, nil unless WithChart
}

func toModel(devices []Device) []model.Device {
	out := make([]model.Device, len(devices))
	for i, d := range devices {
		out[i] = model.Device(d)
	}
	return out
}

func fromModel(devices []model.Device) []Device {
	out := make([]Device, len(devices))
	for i, d := range devices {
		out[i] = Device(d)
	}
	return out
}
