package model

// Device is a single internet-facing host as reported by a search source.
type Device struct {
	IP      string `json:"ip"`
	Port    int    `json:"port"`
	City    string `json:"location"`
	Country string `json:"country"`
	Org     string `json:"org"`
	Product string `json:"product"`
	Banner  string `json:"data"` // truncated service banner
}

// ScoredDevice is a Device together with its heuristic label and the
// classifier's prediction.
type ScoredDevice struct {
	Device
	Label      int    `json:"label"`
	Prediction int    `json:"ml_prediction"`
	RiskLevel  string `json:"risk_level"`
}

// SearchResult is what a connector hands back for one query.
type SearchResult struct {
	Total   int // upstream total match count, may exceed len(Devices)
	Devices []Device
}
