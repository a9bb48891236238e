package testdata

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/hejijunhao/camscan/internal/model"
)

//go:embed corpus.json
var corpusJSON []byte

// CorpusEntry is a captured banner with its expected heuristic label.
type CorpusEntry struct {
	Raw           string `json:"raw"`
	IP            string `json:"ip"`
	Port          int    `json:"port"`
	City          string `json:"city"`
	Org           string `json:"org"`
	ExpectedLabel int    `json:"expected_label"`
	Description   string `json:"description"`
}

// Device converts the entry into a model.Device.
func (e CorpusEntry) Device() model.Device {
	return model.Device{
		IP:      e.IP,
		Port:    e.Port,
		City:    e.City,
		Country: "US",
		Org:     e.Org,
		Product: "IP Camera",
		Banner:  e.Raw,
	}
}

// LoadCorpus parses the embedded corpus.json and returns all entries.
func LoadCorpus() ([]CorpusEntry, error) {
	var entries []CorpusEntry
	if err := json.Unmarshal(corpusJSON, &entries); err != nil {
		return nil, fmt.Errorf("parse corpus.json: %w", err)
	}
	return entries, nil
}

// Devices returns every corpus entry as a model.Device.
func Devices() ([]model.Device, error) {
	entries, err := LoadCorpus()
	if err != nil {
		return nil, err
	}
	devices := make([]model.Device, len(entries))
	for i, e := range entries {
		devices[i] = e.Device()
	}
	return devices, nil
}
