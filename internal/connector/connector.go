package connector

import (
	"context"
	"errors"
	"time"

	"github.com/hejijunhao/camscan/internal/model"
)

// Errors a caller can answer by suggesting demo mode.
var (
	ErrUnauthorized = errors.New("invalid API key")
	ErrNoCredits    = errors.New("no query credits")
)

// Connector defines the interface all device sources must implement.
type Connector interface {
	// Search runs one query against the source and returns every device it
	// yields. No pagination: a single call, a single result page.
	Search(ctx context.Context, cfg ConnectorConfig, query string) (model.SearchResult, error)
}

// ConnectorConfig holds provider-specific connection settings.
type ConnectorConfig struct {
	Provider string
	APIKey   string
	Endpoint string
	// Timeout bounds each outbound request. 0 means no timeout.
	Timeout    time.Duration
	MaxRetries int
	// BannerBytes is the banner truncation length. 0 keeps banners intact.
	BannerBytes int
	// Path is the input file for file-backed sources.
	Path  string
	Extra map[string]string
}

// SuggestDemo reports whether err is a credential problem the caller can
// sidestep by switching to demo data.
func SuggestDemo(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNoCredits)
}
