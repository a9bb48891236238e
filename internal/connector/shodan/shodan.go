package shodan

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hejijunhao/camscan/internal/connector"
	"github.com/hejijunhao/camscan/internal/connector/httpclient"
	"github.com/hejijunhao/camscan/internal/engine/compactor"
	"github.com/hejijunhao/camscan/internal/model"
)

const (
	defaultEndpoint = "https://api.shodan.io"
	searchPath      = "/shodan/host/search"
	unknown         = "Unknown"
)

func init() {
	connector.Register("shodan", func() connector.Connector {
		return &Connector{}
	})
}

// Connector implements connector.Connector against the Shodan host search API.
type Connector struct{}

type searchResponse struct {
	Total   int     `json:"total"`
	Matches []match `json:"matches"`
}

type match struct {
	IPStr    string    `json:"ip_str"`
	Port     int       `json:"port"`
	Org      *string   `json:"org"`
	Product  *string   `json:"product"`
	Data     string    `json:"data"`
	Location *location `json:"location"`
}

type location struct {
	City        *string `json:"city"`
	CountryName *string `json:"country_name"`
}

func orUnknown(s *string) string {
	if s == nil || *s == "" {
		return unknown
	}
	return *s
}

func toDevice(m match) model.Device {
	d := model.Device{
		IP:      m.IPStr,
		Port:    m.Port,
		City:    unknown,
		Country: unknown,
		Org:     orUnknown(m.Org),
		Product: orUnknown(m.Product),
		Banner:  m.Data,
	}
	if m.Location != nil {
		d.City = orUnknown(m.Location.City)
		d.Country = orUnknown(m.Location.CountryName)
	}
	return d
}

// Search runs a single host search. Credential failures map to
// connector.ErrUnauthorized and connector.ErrNoCredits.
func (c *Connector) Search(ctx context.Context, cfg connector.ConnectorConfig, query string) (model.SearchResult, error) {
	if cfg.APIKey == "" {
		return model.SearchResult{}, fmt.Errorf("shodan connector: %w: no key configured", connector.ErrUnauthorized)
	}

	baseURL := cfg.Endpoint
	if baseURL == "" {
		baseURL = defaultEndpoint
	}
	client := httpclient.New(baseURL, cfg.APIKey,
		httpclient.WithQueryKey("key"),
		httpclient.WithTimeout(cfg.Timeout),
		httpclient.WithMaxRetries(cfg.MaxRetries),
	)

	var resp searchResponse
	if err := client.GetJSON(ctx, searchPath, url.Values{"query": {query}}, &resp); err != nil {
		return model.SearchResult{}, classify(err)
	}

	comp := compactor.New(cfg.BannerBytes)
	devices := make([]model.Device, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		devices = append(devices, comp.Compact(toDevice(m)))
	}
	return model.SearchResult{Total: resp.Total, Devices: devices}, nil
}

// classify wraps upstream failures in the connector sentinels where the
// status code or message identifies a credential problem.
func classify(err error) error {
	var apiErr *httpclient.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("shodan connector: %w", err)
	}
	msg := apiErr.Message()
	switch {
	case apiErr.StatusCode == http.StatusUnauthorized || strings.Contains(msg, "Invalid API key"):
		return fmt.Errorf("shodan connector: %w: %s", connector.ErrUnauthorized, msg)
	case apiErr.StatusCode == http.StatusForbidden || strings.Contains(strings.ToLower(msg), "no query credits"):
		return fmt.Errorf("shodan connector: %w: %s", connector.ErrNoCredits, msg)
	}
	return fmt.Errorf("shodan connector: %w", err)
}
