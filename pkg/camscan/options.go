package camscan

import (
	"time"

	"github.com/hejijunhao/camscan/internal/engine/classifier"
	"github.com/hejijunhao/camscan/internal/engine/compactor"
	"github.com/hejijunhao/camscan/internal/engine/taxonomy"
)

type options struct {
	keywords    []string
	cls         classifier.Config
	chart       bool
	apiKey      string
	endpoint    string
	timeout     time.Duration
	bannerBytes int
}

// Option configures a Scanner.
type Option func(*options)

// WithKeywords replaces the exposure keywords. Empty strings are ignored.
// Default: webcam, surveillance, camera, rtsp, unauthorized, default, admin.
func WithKeywords(kw ...string) Option {
	return func(o *options) {
		o.keywords = kw
	}
}

// WithSeed fixes the split and forest seed. Default: 42.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.cls.Seed = &seed
	}
}

// WithUnseeded draws a new seed on every Classify call.
func WithUnseeded() Option {
	return func(o *options) {
		o.cls.Seed = nil
	}
}

// WithTrees sets the forest size. Default: 50.
func WithTrees(n int) Option {
	return func(o *options) {
		o.cls.Trees = n
	}
}

// WithMaxFeatures caps the vocabulary; n <= 0 means unbounded. Default: 100.
func WithMaxFeatures(n int) Option {
	return func(o *options) {
		o.cls.MaxFeatures = n
	}
}

// WithTestSize sets the held-out fraction. Default: 0.3.
func WithTestSize(f float64) Option {
	return func(o *options) {
		o.cls.TestSize = f
	}
}

// WithWorkers bounds concurrent tree fitting. Default: GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.cls.Workers = n
	}
}

// WithChart renders the benign/exposed bar chart into Result.Chart.
func WithChart() Option {
	return func(o *options) {
		o.chart = true
	}
}

// WithAPIKey sets the Shodan key used by Search.
func WithAPIKey(key string) Option {
	return func(o *options) {
		o.apiKey = key
	}
}

// WithEndpoint points Search at another Shodan-compatible base URL.
func WithEndpoint(url string) Option {
	return func(o *options) {
		o.endpoint = url
	}
}

// WithTimeout bounds each Search call. 0 means no timeout. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithBannerBytes sets the banner truncation applied by Search and ReadCSV.
// Default: 500.
func WithBannerBytes(n int) Option {
	return func(o *options) {
		o.bannerBytes = n
	}
}

func defaultOptions() options {
	return options{
		keywords:    taxonomy.DefaultKeywords(),
		cls:         classifier.DefaultConfig(),
		timeout:     30 * time.Second,
		bannerBytes: compactor.WebBannerBytes,
	}
}
