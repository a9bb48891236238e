package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hejijunhao/camscan/internal/engine/taxonomy"
)

// Version is the camscan release version.
const Version = "0.1.0"

// DefaultSeed is the classifier seed used unless CAMSCAN_SEED overrides it.
const DefaultSeed uint64 = 42

// Config holds all camscan configuration.
type Config struct {
	Connector       ConnectorConfig
	Engine          EngineConfig
	Output          OutputConfig
	Server          ServerConfig
	Log             LogConfig
	ShutdownTimeout time.Duration

	// loadErrs collects problems found while loading (unreadable keyword
	// file, malformed seed). Validate reports them.
	loadErrs []error
}

// ConnectorConfig holds device source settings.
type ConnectorConfig struct {
	Provider    string // "shodan" or "csv"
	APIKey      string
	Endpoint    string
	Timeout     time.Duration // 0 = no timeout
	MaxRetries  int
	BannerBytes int
	DemoPath    string // CSV used by demo mode and the csv provider
}

// EngineConfig holds labeling and classifier settings.
type EngineConfig struct {
	Keywords    []string
	MaxFeatures int
	TestSize    float64
	Trees       int
	Workers     int     // 0 = GOMAXPROCS
	Seed        *uint64 // nil = time-based
}

// OutputConfig holds report sink settings.
type OutputConfig struct {
	Pretty       bool
	WebhookURL   string
	WebhookChart bool
}

// ServerConfig holds web server settings.
type ServerConfig struct {
	Addr    string
	GinMode string // "debug", "release" or "test"
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
	JSON  bool
	File  string // empty = stderr only
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding variables already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	var cfg Config
	cfg.Connector = ConnectorConfig{
		Provider:    getenv("CAMSCAN_PROVIDER", "shodan"),
		APIKey:      getenv("CAMSCAN_API_KEY", os.Getenv("SHODAN_API_KEY")),
		Endpoint:    os.Getenv("CAMSCAN_ENDPOINT"),
		Timeout:     getenvDuration("CAMSCAN_HTTP_TIMEOUT", 30*time.Second),
		MaxRetries:  getenvInt("CAMSCAN_MAX_RETRIES", 0),
		BannerBytes: getenvInt("CAMSCAN_BANNER_BYTES", 500),
		DemoPath:    getenv("CAMSCAN_DEMO_PATH", "data/shodan_results.csv"),
	}
	cfg.Engine = EngineConfig{
		Keywords:    cfg.loadKeywords(),
		MaxFeatures: getenvInt("CAMSCAN_MAX_FEATURES", 100),
		TestSize:    getenvFloat("CAMSCAN_TEST_SIZE", 0.3),
		Trees:       getenvInt("CAMSCAN_TREES", 50),
		Workers:     getenvInt("CAMSCAN_WORKERS", 0),
		Seed:        cfg.loadSeed(),
	}
	cfg.Output = OutputConfig{
		Pretty:       getenvBool("CAMSCAN_OUTPUT_PRETTY", false),
		WebhookURL:   os.Getenv("CAMSCAN_WEBHOOK_URL"),
		WebhookChart: getenvBool("CAMSCAN_WEBHOOK_CHART", false),
	}
	cfg.Server = ServerConfig{
		Addr:    getenv("CAMSCAN_ADDR", ":5000"),
		GinMode: getenv("CAMSCAN_GIN_MODE", "release"),
	}
	cfg.Log = LogConfig{
		Level: getenv("CAMSCAN_LOG_LEVEL", "info"),
		JSON:  getenvBool("CAMSCAN_LOG_JSON", false),
		File:  os.Getenv("CAMSCAN_LOG_FILE"),
	}
	cfg.ShutdownTimeout = getenvDuration("CAMSCAN_SHUTDOWN_TIMEOUT", 10*time.Second)
	return cfg
}

// loadKeywords prefers CAMSCAN_KEYWORDS, then CAMSCAN_KEYWORDS_FILE, then
// the built-in set.
func (c *Config) loadKeywords() []string {
	if kw := taxonomy.ParseKeywords(os.Getenv("CAMSCAN_KEYWORDS")); len(kw) > 0 {
		return kw
	}
	if path := os.Getenv("CAMSCAN_KEYWORDS_FILE"); path != "" {
		kw, err := LoadKeywordsFile(path)
		if err != nil {
			c.loadErrs = append(c.loadErrs, err)
			return nil
		}
		return kw
	}
	return taxonomy.DefaultKeywords()
}

// loadSeed parses CAMSCAN_SEED. "random" (or "none") yields nil.
func (c *Config) loadSeed() *uint64 {
	v := strings.TrimSpace(os.Getenv("CAMSCAN_SEED"))
	switch strings.ToLower(v) {
	case "":
		s := DefaultSeed
		return &s
	case "random", "none":
		return nil
	}
	s, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		c.loadErrs = append(c.loadErrs, fmt.Errorf("CAMSCAN_SEED %q is not an unsigned integer", v))
		return nil
	}
	return &s
}

type keywordFile struct {
	Keywords []string `yaml:"keywords"`
}

// LoadKeywordsFile reads a YAML document of the form
//
//	keywords: [webcam, rtsp]
//
// Blank entries are dropped.
func LoadKeywordsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keywords file: %w", err)
	}
	var kf keywordFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("keywords file %s: %w", path, err)
	}
	out := make([]string, 0, len(kf.Keywords))
	for _, k := range kf.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("keywords file %s: no keywords", path)
	}
	return out, nil
}

var (
	validProviders = map[string]bool{"shodan": true, "csv": true}
	validGinModes  = map[string]bool{"debug": true, "release": true, "test": true}
	validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// Validate checks the configuration and returns every problem found,
// joined with errors.Join.
func (c Config) Validate() error {
	errs := append([]error(nil), c.loadErrs...)

	if !validProviders[c.Connector.Provider] {
		errs = append(errs, fmt.Errorf("unknown provider %q (want shodan or csv)", c.Connector.Provider))
	}
	if c.Connector.Timeout < 0 {
		errs = append(errs, fmt.Errorf("http timeout must be >= 0, got %v", c.Connector.Timeout))
	}
	if c.Connector.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("max retries must be >= 0, got %d", c.Connector.MaxRetries))
	}
	if c.Connector.BannerBytes < 0 {
		errs = append(errs, fmt.Errorf("banner bytes must be >= 0, got %d", c.Connector.BannerBytes))
	}
	if len(c.Engine.Keywords) == 0 && len(c.loadErrs) == 0 {
		errs = append(errs, errors.New("at least one keyword is required"))
	}
	if c.Engine.MaxFeatures < 0 {
		errs = append(errs, fmt.Errorf("max features must be >= 0, got %d", c.Engine.MaxFeatures))
	}
	if c.Engine.TestSize <= 0 || c.Engine.TestSize >= 1 {
		errs = append(errs, fmt.Errorf("test size must be in (0, 1), got %v", c.Engine.TestSize))
	}
	if c.Engine.Trees < 1 {
		errs = append(errs, fmt.Errorf("trees must be >= 1, got %d", c.Engine.Trees))
	}
	if c.Engine.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Engine.Workers))
	}
	if !validGinModes[c.Server.GinMode] {
		errs = append(errs, fmt.Errorf("gin mode must be debug, release or test, got %q", c.Server.GinMode))
	}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Errorf("log level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout must be > 0, got %v", c.ShutdownTimeout))
	}
	return errors.Join(errs...)
}

// LogValue hides the API key when the config is logged.
func (c ConnectorConfig) LogValue() slog.Value {
	key := ""
	if c.APIKey != "" {
		key = "[set]"
	}
	return slog.GroupValue(
		slog.String("provider", c.Provider),
		slog.String("api_key", key),
		slog.String("endpoint", c.Endpoint),
		slog.Duration("timeout", c.Timeout),
	)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
