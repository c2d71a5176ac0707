package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "urlextract"

	// DefaultSeed is crawled when no seed is given on the command line.
	DefaultSeed = "enperu.org"

	// DefaultDepth is the crawl depth used when none is given.
	DefaultDepth = 2

	// MinDepth and MaxDepth bound the crawl depth.
	MinDepth = 1
	MaxDepth = 5

	// DefaultHeadTimeout bounds each reachability probe.
	DefaultHeadTimeout = 10 * time.Second

	// DefaultGetTimeout bounds each page fetch.
	DefaultGetTimeout = 15 * time.Second

	// DefaultCrawlDelay is the pause after every successful page fetch.
	DefaultCrawlDelay = 500 * time.Millisecond

	// DefaultMaxBodySize limits the decoded size of a page (10MB).
	DefaultMaxBodySize = 10 * 1024 * 1024

	// DefaultBatchSize is the number of seeds crawled concurrently by the
	// crawl command.
	DefaultBatchSize = 4

	// DefaultMaxJobs is the number of jobs the server runs at once.
	DefaultMaxJobs = 4

	// DefaultListenAddress is the server listen address.
	// The PORT environment variable overrides the port.
	DefaultListenAddress = "0.0.0.0:5000"

	// DefaultFormat is the default report format.
	DefaultFormat = FormatText

	// DBFileName is the SQLite history file inside the data directory.
	DBFileName = "urlextract.db"
)

// Report formats.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatXLSX     = "xlsx"
)

// Formats lists every supported report format.
var Formats = []string{FormatText, FormatMarkdown, FormatJSON, FormatCSV, FormatXLSX}

// Config holds all configuration options for urlextract.
// It is populated from CLI flags and the config file and passed through the
// application rather than kept in global state.
type Config struct {
	// Seeds are the sites to crawl. Each is a hostname or URL.
	Seeds []string

	// Depth is the crawl depth (1..5). It scales the discovery budget of a
	// crawl: at most 100 × (Depth + 1) URLs are discovered.
	Depth int

	// HeadTimeout bounds each HEAD probe.
	HeadTimeout time.Duration

	// GetTimeout bounds each GET fetch.
	GetTimeout time.Duration

	// CrawlDelay is the pause after every successful page fetch.
	CrawlDelay time.Duration

	// HostInterval spaces out requests to the same host across concurrent
	// crawls. Zero disables the shared limiter.
	HostInterval time.Duration

	// UserAgent is the User-Agent header. Empty means the browser default.
	UserAgent string

	// Headers are extra headers sent with every request.
	Headers map[string]string

	// ProxyAddress routes requests through a SOCKS5 proxy ("host:port").
	ProxyAddress string

	// MaxBodySize is the maximum decoded page size in bytes. Zero means the default.
	MaxBodySize int64

	// BatchSize is the number of seeds crawled concurrently.
	BatchSize int

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches logs to JSON lines.
	LogJSON bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .urlextract is searched in the current directory and then in
	// the home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific overrides loaded from the config file.
	SiteConfigs *File

	// Format is the report format: text, markdown, json, csv or xlsx.
	Format string

	// OutputFile is where the report is written. Empty means stdout for
	// text-based formats and a file named after the domain otherwise.
	OutputFile string

	// ResultsDir holds result files written by the server and the crawl command.
	ResultsDir string

	// DBDir is the directory of the SQLite history database.
	// Empty disables persistence.
	DBDir string

	// SaveToDB stores finished crawl reports in the history database.
	SaveToDB bool

	// ListenAddress is the server listen address.
	ListenAddress string

	// MaxJobs is the number of crawl jobs the server runs concurrently.
	MaxJobs int
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Depth:         DefaultDepth,
		HeadTimeout:   DefaultHeadTimeout,
		GetTimeout:    DefaultGetTimeout,
		CrawlDelay:    DefaultCrawlDelay,
		MaxBodySize:   DefaultMaxBodySize,
		BatchSize:     DefaultBatchSize,
		Format:        DefaultFormat,
		ListenAddress: listenAddressFromEnv(),
		MaxJobs:       DefaultMaxJobs,
		Headers:       make(map[string]string),
	}
}

// listenAddressFromEnv applies the PORT environment variable to the default
// listen address.
func listenAddressFromEnv() string {
	if port := os.Getenv("PORT"); port != "" {
		return "0.0.0.0:" + port
	}
	return DefaultListenAddress
}

// XDGDataDir returns the XDG data directory for urlextract.
// On Linux: ~/.local/share/urlextract
// On macOS: ~/Library/Application Support/urlextract
// On Windows: %LOCALAPPDATA%\urlextract
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for urlextract.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultResultsDir returns the directory for server result files.
func DefaultResultsDir() string {
	return filepath.Join(XDGDataDir(), "results")
}

// ClampDepth forces depth into MinDepth..MaxDepth.
func ClampDepth(depth int) int {
	return min(max(depth, MinDepth), MaxDepth)
}

// IsKnownFormat reports whether format is a supported report format.
func IsKnownFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Validate checks the options shared by every command.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.Depth < MinDepth || c.Depth > MaxDepth {
		return ErrInvalidDepth
	}
	if c.HeadTimeout <= 0 || c.GetTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.CrawlDelay < 0 || c.HostInterval < 0 {
		return ErrInvalidCrawlDelay
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if !IsKnownFormat(c.Format) {
		return ErrUnknownFormat
	}
	return nil
}

// ValidateCrawl checks the options of the crawl command.
func (c *Config) ValidateCrawl() error {
	if len(c.Seeds) == 0 {
		return ErrNoTarget
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	return c.Validate()
}

// ValidateServer checks the options of the serve command.
func (c *Config) ValidateServer() error {
	if c.ListenAddress == "" {
		return ErrNoListenAddress
	}
	if c.MaxJobs <= 0 {
		return ErrInvalidMaxJobs
	}
	return c.Validate()
}
