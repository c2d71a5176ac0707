package main

import (
	"io"
	"log/slog"
	"time"

	"github.com/nao1215/urlextract/internal/config"
	"github.com/nao1215/urlextract/internal/fetch"
	applog "github.com/nao1215/urlextract/internal/log"
	"github.com/spf13/cobra"
)

// getBoolFlag reads a bool flag from the command or the root's persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// getStringFlag reads a string flag from the command or the root's persistent flags.
func getStringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetString(name)
		if err != nil {
			return ""
		}
	}
	return v
}

// addFetchFlags registers the request flags shared by crawl and serve.
func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Pause after every successful page fetch")
	cmd.Flags().Duration("host-interval", 0,
		"Minimum interval between requests to the same host across concurrent crawls (0 disables)")
	cmd.Flags().Duration("head-timeout", config.DefaultHeadTimeout,
		"Timeout for each reachability probe")
	cmd.Flags().Duration("get-timeout", config.DefaultGetTimeout,
		"Timeout for each page fetch")
	cmd.Flags().String("user-agent", "",
		"User-Agent header (default: a desktop browser string)")
	cmd.Flags().String("proxy", "",
		"Route requests through a SOCKS5 proxy (host:port)")
	cmd.Flags().String("data-dir", config.XDGDataDir(),
		"Directory of the history database")
	cmd.Flags().Bool("save", true,
		"Store finished crawls in the history database")
}

// buildBaseConfig creates a Config from the global and fetch flags and loads
// the site configuration file.
func buildBaseConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.LogJSON = getBoolFlag(cmd, "log-json")
	cfg.ConfigFilePath = getStringFlag(cmd, "config")

	var err error
	if cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay"); err != nil {
		return nil, err
	}
	if cfg.HostInterval, err = cmd.Flags().GetDuration("host-interval"); err != nil {
		return nil, err
	}
	if cfg.HeadTimeout, err = cmd.Flags().GetDuration("head-timeout"); err != nil {
		return nil, err
	}
	if cfg.GetTimeout, err = cmd.Flags().GetDuration("get-timeout"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = cmd.Flags().GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = cmd.Flags().GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = cmd.Flags().GetString("data-dir"); err != nil {
		return nil, err
	}
	if cfg.SaveToDB, err = cmd.Flags().GetBool("save"); err != nil {
		return nil, err
	}

	if err := cfg.LoadSiteConfigs(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger creates the secure logger for cfg. level applies when not verbose.
func newLogger(w io.Writer, cfg *config.Config, level slog.Level) *slog.Logger {
	return applog.New(w, applog.Options{
		Verbose: cfg.Verbose,
		JSON:    cfg.LogJSON,
		Level:   level,
	})
}

// newHostLimiter returns the limiter shared by all crawls, or nil when
// cross-crawl throttling is off.
func newHostLimiter(cfg *config.Config) *fetch.HostLimiter {
	if cfg.HostInterval <= 0 {
		return nil
	}
	return fetch.NewHostLimiter(cfg.HostInterval, 1)
}

// newFetchClient creates the HTTP client for one site.
func newFetchClient(cfg *config.Config, limiter *fetch.HostLimiter, logger *slog.Logger) (*fetch.Client, error) {
	opts := []fetch.Option{
		fetch.WithHeadTimeout(cfg.HeadTimeout),
		fetch.WithGetTimeout(cfg.GetTimeout),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithHeaders(cfg.Headers),
		fetch.WithLogger(logger),
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, fetch.WithProxy(cfg.ProxyAddress))
	}
	if limiter != nil {
		opts = append(opts, fetch.WithLimiter(limiter))
	}
	return fetch.NewClient(opts...)
}

// elapsed formats a duration for terminal output.
func elapsed(start time.Time) time.Duration {
	return time.Since(start).Round(time.Millisecond)
}
