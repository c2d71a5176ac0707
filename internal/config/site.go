package config

import (
	"strings"
	"time"
)

// SiteConfig holds site-specific configuration for a single host.
// It allows customizing crawl behavior per portal.
type SiteConfig struct {
	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Depth overrides the global crawl depth for this site.
	// If zero, the global Depth is used.
	Depth int `yaml:"depth,omitempty"`

	// Delay overrides the pause after each page fetch, e.g. "1s".
	// If zero, the global CrawlDelay is used.
	Delay time.Duration `yaml:"delay,omitempty"`

	// UserAgent overrides the User-Agent header for this site.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// File represents the structure of the .urlextract configuration file.
type File struct {
	// Sites maps hosts to their site-specific configurations.
	// Keys are hosts without scheme or "www." (e.g., "enperu.org").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains site configuration applied to all sites unless
	// overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for host merged over the defaults.
// The host is matched case-insensitively and without a "www." prefix.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	if cf == nil {
		return SiteConfig{}
	}

	result := cf.Defaults
	result.Headers = make(map[string]string, len(cf.Defaults.Headers))
	for k, v := range cf.Defaults.Headers {
		result.Headers[k] = v
	}

	siteConfig, ok := cf.lookup(host)
	if !ok {
		return result
	}
	if siteConfig.Depth != 0 {
		result.Depth = siteConfig.Depth
	}
	if siteConfig.Delay != 0 {
		result.Delay = siteConfig.Delay
	}
	if siteConfig.UserAgent != "" {
		result.UserAgent = siteConfig.UserAgent
	}
	for k, v := range siteConfig.Headers {
		result.Headers[k] = v
	}
	return result
}

func (cf *File) lookup(host string) (SiteConfig, bool) {
	key := SiteKey(host)
	if sc, ok := cf.Sites[key]; ok {
		return sc, true
	}
	for k, sc := range cf.Sites {
		if SiteKey(k) == key {
			return sc, true
		}
	}
	return SiteConfig{}, false
}

// SiteKey normalizes a seed or host to the key used in the Sites map:
// lower case, without scheme, path or "www." prefix.
func SiteKey(seed string) string {
	s := strings.ToLower(strings.TrimSpace(seed))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimPrefix(s, "www.")
}

// Apply returns a copy of c with the site overrides for seed applied.
func (c *Config) Apply(seed string) *Config {
	out := *c
	out.Headers = make(map[string]string, len(c.Headers))
	for k, v := range c.Headers {
		out.Headers[k] = v
	}
	if c.SiteConfigs == nil {
		return &out
	}

	sc := c.SiteConfigs.GetSiteConfig(seed)
	if sc.Depth != 0 {
		out.Depth = ClampDepth(sc.Depth)
	}
	if sc.Delay > 0 {
		out.CrawlDelay = sc.Delay
	}
	if sc.UserAgent != "" {
		out.UserAgent = sc.UserAgent
	}
	for k, v := range sc.Headers {
		out.Headers[k] = v
	}
	return &out
}
