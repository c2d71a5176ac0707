// Package config provides configuration structures and utilities for urlextract.
// It defines crawl limits, HTTP settings, output preferences, server settings
// and the per-site overrides read from the .urlextract YAML file.
package config
