// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// Site configurations may add custom request headers such as cookies or
// bearer tokens, and seeds or proxy addresses may embed credentials. The
// SecureHandler masks these before any record reaches its output:
//   - attributes whose key names a credential (cookie, authorization, token)
//   - values that look like tokens (JWT, Bearer, Basic, long API keys)
//   - passwords embedded in URLs
//   - sensitive entries of map[string]string header attributes
//
// # Usage
//
//	logger := log.New(os.Stderr, log.Options{Verbose: verbose, Level: slog.LevelInfo})
//	logger.Info("request sent",
//	    "url", "https://enperu.org/lima",
//	    "headers", map[string]string{"Cookie": "session=abc"}, // Cookie is masked
//	)
//	slog.SetDefault(logger)
package log
