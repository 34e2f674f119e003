// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of sensitive values (cookies, tokens, secrets)
//   - Credential stripping from logged URLs (proxy passwords, signed query strings)
//   - Configurable log levels with verbose mode support
//
// # Security Features
//
// The SecureHandler automatically sanitizes sensitive information in log output:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Api-Key)
//   - Secret values detected by pattern matching (JWTs, bearer tokens, keys)
//   - Query parameters such as token, signature and api_key in http(s) URLs
//   - The password part of proxy URLs
//
// External links found in documents often carry signed or tokenized query
// strings. Even in verbose mode those values are masked so that logs can be
// shared without leaking them.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	logger.Debug("probing external link",
//	    "url", "https://example.com/file?token=abc", // token becomes REDACTED
//	)
//
//	slog.SetDefault(logger)
package log
