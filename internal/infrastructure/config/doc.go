// Package config provides 12-factor configuration management for the panel backend.
//
// Configuration comes from, in increasing precedence: built-in defaults, an
// optional YAML or TOML file named by CONFIG_FILE, and environment
// variables. A .env file in the working directory is loaded into the
// environment first.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Files: file manager root, upload limit, search cap, operation timeout
//   - System: package manager and ping utilities
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//
// Example Usage:
//
//	cfg, err := config.Load()
//	fmt.Printf("Serving %s on %s\n", cfg.Files.Root, cfg.Server.Address())
//
// Environment Variables:
//   - PORT, HOST
//   - FILES_ROOT, FILES_MAX_UPLOAD_BYTES, FILES_SEARCH_LIMIT, FILES_OPERATION_TIMEOUT_SECONDS
//   - SYSTEM_ENABLED, SYSTEM_COMMAND_TIMEOUT_SECONDS
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - CONFIG_FILE
package config
