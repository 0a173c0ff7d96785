// Package main is the entry point for the Router Panel backend.
//
// The server exposes a sandboxed file manager rooted at FILES_ROOT and, when
// enabled, a handful of router utilities (opkg packages, ping, system info)
// as a JSON API.
//
// Configuration:
//   - Defaults, then a YAML or TOML file (CONFIG_FILE or -config)
//   - Environment variables and a .env file
//   - CLI flags (override everything)
//
// Usage:
//
//	./server -root /opt -port 8080
//	LOG_DEV=true LOG_LEVEL=debug ./server
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
