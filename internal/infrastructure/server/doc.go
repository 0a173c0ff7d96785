// Package server is the composition root: it builds the logger, metrics,
// clipboard, file manager and optional system provider from config, mounts
// them on a gin router and runs the HTTP server until its context ends.
package server
