/*
Package monitoring provides Prometheus metrics for the panel.

# Overview

Each Metrics value owns a private registry, so tests and multiple servers in
one process never collide on registration. It tracks HTTP traffic by route
template, file manager operations, paste outcomes, upload volume, search
result sizes and system command outcomes.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "paste")
	res, err := manager.Paste(ctx, dest)
	timer.Stop(err)
*/
package monitoring
