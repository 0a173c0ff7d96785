package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/RouterPanel/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/RouterPanel/backend/internal/providers/system"
)

type packageRequest struct {
	Package string `json:"package"`
}

type pingRequest struct {
	Host  string `json:"host"`
	Count int    `json:"count"`
}

// SystemInfo reports host, memory and storage details.
func (h *Handlers) SystemInfo(c *gin.Context) {
	respondOK(c, gin.H{"info": h.system.Info()})
}

// ListPackages lists opkg packages.
func (h *Handlers) ListPackages(c *gin.Context) {
	pkgs, err := h.system.Packages(c.Request.Context())
	h.recordCommand("list", err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"packages": pkgs,
		"count":    len(pkgs),
	})
}

// InstallPackage installs an opkg package.
func (h *Handlers) InstallPackage(c *gin.Context) {
	h.packageCommand(c, "install", h.system.Install)
}

// RemovePackage removes an opkg package.
func (h *Handlers) RemovePackage(c *gin.Context) {
	h.packageCommand(c, "remove", h.system.Remove)
}

func (h *Handlers) packageCommand(c *gin.Context, name string, run func(context.Context, string) (system.CommandResult, error)) {
	var req packageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := h.operationContext(c)
	defer cancel()

	res, err := run(ctx, req.Package)
	h.respondCommand(c, name, res, err)
}

// Ping runs ping against a host.
func (h *Handlers) Ping(c *gin.Context) {
	var req pingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.system.Ping(c.Request.Context(), req.Host, req.Count)
	h.respondCommand(c, "ping", res, err)
}

// respondCommand reports a finished command. A non zero exit status is a
// successful request with success=false, matching the panel UI.
func (h *Handlers) respondCommand(c *gin.Context, name string, res system.CommandResult, err error) {
	h.recordCommand(name, err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !res.Success() {
		logging.FromContext(c.Request.Context(), h.logger).Info("command exited non-zero",
			zap.String("command", name), zap.Int("exit_code", res.ExitCode))
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   res.Success(),
		"output":    res.Output(),
		"exit_code": res.ExitCode,
	})
}

func (h *Handlers) recordCommand(name string, err error) {
	if h.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	h.metrics.RecordCommand(name, status)
}
