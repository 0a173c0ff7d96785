package system

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/RouterPanel/backend/internal/infrastructure/resilience"
)

const (
	opkg = "opkg"
	ping = "ping"

	defaultPingCount = 4
	maxPingCount     = 10
)

var (
	packageName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._+-]*$`)
	hostName    = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)
)

// Programs lists every executable the provider may start.
var Programs = []string{opkg, ping}

// Options configures a Provider.
type Options struct {
	// StoragePath is the directory whose filesystem usage Info reports.
	StoragePath string
	// CommandTimeout bounds listing and ping commands.
	CommandTimeout time.Duration
	// InstallTimeout bounds package install and removal.
	InstallTimeout time.Duration
	// FeedBreaker guards the feed listing, which needs the uplink. Optional.
	FeedBreaker *resilience.Breaker
	Logger      *zap.Logger
}

// Provider exposes the router's OS utilities through a fixed set of
// commands. No free-form command execution is offered.
type Provider struct {
	runner    Runner
	opts      Options
	logger    *zap.Logger
	startTime time.Time
}

// Package is one opkg package.
type Package struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	Installed   bool   `json:"installed"`
}

// NewProvider creates a system provider
func NewProvider(runner Runner, opts Options) *Provider {
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = 30 * time.Second
	}
	if opts.InstallTimeout <= 0 {
		opts.InstallTimeout = 4 * opts.CommandTimeout
	}
	if opts.StoragePath == "" {
		opts.StoragePath = "/"
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		runner:    runner,
		opts:      opts,
		logger:    logger.Named("system"),
		startTime: time.Now(),
	}
}

// Packages returns every known package, flagging the installed ones.
// Installed packages missing from the feed list are included as well.
func (p *Provider) Packages(ctx context.Context) ([]Package, error) {
	installedOut, err := p.run(ctx, p.opts.CommandTimeout, opkg, "list-installed")
	if err != nil {
		return nil, err
	}
	installed := parsePackageList(installedOut.Stdout)

	available := []Package{}
	err = p.opts.FeedBreaker.Call(func() error {
		out, err := p.run(ctx, p.opts.CommandTimeout, opkg, "list")
		if err != nil {
			return err
		}
		if !out.Success() {
			return fmt.Errorf("opkg list exited with %d", out.ExitCode)
		}
		available = parsePackageList(out.Stdout)
		return nil
	})
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		p.logger.Debug("package feed skipped, breaker open")
	case err != nil:
		p.logger.Warn("failed to list package feed", zap.Error(err))
	}

	return mergePackages(available, installed), nil
}

// Install installs a package. A failing opkg run is reported through the
// result, not as an error.
func (p *Provider) Install(ctx context.Context, name string) (CommandResult, error) {
	if err := validatePackage(name); err != nil {
		return CommandResult{}, err
	}
	p.logger.Info("installing package", zap.String("package", name))
	return p.run(ctx, p.opts.InstallTimeout, opkg, "install", name)
}

// Remove uninstalls a package.
func (p *Provider) Remove(ctx context.Context, name string) (CommandResult, error) {
	if err := validatePackage(name); err != nil {
		return CommandResult{}, err
	}
	p.logger.Info("removing package", zap.String("package", name))
	return p.run(ctx, p.opts.InstallTimeout, opkg, "remove", name)
}

// Ping sends count echo requests to host. Zero count means the default.
func (p *Provider) Ping(ctx context.Context, host string, count int) (CommandResult, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		host = "8.8.8.8"
	}
	if net.ParseIP(host) == nil && (len(host) > 253 || !hostName.MatchString(host)) {
		return CommandResult{}, fmt.Errorf("%w: invalid host %q", ErrInvalidArgument, host)
	}
	if count == 0 {
		count = defaultPingCount
	}
	if count < 1 || count > maxPingCount {
		return CommandResult{}, fmt.Errorf("%w: count must be between 1 and %d", ErrInvalidArgument, maxPingCount)
	}
	return p.run(ctx, p.opts.CommandTimeout, ping, "-c", fmt.Sprint(count), host)
}

func (p *Provider) run(ctx context.Context, timeout time.Duration, name string, args ...string) (CommandResult, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	res, err := p.runner.Run(ctx, name, args...)
	p.logger.Debug("command finished",
		zap.String("command", name),
		zap.Strings("args", args),
		zap.Int("exit_code", res.ExitCode),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err))
	return res, err
}

func validatePackage(name string) error {
	if !packageName.MatchString(name) {
		return fmt.Errorf("%w: invalid package name %q", ErrInvalidArgument, name)
	}
	return nil
}

// parsePackageList parses "name - version - description" lines.
func parsePackageList(out string) []Package {
	var pkgs []Package
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " - ", 3)
		pkg := Package{Name: strings.TrimSpace(parts[0])}
		if pkg.Name == "" || strings.ContainsAny(pkg.Name, " \t") {
			continue
		}
		if len(parts) > 1 {
			pkg.Version = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			pkg.Description = strings.TrimSpace(parts[2])
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs
}

func mergePackages(available, installed []Package) []Package {
	byName := make(map[string]int, len(available))
	out := make([]Package, 0, len(available)+len(installed))
	for _, pkg := range available {
		if _, dup := byName[pkg.Name]; dup {
			continue
		}
		byName[pkg.Name] = len(out)
		out = append(out, pkg)
	}
	for _, pkg := range installed {
		if i, ok := byName[pkg.Name]; ok {
			out[i].Installed = true
			continue
		}
		pkg.Installed = true
		byName[pkg.Name] = len(out)
		out = append(out, pkg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
