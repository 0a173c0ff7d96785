package system

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/RouterPanel/backend/internal/infrastructure/resilience"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	called := m.Called(name, strings.Join(args, " "))
	return called.Get(0).(CommandResult), called.Error(1)
}

const installedOut = `busybox - 1.36.1-1
dropbear - 2022.83-1
`

const feedOut = `busybox - 1.36.1-1 - Core utilities for embedded Linux
curl - 8.5.0-1 - A client-side URL transfer utility
dropbear - 2022.83-1 - Small SSH2 client/server
`

func TestPackagesMergesFeedAndInstalled(t *testing.T) {
	runner := new(mockRunner)
	runner.On("Run", "opkg", "list-installed").Return(CommandResult{Stdout: installedOut + "local-only - 0.1\n"}, nil)
	runner.On("Run", "opkg", "list").Return(CommandResult{Stdout: feedOut}, nil)

	p := NewProvider(runner, Options{})
	pkgs, err := p.Packages(context.Background())
	require.NoError(t, err)

	require.Len(t, pkgs, 4)
	assert.Equal(t, Package{Name: "busybox", Version: "1.36.1-1", Description: "Core utilities for embedded Linux", Installed: true}, pkgs[0])
	assert.Equal(t, "curl", pkgs[1].Name)
	assert.False(t, pkgs[1].Installed)
	assert.Equal(t, "local-only", pkgs[3].Name)
	assert.True(t, pkgs[3].Installed)
	runner.AssertExpectations(t)
}

func TestPackagesSurvivesMissingFeed(t *testing.T) {
	runner := new(mockRunner)
	runner.On("Run", "opkg", "list-installed").Return(CommandResult{Stdout: installedOut}, nil)
	runner.On("Run", "opkg", "list").Return(CommandResult{}, errors.New("feed offline"))

	pkgs, err := NewProvider(runner, Options{}).Packages(context.Background())
	require.NoError(t, err)
	assert.Len(t, pkgs, 2)
}

func TestPackagesFeedBreaker(t *testing.T) {
	runner := new(mockRunner)
	runner.On("Run", "opkg", "list-installed").Return(CommandResult{Stdout: installedOut}, nil)
	runner.On("Run", "opkg", "list").Return(CommandResult{Stderr: "wget returned 4", ExitCode: 255}, nil).Twice()

	feed := resilience.New("opkg-feed", resilience.Settings{Threshold: 2, Cooldown: time.Hour})
	p := NewProvider(runner, Options{FeedBreaker: feed})
	for i := 0; i < 3; i++ {
		pkgs, err := p.Packages(context.Background())
		require.NoError(t, err)
		assert.Len(t, pkgs, 2)
	}

	// The third listing skipped the feed entirely.
	assert.Equal(t, resilience.StateOpen, feed.State())
	runner.AssertNumberOfCalls(t, "Run", 5)
}

func TestPackagesPropagatesTimeout(t *testing.T) {
	runner := new(mockRunner)
	runner.On("Run", "opkg", "list-installed").Return(CommandResult{}, ErrCommandTimeout)

	_, err := NewProvider(runner, Options{}).Packages(context.Background())
	assert.ErrorIs(t, err, ErrCommandTimeout)
}

func TestInstallAndRemoveValidateNames(t *testing.T) {
	runner := new(mockRunner)
	runner.On("Run", "opkg", "install nano").Return(CommandResult{Stdout: "Installing nano\n"}, nil)
	runner.On("Run", "opkg", "remove nano").Return(CommandResult{Stderr: "not installed\n", ExitCode: 1}, nil)
	p := NewProvider(runner, Options{})

	res, err := p.Install(context.Background(), "nano")
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, "Installing nano\n", res.Output())

	res, err = p.Remove(context.Background(), "nano")
	require.NoError(t, err)
	assert.False(t, res.Success())

	for _, bad := range []string{"", "nano; reboot", "-force", "a b", "$(id)"} {
		_, err := p.Install(context.Background(), bad)
		assert.ErrorIs(t, err, ErrInvalidArgument, bad)
	}
	runner.AssertExpectations(t)
}

func TestPing(t *testing.T) {
	runner := new(mockRunner)
	runner.On("Run", "ping", "-c 4 192.168.1.1").Return(CommandResult{Stdout: "4 packets transmitted"}, nil)
	runner.On("Run", "ping", "-c 2 example.com").Return(CommandResult{ExitCode: 1}, nil)
	p := NewProvider(runner, Options{})

	res, err := p.Ping(context.Background(), "192.168.1.1", 0)
	require.NoError(t, err)
	assert.True(t, res.Success())

	res, err = p.Ping(context.Background(), "example.com", 2)
	require.NoError(t, err)
	assert.False(t, res.Success())

	for _, host := range []string{"-f 8.8.8.8", "a;b", "$(reboot)", strings.Repeat("a", 300)} {
		_, err := p.Ping(context.Background(), host, 1)
		assert.ErrorIs(t, err, ErrInvalidArgument, host)
	}
	_, err = p.Ping(context.Background(), "8.8.8.8", 50)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	runner.AssertExpectations(t)
}

func TestExecRunnerAllowList(t *testing.T) {
	r := NewExecRunner("opkg")
	_, err := r.Run(context.Background(), "sh", "-c", "id")
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestExecRunnerMissingProgram(t *testing.T) {
	r := NewExecRunner("definitely-not-installed-program")
	_, err := r.Run(context.Background(), "definitely-not-installed-program")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestInfo(t *testing.T) {
	p := NewProvider(new(mockRunner), Options{StoragePath: t.TempDir()})
	info := p.Info()
	assert.NotEmpty(t, info.Hostname)
	assert.NotEmpty(t, info.GoVersion)
	assert.Positive(t, info.CPUs)
	assert.Equal(t, "0d 0h 0m", info.ServiceUptime)
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "1d 2h 3m", formatUptime(26*time.Hour+3*time.Minute+20*time.Second))
	assert.Equal(t, "0d 0h 0m", formatUptime(0))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, percent(1, 0))
	assert.Equal(t, 33.3, percent(1, 3))
	assert.Equal(t, 100.0, percent(4, 4))
}
