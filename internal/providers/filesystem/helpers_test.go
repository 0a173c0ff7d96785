package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/RouterPanel/backend/internal/providers/clipboard"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	m, err := NewManager(Options{Root: t.TempDir()}, clipboard.NewStore())
	require.NoError(t, err)
	return m, m.Root()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
