//go:build unix

package filesystem

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// returnsPromptly fails the test if fn has not returned within a second.
func returnsPromptly(t *testing.T, name string, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("%s blocked on a named pipe", name)
	}
}

func newFIFO(t *testing.T) (*Manager, string) {
	t.Helper()
	m, root := newTestManager(t)
	fifo := filepath.Join(root, "events.pipe")
	require.NoError(t, unix.Mkfifo(fifo, 0o644))
	return m, fifo
}

func TestReadTextRejectsNamedPipe(t *testing.T) {
	m, fifo := newFIFO(t)

	var err error
	returnsPromptly(t, "ReadText", func() { _, err = m.ReadText(fifo) })
	assert.ErrorIs(t, err, ErrNotAFile)
}

func TestInfoOnNamedPipe(t *testing.T) {
	m, fifo := newFIFO(t)

	var (
		entry *Entry
		err   error
	)
	returnsPromptly(t, "Info", func() { entry, err = m.Info(fifo) })
	require.NoError(t, err)
	assert.False(t, entry.IsDir)
	assert.Equal(t, "application/octet-stream", entry.MIMEType)
}

func TestOpenDownloadRejectsNamedPipe(t *testing.T) {
	m, fifo := newFIFO(t)

	var err error
	returnsPromptly(t, "OpenDownload", func() { _, err = m.OpenDownload(fifo) })
	assert.ErrorIs(t, err, ErrNotAFile)
}
