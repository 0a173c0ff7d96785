package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGuardRejectsBadRoots(t *testing.T) {
	_, err := NewGuard("relative/dir")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewGuard("")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	file := filepath.Join(t.TempDir(), "file")
	writeFile(t, file, "x")
	_, err = NewGuard(file)
	assert.ErrorIs(t, err, ErrNotADirectory)
}

func TestGuardValidate(t *testing.T) {
	m, root := newTestManager(t)
	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "secret"), "s")
	writeFile(t, filepath.Join(root, "etc", "config"), "c")

	require.NoError(t, os.Symlink(outside, filepath.Join(root, "escape")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret"), filepath.Join(root, "secret-link")))
	require.NoError(t, os.Symlink(filepath.Join(root, "etc"), filepath.Join(root, "etc-link")))
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "dangling")))

	tests := []struct {
		name    string
		path    string
		want    string
		allowed bool
	}{
		{name: "root itself", path: root, want: root, allowed: true},
		{name: "nested file", path: filepath.Join(root, "etc", "config"), want: filepath.Join(root, "etc", "config"), allowed: true},
		{name: "relative to root", path: "etc/config", want: filepath.Join(root, "etc", "config"), allowed: true},
		{name: "not yet existing", path: filepath.Join(root, "new", "deep", "file"), want: filepath.Join(root, "new", "deep", "file"), allowed: true},
		{name: "dot dot inside root", path: filepath.Join(root, "etc", "..", "etc"), want: filepath.Join(root, "etc"), allowed: true},
		{name: "link to inside dir", path: filepath.Join(root, "etc-link"), want: filepath.Join(root, "etc-link"), allowed: true},
		{name: "through inside link", path: filepath.Join(root, "etc-link", "config"), want: filepath.Join(root, "etc", "config"), allowed: true},
		{name: "empty", path: "", allowed: false},
		{name: "parent escape", path: root + "/../../etc/passwd", allowed: false},
		{name: "relative escape", path: "../outside", allowed: false},
		{name: "absolute outside", path: "/etc/passwd", allowed: false},
		{name: "prefix sibling", path: root + "-evil/file", allowed: false},
		{name: "symlinked dir escape", path: filepath.Join(root, "escape", "secret"), allowed: false},
		{name: "symlink to outside file", path: filepath.Join(root, "secret-link"), allowed: false},
		{name: "dangling link", path: filepath.Join(root, "dangling"), allowed: false},
		{name: "nul byte", path: root + "/a\x00b", allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.guard.Validate(tt.path)
			if !tt.allowed {
				assert.ErrorIs(t, err, ErrPermissionDenied)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGuardRejectsBeforeTouchingDisk(t *testing.T) {
	m, _ := newTestManager(t)
	outside := t.TempDir()
	victim := filepath.Join(outside, "victim.txt")
	writeFile(t, victim, "keep")

	assert.ErrorIs(t, m.Delete(victim), ErrPermissionDenied)
	assert.ErrorIs(t, m.WriteText(victim, "overwritten"), ErrPermissionDenied)
	_, err := m.Create(outside, "x", false)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	assert.Equal(t, "keep", readFile(t, victim))
	assert.NoFileExists(t, filepath.Join(outside, "x"))
}

func TestValidateName(t *testing.T) {
	for _, name := range []string{"", " ", ".", "..", "a/b", `a\b`, "a\x00b"} {
		assert.ErrorIs(t, ValidateName(name), ErrInvalidArgument, "name %q", name)
	}
	for _, name := range []string{"a", ".bashrc", "file.tar.gz", "with space"} {
		assert.NoError(t, ValidateName(name), "name %q", name)
	}
}
