package filesystem

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/saintfish/chardet"
	"go.uber.org/zap"
)

const stagePrefix = ".rp-stage-"

// Create makes a file or directory called name inside parent and returns
// its path. Directories are created with their parents and creating an
// existing one is a no-op. Existing files are left untouched.
func (m *Manager) Create(parent, name string, isDir bool) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	dir, err := m.guard.Validate(parent)
	if err != nil {
		return "", err
	}
	target, err := m.guard.Validate(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}

	if info, err := os.Stat(target); err == nil && info.IsDir() != isDir {
		kind := "file"
		if info.IsDir() {
			kind = "directory"
		}
		return "", fmt.Errorf("%w: a %s named %s exists", ErrAlreadyExists, kind, name)
	}

	if isDir {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return "", classify("create", target, err)
		}
		return target, nil
	}

	if err := requireDir(dir); err != nil {
		return "", err
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", classify("create", target, err)
	}
	if err := f.Close(); err != nil {
		return "", classify("create", target, err)
	}
	return target, nil
}

// Delete removes a file, link or directory tree. The root itself cannot be
// deleted.
func (m *Manager) Delete(path string) error {
	full, err := m.guard.Validate(path)
	if err != nil {
		return err
	}
	if m.guard.IsRoot(full) {
		return fmt.Errorf("%w: refusing to delete the root directory", ErrPermissionDenied)
	}
	if _, err := os.Lstat(full); err != nil {
		return classify("delete", full, err)
	}
	if err := os.RemoveAll(full); err != nil {
		return classify("delete", full, err)
	}
	return nil
}

// ReadText returns the content of a UTF-8 text file.
func (m *Manager) ReadText(path string) (string, error) {
	full, err := m.guard.Validate(path)
	if err != nil {
		return "", err
	}
	if err := requireFile(full); err != nil {
		return "", err
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return "", classify("read", full, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w (%s)", ErrNotDecodable, guessCharset(data))
	}
	return string(data), nil
}

// WriteText replaces the content of a file, creating it when absent. The
// write goes to a temporary sibling first so readers never see a partial
// file. An existing file keeps its permissions.
func (m *Manager) WriteText(path, content string) error {
	full, err := m.guard.Validate(path)
	if err != nil {
		return err
	}

	// Writing through a link updates the target; the guard has already
	// checked that the target is inside the root.
	if target, err := filepath.EvalSymlinks(full); err == nil {
		full = target
	}

	mode := os.FileMode(0o644)
	info, err := os.Stat(full)
	switch {
	case err == nil && info.IsDir():
		return fmt.Errorf("%w: %s is a directory", ErrNotAFile, full)
	case err == nil:
		mode = info.Mode().Perm()
	case !os.IsNotExist(err):
		return classify("write", full, err)
	}

	if err := requireDir(filepath.Dir(full)); err != nil {
		return err
	}
	return writeAtomic(full, strings.NewReader(content), mode)
}

// writeAtomic streams r into a staging file next to dst and renames it over
// dst.
func writeAtomic(dst string, r io.Reader, mode os.FileMode) error {
	tmp, err := writeStaged(filepath.Dir(dst), r, mode)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return classify("write", dst, err)
	}
	return nil
}

// writeStaged copies r into a new staging file in dir and returns its path.
func writeStaged(dir string, r io.Reader, mode os.FileMode) (string, error) {
	tmp := stagePath(dir)
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, mode)
	if err != nil {
		return "", classify("write", tmp, err)
	}

	_, err = io.Copy(f, r)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		// OpenFile honours the umask; apply the exact mode afterwards.
		err = os.Chmod(tmp, mode)
	}
	if err != nil {
		os.Remove(tmp)
		return "", classify("write", tmp, err)
	}
	return tmp, nil
}

// stagePath returns a hidden, unique sibling name inside dir.
func stagePath(dir string) string {
	return filepath.Join(dir, stagePrefix+uuid.NewString())
}

func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return classify("stat", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotADirectory, path)
	}
	return nil
}

// requireDestDir is requireDir for move targets, where a missing
// destination is reported as not a directory.
func requireDestDir(path string) error {
	err := requireDir(path)
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotADirectory, path)
	}
	return err
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return classify("stat", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrNotAFile, path)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrNotAFile, path)
	}
	return nil
}

func guessCharset(data []byte) string {
	sample := data
	if len(sample) > 64<<10 {
		sample = sample[:64<<10]
	}
	res, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil || res == nil || res.Charset == "" {
		return "unknown encoding"
	}
	return "detected " + res.Charset
}

// removeStaged deletes a staging artifact, logging instead of failing.
func (m *Manager) removeStaged(path string) {
	if err := os.RemoveAll(path); err != nil {
		m.logger.Warn("failed to remove staging path", zap.String("path", path), zap.Error(err))
	}
}
