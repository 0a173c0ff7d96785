package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charlievieth/fastwalk"
)

// Rename gives an entry a new name in the same directory. It never
// overwrites: an existing target is ErrAlreadyExists.
func (m *Manager) Rename(oldPath, newName string) (string, error) {
	if err := ValidateName(newName); err != nil {
		return "", err
	}
	src, err := m.guard.Validate(oldPath)
	if err != nil {
		return "", err
	}
	if m.guard.IsRoot(src) {
		return "", fmt.Errorf("%w: refusing to rename the root directory", ErrPermissionDenied)
	}
	if _, err := os.Lstat(src); err != nil {
		return "", classify("rename", src, err)
	}
	dir := filepath.Dir(src)
	if _, err := m.guard.Validate(filepath.Join(dir, newName)); err != nil {
		return "", err
	}

	m.commitMu.Lock()
	defer m.commitMu.Unlock()

	dst, err := noClobber(dir, newName)
	if err != nil {
		return "", err
	}
	if err := os.Rename(src, dst); err != nil {
		return "", classify("rename", src, err)
	}
	return dst, nil
}

// Move relocates src into destDir keeping its name. It never overwrites.
// Across filesystems the entry is copied and then removed, which is not
// atomic.
func (m *Manager) Move(ctx context.Context, srcPath, destDir string) (string, error) {
	src, err := m.guard.Validate(srcPath)
	if err != nil {
		return "", err
	}
	dest, err := m.guard.Validate(destDir)
	if err != nil {
		return "", err
	}
	if m.guard.IsRoot(src) {
		return "", fmt.Errorf("%w: refusing to move the root directory", ErrPermissionDenied)
	}

	info, err := os.Lstat(src)
	if err != nil {
		return "", classify("move", src, err)
	}
	if err := requireDestDir(dest); err != nil {
		return "", err
	}
	if info.IsDir() && isWithin(dest, src) {
		return "", fmt.Errorf("%w: cannot move %s into itself", ErrInvalidArgument, src)
	}

	return m.moveInto(ctx, src, dest, noClobber)
}

// Copy copies src to the exact path dst, which must not exist yet.
func (m *Manager) Copy(ctx context.Context, srcPath, dstPath string) (string, error) {
	src, err := m.guard.Validate(srcPath)
	if err != nil {
		return "", err
	}
	dst, err := m.guard.Validate(dstPath)
	if err != nil {
		return "", err
	}

	info, err := os.Lstat(src)
	if err != nil {
		return "", classify("copy", src, err)
	}
	dir := filepath.Dir(dst)
	if err := requireDir(dir); err != nil {
		return "", err
	}
	if info.IsDir() && isWithin(dst, src) {
		return "", fmt.Errorf("%w: cannot copy %s into itself", ErrInvalidArgument, src)
	}

	staged, err := m.stageCopy(ctx, src, dir)
	if err != nil {
		return "", err
	}
	return m.commit(staged, dir, filepath.Base(dst), noClobber)
}

// Duplicate copies path next to itself as name_copy.ext, name_copy2.ext...
func (m *Manager) Duplicate(ctx context.Context, path string) (string, error) {
	src, err := m.guard.Validate(path)
	if err != nil {
		return "", err
	}
	if m.guard.IsRoot(src) {
		return "", fmt.Errorf("%w: refusing to duplicate the root directory", ErrPermissionDenied)
	}
	if _, err := os.Lstat(src); err != nil {
		return "", classify("duplicate", src, err)
	}

	dir := filepath.Dir(src)
	staged, err := m.stageCopy(ctx, src, dir)
	if err != nil {
		return "", err
	}
	return m.commit(staged, dir, filepath.Base(src), duplicatePolicy)
}

// stageCopy copies src to a hidden staging path in dir.
func (m *Manager) stageCopy(ctx context.Context, src, dir string) (string, error) {
	staged := stagePath(dir)
	if err := copyTree(ctx, src, staged); err != nil {
		m.removeStaged(staged)
		return "", classify("copy", src, err)
	}
	return staged, nil
}

// commit renames staged into dir under the name picked by policy.
func (m *Manager) commit(staged, dir, name string, policy nameFunc) (string, error) {
	m.commitMu.Lock()
	defer m.commitMu.Unlock()

	target, err := policy(dir, name)
	if err != nil {
		m.removeStaged(staged)
		return "", err
	}
	if err := os.Rename(staged, target); err != nil {
		m.removeStaged(staged)
		return "", classify("commit", target, err)
	}
	return target, nil
}

// moveInto renames src into dir under the name picked by policy, falling
// back to copy and remove when the rename crosses filesystems.
func (m *Manager) moveInto(ctx context.Context, src, dir string, policy nameFunc) (string, error) {
	name := filepath.Base(src)

	m.commitMu.Lock()
	target, err := policy(dir, name)
	if err == nil {
		err = os.Rename(src, target)
	}
	m.commitMu.Unlock()

	switch {
	case err == nil:
		return target, nil
	case !errors.Is(err, syscall.EXDEV):
		return "", classify("move", src, err)
	}

	staged, err := m.stageCopy(ctx, src, dir)
	if err != nil {
		return "", err
	}
	target, err = m.commit(staged, dir, name, policy)
	if err != nil {
		return "", err
	}
	if err := os.RemoveAll(src); err != nil {
		return target, classify("move", src, err)
	}
	return target, nil
}

// isWithin reports whether path is dir or lies beneath it.
func isWithin(path, dir string) bool {
	if path == dir {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(dir, string(filepath.Separator))+string(filepath.Separator))
}

// copyTree copies src to dst. Regular files keep their mode and
// modification time, directories are recreated recursively and symlinks
// are recreated as links, never followed. Other file types are skipped.
func copyTree(ctx context.Context, src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return copyEntry(src, dst, info)
	}

	if err := os.Mkdir(dst, 0o700); err != nil {
		return err
	}

	type dirMeta struct {
		path string
		info os.FileInfo
	}
	var (
		mu   sync.Mutex
		dirs = []dirMeta{{dst, info}}
	)

	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == src {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := os.Lstat(path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			// Parents are always visited first; MkdirAll only guards
			// against a sibling racing ahead of us.
			if err := os.MkdirAll(target, 0o700); err != nil {
				return err
			}
			mu.Lock()
			dirs = append(dirs, dirMeta{target, info})
			mu.Unlock()
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o700); err != nil {
			return err
		}
		return copyEntry(path, target, info)
	})
	if err != nil {
		return err
	}

	// Restore directory modes deepest first so a read-only parent does not
	// block its children.
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i].path) > len(dirs[j].path) })
	for _, d := range dirs {
		if err := os.Chmod(d.path, d.info.Mode().Perm()); err != nil {
			return err
		}
		_ = os.Chtimes(d.path, time.Now(), d.info.ModTime())
	}
	return nil
}

// copyEntry copies a single non-directory entry.
func copyEntry(src, dst string, info os.FileInfo) error {
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		link, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(link, dst)
	case info.Mode().IsRegular():
		return copyFile(src, dst, info)
	default:
		return nil
	}
}

func copyFile(src, dst string, info os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, time.Now(), info.ModTime())
}
