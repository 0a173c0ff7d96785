package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Guard confines client supplied paths to a single root directory.
// Every path argument of every Manager operation goes through Validate
// before the filesystem is touched.
type Guard struct {
	root string
}

// NewGuard resolves root (symlinks included) and returns a guard for it.
// The root must exist and be a directory.
func NewGuard(root string) (*Guard, error) {
	if root == "" || !filepath.IsAbs(root) {
		return nil, fmt.Errorf("%w: root must be an absolute path, got %q", ErrInvalidArgument, root)
	}

	resolved, err := filepath.EvalSymlinks(filepath.Clean(root))
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("stat root %s: %w", resolved, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: root %s", ErrNotADirectory, resolved)
	}

	return &Guard{root: resolved}, nil
}

// Root returns the canonical root directory.
func (g *Guard) Root() string {
	return g.root
}

// Validate canonicalizes path and accepts it iff it is the root or lies
// beneath it. Relative paths are taken relative to the root. Path
// components that do not exist yet are allowed, so targets of create or
// write can be validated before they exist.
func (g *Guard) Validate(path string) (string, error) {
	if strings.TrimSpace(path) == "" || strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("%w: empty path", ErrPermissionDenied)
	}

	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(g.root, abs)
	}
	abs = filepath.Clean(abs)

	resolved, err := resolveExisting(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrPermissionDenied, path)
	}

	// A symlink as the final component is kept as the canonical path (so
	// delete and rename act on the link), but its target must stay inside.
	if info, err := os.Lstat(resolved); err == nil && info.Mode()&os.ModeSymlink != 0 {
		target, err := filepath.EvalSymlinks(resolved)
		if err != nil {
			return "", fmt.Errorf("%w: %s is a dangling link", ErrPermissionDenied, path)
		}
		if target == g.root {
			return g.root, nil
		}
		if !g.contains(target) {
			return "", fmt.Errorf("%w: %s points outside %s", ErrPermissionDenied, path, g.root)
		}
	}

	if !g.contains(resolved) {
		return "", fmt.Errorf("%w: %s is outside %s", ErrPermissionDenied, path, g.root)
	}
	return resolved, nil
}

// ValidateAll validates every path, failing on the first rejection.
func (g *Guard) ValidateAll(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		v, err := g.Validate(p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ValidateName checks that name is a single path component.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: name required", ErrInvalidArgument)
	case name == "." || name == "..":
		return fmt.Errorf("%w: invalid name %q", ErrInvalidArgument, name)
	case strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: name %q must not contain path separators", ErrInvalidArgument, name)
	}
	return nil
}

// IsRoot reports whether a validated path is the root itself.
func (g *Guard) IsRoot(path string) bool {
	return path == g.root
}

func (g *Guard) contains(path string) bool {
	if path == g.root {
		return true
	}
	prefix := g.root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}

// resolveExisting evaluates symlinks on the longest existing prefix of abs
// and re-appends the components that do not exist yet.
func resolveExisting(abs string) (string, error) {
	var missing []string
	current := abs
	for {
		if _, err := os.Lstat(current); err == nil {
			break
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		missing = append(missing, filepath.Base(current))
		current = parent
	}

	// The final existing component may itself be a symlink; only its parent
	// is resolved here so the link is not replaced by its target.
	var base string
	if len(missing) == 0 && current != filepath.Dir(current) {
		base = filepath.Base(current)
		current = filepath.Dir(current)
	}

	resolved, err := filepath.EvalSymlinks(current)
	if err != nil {
		return "", err
	}
	if base != "" {
		resolved = filepath.Join(resolved, base)
	}
	for i := len(missing) - 1; i >= 0; i-- {
		resolved = filepath.Join(resolved, missing[i])
	}
	return resolved, nil
}
