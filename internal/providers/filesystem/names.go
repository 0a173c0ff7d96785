package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// nameFunc picks the final path for name inside dir.
type nameFunc func(dir, name string) (string, error)

// SplitName splits a file name into stem and extension the way the panel
// always has: the extension starts at the last dot, leading dots belong to
// the stem (".bashrc" has no extension).
func SplitName(name string) (stem, ext string) {
	i := strings.LastIndex(name, ".")
	if i <= 0 || strings.Trim(name[:i], ".") == "" {
		return name, ""
	}
	return name[:i], name[i:]
}

// copyCandidate returns the n-th candidate of the copy sequence:
// stem_copy.ext, stem_copy2.ext, stem_copy3.ext, ...
func copyCandidate(name string, n int) string {
	stem, ext := SplitName(name)
	if n <= 1 {
		return stem + "_copy" + ext
	}
	return fmt.Sprintf("%s_copy%d%s", stem, n, ext)
}

// ResolveCopyName is used by paste and upload. It returns dir/name when
// free, otherwise the first free name of the copy sequence.
func ResolveCopyName(dir, name string) string {
	return resolveCopyName(dir, name, pathExists)
}

// ResolveDuplicateName is used by duplicate. It never returns dir/name
// itself; the first candidate is stem_copy.ext.
func ResolveDuplicateName(dir, name string) string {
	return nextCopyName(dir, name, pathExists)
}

// ResolveArchiveName returns base+ext, then base_1+ext, base_2+ext, ...
func ResolveArchiveName(dir, base, ext string) string {
	return resolveArchiveName(dir, base, ext, pathExists)
}

func resolveCopyName(dir, name string, exists func(string) bool) string {
	p := filepath.Join(dir, name)
	if !exists(p) {
		return p
	}
	return nextCopyName(dir, name, exists)
}

func nextCopyName(dir, name string, exists func(string) bool) string {
	for n := 1; ; n++ {
		p := filepath.Join(dir, copyCandidate(name, n))
		if !exists(p) {
			return p
		}
	}
}

func resolveArchiveName(dir, base, ext string, exists func(string) bool) string {
	p := filepath.Join(dir, base+ext)
	for n := 1; exists(p); n++ {
		p = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, n, ext))
	}
	return p
}

// noClobber is the policy of rename and move: the exact name or failure.
func noClobber(dir, name string) (string, error) {
	p := filepath.Join(dir, name)
	if pathExists(p) {
		return "", fmt.Errorf("%w: %s", ErrAlreadyExists, p)
	}
	return p, nil
}

func copyPolicy(dir, name string) (string, error) {
	return ResolveCopyName(dir, name), nil
}

func duplicatePolicy(dir, name string) (string, error) {
	return ResolveDuplicateName(dir, name), nil
}

func pathExists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}
