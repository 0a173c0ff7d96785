package filesystem

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

// archiveEntry is one file or directory to be archived. rel is the slash
// separated name inside the archive.
type archiveEntry struct {
	path string
	rel  string
	info os.FileInfo
}

// Compress packs path into an archive next to it and returns the archive
// path. A directory is stored with its top folder; symlinks are skipped.
func (m *Manager) Compress(ctx context.Context, path string, format ArchiveFormat) (string, error) {
	if format == "" {
		format = FormatZip
	}
	src, err := m.guard.Validate(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Lstat(src); err != nil {
		return "", classify("compress", src, err)
	}
	// The archive lands in the parent, which must itself be inside the root.
	parent, err := m.guard.Validate(filepath.Dir(src))
	if err != nil {
		return "", err
	}

	entries, err := collectEntries(ctx, src)
	if err != nil {
		return "", classify("compress", src, err)
	}

	tmp := stagePath(parent)
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", classify("compress", tmp, err)
	}
	if format == FormatZip {
		err = writeZip(ctx, entries, f)
	} else {
		err = writeTar(ctx, entries, f, format)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		m.removeStaged(tmp)
		return "", classify("compress", src, err)
	}

	base := filepath.Base(src)
	ext := format.Extension()
	return m.commit(tmp, parent, base, func(dir, _ string) (string, error) {
		return ResolveArchiveName(dir, base, ext), nil
	})
}

// WriteArchive streams a zip of dir to w without touching the disk.
func (m *Manager) WriteArchive(ctx context.Context, dir string, w io.Writer) error {
	full, err := m.guard.Validate(dir)
	if err != nil {
		return err
	}
	if err := requireDir(full); err != nil {
		return err
	}
	entries, err := collectEntries(ctx, full)
	if err != nil {
		return classify("archive", full, err)
	}
	if err := writeZip(ctx, entries, w); err != nil {
		return classify("archive", full, err)
	}
	return nil
}

// Extract unpacks archivePath into dest, which defaults to the archive's
// directory, and returns the destination. Every entry is checked before
// anything is written; an entry escaping dest rejects the whole archive.
// Existing files with the same relative path are overwritten.
func (m *Manager) Extract(ctx context.Context, archivePath, dest string) (string, error) {
	archive, err := m.guard.Validate(archivePath)
	if err != nil {
		return "", err
	}
	if dest == "" {
		dest = filepath.Dir(archive)
	}
	target, err := m.guard.Validate(dest)
	if err != nil {
		return "", err
	}
	if err := requireFile(archive); err != nil {
		return "", err
	}
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotADirectory, target)
	}

	ex := &extractor{m: m, dest: target}
	switch detectArchive(archive) {
	case "tar", "tar.gz", "tar.zst":
		err = ex.tar(ctx, archive)
	default:
		err = ex.zip(ctx, archive)
	}
	if err != nil {
		return "", classify("extract", archive, err)
	}
	return target, nil
}

// detectArchive picks the container from the file name. Anything unknown
// is treated as zip.
func detectArchive(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return "tar.gz"
	case strings.HasSuffix(lower, ".tar.zst"), strings.HasSuffix(lower, ".tzst"):
		return "tar.zst"
	case strings.HasSuffix(lower, ".tar"):
		return "tar"
	default:
		return "zip"
	}
}

// collectEntries lists src and, for a directory, everything below it.
// Names are relative to the parent of src so the top folder is kept.
func collectEntries(ctx context.Context, src string) ([]archiveEntry, error) {
	info, err := os.Lstat(src)
	if err != nil {
		return nil, err
	}
	base := filepath.Dir(src)
	if !info.IsDir() {
		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("%w: %s is not a regular file", ErrInvalidArgument, src)
		}
		return []archiveEntry{{path: src, rel: filepath.Base(src), info: info}}, nil
	}

	var (
		mu      sync.Mutex
		entries []archiveEntry
	)
	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, src, func(path string, d os.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if !info.IsDir() && !info.Mode().IsRegular() {
			return nil
		}
		// Never archive our own in-flight staging files.
		if strings.HasPrefix(d.Name(), stagePrefix) {
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return nil
		}
		mu.Lock()
		entries = append(entries, archiveEntry{path: path, rel: filepath.ToSlash(rel), info: info})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].rel < entries[j].rel })
	return entries, nil
}

func writeZip(ctx context.Context, entries []archiveEntry, w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		hdr, err := zip.FileInfoHeader(e.info)
		if err != nil {
			return err
		}
		hdr.Name = e.rel
		if e.info.IsDir() {
			hdr.Name += "/"
			hdr.Method = zip.Store
			if _, err := zw.CreateHeader(hdr); err != nil {
				return err
			}
			continue
		}
		hdr.Method = zip.Deflate
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		if err := copyFrom(fw, e.path); err != nil {
			return err
		}
	}
	return zw.Close()
}

func writeTar(ctx context.Context, entries []archiveEntry, w io.Writer, format ArchiveFormat) error {
	var cw io.WriteCloser
	switch format {
	case FormatTarGz:
		cw = gzip.NewWriter(w)
	case FormatTarZst:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return err
		}
		cw = zw
	default:
		return fmt.Errorf("%w: unsupported archive format %q", ErrInvalidArgument, format)
	}

	tw := tar.NewWriter(cw)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			cw.Close()
			return err
		}
		hdr, err := tar.FileInfoHeader(e.info, "")
		if err != nil {
			cw.Close()
			return err
		}
		hdr.Name = e.rel
		if e.info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			cw.Close()
			return err
		}
		if e.info.Mode().IsRegular() {
			if err := copyFrom(tw, e.path); err != nil {
				cw.Close()
				return err
			}
		}
	}
	if err := tw.Close(); err != nil {
		cw.Close()
		return err
	}
	return cw.Close()
}

func copyFrom(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// extractor writes archive members below dest.
type extractor struct {
	m    *Manager
	dest string
}

// target maps an archive member name to its destination path, rejecting
// members that would land outside dest.
func (x *extractor) target(name string) (string, error) {
	clean := filepath.Join(x.dest, filepath.FromSlash(name))
	if !isWithin(clean, x.dest) {
		return "", fmt.Errorf("%w: entry %q escapes the destination", ErrInvalidArchive, name)
	}
	// Existing links below dest must not redirect the write out of the root.
	resolved, err := x.m.guard.Validate(clean)
	if err != nil {
		return "", fmt.Errorf("%w: entry %q resolves outside the root", ErrInvalidArchive, name)
	}
	return resolved, nil
}

func (x *extractor) zip(ctx context.Context, archive string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	defer r.Close()

	targets := make([]string, len(r.File))
	for i, f := range r.File {
		if targets[i], err = x.target(f.Name); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(x.dest, 0o755); err != nil {
		return err
	}
	for i, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		mode := f.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(targets[i], 0o755); err != nil {
				return err
			}
		case mode.IsRegular():
			if err := x.writeMember(targets[i], mode, f.Open); err != nil {
				return err
			}
		default:
			x.m.logger.Warn("skipping archive member", zap.String("name", f.Name), zap.Stringer("mode", mode))
		}
	}
	return nil
}

func (x *extractor) tar(ctx context.Context, archive string) error {
	// First pass validates every header, second pass writes.
	if err := x.walkTar(ctx, archive, func(hdr *tar.Header, _ io.Reader) error {
		_, err := x.target(hdr.Name)
		return err
	}); err != nil {
		return err
	}

	if err := os.MkdirAll(x.dest, 0o755); err != nil {
		return err
	}
	return x.walkTar(ctx, archive, func(hdr *tar.Header, r io.Reader) error {
		target, err := x.target(hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			return os.MkdirAll(target, 0o755)
		case tar.TypeReg:
			return x.writeMember(target, hdr.FileInfo().Mode(), func() (io.ReadCloser, error) {
				return io.NopCloser(r), nil
			})
		default:
			x.m.logger.Warn("skipping archive member", zap.String("name", hdr.Name), zap.Int("type", int(hdr.Typeflag)))
			return nil
		}
	})
}

func (x *extractor) walkTar(ctx context.Context, archive string, fn func(*tar.Header, io.Reader) error) error {
	f, err := os.Open(archive)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = f
	switch detectArchive(archive) {
	case "tar.gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidArchive, err)
		}
		defer gz.Close()
		r = gz
	case "tar.zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidArchive, err)
		}
		defer zr.Close()
		r = zr
	}

	tr := tar.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidArchive, err)
		}
		if err := fn(hdr, tr); err != nil {
			return err
		}
	}
}

// writeMember replaces target with the member content via a staging file.
func (x *extractor) writeMember(target string, mode os.FileMode, open func() (io.ReadCloser, error)) error {
	if info, err := os.Lstat(target); err == nil && info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidArchive, target)
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	rc, err := open()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	defer rc.Close()

	perm := mode.Perm()
	if perm == 0 {
		perm = 0o644
	}
	return writeAtomic(target, rc, perm)
}
