package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// reservedNames are device names Windows clients cannot open.
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true,
}

// SanitizeFilename reduces a client supplied file name to a safe single
// component made of ASCII letters, digits, '_', '.' and '-'. Separators
// and whitespace become underscores, accents are stripped and leading or
// trailing dots and underscores removed. The result may be empty.
func SanitizeFilename(name string) string {
	decomposed := norm.NFKD.String(name)

	var b strings.Builder
	for _, r := range decomposed {
		switch {
		case r == '/' || r == '\\' || unicode.IsSpace(r):
			b.WriteByte(' ')
		case r > unicode.MaxASCII:
		default:
			b.WriteRune(r)
		}
	}

	joined := strings.Join(strings.Fields(b.String()), "_")
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '_' || r == '.' || r == '-':
			return r
		default:
			return -1
		}
	}, joined)
	clean = strings.Trim(clean, "._")

	stem, _ := SplitName(clean)
	if reservedNames[strings.ToUpper(stem)] {
		clean = "_" + clean
	}
	return clean
}

// Upload stores r as filename inside destDir and returns the final path.
// The content is streamed to a staging file first; on a name collision the
// copy naming scheme is applied.
func (m *Manager) Upload(ctx context.Context, destDir, filename string, r io.Reader) (string, error) {
	name := SanitizeFilename(filename)
	if name == "" {
		return "", fmt.Errorf("%w: file name is empty", ErrInvalidArgument)
	}
	if destDir == "" {
		destDir = m.guard.Root()
	}
	dir, err := m.guard.Validate(destDir)
	if err != nil {
		return "", err
	}
	if err := requireDir(dir); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", classify("upload", dir, err)
	}

	staged, err := writeStaged(dir, &ctxReader{ctx: ctx, r: r}, 0o644)
	if err != nil {
		return "", err
	}
	return m.commit(staged, dir, name, copyPolicy)
}

// ctxReader aborts a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// OpenDownload resolves what a download of path should send. Directories
// are streamed as zip archives by the caller via WriteArchive.
func (m *Manager) OpenDownload(path string) (*Download, error) {
	full, err := m.guard.Validate(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return nil, classify("download", full, err)
	}

	name := filepath.Base(full)
	if info.IsDir() {
		return &Download{
			Path:        full,
			Name:        name + FormatZip.Extension(),
			IsDir:       true,
			ContentType: "application/zip",
		}, nil
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrNotAFile, full)
	}
	return &Download{
		Path:        full,
		Name:        name,
		Size:        info.Size(),
		ContentType: detectContentType(full, info),
	}, nil
}

// Open opens a file download for reading.
func (d *Download) Open() (*os.File, error) {
	if d.IsDir {
		return nil, fmt.Errorf("%w: %s", ErrNotAFile, d.Path)
	}
	f, err := os.Open(d.Path)
	if err != nil {
		return nil, classify("download", d.Path, err)
	}
	return f, nil
}
