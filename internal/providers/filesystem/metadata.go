package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

// TimeLayout is how timestamps are rendered to the panel.
const TimeLayout = "2006-01-02 15:04:05"

// ownership holds the platform specific part of a stat result.
type ownership struct {
	uid, gid int
	accessed time.Time
	changed  time.Time
}

// Info returns detailed metadata for a single entry. Directories also carry
// immediate (non-recursive) child counts.
func (m *Manager) Info(path string) (*Entry, error) {
	full, err := m.guard.Validate(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(full)
	if err != nil {
		return nil, classify("stat", full, err)
	}

	entry := entryFromInfo(full, info)
	entry.Size = info.Size()
	entry.SizeHuman = humanize.IBytes(uint64(entry.Size))

	if own, ok := statOwnership(full); ok {
		entry.OwnerUID = &own.uid
		entry.OwnerGID = &own.gid
		entry.Accessed = own.accessed.Format(TimeLayout)
		entry.Created = own.changed.Format(TimeLayout)
	} else {
		entry.Accessed = entry.Modified
		entry.Created = entry.Modified
	}

	if info.IsDir() {
		items, files, dirs := countChildren(full)
		entry.ItemCount = &items
		entry.FileCount = &files
		entry.DirCount = &dirs
	} else {
		entry.MIMEType = detectContentType(full, info)
	}

	return &entry, nil
}

// entryFromInfo builds the listing view of an entry. Directory sizes are
// reported as zero.
func entryFromInfo(path string, info fs.FileInfo) Entry {
	e := Entry{
		Name:         filepath.Base(path),
		Path:         path,
		IsDir:        info.IsDir(),
		Modified:     info.ModTime().Format(TimeLayout),
		ModifiedUnix: info.ModTime().Unix(),
		Permissions:  permissionBits(info.Mode()),
	}
	if !e.IsDir {
		e.Size = info.Size()
	}
	e.SizeHuman = humanize.IBytes(uint64(e.Size))
	return e
}

// permissionBits renders the rwx bits as three octal digits, e.g. "755".
func permissionBits(mode fs.FileMode) string {
	return fmt.Sprintf("%03o", mode.Perm())
}

func countChildren(dir string) (items, files, dirs int) {
	children, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, 0
	}
	items = len(children)
	for _, c := range children {
		info, err := os.Stat(filepath.Join(dir, c.Name()))
		if err != nil {
			continue
		}
		if info.IsDir() {
			dirs++
		} else if info.Mode().IsRegular() {
			files++
		}
	}
	return items, files, dirs
}

// detectContentType sniffs the MIME type of a regular file. Pipes and
// devices are never opened.
func detectContentType(path string, info os.FileInfo) string {
	if !info.Mode().IsRegular() {
		return "application/octet-stream"
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "application/octet-stream"
	}
	return mt.String()
}
