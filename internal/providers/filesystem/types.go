package filesystem

import (
	"fmt"

	"github.com/GriffinCanCode/RouterPanel/backend/internal/providers/clipboard"
)

// Entry represents file or directory metadata as rendered by the panel.
type Entry struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	IsDir        bool   `json:"is_dir"`
	IsSymlink    bool   `json:"is_symlink,omitempty"`
	Size         int64  `json:"size"`
	SizeHuman    string `json:"size_human"`
	Modified     string `json:"modified"`
	ModifiedUnix int64  `json:"modified_unix"`
	Permissions  string `json:"permissions"`

	// Populated by Info only.
	Created   string `json:"created,omitempty"`
	Accessed  string `json:"accessed,omitempty"`
	OwnerUID  *int   `json:"owner_uid,omitempty"`
	OwnerGID  *int   `json:"owner_gid,omitempty"`
	MIMEType  string `json:"mime_type,omitempty"`
	ItemCount *int   `json:"item_count,omitempty"`
	FileCount *int   `json:"file_count,omitempty"`
	DirCount  *int   `json:"dir_count,omitempty"`
}

// Listing is the result of listing one directory.
type Listing struct {
	Path  string  `json:"path"`
	Items []Entry `json:"items"`
}

// SearchResult is a single search hit. Size is omitted for directories.
type SearchResult struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	IsDir  bool   `json:"is_dir"`
	Size   *int64 `json:"size,omitempty"`
	Parent string `json:"parent"`
}

// SearchResponse carries at most the configured limit of results.
type SearchResponse struct {
	Results   []SearchResult `json:"results"`
	Count     int            `json:"count"`
	Truncated bool           `json:"truncated"`
}

// SearchOptions tunes a search.
type SearchOptions struct {
	// Glob treats the query as a doublestar pattern matched against the
	// slash separated path relative to the search root.
	Glob bool
}

// PasteResult reports a paste. Failed items are skipped, not fatal.
type PasteResult struct {
	Operation clipboard.Operation `json:"operation"`
	Count     int                 `json:"count"`
	Failed    int                 `json:"failed"`
	Paths     []string            `json:"paths"`
}

// Download describes what the download handler should send.
type Download struct {
	Path        string
	Name        string
	IsDir       bool
	Size        int64
	ContentType string
}

// ArchiveFormat selects the container written by Compress.
type ArchiveFormat string

const (
	FormatZip    ArchiveFormat = "zip"
	FormatTarGz  ArchiveFormat = "tar.gz"
	FormatTarZst ArchiveFormat = "tar.zst"
)

// Extension returns the file extension for the format, dot included.
func (f ArchiveFormat) Extension() string {
	return "." + string(f)
}

// ParseArchiveFormat maps user input to a format; empty means zip.
func ParseArchiveFormat(s string) (ArchiveFormat, error) {
	switch ArchiveFormat(s) {
	case "", FormatZip:
		return FormatZip, nil
	case FormatTarGz, "tgz":
		return FormatTarGz, nil
	case FormatTarZst, "tzst":
		return FormatTarZst, nil
	default:
		return "", fmt.Errorf("%w: unsupported archive format %q", ErrInvalidArgument, s)
	}
}
