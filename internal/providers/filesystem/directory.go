package filesystem

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// List returns the entries of dir, directories first and then by
// case-insensitive name. An empty dir lists the root.
func (m *Manager) List(dir string) (*Listing, error) {
	if dir == "" {
		dir = m.guard.Root()
	}
	full, err := m.guard.Validate(dir)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(full)
	if err != nil {
		return nil, classify("list", full, err)
	}
	if !info.IsDir() {
		return nil, classify("list", full, ErrNotADirectory)
	}

	children, err := os.ReadDir(full)
	if err != nil {
		return nil, classify("list", full, err)
	}

	items := make([]Entry, 0, len(children))
	for _, child := range children {
		if strings.HasPrefix(child.Name(), stagePrefix) {
			continue
		}
		items = append(items, listEntry(filepath.Join(full, child.Name()), child))
	}
	SortEntries(items)

	return &Listing{Path: full, Items: items}, nil
}

// listEntry stats a child, following symlinks. A child whose stat fails is
// still listed, with zero metadata.
func listEntry(path string, child os.DirEntry) Entry {
	isLink := child.Type()&os.ModeSymlink != 0

	info, err := os.Stat(path)
	if err != nil && isLink {
		info, err = os.Lstat(path)
	}
	if err != nil {
		return Entry{
			Name:        child.Name(),
			Path:        path,
			IsDir:       child.IsDir(),
			IsSymlink:   isLink,
			SizeHuman:   "0 B",
			Permissions: "000",
		}
	}

	e := entryFromInfo(path, info)
	e.IsSymlink = isLink
	return e
}

// SortEntries orders entries directories first, then by name ignoring case.
func SortEntries(items []Entry) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].IsDir != items[j].IsDir {
			return items[i].IsDir
		}
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
}
