// Package filesystem implements the panel's sandboxed file manager.
//
// Every operation is confined to a single root directory. Client paths are
// canonicalized (symlinks included) by Guard before anything touches the
// disk, and a path outside the root fails with ErrPermissionDenied.
//
// This package is organized into specialized modules:
//   - paths: root confinement (Guard)
//   - names: collision-free naming for paste, duplicate and archives
//   - directory, metadata: listing and entry details
//   - basic: create, delete, read and write text
//   - operations: rename, move, copy, duplicate
//   - paste: clipboard selection and deferred paste
//   - archives: zip, tar.gz and tar.zst pack, unpack and streaming
//   - search: bounded recursive name search
//   - uploads: uploads and downloads
//
// Copies, uploads and archives are written to a hidden staging sibling and
// renamed into place, so a failure never leaves a partial entry under its
// final name.
//
// Errors are wrapped around the sentinels in errors.go; use errors.Is or
// Kind to tell them apart.
//
// Example Usage:
//
//	m, err := filesystem.NewManager(filesystem.Options{Root: "/opt"}, clipboard.NewStore())
//	listing, err := m.List("/opt/etc")
package filesystem
