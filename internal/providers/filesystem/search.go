package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
)

// errLimitReached stops the walk once enough results were collected.
var errLimitReached = errors.New("search limit reached")

// Search walks root looking for entries whose name contains query, ignoring
// case. With opts.Glob the query is a doublestar pattern matched against
// the path relative to root. Results come in traversal order and are capped
// at the configured limit; root itself is never reported.
func (m *Manager) Search(ctx context.Context, root, query string, opts SearchOptions) (*SearchResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query required", ErrInvalidArgument)
	}
	if root == "" {
		root = m.guard.Root()
	}
	start, err := m.guard.Validate(root)
	if err != nil {
		return nil, err
	}
	if err := requireDir(start); err != nil {
		return nil, err
	}

	match, err := matcher(query, opts)
	if err != nil {
		return nil, err
	}

	var (
		mu        sync.Mutex
		results   = make([]SearchResult, 0)
		truncated bool
	)

	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, start, func(path string, d os.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			// Unreadable directories are skipped, not fatal.
			return nil
		}
		if path == start || strings.HasPrefix(d.Name(), stagePrefix) {
			return nil
		}

		rel, err := filepath.Rel(start, path)
		if err != nil || !match(d.Name(), filepath.ToSlash(rel)) {
			return nil
		}

		res := SearchResult{
			Name:   d.Name(),
			Path:   path,
			IsDir:  d.IsDir(),
			Parent: filepath.Dir(path),
		}
		if !res.IsDir {
			var size int64
			if info, err := d.Info(); err == nil {
				size = info.Size()
			}
			res.Size = &size
		}

		mu.Lock()
		defer mu.Unlock()
		if len(results) >= m.searchLimit {
			truncated = true
			return errLimitReached
		}
		results = append(results, res)
		return nil
	})
	if err != nil && !errors.Is(err, errLimitReached) {
		return nil, classify("search", start, err)
	}

	return &SearchResponse{Results: results, Count: len(results), Truncated: truncated}, nil
}

// matcher builds the name predicate for a query.
func matcher(query string, opts SearchOptions) (func(name, rel string) bool, error) {
	q := strings.ToLower(query)
	if !opts.Glob {
		return func(name, _ string) bool {
			return strings.Contains(strings.ToLower(name), q)
		}, nil
	}

	if !doublestar.ValidatePattern(q) {
		return nil, fmt.Errorf("%w: invalid glob pattern %q", ErrInvalidArgument, query)
	}
	// A pattern without a slash matches the entry name at any depth.
	if !strings.Contains(q, "/") {
		q = "**/" + q
	}
	return func(_, rel string) bool {
		ok, _ := doublestar.Match(q, strings.ToLower(rel))
		return ok
	}, nil
}
