package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/RouterPanel/backend/internal/providers/clipboard"
)

// CopyToClipboard replaces the clipboard with paths in copy mode.
func (m *Manager) CopyToClipboard(paths []string) (int, error) {
	return m.selectPaths(paths, clipboard.Copy)
}

// CutToClipboard replaces the clipboard with paths in cut mode.
func (m *Manager) CutToClipboard(paths []string) (int, error) {
	return m.selectPaths(paths, clipboard.Cut)
}

func (m *Manager) selectPaths(paths []string, op clipboard.Operation) (int, error) {
	if len(paths) == 0 {
		return 0, fmt.Errorf("%w: no paths selected", ErrInvalidArgument)
	}
	items, err := m.guard.ValidateAll(paths)
	if err != nil {
		return 0, err
	}
	state := m.clipboard.Set(items, op)
	return len(state.Items), nil
}

// Clipboard returns a snapshot of the current selection.
func (m *Manager) Clipboard() clipboard.State {
	return m.clipboard.Get()
}

// ClearClipboard empties the selection.
func (m *Manager) ClearClipboard() {
	m.clipboard.Clear()
}

// Paste copies or moves every clipboard item into dest. Items are handled
// one at a time; an item that fails is logged and counted, and the rest
// continue. A cut selection is cleared afterwards unless another selection
// replaced it meanwhile.
func (m *Manager) Paste(ctx context.Context, destPath string) (*PasteResult, error) {
	dest, err := m.guard.Validate(destPath)
	if err != nil {
		return nil, err
	}

	state := m.clipboard.Get()
	if state.Empty() {
		return nil, ErrEmptySelection
	}
	if err := requireDir(dest); err != nil {
		return nil, err
	}

	result := &PasteResult{Operation: state.Operation, Paths: []string{}}
	for _, item := range state.Items {
		if err := ctx.Err(); err != nil {
			if state.Operation == clipboard.Cut {
				m.clipboard.ClearIfUnchanged(state.Version)
			}
			return result, classify("paste", dest, err)
		}

		target, err := m.pasteItem(ctx, item, dest, state.Operation)
		if err != nil {
			result.Failed++
			m.logger.Warn("paste item failed",
				zap.String("item", item),
				zap.String("dest", dest),
				zap.String("operation", string(state.Operation)),
				zap.Error(err))
			continue
		}
		if target == "" {
			continue
		}
		result.Count++
		result.Paths = append(result.Paths, target)
	}

	if state.Operation == clipboard.Cut {
		m.clipboard.ClearIfUnchanged(state.Version)
	}
	return result, nil
}

// pasteItem returns an empty target when the item vanished since it was
// selected.
func (m *Manager) pasteItem(ctx context.Context, item, dest string, op clipboard.Operation) (string, error) {
	src, err := m.guard.Validate(item)
	if err != nil {
		return "", err
	}
	info, err := os.Lstat(src)
	if os.IsNotExist(err) {
		m.logger.Debug("skipping missing clipboard item", zap.String("item", src))
		return "", nil
	}
	if err != nil {
		return "", classify("paste", src, err)
	}
	if m.guard.IsRoot(src) {
		return "", fmt.Errorf("%w: cannot paste the root directory", ErrPermissionDenied)
	}
	if info.IsDir() && isWithin(dest, src) {
		return "", fmt.Errorf("%w: cannot paste %s into itself", ErrInvalidArgument, src)
	}

	if op == clipboard.Cut {
		if filepath.Dir(src) == dest {
			// Cutting into the same directory leaves the item where it is.
			return src, nil
		}
		return m.moveInto(ctx, src, dest, copyPolicy)
	}

	staged, err := m.stageCopy(ctx, src, dest)
	if err != nil {
		return "", err
	}
	return m.commit(staged, dest, filepath.Base(src), copyPolicy)
}
