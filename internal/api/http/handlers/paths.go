package handlers

import (
	"path/filepath"
	"strings"

	apperrors "github.com/spec-kit/history-importer/pkg/util/errorutil"
)

// safeJoin resolves rel inside root and rejects paths that escape it.
func safeJoin(root, rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", apperrors.NewValidationError("dump_dir must be relative", map[string]any{"dump_dir": rel})
	}
	joined := filepath.Join(root, rel)
	back, err := filepath.Rel(root, joined)
	if err != nil || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", apperrors.NewValidationError("dump_dir escapes the dump root", map[string]any{"dump_dir": rel})
	}
	return joined, nil
}
