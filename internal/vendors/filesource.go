package vendors

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spec-kit/history-importer/internal/history"
	"github.com/spec-kit/history-importer/pkg/util/errorutil"
)

// FileSource reads exported feeds from <Dir>/<external id>.json.
type FileSource struct {
	Dir    string
	Decode func(data []byte) ([]history.Event, error)
}

// NewFileSource returns a source reading v's dumps from dir.
func NewFileSource(dir string, v Vendor) *FileSource {
	return &FileSource{Dir: dir, Decode: v.Decode}
}

// FetchEvents implements history.Source.
func (s *FileSource) FetchEvents(ctx context.Context, externalID string) ([]history.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := strings.NewReplacer("/", "_", "\\", "_", "#", "").Replace(externalID)
	path := filepath.Join(s.Dir, name+".json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errorutil.NewNotFound("feed dump", map[string]any{"path": path})
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return s.Decode(data)
}
