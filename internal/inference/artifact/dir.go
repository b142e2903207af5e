package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/eduymaz/aller-mind/internal/inference/model"
)

type DirSource struct {
	Dir     string
	Pattern string
}

func NewDirSource(dir, pattern string) (*DirSource, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("artifact directory required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("artifact directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("artifact directory %q is not a directory", dir)
	}
	return &DirSource{Dir: dir, Pattern: pattern}, nil
}

func (s *DirSource) Location(groupID int) string {
	return filepath.Join(s.Dir, Name(s.Pattern, groupID))
}

func (s *DirSource) Open(ctx context.Context, groupID int) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Location(groupID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Location(groupID))
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *DirSource) Close() error { return nil }

// WriteBundle stores b under dir using pattern and returns the file path.
func WriteBundle(dir, pattern string, b model.Bundle) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode group %d: %w", b.GroupID, err)
	}
	path := filepath.Join(dir, Name(pattern, b.GroupID))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return "", err
	}
	return path, os.Rename(tmp, path)
}
