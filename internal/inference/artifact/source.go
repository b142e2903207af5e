// Package artifact locates serialized group-model bundles on local disk or
// in a Cloud Storage bucket.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultPattern names one bundle per group.
const DefaultPattern = "group%d.json"

var ErrNotFound = errors.New("model artifact not found")

// Source opens the bundle for a group.
type Source interface {
	Open(ctx context.Context, groupID int) (io.ReadCloser, error)
	// Location describes where the group's bundle is read from, for logs.
	Location(groupID int) string
	Close() error
}

// Name renders pattern for groupID. A pattern without a verb gets the group
// id appended before its extension.
func Name(pattern string, groupID int) string {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		pattern = DefaultPattern
	}
	if strings.Contains(pattern, "%d") {
		return fmt.Sprintf(pattern, groupID)
	}
	if i := strings.LastIndex(pattern, "."); i > 0 {
		return fmt.Sprintf("%s%d%s", pattern[:i], groupID, pattern[i:])
	}
	return fmt.Sprintf("%s%d", pattern, groupID)
}

// Open resolves location to a Source: gs://bucket/prefix selects Cloud
// Storage, anything else is a local directory.
func Open(ctx context.Context, location, pattern string) (Source, error) {
	if strings.HasPrefix(strings.TrimSpace(location), "gs://") {
		src, err := NewGCSSource(ctx, location, pattern)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	src, err := NewDirSource(location, pattern)
	if err != nil {
		return nil, err
	}
	return src, nil
}
