package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/eduymaz/aller-mind/internal/platform/gcp"
)

// GCSSource reads bundles from gs://bucket/prefix.
type GCSSource struct {
	client  *storage.Client
	bucket  string
	prefix  string
	pattern string
}

// ParseGCSURI splits gs://bucket/some/prefix into bucket and prefix.
func ParseGCSURI(uri string) (bucket, prefix string, err error) {
	u, err := url.Parse(strings.TrimSpace(uri))
	if err != nil {
		return "", "", fmt.Errorf("parse %q: %w", uri, err)
	}
	if u.Scheme != "gs" || u.Host == "" {
		return "", "", fmt.Errorf("invalid cloud storage uri %q, want gs://bucket/prefix", uri)
	}
	return u.Host, strings.Trim(u.Path, "/"), nil
}

func NewGCSSource(ctx context.Context, uri, pattern string) (*GCSSource, error) {
	bucket, prefix, err := ParseGCSURI(uri)
	if err != nil {
		return nil, err
	}
	cfg, err := gcp.StorageConfigFromEnv()
	if err != nil {
		return nil, err
	}
	client, err := gcp.NewStorageClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSSource{client: client, bucket: bucket, prefix: prefix, pattern: pattern}, nil
}

func (s *GCSSource) key(groupID int) string {
	return path.Join(s.prefix, Name(s.pattern, groupID))
}

func (s *GCSSource) Location(groupID int) string {
	return "gs://" + s.bucket + "/" + s.key(groupID)
}

func (s *GCSSource) Open(ctx context.Context, groupID int) (io.ReadCloser, error) {
	r, err := s.client.Bucket(s.bucket).Object(s.key(groupID)).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Location(groupID))
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.Location(groupID), err)
	}
	return r, nil
}

func (s *GCSSource) Close() error { return s.client.Close() }
