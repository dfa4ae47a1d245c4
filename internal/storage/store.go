package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrInvalidName      = errors.New("invalid file name")
)

// Artifact describes one stored file.
type Artifact struct {
	Name     string    `json:"filename"`
	Location string    `json:"filepath"`
	Size     int64     `json:"size"`
	SHA256   string    `json:"sha256,omitempty"`
	ModTime  time.Time `json:"created"`
}

// ArtifactStore keeps flat, named files: generated lesson plans or uploads.
type ArtifactStore interface {
	Put(ctx context.Context, name string, r io.Reader) (Artifact, error)
	Open(ctx context.Context, name string) (io.ReadCloser, Artifact, error)
	List(ctx context.Context) ([]Artifact, error)
	Delete(ctx context.Context, name string) error
	// Kind is "local" or "minio", for logs.
	Kind() string
}

// CleanName accepts a bare file name and rejects anything that could leave
// the store's directory.
func CleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") ||
		filepath.Base(name) != name {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}

func checkCtx(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
