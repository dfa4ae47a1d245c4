package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type LocalStore struct {
	baseDir string
	ext     string
}

// NewLocalStore keeps files under baseDir. When ext is set, List only
// reports files with that extension.
func NewLocalStore(baseDir, ext string) (*LocalStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("baseDir is empty")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create base dir: %w", err)
	}
	return &LocalStore{baseDir: baseDir, ext: ext}, nil
}

func (s *LocalStore) Kind() string { return "local" }

func (s *LocalStore) Dir() string { return s.baseDir }

func (s *LocalStore) Put(ctx context.Context, name string, r io.Reader) (Artifact, error) {
	if err := checkCtx(ctx); err != nil {
		return Artifact{}, err
	}
	name, err := CleanName(name)
	if err != nil {
		return Artifact{}, err
	}
	fullPath := filepath.Join(s.baseDir, name)

	tempPath := fullPath + ".tmp-" + fmt.Sprint(time.Now().UnixNano())
	f, err := os.Create(tempPath)
	if err != nil {
		return Artifact{}, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = f.Close()
		_ = os.Remove(tempPath)
	}()

	hasher := sha256.New()
	written, err := io.Copy(f, io.TeeReader(r, hasher))
	if err != nil {
		return Artifact{}, fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return Artifact{}, fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tempPath, fullPath); err != nil {
		return Artifact{}, fmt.Errorf("rename temp file: %w", err)
	}

	return Artifact{
		Name:     name,
		Location: fullPath,
		Size:     written,
		SHA256:   hex.EncodeToString(hasher.Sum(nil)),
		ModTime:  time.Now(),
	}, nil
}

func (s *LocalStore) Open(ctx context.Context, name string) (io.ReadCloser, Artifact, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, Artifact{}, err
	}
	name, err := CleanName(name)
	if err != nil {
		return nil, Artifact{}, err
	}
	fullPath := filepath.Join(s.baseDir, name)
	f, err := os.Open(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, Artifact{}, fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
	}
	if err != nil {
		return nil, Artifact{}, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, Artifact{}, err
	}
	return f, Artifact{Name: name, Location: fullPath, Size: st.Size(), ModTime: st.ModTime()}, nil
}

// List returns the stored files sorted by name.
func (s *LocalStore) List(ctx context.Context) ([]Artifact, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}
	out := make([]Artifact, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.Contains(name, ".tmp-") {
			continue
		}
		if s.ext != "" && !strings.EqualFold(filepath.Ext(name), s.ext) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Artifact{
			Name:     name,
			Location: filepath.Join(s.baseDir, name),
			Size:     info.Size(),
			ModTime:  info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *LocalStore) Delete(ctx context.Context, name string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	name, err := CleanName(name)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.baseDir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
	}
	return err
}
