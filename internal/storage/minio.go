package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yungbote/lessonplan-backend/internal/config"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// MinioStore keeps files as objects under prefix in one bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
	prefix string
}

func NewMinioStore(ctx context.Context, cfg config.MinioConfig, prefix string) (*MinioStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("empty MinIO endpoint")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("empty MinIO bucket")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create MinIO client: %w", err)
	}
	if err := ensureBucket(ctx, client, cfg.Bucket); err != nil {
		return nil, err
	}

	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &MinioStore{client: client, bucket: cfg.Bucket, prefix: prefix}, nil
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket exists: %w", err)
	}
	if exists {
		return nil
	}
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

func (s *MinioStore) Kind() string { return "minio" }

func (s *MinioStore) objectName(name string) (string, error) {
	name, err := CleanName(name)
	if err != nil {
		return "", err
	}
	return s.prefix + name, nil
}

func (s *MinioStore) Put(ctx context.Context, name string, r io.Reader) (Artifact, error) {
	if err := checkCtx(ctx); err != nil {
		return Artifact{}, err
	}
	object, err := s.objectName(name)
	if err != nil {
		return Artifact{}, err
	}
	hasher := sha256.New()
	opts := minio.PutObjectOptions{}
	if strings.EqualFold(path.Ext(name), ".docx") {
		opts.ContentType = docxContentType
	}
	info, err := s.client.PutObject(ctx, s.bucket, object, io.TeeReader(r, hasher), -1, opts)
	if err != nil {
		return Artifact{}, fmt.Errorf("put object: %w", err)
	}
	return Artifact{
		Name:     path.Base(object),
		Location: "s3://" + s.bucket + "/" + object,
		Size:     info.Size,
		SHA256:   hex.EncodeToString(hasher.Sum(nil)),
		ModTime:  info.LastModified,
	}, nil
}

func (s *MinioStore) Open(ctx context.Context, name string) (io.ReadCloser, Artifact, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, Artifact{}, err
	}
	object, err := s.objectName(name)
	if err != nil {
		return nil, Artifact{}, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, Artifact{}, fmt.Errorf("get object: %w", err)
	}
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		if resp := minio.ToErrorResponse(err); resp.Code == minio.NoSuchKey {
			return nil, Artifact{}, fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
		}
		return nil, Artifact{}, fmt.Errorf("stat object: %w", err)
	}
	return obj, Artifact{
		Name:     path.Base(object),
		Location: "s3://" + s.bucket + "/" + object,
		Size:     st.Size,
		ModTime:  st.LastModified,
	}, nil
}

func (s *MinioStore) List(ctx context.Context) ([]Artifact, error) {
	var out []Artifact
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: s.prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		out = append(out, Artifact{
			Name:     path.Base(obj.Key),
			Location: "s3://" + s.bucket + "/" + obj.Key,
			Size:     obj.Size,
			ModTime:  obj.LastModified,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MinioStore) Delete(ctx context.Context, name string) error {
	object, err := s.objectName(name)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, object, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}
