// Package storage archives raw case uploads in a MinIO (S3-compatible) bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/h2non/filetype"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	domain "github.com/bryanwahyu/medcase/internal/domain/cases"
)

// putter is the slice of *minio.Client the archive needs.
type putter interface {
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	BucketExists(ctx context.Context, bucket string) (bool, error)
}

type Store struct {
	client     putter
	bucketName string
}

type Options struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// New buat koneksi MinIO dan pastikan bucket ada
func New(ctx context.Context, o Options) (*Store, error) {
	cli, err := minio.New(o.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(o.AccessKey, o.SecretKey, ""),
		Secure: o.UseSSL,
		Region: o.Region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, o.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, o.Bucket, minio.MakeBucketOptions{Region: o.Region}); err != nil {
			return nil, err
		}
	}
	return &Store{client: cli, bucketName: o.Bucket}, nil
}

// ArchiveUploads implements domain.UploadArchive. Objects are keyed
// cases/{id}/{category}/{index}-{name}.
func (s *Store) ArchiveUploads(ctx context.Context, id domain.CaseID, files []domain.ValidatedFile) error {
	for i, f := range files {
		if err := s.put(ctx, ObjectKey(id, f.Category, i, f.Name), f); err != nil {
			return fmt.Errorf("archive %s: %w", f.Name, err)
		}
	}
	return nil
}

func (s *Store) put(ctx context.Context, key string, f domain.ValidatedFile) error {
	if f.Open == nil {
		return fmt.Errorf("no content")
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	_, err = s.client.PutObject(ctx, s.bucketName, key, rc, f.Size, minio.PutObjectOptions{
		ContentType:  contentType(f.Extension),
		UserMetadata: map[string]string{"filename": f.Name, "category": string(f.Category)},
	})
	return err
}

// Ping checks that the bucket is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s missing", s.bucketName)
	}
	return nil
}

func ObjectKey(id domain.CaseID, c domain.Category, index int, name string) string {
	return path.Join("cases", string(id), string(c), fmt.Sprintf("%d-%s", index, cleanName(name)))
}

func cleanName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}

func contentType(ext string) string {
	switch ext {
	case "csv":
		return "text/csv"
	case "tsv":
		return "text/tab-separated-values"
	case "txt", "md":
		return "text/plain"
	}
	if t := filetype.GetType(ext); t != filetype.Unknown {
		return t.MIME.Value
	}
	return "application/octet-stream"
}
