package blob

import (
	"context"
	"io"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinIO stores uploads in an S3 compatible bucket. References are the
// object URLs, so the bucket must allow anonymous reads to serve them.
type MinIO struct {
	client *minio.Client
	cfg    MinIOConfig
	logger logrus.FieldLogger
}

func NewMinIO(ctx context.Context, cfg MinIOConfig, logger logrus.FieldLogger) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create client")
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, "find bucket")
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrapf(err, "create bucket '%s'", cfg.Bucket)
		}
		logger.WithField("bucket", cfg.Bucket).Info("created upload bucket")
	}

	return &MinIO{client: client, cfg: cfg, logger: logger}, nil
}

func (m *MinIO) Put(ctx context.Context, folder, originalName string, r io.Reader, size int64, contentType string) (string, error) {
	if err := checkContentType(contentType); err != nil {
		return "", err
	}

	name := objectName(folder, originalName)
	_, err := m.client.PutObject(ctx, m.cfg.Bucket, name, r, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", errors.Wrapf(err, "put file '%s'", name)
	}

	m.logger.WithField("object", name).Debug("upload stored in bucket")
	return m.objectURL(name), nil
}

func (m *MinIO) objectURL(name string) string {
	scheme := "http"
	if m.cfg.UseSSL {
		scheme = "https"
	}
	u := url.URL{Scheme: scheme, Host: m.cfg.Endpoint, Path: "/" + m.cfg.Bucket + "/" + name}
	return u.String()
}
