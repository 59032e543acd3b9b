package blob

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Disk writes uploads below dir and references them under urlPrefix, which
// the HTTP server maps back to dir.
type Disk struct {
	dir       string
	urlPrefix string
	logger    logrus.FieldLogger
}

func NewDisk(dir, urlPrefix string, logger logrus.FieldLogger) (*Disk, error) {
	if err := os.MkdirAll(filepath.Join(dir, FolderTweetImages), 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating upload dir %s", dir)
	}
	return &Disk{dir: dir, urlPrefix: urlPrefix, logger: logger}, nil
}

func (d *Disk) Dir() string { return d.dir }

func (d *Disk) Put(ctx context.Context, folder, originalName string, r io.Reader, _ int64, contentType string) (string, error) {
	if err := checkContentType(contentType); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := objectName(folder, originalName)
	target := filepath.Join(d.dir, filepath.FromSlash(name))

	f, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", errors.Wrapf(err, "creating %s", name)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(target)
		return "", errors.Wrapf(err, "writing %s", name)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "closing %s", name)
	}

	d.logger.WithField("object", name).Debug("upload stored on disk")
	return path.Join(d.urlPrefix, name), nil
}
