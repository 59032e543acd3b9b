// Package blob stores uploaded images and hands back the reference that user
// and tweet records keep.
package blob

import (
	"context"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// FolderAvatars is the root of the upload namespace.
	FolderAvatars     = ""
	FolderTweetImages = "tweetImages"
)

var ErrUnsupportedType = errors.New("only image uploads are allowed")

type Store interface {
	// Put stores r under folder and returns its public reference.
	Put(ctx context.Context, folder, originalName string, r io.Reader, size int64, contentType string) (string, error)
}

// objectName builds a collision free name that keeps the original extension.
func objectName(folder, originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return path.Join(folder, uuid.NewString()+ext)
}

func checkContentType(contentType string) error {
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return ErrUnsupportedType
	}
	return nil
}
