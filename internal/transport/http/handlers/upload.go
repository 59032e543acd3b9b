package handlers

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/vedran77/tweeter/internal/storage/blob"
)

const maxUploadSize = 5 << 20

var errNoFile = errors.New("no file in form field")

// storeUpload saves the multipart file in field to folder. It returns
// errNoFile when the field is absent. The form must already be parsed.
func storeUpload(ctx context.Context, r *http.Request, store blob.Store, field, folder string) (string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", errNoFile
	}
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", field)
	}
	defer file.Close()

	return store.Put(ctx, folder, header.Filename, file, header.Size, header.Header.Get("Content-Type"))
}

func writeUploadError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, blob.ErrUnsupportedType):
		writeError(w, http.StatusBadRequest, "UNSUPPORTED_FILE", "Only image uploads are allowed")
	case errors.Is(err, errNoFile):
		writeError(w, http.StatusBadRequest, "MISSING_FILE", "An image file is required")
	default:
		return false
	}
	return true
}
