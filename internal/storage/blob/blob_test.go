package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskPut(t *testing.T) {
	dir := t.TempDir()
	logger, _ := logrustest.NewNullLogger()
	disk, err := NewDisk(dir, "/uploads", logger)
	require.NoError(t, err)

	ref, err := disk.Put(context.Background(), FolderTweetImages, "Cat.PNG", strings.NewReader("png-bytes"), 9, "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/uploads/tweetImages/"), ref)
	assert.True(t, strings.HasSuffix(ref, ".png"), ref)

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(ref, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	avatar, err := disk.Put(context.Background(), FolderAvatars, "me.jpg", strings.NewReader("jpg"), 3, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/uploads", filepath.ToSlash(filepath.Dir(avatar)))
	assert.NotEqual(t, ref, avatar)
}

func TestDiskRejectsNonImages(t *testing.T) {
	logger, _ := logrustest.NewNullLogger()
	disk, err := NewDisk(t.TempDir(), "/uploads", logger)
	require.NoError(t, err)

	_, err = disk.Put(context.Background(), FolderAvatars, "evil.sh", strings.NewReader("#!"), 2, "text/x-shellscript")
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestObjectNameDropsPath(t *testing.T) {
	name := objectName(FolderTweetImages, "../../etc/passwd.gif")
	assert.True(t, strings.HasPrefix(name, "tweetImages/"))
	assert.True(t, strings.HasSuffix(name, ".gif"))
	assert.NotContains(t, name, "..")
}

func TestMinIOObjectURL(t *testing.T) {
	m := &MinIO{cfg: MinIOConfig{Endpoint: "files.example.com", Bucket: "tweeter", UseSSL: true}}
	assert.Equal(t, "https://files.example.com/tweeter/tweetImages/a.png", m.objectURL("tweetImages/a.png"))
}
