package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStorageSaveAndDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewDiskStorage(root, "/media/")
	require.NoError(t, err)

	location, err := store.Save(context.Background(), "avatars/abc.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/media/avatars/abc.png", location)

	data, err := os.ReadFile(filepath.Join(root, "avatars", "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, store.Delete(context.Background(), location))
	_, err = os.Stat(filepath.Join(root, "avatars", "abc.png"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	require.NoError(t, store.Delete(context.Background(), location), "deleting twice succeeds")
}

func TestDiskStorageRejectsEscapingKeys(t *testing.T) {
	store, err := NewDiskStorage(t.TempDir(), "")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "../outside.txt", strings.NewReader("x"))
	require.Error(t, err)

	_, err = store.Save(context.Background(), "  ", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrEmptyKey)
}

func TestCleanKey(t *testing.T) {
	key, err := cleanKey("/videos//a.mp4")
	require.NoError(t, err)
	assert.Equal(t, "videos/a.mp4", key)
}

func TestKeyFromLocation(t *testing.T) {
	assert.Equal(t, "videos/a.mp4", keyFromLocation("https://cdn.example.com", "https://cdn.example.com/videos/a.mp4"))
	assert.Equal(t, "videos/a.mp4", keyFromLocation("", "videos/a.mp4"))
	assert.Equal(t, "https://elsewhere/a.mp4", keyFromLocation("https://cdn.example.com", "https://elsewhere/a.mp4"))
}

type deleterStub struct {
	keys []string
	err  error
}

func (d *deleterStub) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.keys = append(d.keys, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StorageDeleteResolvesKey(t *testing.T) {
	client := &deleterStub{}
	store := &S3Storage{client: client, bucket: "media", baseURL: "https://cdn.example.com"}

	require.NoError(t, store.Delete(context.Background(), "https://cdn.example.com/thumbnails/t.jpg"))
	assert.Equal(t, []string{"thumbnails/t.jpg"}, client.keys)

	client.err = errors.New("access denied")
	require.Error(t, store.Delete(context.Background(), "thumbnails/t.jpg"))
}
