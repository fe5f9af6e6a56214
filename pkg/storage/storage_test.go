package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG
const pixel = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func TestDecodeDataURI(t *testing.T) {
	img, err := DecodeDataURI(pixel)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, "png", img.Extension())
	assert.NotEmpty(t, img.Data)

	_, err = DecodeDataURI("https://example.com/cat.png")
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = DecodeDataURI("data:image/png;base64,!!!")
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestNewKey(t *testing.T) {
	key := NewKey("recipes/images", Image{ContentType: "image/jpeg"})
	assert.True(t, strings.HasPrefix(key, "recipes/images/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
}

func TestLocalStoreSave(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "http://localhost:8080/media/")

	url, err := store.Save(context.Background(), "recipes/images/a.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/recipes/images/a.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "recipes", "images", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	require.NoError(t, store.Delete(context.Background(), "recipes/images/a.png"))
	assert.NoFileExists(t, filepath.Join(dir, "recipes", "images", "a.png"))
	assert.NoError(t, store.Delete(context.Background(), "recipes/images/a.png"))
}

type fakePutter struct {
	input   *s3.PutObjectInput
	body    []byte
	deleted []string
}

func (f *fakePutter) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3StoreSave(t *testing.T) {
	putter := &fakePutter{}
	store := &S3Store{client: putter, bucket: "foodgram-media", baseURL: "https://cdn.example.com"}

	url, err := store.Save(context.Background(), "recipes/images/b.png", []byte("img"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/recipes/images/b.png", url)
	assert.Equal(t, "foodgram-media", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "image/png", aws.ToString(putter.input.ContentType))
	assert.Equal(t, "img", string(putter.body))

	require.NoError(t, store.Delete(context.Background(), "recipes/images/b.png"))
	assert.Equal(t, []string{"recipes/images/b.png"}, putter.deleted)
}
