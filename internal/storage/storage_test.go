package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/config"
	"github.com/adeshyearanty/crm-lead-service/internal/storage"
)

func TestStorageInterfaceCompliance(t *testing.T) {
	var _ storage.Storage = (*storage.LocalStorage)(nil)
	var _ storage.Storage = (*storage.AzureBlobStorage)(nil)
	var _ storage.Storage = (*storage.S3Storage)(nil)
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key   string
		valid bool
	}{
		{"leads/1712000000000-photo.png", true},
		{"notes/1712-abc-my file.jpg", true},
		{"", false},
		{"/etc/passwd", false},
		{"../secret", false},
		{"leads/../../secret", false},
		{"leads//photo.png", false},
		{`leads\photo.png`, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := storage.ValidateKey(tt.key)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, storage.ErrInvalidKey)
			}
		})
	}
}

func TestNewStorage_UnsupportedMode(t *testing.T) {
	_, err := storage.NewStorage(context.Background(), &config.StorageConfig{Mode: "ftp"}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewStorage_S3RequiresBucket(t *testing.T) {
	_, err := storage.NewStorage(context.Background(), &config.StorageConfig{Mode: "s3"}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewLocalStorage_CreatesDirectory(t *testing.T) {
	basePath := filepath.Join(t.TempDir(), "uploads")

	ls, err := storage.NewLocalStorage(basePath)
	require.NoError(t, err)
	assert.NotNil(t, ls)

	info, err := os.Stat(basePath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	content := []byte{0x89, 0x50, 0x4E, 0x47} // PNG magic bytes
	size, err := ls.Upload(ctx, "leads/1712000000000-photo.png", "image/png", bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), size)

	rc, err := ls.Download(ctx, "leads/1712000000000-photo.png")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, content, got)

	require.NoError(t, ls.Delete(ctx, "leads/1712000000000-photo.png"))

	_, err = ls.Download(ctx, "leads/1712000000000-photo.png")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLocalStorage_UploadOverwrites(t *testing.T) {
	ctx := context.Background()
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = ls.Upload(ctx, "notes/a.txt", "text/plain", bytes.NewReader([]byte("first")))
	require.NoError(t, err)
	_, err = ls.Upload(ctx, "notes/a.txt", "text/plain", bytes.NewReader([]byte("second")))
	require.NoError(t, err)

	rc, err := ls.Download(ctx, "notes/a.txt")
	require.NoError(t, err)
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	assert.Equal(t, "second", string(got))
}

func TestLocalStorage_DeleteMissingIsNoop(t *testing.T) {
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, ls.Delete(context.Background(), "leads/missing.png"))
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = ls.Upload(context.Background(), "../escape.txt", "text/plain", bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, storage.ErrInvalidKey)
}

// fakePresigner returns a fixed URL and records the last input
type fakePresigner struct {
	url   string
	input *s3.PutObjectInput
}

func (f *fakePresigner) PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.input = params
	return &v4.PresignedHTTPRequest{URL: f.url, Method: http.MethodPut}, nil
}

// fakeObjects is an in-memory ObjectAPI
type fakeObjects struct {
	mu      sync.Mutex
	deleted []string
	objects map[string][]byte
}

func (f *fakeObjects) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[*params.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeObjects) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Storage_UploadPutsToPresignedURL(t *testing.T) {
	var (
		gotMethod      string
		gotContentType string
		gotBody        []byte
		gotLength      int64
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotLength = r.ContentLength
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	presigner := &fakePresigner{url: server.URL + "/bucket/leads/photo.png?X-Amz-Signature=abc"}
	s := storage.NewS3StorageWithClients(&fakeObjects{}, presigner, server.Client(), "bucket", 0, zap.NewNop())

	content := []byte("jpeg-bytes")
	size, err := s.Upload(context.Background(), "leads/photo.png", "image/png", bytes.NewReader(content))

	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), size)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "image/png", gotContentType)
	assert.Equal(t, int64(len(content)), gotLength)
	assert.Equal(t, content, gotBody)
	require.NotNil(t, presigner.input)
	assert.Equal(t, "bucket", *presigner.input.Bucket)
	assert.Equal(t, "leads/photo.png", *presigner.input.Key)
}

func TestS3Storage_UploadFailsOnErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	s := storage.NewS3StorageWithClients(&fakeObjects{}, &fakePresigner{url: server.URL}, server.Client(), "bucket", 0, zap.NewNop())

	_, err := s.Upload(context.Background(), "leads/photo.png", "image/png", bytes.NewReader([]byte("x")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestS3Storage_DownloadAndDelete(t *testing.T) {
	objects := &fakeObjects{objects: map[string][]byte{"notes/1-a.png": []byte("img")}}
	s := storage.NewS3StorageWithClients(objects, &fakePresigner{}, http.DefaultClient, "bucket", 0, zap.NewNop())
	ctx := context.Background()

	rc, err := s.Download(ctx, "notes/1-a.png")
	require.NoError(t, err)
	got, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "img", string(got))

	_, err = s.Download(ctx, "notes/missing.png")
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	require.NoError(t, s.Delete(ctx, "notes/1-a.png"))
	assert.Equal(t, []string{"notes/1-a.png"}, objects.deleted)
}
