package objectstore

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	var gotPath, gotUpsert, gotAuth string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUpsert = r.Header.Get("x-upsert")
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")

	path, err := client.Upload(context.Background(), "review_image", "user-1/photo.jpg", []byte("image-bytes"), true)
	require.NoError(t, err)

	assert.Equal(t, "user-1/photo.jpg", path)
	assert.Equal(t, "/object/review_image/user-1/photo.jpg", gotPath)
	assert.Equal(t, "true", gotUpsert)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, []byte("image-bytes"), gotBody)
}

func TestUploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bucket not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")

	_, err := client.Upload(context.Background(), "missing", "a/b", []byte("x"), false)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status=404")
}

func TestPublicURL(t *testing.T) {
	client := NewClient("http://storage.local/storage/v1/", "key")

	url := client.PublicURL("avatars", "user-1/avatar.png")
	assert.Equal(t, "http://storage.local/storage/v1/object/public/avatars/user-1/avatar.png", url)
}

func TestSignedURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/object/sign/private/doc.pdf", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"signedURL":"/object/sign/private/doc.pdf?token=abc"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")

	url, err := client.SignedURL(context.Background(), "private", "doc.pdf", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/object/sign/private/doc.pdf?token=abc", url)
}
