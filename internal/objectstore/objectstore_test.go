package objectstore

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soukly/storefront/internal/domain/media"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL: srv.URL,
		Bucket:  "product-media",
		APIKey:  "test-key",
		Prefix:  "products",
	})
}

func TestUpload(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotType string
		gotBody []byte
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})

	obj, err := c.Upload(context.Background(), media.Upload{
		Name:        "photo.jpg",
		ContentType: "image/jpeg",
		Body:        strings.NewReader("fake jpeg bytes"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "image/jpeg", gotType)
	assert.Equal(t, []byte("fake jpeg bytes"), gotBody)

	assert.True(t, strings.HasPrefix(gotPath, "/object/product-media/products/"))
	assert.True(t, strings.HasSuffix(gotPath, ".jpg"), "object path keeps the extension")
	assert.True(t, strings.HasPrefix(obj.Path, "products/"))
	assert.Contains(t, obj.URL, "/object/public/product-media/"+obj.Path)
}

func TestUpload_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.Upload(context.Background(), media.Upload{
		Name: "photo.jpg",
		Body: strings.NewReader("x"),
	})
	assert.Error(t, err)
}

func TestRemove(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		switch {
		case strings.HasSuffix(r.URL.Path, "gone.jpg"):
			w.WriteHeader(http.StatusNotFound)
		case strings.HasSuffix(r.URL.Path, "broken.jpg"):
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusOK)
		}
	})

	results, err := c.Remove(context.Background(), []string{
		"products/ok.jpg", "products/gone.jpg", "products/broken.jpg",
	})

	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.False(t, results[0].NotFound)
	assert.NoError(t, results[0].Err)

	assert.True(t, results[1].NotFound, "404 reports not-found, not an error")
	assert.NoError(t, results[1].Err)

	assert.False(t, results[2].NotFound)
	assert.Error(t, results[2].Err)
}
