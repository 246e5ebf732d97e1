package gcs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gcsclient "cloud.google.com/go/storage"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// newTestStore creates a Store whose client talks to an httptest server
// instead of the real GCS API.
func newTestStore(t *testing.T, handler http.Handler) *Store {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := gcsclient.NewClient(context.Background(),
		option.WithEndpoint(server.URL), option.WithoutAuthentication())
	require.NoError(t, err)

	store, err := New(client, Config{Bucket: "test-bucket"})
	require.NoError(t, err)
	return store
}

func TestStore_New_RequiresClientAndBucket(t *testing.T) {
	t.Parallel()

	_, err := New(nil, Config{Bucket: "b"})
	require.Error(t, err)

	client, err := gcsclient.NewClient(context.Background(), option.WithoutAuthentication())
	require.NoError(t, err)
	_, err = New(client, Config{})
	require.Error(t, err)
}

func TestStore_Put(t *testing.T) {
	t.Parallel()

	key := "/og/pokemon/25.png"
	data := []byte("png-bytes")

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Path, "/upload/storage/v1/b/test-bucket/o")
		require.Equal(t, "multipart", r.URL.Query().Get("uploadType"))
		require.Equal(t, objectName(key), r.URL.Query().Get("name"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), string(data))
		require.Contains(t, string(body), "image/png")

		fmt.Fprintln(w, `{ "name": "`+objectName(key)+`" }`)
	})

	store := newTestStore(t, handler)
	require.NoError(t, store.Put(context.Background(), key, data))
}

func TestStore_Put_ServerError(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	store := newTestStore(t, handler)
	require.Error(t, store.Put(context.Background(), "/og/pokemon/25.png", []byte("png")))
}

func TestStore_Get(t *testing.T) {
	t.Parallel()

	key := "/og/pokemon/25.png"
	data := []byte("cached-png-bytes")

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Path, "test-bucket")
		_, _ = w.Write(data)
	})

	store := newTestStore(t, handler)
	got, ok, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, data, got)
}

func TestStore_Get_MissingObjectIsMiss(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	store := newTestStore(t, handler)
	_, ok, err := store.Get(context.Background(), "/og/pokemon/9999.png")
	require.NoError(t, err, "a missing object is a miss, not an error")
	require.False(t, ok)
}

func TestObjectName(t *testing.T) {
	t.Parallel()

	name := objectName("/og/pokemon/25.png")
	require.True(t, strings.HasPrefix(name, "og-cards/"))
	require.Equal(t, name, objectName("/og/pokemon/25.png"))
	require.NotEqual(t, name, objectName("/og/pokemon/26.png"))
}
