package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method      string
	path        string
	contentType string
	body        string
}

// fakeS3 answers the subset of the S3 API the storage uses.
type fakeS3 struct {
	mu       sync.Mutex
	requests []recorded
	status   int
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recorded{
		method:      r.Method,
		path:        r.URL.Path,
		contentType: r.Header.Get("Content-Type"),
		body:        string(body),
	})
	status := f.status
	f.mu.Unlock()

	if status != 0 {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, `<Error><Code>AccessDenied</Code><Message>denied</Message></Error>`)
		return
	}
	switch r.Method {
	case http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}
}

func newTestStorage(t *testing.T, handler http.Handler) (*Storage, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	storage, err := New(context.Background(), Config{
		Endpoint:        srv.URL,
		Region:          "us-east-1",
		Bucket:          "expedientes",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		UsePathStyle:    true,
		MaxAttempts:     1,
	})
	require.NoError(t, err)
	return storage, srv
}

func TestStorage_Upload(t *testing.T) {
	fake := &fakeS3{}
	storage, _ := newTestStorage(t, fake)

	err := storage.Upload(context.Background(), "c-1/1718000000000.pdf", "application/pdf", strings.NewReader("%PDF-1.7"), 8)

	require.NoError(t, err)
	require.Len(t, fake.requests, 1)
	assert.Equal(t, http.MethodPut, fake.requests[0].method)
	assert.Equal(t, "/expedientes/c-1/1718000000000.pdf", fake.requests[0].path)
	assert.Equal(t, "application/pdf", fake.requests[0].contentType)
	assert.Equal(t, "%PDF-1.7", fake.requests[0].body)
}

func TestStorage_Upload_BuffersNonSeekableBody(t *testing.T) {
	fake := &fakeS3{}
	storage, _ := newTestStorage(t, fake)

	body := io.MultiReader(strings.NewReader("part1-"), strings.NewReader("part2"))
	err := storage.Upload(context.Background(), "c-1/2.png", "image/png", body, -1)

	require.NoError(t, err)
	assert.Equal(t, "part1-part2", fake.requests[0].body)
}

func TestStorage_Upload_Error(t *testing.T) {
	storage, _ := newTestStorage(t, &fakeS3{status: http.StatusForbidden})

	err := storage.Upload(context.Background(), "c-1/3.jpg", "image/jpeg", strings.NewReader("x"), 1)

	assert.ErrorContains(t, err, "put object c-1/3.jpg")
}

func TestStorage_Remove(t *testing.T) {
	fake := &fakeS3{}
	storage, _ := newTestStorage(t, fake)

	require.NoError(t, storage.Remove(context.Background(), "c-1/1.pdf"))
	assert.Equal(t, http.MethodDelete, fake.requests[0].method)
	assert.Equal(t, "/expedientes/c-1/1.pdf", fake.requests[0].path)
}

func TestStorage_URLs(t *testing.T) {
	storage, srv := newTestStorage(t, &fakeS3{})

	assert.Equal(t, srv.URL+"/expedientes/c-1/1.pdf", storage.PublicURL("c-1/1.pdf"))

	link, err := storage.DownloadURL(context.Background(), "c-1/1.pdf", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, srv.URL+"/expedientes/c-1/1.pdf?"), link)
	assert.Contains(t, link, "X-Amz-Signature=")
	assert.Contains(t, link, "X-Amz-Expires=300")
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{Region: "us-east-1"})
	assert.Error(t, err)
}
