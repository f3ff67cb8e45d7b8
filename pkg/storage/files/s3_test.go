package files

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/recruitment/pkg/config"
)

const testBucket = "recruitment"

type s3Request struct {
	Method      string
	Path        string
	Range       string
	IfNoneMatch string
}

// fakeS3 answers the path-style object calls the backend makes.
type fakeS3 struct {
	mu       sync.Mutex
	objects  map[string][]byte
	modTime  time.Time
	failPuts int
	requests []s3Request
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		objects: make(map[string][]byte),
		modTime: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := strings.TrimPrefix(r.URL.Path, "/")
	f.requests = append(f.requests, s3Request{
		Method:      r.Method,
		Path:        path,
		Range:       r.Header.Get("Range"),
		IfNoneMatch: r.Header.Get("If-None-Match"),
	})

	if strings.TrimSuffix(path, "/") == testBucket {
		w.WriteHeader(http.StatusOK)
		return
	}
	data, exists := f.objects[path]
	switch r.Method {
	case http.MethodPut:
		if f.failPuts > 0 || (exists && r.Header.Get("If-None-Match") == "*") {
			if f.failPuts > 0 {
				f.failPuts--
			}
			writeS3Error(w, http.StatusPreconditionFailed, "PreconditionFailed")
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.objects[path] = body
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet, http.MethodHead:
		if !exists {
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			writeS3Error(w, http.StatusNotFound, "NoSuchKey")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		http.ServeContent(w, r, "", f.modTime, bytes.NewReader(data))
	case http.MethodDelete:
		delete(f.objects, path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeS3) put(key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[testBucket+"/"+key] = data
}

func (f *fakeS3) object(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[testBucket+"/"+key]
	return data, ok
}

func (f *fakeS3) calls(method string) []s3Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []s3Request
	for _, r := range f.requests {
		if r.Method == method {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeS3) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = nil
}

func writeS3Error(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>%s</Code><Message>%s</Message></Error>`, code, code)
}

func newTestS3(t *testing.T, fake *fakeS3) *S3 {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	// keep the developer's ~/.aws out of the test
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "credentials"))
	t.Setenv("AWS_PROFILE", "")

	store, err := New(context.Background(), config.StorageConfig{
		Type:         config.StorageS3,
		S3Bucket:     testBucket,
		S3Prefix:     "/resumes",
		S3Region:     "us-east-1",
		S3Endpoint:   srv.URL,
		AWSAccessKey: "test",
		AWSSecretKey: "test",
	}, Policy{MaxBytes: 1024, Extensions: []string{".pdf", ".docx"}})
	require.NoError(t, err)
	s3store, ok := store.(*S3)
	require.True(t, ok)
	return s3store
}

func TestNormalizePrefix(t *testing.T) {
	tests := map[string]string{
		"":          "",
		"/":         "",
		"resumes":   "resumes/",
		"/resumes/": "resumes/",
		"a/b":       "a/b/",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizePrefix(in), in)
	}
}

func TestS3SaveUnderPrefix(t *testing.T) {
	fake := newFakeS3()
	store := newTestS3(t, fake)
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	store.now = func() time.Time { return now }
	owner := uuid.New()
	payload := []byte("%PDF-1.4 resume body")

	key, err := store.Save(context.Background(), owner, "My CV.pdf", bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, generateKey(owner, "My CV.pdf", now, 0), key)

	stored, ok := fake.object("resumes/" + key)
	require.True(t, ok, "object is written under the prefix")
	assert.Equal(t, payload, stored)

	puts := fake.calls(http.MethodPut)
	require.Len(t, puts, 1)
	assert.Equal(t, "*", puts[0].IfNoneMatch)
}

func TestS3SaveRetriesOnCollision(t *testing.T) {
	fake := newFakeS3()
	fake.failPuts = 1
	store := newTestS3(t, fake)
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	store.now = func() time.Time { return now }
	owner := uuid.New()

	key, err := store.Save(context.Background(), owner, "cv.pdf", bytes.NewReader([]byte("%PDF-1.4")))
	require.NoError(t, err)
	assert.Equal(t, generateKey(owner, "cv.pdf", now, 1), key)
	assert.True(t, strings.HasSuffix(key, "-1.pdf"), key)

	puts := fake.calls(http.MethodPut)
	require.Len(t, puts, 2)
	assert.Equal(t, testBucket+"/resumes/"+generateKey(owner, "cv.pdf", now, 0), puts[0].Path)
	assert.Equal(t, testBucket+"/resumes/"+key, puts[1].Path)
}

func TestS3SaveValidation(t *testing.T) {
	fake := newFakeS3()
	store := newTestS3(t, fake)
	ctx := context.Background()

	_, err := store.Save(ctx, uuid.New(), "cv.exe", bytes.NewReader([]byte("MZ")))
	var verr ErrValidation
	assert.ErrorAs(t, err, &verr)

	_, err = store.Save(ctx, uuid.New(), "cv.pdf", bytes.NewReader(make([]byte, 2048)))
	assert.ErrorAs(t, err, &verr)

	assert.Empty(t, fake.calls(http.MethodPut), "nothing reaches the bucket")
}

func TestS3StatAndRangedOpen(t *testing.T) {
	fake := newFakeS3()
	store := newTestS3(t, fake)
	ctx := context.Background()
	payload := []byte("%PDF-1.4 0123456789abcdefghijklmnopqrstuvwxyz")
	const key = "resume_x_1_cv.pdf"
	fake.put("resumes/"+key, payload)

	info, err := store.Stat(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), info.Size)
	assert.True(t, info.ModTime.Equal(fake.modTime))

	tests := []struct {
		name           string
		offset, length int64
		wantRange      string
		want           []byte
	}{
		{name: "window", offset: 10, length: 5, wantRange: "bytes=10-14", want: payload[10:15]},
		{name: "tail", offset: 20, length: -1, wantRange: "bytes=20-", want: payload[20:]},
		{name: "whole", offset: 0, length: -1, wantRange: "", want: payload},
		{name: "empty", offset: 0, length: 0, wantRange: "", want: []byte{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake.reset()
			rc, err := store.Open(ctx, key, tt.offset, tt.length)
			require.NoError(t, err)
			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			assert.Equal(t, tt.want, got)

			gets := fake.calls(http.MethodGet)
			require.Len(t, gets, 1)
			assert.Equal(t, testBucket+"/resumes/"+key, gets[0].Path)
			assert.Equal(t, tt.wantRange, gets[0].Range)
		})
	}
}

func TestS3MissingObject(t *testing.T) {
	fake := newFakeS3()
	store := newTestS3(t, fake)
	ctx := context.Background()

	_, err := store.Stat(ctx, "resume_gone.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Open(ctx, "resume_gone.pdf", 0, -1)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Delete(ctx, "resume_gone.pdf"))
}

func TestS3DeleteAndCheck(t *testing.T) {
	fake := newFakeS3()
	store := newTestS3(t, fake)
	ctx := context.Background()
	fake.put("resumes/resume_x.pdf", []byte("%PDF"))

	require.NoError(t, store.Delete(ctx, "resume_x.pdf"))
	_, ok := fake.object("resumes/resume_x.pdf")
	assert.False(t, ok)

	assert.NoError(t, store.Check(ctx))
}

func TestS3RefusesKeysOutsidePrefix(t *testing.T) {
	fake := newFakeS3()
	store := newTestS3(t, fake)
	ctx := context.Background()

	for _, key := range []string{"../secret.pdf", "other/cv.pdf", "", "/etc/passwd"} {
		_, err := store.Stat(ctx, key)
		assert.ErrorIs(t, err, ErrInvalidReference, key)
		_, err = store.Open(ctx, key, 0, -1)
		assert.ErrorIs(t, err, ErrInvalidReference, key)
		assert.ErrorIs(t, store.Delete(ctx, key), ErrInvalidReference, key)
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Empty(t, fake.requests)
}
