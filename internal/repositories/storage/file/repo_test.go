package filestorage

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"notary/internal/models"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *repository {
	return NewRepository(t.TempDir(), "http://localhost:8080/blobs/")
}

func readAll(t *testing.T, rc io.ReadCloser) []byte {
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return b
}

func TestPutGetDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.Put(ctx, "documents/doc-1/deed.pdf", strings.NewReader("%PDF-1.7"), "application/pdf"))

	ok, err := store.Exists(ctx, "documents/doc-1/deed.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := store.Get(ctx, "documents/doc-1/deed.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), readAll(t, rc))

	require.NoError(t, store.Delete(ctx, "documents/doc-1/deed.pdf"))
	require.NoError(t, store.Delete(ctx, "documents/doc-1/deed.pdf"))

	ok, err = store.Exists(ctx, "documents/doc-1/deed.pdf")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Get(ctx, "documents/doc-1/deed.pdf")
	assert.ErrorIs(t, err, models.ErrObjectNotFound)
}

func TestPut_RejectsEscapingKeys(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	for _, key := range []string{"", "../etc/passwd", "/abs/path", ".multipart/x"} {
		err := store.Put(context.Background(), key, strings.NewReader("x"), "text/plain")
		assert.Error(t, err, key)
	}
}

func TestPresign(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	u, err := store.Presign(context.Background(), "documents/a.pdf", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "http://localhost:8080/blobs/documents/a.pdf?"))

	parsed, err := url.Parse(u)
	require.NoError(t, err)

	expires := parsed.Query().Get("expires")
	signature := parsed.Query().Get("signature")
	now := time.Now()

	require.NoError(t, store.VerifyPresigned("documents/a.pdf", expires, signature, now))

	assert.ErrorIs(t, store.VerifyPresigned("documents/b.pdf", expires, signature, now), models.ErrForbidden)
	assert.ErrorIs(t, store.VerifyPresigned("documents/a.pdf", expires+"0", signature, now), models.ErrForbidden)
	assert.ErrorIs(t, store.VerifyPresigned("documents/a.pdf", expires, "zz", now), models.ErrForbidden)
	assert.ErrorIs(t, store.VerifyPresigned("documents/a.pdf", expires, signature, now.Add(2*time.Minute)), models.ErrForbidden)
}

func TestPresign_StableSigningKey(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := NewRepository(dir, "http://x").WithSigningKey([]byte("k"))
	b := NewRepository(dir, "http://x").WithSigningKey([]byte("k"))

	u, err := a.Presign(context.Background(), "k.pdf", time.Minute)
	require.NoError(t, err)

	parsed, err := url.Parse(u)
	require.NoError(t, err)

	assert.NoError(t, b.VerifyPresigned("k.pdf", parsed.Query().Get("expires"), parsed.Query().Get("signature"), time.Now()))
}

func TestMultipart_RoundTripOutOfOrderAndConcurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore(t)
	key := "documents/doc-1/scan.pdf"

	chunks := [][]byte{
		bytes.Repeat([]byte("a"), 1000),
		bytes.Repeat([]byte("b"), 1000),
		bytes.Repeat([]byte("c"), 10),
	}

	uploadID, err := store.CreateMultipartUpload(ctx, key, "application/pdf")
	require.NoError(t, err)

	etags := make([]string, len(chunks))
	var wg sync.WaitGroup
	for i := len(chunks) - 1; i >= 0; i-- {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			etag, err := store.UploadPart(ctx, key, uploadID, int32(i+1), bytes.NewReader(chunks[i]))
			assert.NoError(t, err)
			etags[i] = etag
		}(i)
	}
	wg.Wait()

	parts := make([]models.CompletedPart, 0, len(chunks))
	for i, etag := range etags {
		parts = append(parts, models.CompletedPart{PartNumber: int32(i + 1), ETag: etag})
	}

	require.NoError(t, store.CompleteMultipartUpload(ctx, key, uploadID, parts))

	rc, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, bytes.Join(chunks, nil), readAll(t, rc))

	_, err = store.UploadPart(ctx, key, uploadID, 1, bytes.NewReader([]byte("late")))
	assert.ErrorIs(t, err, models.ErrUploadNotFound)
}

func TestMultipart_RetryOverwritesPart(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore(t)
	key := "k.bin"

	uploadID, err := store.CreateMultipartUpload(ctx, key, "application/octet-stream")
	require.NoError(t, err)

	_, err = store.UploadPart(ctx, key, uploadID, 1, strings.NewReader("first"))
	require.NoError(t, err)
	etag, err := store.UploadPart(ctx, key, uploadID, 1, strings.NewReader("second"))
	require.NoError(t, err)

	require.NoError(t, store.CompleteMultipartUpload(ctx, key, uploadID, []models.CompletedPart{{PartNumber: 1, ETag: etag}}))

	rc, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), readAll(t, rc))
}

func TestMultipart_CompleteRejectsBadPartLists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore(t)
	key := "k.bin"

	uploadID, err := store.CreateMultipartUpload(ctx, key, "application/octet-stream")
	require.NoError(t, err)

	e1, err := store.UploadPart(ctx, key, uploadID, 1, strings.NewReader("one"))
	require.NoError(t, err)
	e2, err := store.UploadPart(ctx, key, uploadID, 2, strings.NewReader("two"))
	require.NoError(t, err)
	e3, err := store.UploadPart(ctx, key, uploadID, 3, strings.NewReader("three"))
	require.NoError(t, err)

	cases := map[string][]models.CompletedPart{
		"empty":        nil,
		"misorder":     {{PartNumber: 2, ETag: e2}, {PartNumber: 1, ETag: e1}, {PartNumber: 3, ETag: e3}},
		"never stored": {{PartNumber: 1, ETag: e1}, {PartNumber: 2, ETag: e2}, {PartNumber: 4, ETag: e3}},
		"bad etag":     {{PartNumber: 1, ETag: e2}, {PartNumber: 2, ETag: e2}, {PartNumber: 3, ETag: e3}},
		"duplicate":    {{PartNumber: 1, ETag: e1}, {PartNumber: 1, ETag: e1}, {PartNumber: 3, ETag: e3}},
		"skips middle": {{PartNumber: 1, ETag: e1}, {PartNumber: 3, ETag: e3}},
		"drops last":   {{PartNumber: 1, ETag: e1}, {PartNumber: 2, ETag: e2}},
	}

	for name, parts := range cases {
		err := store.CompleteMultipartUpload(ctx, key, uploadID, parts)
		assert.ErrorIs(t, err, models.ErrIncompleteUpload, name)
	}

	require.NoError(t, store.CompleteMultipartUpload(ctx, key, uploadID, []models.CompletedPart{
		{PartNumber: 1, ETag: `"` + e1 + `"`},
		{PartNumber: 2, ETag: e2},
		{PartNumber: 3, ETag: e3},
	}))

	rc, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("onetwothree"), readAll(t, rc))
}

func TestListParts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore(t)
	key := "k.bin"

	uploadID, err := store.CreateMultipartUpload(ctx, key, "application/octet-stream")
	require.NoError(t, err)

	parts, err := store.ListParts(ctx, key, uploadID)
	require.NoError(t, err)
	assert.Empty(t, parts)

	e10, err := store.UploadPart(ctx, key, uploadID, 10, strings.NewReader("ten"))
	require.NoError(t, err)
	e2, err := store.UploadPart(ctx, key, uploadID, 2, strings.NewReader("two"))
	require.NoError(t, err)

	parts, err = store.ListParts(ctx, key, uploadID)
	require.NoError(t, err)
	assert.Equal(t, []models.CompletedPart{{PartNumber: 2, ETag: e2}, {PartNumber: 10, ETag: e10}}, parts)

	_, err = store.ListParts(ctx, "other.bin", uploadID)
	assert.ErrorIs(t, err, models.ErrUploadNotFound)
}

func TestMultipart_AbortReleasesParts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore(t)

	uploadID, err := store.CreateMultipartUpload(ctx, "k.bin", "application/octet-stream")
	require.NoError(t, err)

	_, err = store.UploadPart(ctx, "k.bin", uploadID, 1, strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, store.AbortMultipartUpload(ctx, "k.bin", uploadID))

	err = store.AbortMultipartUpload(ctx, "k.bin", uploadID)
	assert.ErrorIs(t, err, models.ErrUploadNotFound)

	ok, err := store.Exists(ctx, "k.bin")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMultipart_UploadIDScopedToKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore(t)

	uploadID, err := store.CreateMultipartUpload(ctx, "a.bin", "application/octet-stream")
	require.NoError(t, err)

	_, err = store.UploadPart(ctx, "b.bin", uploadID, 1, strings.NewReader("x"))
	assert.ErrorIs(t, err, models.ErrUploadNotFound)
}
