package filestorage

import (
	"context"
	"crypto/hmac"
	"crypto/md5"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"notary/internal/models"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	uuid "github.com/satori/go.uuid"
)

const pkg = "fileStorage/"

const (
	multipartDir = ".multipart"
	keyFile      = "key"
	partSuffix   = ".part"
)

// repository stores blobs on the local filesystem. It implements the same
// multipart protocol as the S3 store so development and tests need no cloud account.
type repository struct {
	basePath string
	baseURL  string
	secret   []byte
}

// NewRepository signs presigned URLs with a random per-process key unless
// WithSigningKey sets a stable one.
func NewRepository(basePath string, baseURL string) *repository {
	secret := make([]byte, 32)
	_, _ = rand.Read(secret)

	return &repository{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		secret:   secret,
	}
}

func (r *repository) WithSigningKey(secret []byte) *repository {
	if len(secret) > 0 {
		r.secret = secret
	}
	return r
}

func (r *repository) Bucket() string {
	return filepath.Base(r.basePath)
}

func (r *repository) Put(ctx context.Context, key string, reader io.Reader, contentType string) error {
	op := pkg + "Put"

	fullPath, err := r.objectPath(key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := writeAtomically(fullPath, reader); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	op := pkg + "Get"

	fullPath, err := r.objectPath(key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrObjectNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return f, nil
}

func (r *repository) Exists(ctx context.Context, key string) (bool, error) {
	op := pkg + "Exists"

	fullPath, err := r.objectPath(key)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := os.Stat(fullPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return true, nil
}

func (r *repository) Delete(ctx context.Context, key string) error {
	op := pkg + "Delete"

	fullPath, err := r.objectPath(key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	op := pkg + "Presign"

	if _, err := r.objectPath(key); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	key = strings.TrimLeft(key, "/")
	expires := strconv.FormatInt(time.Now().Add(ttl).Unix(), 10)

	q := url.Values{}
	q.Set("expires", expires)
	q.Set("signature", r.sign(key, expires))

	return r.baseURL + "/" + key + "?" + q.Encode(), nil
}

// VerifyPresigned checks a URL produced by Presign. Expired or tampered links
// fail with models.ErrForbidden.
func (r *repository) VerifyPresigned(key string, expires string, signature string, now time.Time) error {
	op := pkg + "VerifyPresigned"

	key = strings.TrimLeft(key, "/")

	got, err := hex.DecodeString(signature)
	if err != nil || !hmac.Equal(got, r.mac(key, expires)) {
		return fmt.Errorf("%s: bad signature: %w", op, models.ErrForbidden)
	}

	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil || now.Unix() > exp {
		return fmt.Errorf("%s: link expired: %w", op, models.ErrForbidden)
	}

	return nil
}

func (r *repository) sign(key string, expires string) string {
	return hex.EncodeToString(r.mac(key, expires))
}

func (r *repository) mac(key string, expires string) []byte {
	h := hmac.New(sha256.New, r.secret)
	h.Write([]byte(key))
	h.Write([]byte{0})
	h.Write([]byte(expires))
	return h.Sum(nil)
}

func (r *repository) CreateMultipartUpload(ctx context.Context, key string, contentType string) (string, error) {
	op := pkg + "CreateMultipartUpload"

	if _, err := r.objectPath(key); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	uploadID := uuid.NewV4().String()
	dir := r.uploadDir(uploadID)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := os.WriteFile(filepath.Join(dir, keyFile), []byte(key), 0o644); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return uploadID, nil
}

// UploadPart overwrites any earlier content for the same part number.
func (r *repository) UploadPart(ctx context.Context, key string, uploadID string, partNumber int32, reader io.Reader) (string, error) {
	op := pkg + "UploadPart"

	dir, err := r.openUpload(key, uploadID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	hash := md5.New()

	if err := writeAtomically(partPath(dir, partNumber), io.TeeReader(reader, hash)); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

func (r *repository) CompleteMultipartUpload(ctx context.Context, key string, uploadID string, parts []models.CompletedPart) error {
	op := pkg + "CompleteMultipartUpload"

	dir, err := r.openUpload(key, uploadID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if len(parts) == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrIncompleteUpload)
	}

	uploaded, err := listParts(dir)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if len(uploaded) != len(parts) {
		return fmt.Errorf("%s: %d parts listed, %d uploaded: %w", op, len(parts), len(uploaded), models.ErrIncompleteUpload)
	}

	for i, part := range parts {
		if i > 0 && part.PartNumber <= parts[i-1].PartNumber {
			return fmt.Errorf("%s: part %d out of order: %w", op, part.PartNumber, models.ErrIncompleteUpload)
		}

		etag, err := fileETag(partPath(dir, part.PartNumber))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("%s: part %d missing: %w", op, part.PartNumber, models.ErrIncompleteUpload)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		if !strings.EqualFold(etag, strings.Trim(part.ETag, `"`)) {
			return fmt.Errorf("%s: part %d etag mismatch: %w", op, part.PartNumber, models.ErrIncompleteUpload)
		}
	}

	pr, pw := io.Pipe()

	go func() {
		for _, part := range parts {
			f, err := os.Open(partPath(dir, part.PartNumber))
			if err != nil {
				pw.CloseWithError(err)
				return
			}
			_, err = io.Copy(pw, f)
			f.Close()
			if err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		pw.Close()
	}()

	fullPath, _ := r.objectPath(key)

	if err := writeAtomically(fullPath, pr); err != nil {
		_ = pr.CloseWithError(err)
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ListParts returns the stored parts of uploadID in ascending part order.
func (r *repository) ListParts(ctx context.Context, key string, uploadID string) ([]models.CompletedPart, error) {
	op := pkg + "ListParts"

	dir, err := r.openUpload(key, uploadID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	parts, err := listParts(dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return parts, nil
}

func (r *repository) AbortMultipartUpload(ctx context.Context, key string, uploadID string) error {
	op := pkg + "AbortMultipartUpload"

	dir, err := r.openUpload(key, uploadID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) objectPath(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) ||
		strings.HasPrefix(clean, multipartDir) {
		return "", fmt.Errorf("invalid storage key %q: %w", key, models.ErrInvalidParams)
	}

	return filepath.Join(r.basePath, clean), nil
}

func (r *repository) uploadDir(uploadID string) string {
	return filepath.Join(r.basePath, multipartDir, filepath.Base(uploadID))
}

// openUpload returns the part directory of uploadID after checking it belongs to key.
func (r *repository) openUpload(key string, uploadID string) (string, error) {
	dir := r.uploadDir(uploadID)

	owner, err := os.ReadFile(filepath.Join(dir, keyFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", models.ErrUploadNotFound
		}
		return "", err
	}

	if string(owner) != key {
		return "", models.ErrUploadNotFound
	}

	return dir, nil
}

func partPath(dir string, partNumber int32) string {
	return filepath.Join(dir, fmt.Sprintf("%05d%s", partNumber, partSuffix))
}

// listParts reads the part files of dir. Temp files from in-flight writes are skipped.
func listParts(dir string) ([]models.CompletedPart, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	parts := make([]models.CompletedPart, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, partSuffix) {
			continue
		}

		n, err := strconv.ParseInt(strings.TrimSuffix(name, partSuffix), 10, 32)
		if err != nil || n <= 0 {
			continue
		}

		etag, err := fileETag(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}

		parts = append(parts, models.CompletedPart{PartNumber: int32(n), ETag: etag})
	}

	sort.Slice(parts, func(i, j int) bool { return parts[i].PartNumber < parts[j].PartNumber })

	return parts, nil
}

func fileETag(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// writeAtomically writes to a temp file in the target directory and renames it into place.
func writeAtomically(path string, reader io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}

	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
