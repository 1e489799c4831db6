package integrityservice

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"notary/internal/metrics"
	"notary/internal/models"
)

const pkg = "integrityService/"

type IntegrityService struct {
	log     *slog.Logger
	signer  Signer
	metrics *metrics.Metrics
}

func New(log *slog.Logger, signer Signer, m *metrics.Metrics) *IntegrityService {
	return &IntegrityService{
		log:     log,
		signer:  signer,
		metrics: m,
	}
}

// Digest returns the lowercase hex SHA-256 of b.
func Digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// DigestReader hashes r to EOF and reports how many bytes were read.
func DigestReader(r io.Reader) (string, int64, error) {
	w := NewDigestWriter()
	if _, err := io.Copy(w, r); err != nil {
		return "", w.Size(), err
	}
	return w.Sum(), w.Size(), nil
}

// DigestWriter hashes whatever is written to it, for use behind io.TeeReader.
type DigestWriter struct {
	h hash.Hash
	n int64
}

func NewDigestWriter() *DigestWriter {
	return &DigestWriter{h: sha256.New()}
}

func (w *DigestWriter) Write(p []byte) (int, error) {
	n, _ := w.h.Write(p)
	w.n += int64(n)
	return n, nil
}

func (w *DigestWriter) Sum() string {
	return hex.EncodeToString(w.h.Sum(nil))
}

func (w *DigestWriter) Size() int64 {
	return w.n
}

// ParseDigest decodes a hex digest in either case. Anything but 32 bytes is malformed.
func ParseDigest(digestHex string) ([]byte, error) {
	raw, err := hex.DecodeString(digestHex)
	if err != nil || len(raw) != sha256.Size {
		return nil, models.ErrMalformedDigest
	}
	return raw, nil
}

// VerifyDigest recomputes the digest of b and compares it with digestHex.
// A malformed digestHex never matches.
func VerifyDigest(digestHex string, b []byte) bool {
	want, err := ParseDigest(digestHex)
	if err != nil {
		return false
	}

	got := sha256.Sum256(b)
	return subtle.ConstantTimeCompare(want, got[:]) == 1
}

// VerifyDigest is the instrumented form of the package-level VerifyDigest.
func (s *IntegrityService) VerifyDigest(digestHex string, b []byte) bool {
	ok := VerifyDigest(digestHex, b)
	s.observeCheck("digest", ok)
	return ok
}

// MatchDigests compares two hex digests case-insensitively.
func (s *IntegrityService) MatchDigests(storedHex string, computedHex string) bool {
	stored, err := ParseDigest(storedHex)
	if err != nil {
		s.observeCheck("digest", false)
		return false
	}
	computed, err := ParseDigest(computedHex)
	if err != nil {
		s.observeCheck("digest", false)
		return false
	}

	ok := subtle.ConstantTimeCompare(stored, computed) == 1
	s.observeCheck("digest", ok)
	return ok
}

func (s *IntegrityService) Sign(ctx context.Context, digestHex string) ([]byte, error) {
	op := pkg + "Sign"

	log := s.log.With(slog.String("op", op))

	digest, err := ParseDigest(digestHex)
	if err != nil {
		log.Warn("refusing to sign malformed digest")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sig, err := s.signer.Sign(ctx, digest)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", op, ctxErr)
		}
		log.Error("signing authority failed", slog.String("error", err.Error()))
		if s.metrics != nil {
			s.metrics.IncrementSigningFailures()
		}
		return nil, fmt.Errorf("%s: %w", op, models.ErrSigningUnavailable)
	}

	if s.metrics != nil {
		s.metrics.IncrementSignaturesIssued()
	}

	log.Debug("digest signed", slog.String("digest", digestHex))

	return sig, nil
}

// VerifySignature reports false without error for malformed digests and rejected signatures.
// Only a failure to reach the signing authority is returned as an error.
func (s *IntegrityService) VerifySignature(ctx context.Context, digestHex string, signature []byte) (bool, error) {
	op := pkg + "VerifySignature"

	log := s.log.With(slog.String("op", op))

	digest, err := ParseDigest(digestHex)
	if err != nil || len(signature) == 0 {
		s.observeCheck("signature", false)
		return false, nil
	}

	ok, err := s.signer.Verify(ctx, digest, signature)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, fmt.Errorf("%s: %w", op, ctxErr)
		}
		log.Error("signing authority failed", slog.String("error", err.Error()))
		if s.metrics != nil {
			s.metrics.IncrementSigningFailures()
		}
		return false, fmt.Errorf("%s: %w", op, models.ErrSigningUnavailable)
	}

	s.observeCheck("signature", ok)

	return ok, nil
}

// PublicKey returns the signing authority's public key, base64 encoded.
func (s *IntegrityService) PublicKey(ctx context.Context) (string, error) {
	op := pkg + "PublicKey"

	log := s.log.With(slog.String("op", op))

	key, err := s.signer.PublicKey(ctx)
	if err != nil {
		log.Error("failed to fetch public key", slog.String("error", err.Error()))
		return "", fmt.Errorf("%s: %w", op, models.ErrSigningUnavailable)
	}

	return base64.StdEncoding.EncodeToString(key), nil
}

func (s *IntegrityService) observeCheck(check string, ok bool) {
	if s.metrics != nil {
		s.metrics.ObserveIntegrityCheck(check, ok)
	}
}
