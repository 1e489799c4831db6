package localsigner

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

const pkg = "localSigner/"

const keyBits = 2048

// Signer holds an in-process RSA key and signs SHA-256 digests with PKCS#1 v1.5.
type Signer struct {
	key *rsa.PrivateKey
}

// New loads a PEM private key from path, or generates an ephemeral key when path is empty.
func New(path string) (*Signer, error) {
	op := pkg + "New"

	if path == "" {
		key, err := rsa.GenerateKey(rand.Reader, keyBits)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &Signer{key: key}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	key, err := parsePrivateKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Signer{key: key}, nil
}

func parsePrivateKey(raw []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case "PRIVATE KEY":
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		key, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("private key is not RSA")
		}
		return key, nil
	}

	return nil, fmt.Errorf("unsupported PEM block %q", block.Type)
}

func (s *Signer) Sign(ctx context.Context, digest []byte) ([]byte, error) {
	op := pkg + "Sign"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sig, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, digest)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sig, nil
}

func (s *Signer) Verify(ctx context.Context, digest []byte, signature []byte) (bool, error) {
	op := pkg + "Verify"

	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if err := rsa.VerifyPKCS1v15(&s.key.PublicKey, crypto.SHA256, digest, signature); err != nil {
		return false, nil
	}

	return true, nil
}

// PublicKey returns the PKIX DER encoding, the same shape KMS GetPublicKey returns.
func (s *Signer) PublicKey(ctx context.Context) ([]byte, error) {
	op := pkg + "PublicKey"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	der, err := x509.MarshalPKIXPublicKey(&s.key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return der, nil
}
