package integrityservice

import "context"

// Signer is the external signing authority. Implementations sign a SHA-256 digest with a key fixed in configuration.
type Signer interface {
	Sign(ctx context.Context, digest []byte) ([]byte, error)
	Verify(ctx context.Context, digest []byte, signature []byte) (bool, error)
	PublicKey(ctx context.Context) ([]byte, error)
}
