package signing

import "context"

const pkg = "signingHandler/"

type KeyProvider interface {
	PublicKey(ctx context.Context) (string, error)
}
