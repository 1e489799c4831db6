package kmssigner

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	kmstypes "github.com/aws/aws-sdk-go-v2/service/kms/types"
)

const pkg = "kmsSigner/"

const algorithm = kmstypes.SigningAlgorithmSpecRsassaPkcs1V15Sha256

type Config struct {
	KeyID    string
	Region   string
	Endpoint string
}

type kmsAPI interface {
	Sign(ctx context.Context, params *kms.SignInput, optFns ...func(*kms.Options)) (*kms.SignOutput, error)
	Verify(ctx context.Context, params *kms.VerifyInput, optFns ...func(*kms.Options)) (*kms.VerifyOutput, error)
	GetPublicKey(ctx context.Context, params *kms.GetPublicKeyInput, optFns ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error)
}

// Signer signs SHA-256 digests with an asymmetric KMS key. The key is fixed at construction.
type Signer struct {
	client kmsAPI
	keyID  string
}

func New(ctx context.Context, cfg Config) (*Signer, error) {
	op := pkg + "New"

	if cfg.KeyID == "" {
		return nil, fmt.Errorf("%s: kms key id is required", op)
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s: load aws config: %w", op, err)
	}

	client := kms.NewFromConfig(awsCfg, func(o *kms.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return newWithClient(client, cfg.KeyID), nil
}

func newWithClient(client kmsAPI, keyID string) *Signer {
	return &Signer{client: client, keyID: keyID}
}

// Sign signs a precomputed digest.
func (s *Signer) Sign(ctx context.Context, digest []byte) ([]byte, error) {
	op := pkg + "Sign"

	out, err := s.client.Sign(ctx, &kms.SignInput{
		KeyId:            aws.String(s.keyID),
		Message:          digest,
		MessageType:      kmstypes.MessageTypeDigest,
		SigningAlgorithm: algorithm,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out.Signature, nil
}

// Verify reports false without an error when KMS rejects the signature.
func (s *Signer) Verify(ctx context.Context, digest []byte, signature []byte) (bool, error) {
	op := pkg + "Verify"

	out, err := s.client.Verify(ctx, &kms.VerifyInput{
		KeyId:            aws.String(s.keyID),
		Message:          digest,
		MessageType:      kmstypes.MessageTypeDigest,
		Signature:        signature,
		SigningAlgorithm: algorithm,
	})
	if err != nil {
		var invalid *kmstypes.KMSInvalidSignatureException
		if errors.As(err, &invalid) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return out.SignatureValid, nil
}

// PublicKey returns the DER-encoded public key.
func (s *Signer) PublicKey(ctx context.Context) ([]byte, error) {
	op := pkg + "PublicKey"

	out, err := s.client.GetPublicKey(ctx, &kms.GetPublicKeyInput{
		KeyId: aws.String(s.keyID),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out.PublicKey, nil
}
