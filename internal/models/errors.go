package models

import (
	"errors"
	"fmt"
	"strings"
)

// Taxonomy kinds. Every error returned by the services wraps exactly one of these.
var (
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrNotFound            = errors.New("not found")
	ErrInvalidState        = errors.New("invalid state")
	ErrValidationFailed    = errors.New("validation failed")
	ErrIntegrityMismatch   = errors.New("integrity mismatch")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

var (
	ErrUNIQUEConstraintFailed   = fmt.Errorf("unique constraint failed: %w", ErrDuplicateKey)
	ErrDuplicateTransactionCode = fmt.Errorf("duplicate transaction code: %w", ErrDuplicateKey)
	ErrDuplicatePartyLink       = fmt.Errorf("party already linked to document: %w", ErrDuplicateKey)
	ErrUserExists               = fmt.Errorf("user already exists: %w", ErrDuplicateKey)

	ErrDocumentNotFound = fmt.Errorf("document: %w", ErrNotFound)
	ErrCustomerNotFound = fmt.Errorf("customer: %w", ErrNotFound)
	ErrFileNotFound     = fmt.Errorf("file: %w", ErrNotFound)
	ErrObjectNotFound   = fmt.Errorf("blob: %w", ErrNotFound)
	ErrUploadNotFound   = fmt.Errorf("upload: %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user: %w", ErrNotFound)
	ErrSessionNotFound  = fmt.Errorf("session: %w", ErrNotFound)

	ErrUploadFinalized = fmt.Errorf("upload already finalized: %w", ErrInvalidState)
	ErrCustomerInUse   = fmt.Errorf("customer is linked to documents: %w", ErrInvalidState)
	ErrNotSigned       = fmt.Errorf("file has no signature: %w", ErrInvalidState)

	ErrCustomerNotExist       = fmt.Errorf("customer does not exist: %w", ErrValidationFailed)
	ErrIncompleteUpload       = fmt.Errorf("incomplete upload: %w", ErrValidationFailed)
	ErrUnsupportedContentType = fmt.Errorf("unsupported content type: %w", ErrValidationFailed)
	ErrMalformedDigest        = fmt.Errorf("malformed digest: %w", ErrValidationFailed)
	ErrInvalidPartNumber      = fmt.Errorf("part number must be positive: %w", ErrValidationFailed)
	ErrInvalidRole            = fmt.Errorf("unknown party role: %w", ErrValidationFailed)
	ErrInvalidParams          = fmt.Errorf("invalid params: %w", ErrValidationFailed)

	ErrSigningUnavailable   = fmt.Errorf("signing unavailable: %w", ErrUpstreamUnavailable)
	ErrBlobStoreUnavailable = fmt.Errorf("blob store unavailable: %w", ErrUpstreamUnavailable)

	ErrInternal           = errors.New("internal server error")
	ErrMethodNotAllowed   = errors.New("method not allowed")
	ErrForbidden          = errors.New("access denied")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const (
	KindDuplicateKey        = "DuplicateKey"
	KindNotFound            = "NotFound"
	KindInvalidState        = "InvalidState"
	KindValidationFailed    = "ValidationFailed"
	KindIntegrityMismatch   = "IntegrityMismatch"
	KindUpstreamUnavailable = "UpstreamUnavailable"
	KindInternal            = "Internal"
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrDuplicateKey, KindDuplicateKey},
	{ErrNotFound, KindNotFound},
	{ErrInvalidState, KindInvalidState},
	{ErrValidationFailed, KindValidationFailed},
	{ErrIntegrityMismatch, KindIntegrityMismatch},
	{ErrUpstreamUnavailable, KindUpstreamUnavailable},
}

// KindOf returns the taxonomy tag of err, or KindInternal when err carries none.
func KindOf(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// public lists the sentinels whose text may reach a client, most specific first.
var public = []error{
	ErrDuplicateTransactionCode, ErrDuplicatePartyLink, ErrUserExists, ErrUNIQUEConstraintFailed,
	ErrDocumentNotFound, ErrCustomerNotFound, ErrFileNotFound, ErrObjectNotFound,
	ErrUploadNotFound, ErrUserNotFound, ErrSessionNotFound,
	ErrUploadFinalized, ErrCustomerInUse, ErrNotSigned,
	ErrCustomerNotExist, ErrIncompleteUpload, ErrUnsupportedContentType, ErrMalformedDigest,
	ErrInvalidPartNumber, ErrInvalidRole, ErrInvalidParams,
	ErrSigningUnavailable, ErrBlobStoreUnavailable,
	ErrInvalidCredentials, ErrForbidden, ErrMethodNotAllowed,
	ErrDuplicateKey, ErrNotFound, ErrInvalidState, ErrValidationFailed,
	ErrIntegrityMismatch, ErrUpstreamUnavailable,
}

// PublicMessage returns the text of the most specific sentinel err wraps. Operation paths,
// driver and store messages wrapped around it are dropped.
func PublicMessage(err error) string {
	var fe *FieldsError
	if errors.As(err, &fe) {
		return fe.Error()
	}

	for _, s := range public {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return ErrInternal.Error()
}

// FieldsError names the request fields that failed validation.
type FieldsError struct {
	Fields []string
}

func (e *FieldsError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidParams, strings.Join(e.Fields, ", "))
}

func (e *FieldsError) Unwrap() error {
	return ErrInvalidParams
}

type UniqueConstraintError struct {
	Constraint string
	Err        error
}

func (e *UniqueConstraintError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Constraint)
}

func (e *UniqueConstraintError) Unwrap() error {
	return e.Err
}
