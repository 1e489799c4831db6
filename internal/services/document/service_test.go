package documentservice

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"notary/internal/dbs/postgres"
	"notary/internal/models"
	customerrepo "notary/internal/repositories/db/customer"
	documentrepo "notary/internal/repositories/db/document"
	partyrepo "notary/internal/repositories/db/party"
	filestorage "notary/internal/repositories/storage/file"
	integrityservice "notary/internal/services/integrity"
	partyservice "notary/internal/services/party"
	uploadservice "notary/internal/services/upload"
	localsigner "notary/internal/signing/local"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) CreateDocument(ctx context.Context, doc *models.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockDocumentRepository) UpdateDocument(ctx context.Context, doc *models.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockDocumentRepository) DocumentByID(ctx context.Context, id string) (*models.Document, error) {
	args := m.Called(ctx, id)
	doc, _ := args.Get(0).(*models.Document)
	return doc, args.Error(1)
}

func (m *MockDocumentRepository) TransactionCodeTaken(ctx context.Context, code string, exceptID string) (bool, error) {
	args := m.Called(ctx, code, exceptID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentRepository) ListDocuments(ctx context.Context, limit int) ([]*models.Document, error) {
	args := m.Called(ctx, limit)
	docs, _ := args.Get(0).([]*models.Document)
	return docs, args.Error(1)
}

type MockFileRepository struct {
	mock.Mock
}

func (m *MockFileRepository) CreateFile(ctx context.Context, f *models.DocumentFile) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockFileRepository) FileByID(ctx context.Context, id string) (*models.DocumentFile, error) {
	args := m.Called(ctx, id)
	f, _ := args.Get(0).(*models.DocumentFile)
	if f != nil {
		copied := *f
		return &copied, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFileRepository) ListByDocument(ctx context.Context, documentID string) ([]models.DocumentFile, error) {
	args := m.Called(ctx, documentID)
	files, _ := args.Get(0).([]models.DocumentFile)
	return files, args.Error(1)
}

func (m *MockFileRepository) SaveSignature(ctx context.Context, id string, signature []byte, signedAt time.Time) error {
	return m.Called(ctx, id, signature, signedAt).Error(0)
}

func (m *MockFileRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockPartyLister struct {
	mock.Mock
}

func (m *MockPartyLister) ListByDocument(ctx context.Context, documentID string) ([]models.PartyLink, error) {
	args := m.Called(ctx, documentID)
	links, _ := args.Get(0).([]models.PartyLink)
	return links, args.Error(1)
}

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Reconcile(ctx context.Context, documentID string, desired []models.DesiredParty, defaultNotaryDate time.Time) (models.PartyPlan, error) {
	args := m.Called(ctx, documentID, desired, defaultNotaryDate)
	return args.Get(0).(models.PartyPlan), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Document(ctx context.Context, id string) (*models.Document, error) {
	args := m.Called(ctx, id)
	doc, _ := args.Get(0).(*models.Document)
	return doc, args.Error(1)
}

func (m *MockCache) SetDocument(ctx context.Context, doc *models.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context, ids ...string) error {
	return m.Called(ctx, ids).Error(0)
}

// inlineTx runs fn directly and counts calls.
type inlineTx struct {
	calls int
}

func (tx *inlineTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.calls++
	return fn(ctx)
}

var allowed = []string{"application/pdf", "image/png"}

type uploadSessions struct {
	mu       sync.Mutex
	sessions map[string]models.UploadSession
}

func (u *uploadSessions) SaveSession(_ context.Context, s *models.UploadSession) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.sessions[s.UploadID] = *s
	return nil
}

func (u *uploadSessions) Session(_ context.Context, uploadID string) (*models.UploadSession, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	s, ok := u.sessions[uploadID]
	if !ok {
		return nil, models.ErrUploadNotFound
	}
	return &s, nil
}

type fixture struct {
	svc        *DocumentService
	docs       *MockDocumentRepository
	files      *MockFileRepository
	parties    *MockPartyLister
	reconciler *MockReconciler
	cache      *MockCache
	tx         *inlineTx
	blobs      *uploadservice.Coordinator
	uploads    *uploadSessions
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	signer, err := localsigner.New("")
	require.NoError(t, err)

	f := &fixture{
		docs:       new(MockDocumentRepository),
		files:      new(MockFileRepository),
		parties:    new(MockPartyLister),
		reconciler: new(MockReconciler),
		cache:      new(MockCache),
		tx:         &inlineTx{},
		uploads:    &uploadSessions{sessions: map[string]models.UploadSession{}},
	}
	f.blobs = uploadservice.New(log, filestorage.NewRepository(t.TempDir(), "http://localhost/blobs"), f.uploads, nil)

	f.svc = New(log, f.tx, f.docs, f.files, f.parties, f.reconciler, f.blobs,
		integrityservice.New(log, signer, nil), f.cache, nil,
		Options{
			AllowedContentTypes: allowed,
			PresignTTL:          10 * time.Minute,
			PartSize:            uploadservice.MinPartSize,
			UploadConcurrency:   2,
		})

	return f
}

func TestCreateDocument_Success(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	creation := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	doc := &models.Document{TransactionCode: "TX-1", CreationDate: creation, SecretaryName: "Ann"}
	parties := []models.DesiredParty{{CustomerID: "C1", Role: models.RolePartyA}}

	f.docs.On("TransactionCodeTaken", ctx, "TX-1", mock.Anything).Return(false, nil)
	f.docs.On("CreateDocument", ctx, doc).Return(nil)
	f.reconciler.On("Reconcile", ctx, mock.Anything, parties, creation).Return(models.PartyPlan{}, nil)

	id, err := f.svc.CreateDocument(ctx, doc, parties)

	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, 1, f.tx.calls)
	f.docs.AssertExpectations(t)
	f.reconciler.AssertExpectations(t)
}

func TestCreateDocument_DuplicateTransactionCode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	f.docs.On("TransactionCodeTaken", ctx, "TX-1", mock.Anything).Return(true, nil)

	_, err := f.svc.CreateDocument(ctx, &models.Document{TransactionCode: "TX-1"}, nil)

	assert.ErrorIs(t, err, models.ErrDuplicateTransactionCode)
	assert.ErrorIs(t, err, models.ErrDuplicateKey)
	f.docs.AssertNotCalled(t, "CreateDocument", mock.Anything, mock.Anything)
	f.reconciler.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateDocument_MissingTransactionCode(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.svc.CreateDocument(context.Background(), &models.Document{}, nil)
	assert.ErrorIs(t, err, models.ErrValidationFailed)
	assert.Zero(t, f.tx.calls)
}

func TestCreateDocument_UnknownCustomer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	f.docs.On("TransactionCodeTaken", ctx, "TX-2", mock.Anything).Return(false, nil)
	f.docs.On("CreateDocument", ctx, mock.Anything).Return(nil)
	f.reconciler.On("Reconcile", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(models.PartyPlan{}, models.ErrCustomerNotExist)

	_, err := f.svc.CreateDocument(ctx, &models.Document{TransactionCode: "TX-2"}, []models.DesiredParty{{CustomerID: "ghost", Role: models.RolePartyA}})

	assert.ErrorIs(t, err, models.ErrCustomerNotExist)
	assert.Equal(t, models.KindValidationFailed, models.KindOf(err))
}

func TestCreateDocument_RepositoryFailureIsInternal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	f.docs.On("TransactionCodeTaken", ctx, "TX-3", mock.Anything).Return(false, errors.New("connection refused"))

	_, err := f.svc.CreateDocument(ctx, &models.Document{TransactionCode: "TX-3"}, nil)

	assert.ErrorIs(t, err, models.ErrInternal)
	assert.NotContains(t, err.Error(), "connection refused")
}

func TestUpdateDocument_Success(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	existing := &models.Document{ID: "doc-1", TransactionCode: "TX-1", CreationDate: created, CreatedAt: created}
	doc := &models.Document{ID: "doc-1", TransactionCode: "TX-1", Description: "amended"}

	f.docs.On("DocumentByID", ctx, "doc-1").Return(existing, nil)
	f.docs.On("TransactionCodeTaken", ctx, "TX-1", "doc-1").Return(false, nil)
	f.docs.On("UpdateDocument", ctx, doc).Return(nil)
	f.reconciler.On("Reconcile", ctx, "doc-1", mock.Anything, created).Return(models.PartyPlan{}, nil)
	f.cache.On("Invalidate", ctx, []string{"doc-1"}).Return(nil)

	require.NoError(t, f.svc.UpdateDocument(ctx, doc, nil))

	assert.Equal(t, created, doc.CreationDate)
	assert.Equal(t, created, doc.CreatedAt)
	f.cache.AssertExpectations(t)
}

func TestUpdateDocument_NotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	f.docs.On("DocumentByID", ctx, "missing").Return(nil, models.ErrDocumentNotFound)

	err := f.svc.UpdateDocument(ctx, &models.Document{ID: "missing", TransactionCode: "TX"}, nil)

	assert.ErrorIs(t, err, models.ErrNotFound)
	f.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestUpdateDocument_ReconcileFailureSkipsCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	f.docs.On("DocumentByID", ctx, "doc-1").Return(&models.Document{ID: "doc-1"}, nil)
	f.docs.On("TransactionCodeTaken", ctx, "TX", "doc-1").Return(false, nil)
	f.docs.On("UpdateDocument", ctx, mock.Anything).Return(nil)
	f.reconciler.On("Reconcile", ctx, "doc-1", mock.Anything, mock.Anything).Return(models.PartyPlan{}, models.ErrCustomerNotExist)

	err := f.svc.UpdateDocument(ctx, &models.Document{ID: "doc-1", TransactionCode: "TX"}, nil)

	assert.ErrorIs(t, err, models.ErrCustomerNotExist)
	f.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

// The document update and the party changes share one transaction: an unknown
// customer discovered mid-reconciliation rolls back the already executed UPDATE.
func TestUpdateDocument_RollsBackOnUnknownCustomer(t *testing.T) {
	t.Parallel()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "postgres")
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	reconciler := partyservice.New(log, customerrepo.NewRepository(sqlxDB), partyrepo.NewRepository(sqlxDB), nil)
	cache := new(MockCache)
	svc := New(log, postgres.NewTxRunner(sqlxDB), documentrepo.NewRepository(sqlxDB), new(MockFileRepository),
		new(MockPartyLister), reconciler, nil, nil, cache, nil, Options{})

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cols := []string{"id", "creation_date", "secretary_name", "notary_public", "transaction_code", "description", "document_type", "created_at", "updated_at"}

	sqlMock.ExpectBegin()
	sqlMock.ExpectQuery(`FROM documents d`).WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("doc-1", created, "Ann", "Bob", "TX-1", "", "deed", created, created))
	sqlMock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM documents`).WithArgs("TX-1", "doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	sqlMock.ExpectExec(`UPDATE documents`).WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM customers`).WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	sqlMock.ExpectRollback()

	err = svc.UpdateDocument(context.Background(), &models.Document{ID: "doc-1", TransactionCode: "TX-1"},
		[]models.DesiredParty{{CustomerID: "ghost", Role: models.RolePartyA}})

	assert.ErrorIs(t, err, models.ErrCustomerNotExist)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
	cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestDocumentByID_FromCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	doc := &models.Document{ID: "doc-1"}
	f.cache.On("Document", ctx, "doc-1").Return(doc, nil)
	f.parties.On("ListByDocument", ctx, "doc-1").Return([]models.PartyLink{{CustomerID: "C1"}}, nil)
	f.files.On("ListByDocument", ctx, "doc-1").Return([]models.DocumentFile{{ID: "f1"}}, nil)

	details, err := f.svc.DocumentByID(ctx, "doc-1")

	require.NoError(t, err)
	assert.Equal(t, doc, details.Document)
	assert.Len(t, details.Parties, 1)
	assert.Len(t, details.Files, 1)
	f.docs.AssertNotCalled(t, "DocumentByID", mock.Anything, mock.Anything)
}

func TestDocumentByID_CacheMissFillsCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	doc := &models.Document{ID: "doc-1"}
	f.cache.On("Document", ctx, "doc-1").Return(nil, nil)
	f.docs.On("DocumentByID", ctx, "doc-1").Return(doc, nil)
	f.cache.On("SetDocument", ctx, doc).Return(nil)
	f.parties.On("ListByDocument", ctx, "doc-1").Return([]models.PartyLink{}, nil)
	f.files.On("ListByDocument", ctx, "doc-1").Return([]models.DocumentFile{}, nil)

	_, err := f.svc.DocumentByID(ctx, "doc-1")

	require.NoError(t, err)
	f.cache.AssertExpectations(t)
}

func TestDocumentByID_NotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	f.cache.On("Document", ctx, "nope").Return(nil, errors.New("redis down"))
	f.docs.On("DocumentByID", ctx, "nope").Return(nil, models.ErrDocumentNotFound)

	_, err := f.svc.DocumentByID(ctx, "nope")
	assert.ErrorIs(t, err, models.ErrDocumentNotFound)
}

func attach(t *testing.T, f *fixture, content []byte) *models.DocumentFile {
	t.Helper()

	ctx := context.Background()
	f.docs.On("DocumentByID", ctx, "doc-1").Return(&models.Document{ID: "doc-1"}, nil)
	f.files.On("CreateFile", ctx, mock.Anything).Return(nil).Once()

	file, err := f.svc.AttachFile(ctx, "doc-1", "../../contract.pdf", "application/pdf", bytes.NewReader(content))
	require.NoError(t, err)

	return file
}

func TestAttachFile_RecordsDigest(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	content := []byte("%PDF-1.7 contract")

	file := attach(t, f, content)

	assert.Equal(t, "contract.pdf", file.FileName)
	assert.Equal(t, integrityservice.Digest(content), file.Digest)
	assert.Equal(t, int64(len(content)), file.Size)
	assert.True(t, strings.HasPrefix(file.BlobKey, "documents/doc-1/"+file.ID+"/"))
	assert.Equal(t, f.blobs.Bucket(), file.Bucket)
	assert.False(t, file.IsSigned())

	rc, err := f.blobs.Get(context.Background(), file.BlobKey)
	require.NoError(t, err)
	defer rc.Close()
	stored, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, stored)
}

func TestAttachFile_SmallBodyIsSingleShot(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	attach(t, f, bytes.Repeat([]byte("a"), uploadservice.MinPartSize-1))

	assert.Empty(t, f.uploads.sessions)
}

func TestAttachFile_LargeBodyStreamsParts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	content := bytes.Repeat([]byte("0123456789abcdef"), uploadservice.MinPartSize/16)
	content = append(content, []byte("tail")...)

	file := attach(t, f, content)

	assert.Equal(t, integrityservice.Digest(content), file.Digest)
	assert.Equal(t, int64(len(content)), file.Size)

	require.Len(t, f.uploads.sessions, 1)
	for _, s := range f.uploads.sessions {
		assert.Equal(t, models.UploadCompleted, s.State)
		assert.Equal(t, file.BlobKey, s.Key)
	}

	rc, err := f.blobs.Get(context.Background(), file.BlobKey)
	require.NoError(t, err)
	defer rc.Close()
	stored, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, stored)
}

func TestAttachFile_UnsupportedContentType(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.svc.AttachFile(context.Background(), "doc-1", "a.exe", "application/x-msdownload", strings.NewReader("MZ"))

	assert.ErrorIs(t, err, models.ErrUnsupportedContentType)
	assert.ErrorIs(t, err, models.ErrValidationFailed)
	f.docs.AssertNotCalled(t, "DocumentByID", mock.Anything, mock.Anything)
}

func TestAttachFile_UnknownDocument(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	f.docs.On("DocumentByID", ctx, "missing").Return(nil, models.ErrDocumentNotFound)

	_, err := f.svc.AttachFile(ctx, "missing", "a.pdf", "application/pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, models.ErrDocumentNotFound)
}

func TestAttachFile_RecordFailureRemovesBlob(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	var key string
	f.docs.On("DocumentByID", ctx, "doc-1").Return(&models.Document{ID: "doc-1"}, nil)
	f.files.On("CreateFile", ctx, mock.Anything).Run(func(args mock.Arguments) {
		key = args.Get(1).(*models.DocumentFile).BlobKey
	}).Return(errors.New("insert failed"))

	_, err := f.svc.AttachFile(ctx, "doc-1", "a.pdf", "application/pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, models.ErrInternal)

	ok, err := f.blobs.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyFileIntegrity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	file := attach(t, f, []byte("original"))

	f.files.On("FileByID", ctx, file.ID).Return(file, nil)

	ok, err := f.svc.VerifyFileIntegrity(ctx, file.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.blobs.Put(ctx, file.BlobKey, strings.NewReader("tampered"), "application/pdf")
	require.NoError(t, err)

	ok, err = f.svc.VerifyFileIntegrity(ctx, file.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyFileIntegrity_BlobMissing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	f.files.On("FileByID", ctx, "f1").Return(&models.DocumentFile{ID: "f1", BlobKey: "documents/x/f1/a.pdf", Digest: integrityservice.Digest(nil)}, nil)

	_, err := f.svc.VerifyFileIntegrity(ctx, "f1")
	assert.ErrorIs(t, err, models.ErrObjectNotFound)
}

func TestSignAndVerifyFileSignature(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	file := attach(t, f, []byte("to be notarized"))

	var saved []byte
	f.files.On("FileByID", ctx, file.ID).Return(file, nil).Times(2)
	f.files.On("SaveSignature", ctx, file.ID, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(2).([]byte)
	}).Return(nil)

	signed, err := f.svc.SignFile(ctx, file.ID)
	require.NoError(t, err)
	assert.True(t, signed.IsSigned())
	assert.NotNil(t, signed.SignedAt)
	assert.Equal(t, saved, signed.Signature)

	f.files.On("FileByID", ctx, file.ID).Return(signed, nil)

	ok, err := f.svc.VerifyFileSignature(ctx, file.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSignFile_TamperedContentRefused(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	file := attach(t, f, []byte("original"))

	_, err := f.blobs.Put(ctx, file.BlobKey, strings.NewReader("changed"), "application/pdf")
	require.NoError(t, err)

	f.files.On("FileByID", ctx, file.ID).Return(file, nil)

	_, err = f.svc.SignFile(ctx, file.ID)
	assert.ErrorIs(t, err, models.ErrIntegrityMismatch)
	f.files.AssertNotCalled(t, "SaveSignature", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyFileSignature_GarbageAndUnsigned(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	digest := integrityservice.Digest([]byte("x"))
	f.files.On("FileByID", ctx, "garbage").Return(&models.DocumentFile{ID: "garbage", Digest: digest, Signature: []byte("junk")}, nil)
	f.files.On("FileByID", ctx, "unsigned").Return(&models.DocumentFile{ID: "unsigned", Digest: digest}, nil)

	ok, err := f.svc.VerifyFileSignature(ctx, "garbage")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.svc.VerifyFileSignature(ctx, "unsigned")
	assert.ErrorIs(t, err, models.ErrNotSigned)
}

func TestFileDownloadURL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	f.files.On("FileByID", ctx, "f1").Return(&models.DocumentFile{ID: "f1", BlobKey: "documents/d/f1/a.pdf"}, nil)

	before := time.Now()
	url, err := f.svc.FileDownloadURL(ctx, "f1")
	require.NoError(t, err)
	assert.Contains(t, url.URL, "documents/d/f1/a.pdf")
	assert.WithinDuration(t, before.Add(10*time.Minute), url.ExpiresAt, 5*time.Second)
}

func TestDeleteFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	file := attach(t, f, []byte("bye"))

	f.files.On("FileByID", ctx, file.ID).Return(file, nil)
	f.files.On("Delete", ctx, file.ID).Return(nil)

	require.NoError(t, f.svc.DeleteFile(ctx, file.ID))

	ok, err := f.blobs.Exists(ctx, file.BlobKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegisterUploadedFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	content := []byte("assembled from parts")
	_, err := f.blobs.Put(ctx, "uploads/big.pdf", bytes.NewReader(content), "application/pdf")
	require.NoError(t, err)

	f.docs.On("DocumentByID", ctx, "doc-1").Return(&models.Document{ID: "doc-1"}, nil)
	f.files.On("CreateFile", ctx, mock.Anything).Return(nil)

	file, err := f.svc.RegisterUploadedFile(ctx, "doc-1", "uploads/big.pdf", "big.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, integrityservice.Digest(content), file.Digest)
	assert.Equal(t, int64(len(content)), file.Size)
	assert.Equal(t, "uploads/big.pdf", file.BlobKey)

	_, err = f.svc.RegisterUploadedFile(ctx, "doc-1", "uploads/missing.pdf", "m.pdf", "application/pdf")
	assert.ErrorIs(t, err, models.ErrObjectNotFound)
}
