package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"notary/internal/cache/redis"
	"notary/internal/config"
	"notary/internal/dbs/postgres"
	"notary/internal/http/server"
	"notary/internal/metrics"
	cachedocsrepo "notary/internal/repositories/cache/docs"
	cachesessionrepo "notary/internal/repositories/cache/session"
	cacheuploadsrepo "notary/internal/repositories/cache/uploads"
	customerrepo "notary/internal/repositories/db/customer"
	documentrepo "notary/internal/repositories/db/document"
	filerepo "notary/internal/repositories/db/file"
	partyrepo "notary/internal/repositories/db/party"
	userrepo "notary/internal/repositories/db/user"
	filestorage "notary/internal/repositories/storage/file"
	s3storage "notary/internal/repositories/storage/s3"
	authservice "notary/internal/services/auth"
	customerservice "notary/internal/services/customer"
	documentservice "notary/internal/services/document"
	integrityservice "notary/internal/services/integrity"
	partyservice "notary/internal/services/party"
	uploadservice "notary/internal/services/upload"
	kmssigner "notary/internal/signing/kms"
	localsigner "notary/internal/signing/local"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type App struct {
	AuthService      *authservice.AuthService
	CustomerService  *customerservice.CustomerService
	DocumentService  *documentservice.DocumentService
	UploadService    *uploadservice.Coordinator
	IntegrityService *integrityservice.IntegrityService
	Metrics          *metrics.Metrics

	localBlobs server.LocalBlobStore
	registry   *prometheus.Registry
	db         *sqlx.DB
	cache      *redis.Client
}

func NewApp(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	db, err := postgres.New(ctx, postgres.Config{
		Addr:     cfg.DB.Addr,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DB:       cfg.DB.DB})
	if err != nil {
		log.Error("failed connect to db", "err", err)
		return nil, fmt.Errorf("failed connect to db: %w", err)
	}

	cache, err := redis.New(ctx, redis.Config{
		Addr:         cfg.Cache.Addr,
		Password:     cfg.Cache.Password,
		DB:           cfg.Cache.DB,
		DialTimeout:  cfg.Cache.Timeout,
		ReadTimeout:  cfg.Cache.Timeout,
		WriteTimeout: cfg.Cache.Timeout,
	})
	if err != nil {
		log.Error("failed connect to cache", "err", err)
		_ = db.Close()
		return nil, fmt.Errorf("failed connect to cache: %w", err)
	}

	a := &App{db: db, cache: cache}

	blobs, err := a.newBlobStore(ctx, cfg.BlobStore)
	if err != nil {
		log.Error("failed to init blob store", "err", err)
		_ = a.Close()
		return nil, fmt.Errorf("failed to init blob store: %w", err)
	}

	signer, err := newSigner(ctx, cfg.Signing)
	if err != nil {
		log.Error("failed to init signer", "err", err)
		_ = a.Close()
		return nil, fmt.Errorf("failed to init signer: %w", err)
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.Metrics = metrics.New(a.registry)

	txRunner := postgres.NewTxRunner(db)

	userRepo := userrepo.NewRepository(db)
	customerRepo := customerrepo.NewRepository(db)
	documentRepo := documentrepo.NewRepository(db)
	fileRepo := filerepo.NewRepository(db)
	partyRepo := partyrepo.NewRepository(db)

	sessionCacheRepo := cachesessionrepo.New(cache, cfg.Cache.SessionTTL)
	documentCacheRepo := cachedocsrepo.New(cache, cfg.Cache.DocumentsTTL)
	uploadCacheRepo := cacheuploadsrepo.New(cache, cfg.Cache.UploadsTTL)

	a.AuthService = authservice.New(log, userRepo, userRepo, sessionCacheRepo, cfg.AdminToken)

	a.CustomerService = customerservice.New(log, txRunner, customerRepo, partyRepo)

	a.IntegrityService = integrityservice.New(log, signer, a.Metrics)

	a.UploadService = uploadservice.New(log, blobs, uploadCacheRepo, a.Metrics)

	reconciler := partyservice.New(log, customerRepo, partyRepo, a.Metrics)

	a.DocumentService = documentservice.New(
		log,
		txRunner,
		documentRepo,
		fileRepo,
		partyRepo,
		reconciler,
		a.UploadService,
		a.IntegrityService,
		documentCacheRepo,
		a.Metrics,
		documentservice.Options{
			AllowedContentTypes: cfg.Files.AllowedContentTypes,
			PresignTTL:          cfg.BlobStore.PresignTTL,
			PartSize:            cfg.BlobStore.PartSize,
			UploadConcurrency:   cfg.BlobStore.UploadConcurrency,
		},
	)

	return a, nil
}

// Services returns the router dependencies.
func (a *App) Services() server.Services {
	return server.Services{
		Auth:      a.AuthService,
		Customers: a.CustomerService,
		Documents: a.DocumentService,
		Uploads:   a.UploadService,
		Signing:   a.IntegrityService,
		Blobs:     a.localBlobs,
		Health:    a,
		Observer:  a.Metrics,
		Metrics:   promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
	}
}

// Ready pings postgres and redis.
func (a *App) Ready(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}

	if err := a.cache.Ping(ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	return nil
}

func (a *App) Close() error {
	var errs []error

	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}

	if a.db != nil {
		errs = append(errs, a.db.Close())
	}

	return errors.Join(errs...)
}

func (a *App) newBlobStore(ctx context.Context, cfg config.BlobStore) (uploadservice.BlobStore, error) {
	if cfg.PartSize != 0 && cfg.PartSize < uploadservice.MinPartSize {
		return nil, fmt.Errorf("part size %d below minimum %d", cfg.PartSize, uploadservice.MinPartSize)
	}

	switch cfg.Driver {
	case config.BlobDriverS3:
		return s3storage.New(ctx, s3storage.Config{
			Region:    cfg.Region,
			Bucket:    cfg.Bucket,
			Prefix:    cfg.Prefix,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
	case config.BlobDriverLocal:
		store := filestorage.NewRepository(cfg.Path, cfg.BaseURL).WithSigningKey([]byte(cfg.SecretKey))
		a.localBlobs = store
		return store, nil
	}

	return nil, fmt.Errorf("unknown blob store driver %q", cfg.Driver)
}

func newSigner(ctx context.Context, cfg config.Signing) (integrityservice.Signer, error) {
	switch cfg.Driver {
	case config.SigningDriverKMS:
		return kmssigner.New(ctx, kmssigner.Config{
			KeyID:    cfg.KeyID,
			Region:   cfg.Region,
			Endpoint: cfg.Endpoint,
		})
	case config.SigningDriverLocal:
		return localsigner.New(cfg.PrivateKeyPath)
	}

	return nil, fmt.Errorf("unknown signing driver %q", cfg.Driver)
}
