package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"notary/internal/config"
	"notary/internal/http/handlers/blob"
	"notary/internal/http/handlers/customer"
	"notary/internal/http/handlers/document"
	"notary/internal/http/handlers/file"
	"notary/internal/http/handlers/health"
	"notary/internal/http/handlers/session"
	"notary/internal/http/handlers/signing"
	"notary/internal/http/handlers/upload"
	"notary/internal/http/handlers/user"
	"notary/internal/http/middleware"
	"notary/internal/models"
	utils "notary/internal/utils/http_errors"
	"time"

	"github.com/gorilla/mux"
)

func StartServer(ctx context.Context, cfg *config.HTTPServer, log *slog.Logger, svc Services) error {
	srv := &http.Server{
		Addr:         cfg.Address,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		IdleTimeout:  cfg.IdleTimeout,
		Handler:      NewRouter(log, svc),
	}

	errChan := make(chan error, 1)

	go func() {
		log.Info("server started", slog.String("address", cfg.Address))
		if err := srv.ListenAndServe(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				log.Info("server closed gracefully")
			} else {
				log.Error("could not start server:", "error", err)
				errChan <- err
			}
		}
	}()
	select {
	case <-ctx.Done():
		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("error shutting down server", "error", err)
			return err
		}
		log.Info("server exited gracefully")
		return nil
	case err := <-errChan:
		return err
	}
}

func NewRouter(log *slog.Logger, svc Services) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.Logger(log, svc.Observer))

	setupRoutes(r, log, svc)

	return r
}

func setupRoutes(r *mux.Router, log *slog.Logger, svc Services) {
	if svc.Metrics != nil {
		r.Handle("/metrics", svc.Metrics).Methods(http.MethodGet)
	}

	// GET liveness
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		health.Live(r.Context(), log, w, r)
	}).Methods(http.MethodGet)

	// GET readiness
	if svc.Health != nil {
		r.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
			health.Ready(r.Context(), log, w, r, svc.Health)
		}).Methods(http.MethodGet)
	}

	// GET presigned blob, local store only
	if svc.Blobs != nil {
		r.HandleFunc("/blobs/{key:.+}", func(w http.ResponseWriter, r *http.Request) {
			blob.Get(r.Context(), log, w, r, mux.Vars(r)["key"], svc.Blobs)
		}).Methods(http.MethodGet)
	}

	// POST user
	r.HandleFunc("/api/register", func(w http.ResponseWriter, r *http.Request) {
		user.Add(r.Context(), log, w, r, svc.Auth)
	}).Methods(http.MethodPost)

	// POST session
	r.HandleFunc("/api/auth", func(w http.ResponseWriter, r *http.Request) {
		session.Add(r.Context(), log, w, r, svc.Auth)
	}).Methods(http.MethodPost)

	// DELETE session
	r.HandleFunc("/api/auth/{token}", func(w http.ResponseWriter, r *http.Request) {
		session.Delete(r.Context(), log, w, r, mux.Vars(r)["token"], svc.Auth)
	}).Methods(http.MethodDelete)

	// GET signing public key
	r.HandleFunc("/api/signing/public-key", func(w http.ResponseWriter, r *http.Request) {
		signing.PublicKey(r.Context(), log, w, r, svc.Signing)
	}).Methods(http.MethodGet)

	protected := r.PathPrefix("/api").Subrouter()

	protected.Use(middleware.Auth(log, svc.Auth))

	setupCustomerRoutes(protected, log, svc.Customers)
	setupDocumentRoutes(protected, log, svc.Documents)
	setupFileRoutes(protected, log, svc.Documents)
	setupUploadRoutes(protected, log, svc.Uploads)

	// Not allowed
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, models.ErrMethodNotAllowed)
	})
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSONError(w, http.StatusNotFound, "route not found")
	})
}

func setupCustomerRoutes(r *mux.Router, log *slog.Logger, cs CustomerService) {
	r.HandleFunc("/customers", func(w http.ResponseWriter, r *http.Request) {
		customer.Add(r.Context(), log, w, r, cs)
	}).Methods(http.MethodPost)

	r.HandleFunc("/customers", func(w http.ResponseWriter, r *http.Request) {
		customer.Get(r.Context(), log, w, r, cs)
	}).Methods(http.MethodGet)

	r.HandleFunc("/customers/{id}", func(w http.ResponseWriter, r *http.Request) {
		customer.GetByID(r.Context(), log, w, r, mux.Vars(r)["id"], cs)
	}).Methods(http.MethodGet)

	r.HandleFunc("/customers/{id}", func(w http.ResponseWriter, r *http.Request) {
		customer.Update(r.Context(), log, w, r, mux.Vars(r)["id"], cs)
	}).Methods(http.MethodPut)

	r.HandleFunc("/customers/{id}", func(w http.ResponseWriter, r *http.Request) {
		customer.Delete(r.Context(), log, w, r, mux.Vars(r)["id"], cs)
	}).Methods(http.MethodDelete)
}

func setupDocumentRoutes(r *mux.Router, log *slog.Logger, ds DocumentService) {
	r.HandleFunc("/documents", func(w http.ResponseWriter, r *http.Request) {
		document.Add(r.Context(), log, w, r, ds)
	}).Methods(http.MethodPost)

	r.HandleFunc("/documents", func(w http.ResponseWriter, r *http.Request) {
		document.Get(r.Context(), log, w, r, ds)
	}).Methods(http.MethodGet)

	r.HandleFunc("/documents/{id}", func(w http.ResponseWriter, r *http.Request) {
		document.GetByID(r.Context(), log, w, r, mux.Vars(r)["id"], ds)
	}).Methods(http.MethodGet)

	r.HandleFunc("/documents/{id}", func(w http.ResponseWriter, r *http.Request) {
		document.Update(r.Context(), log, w, r, mux.Vars(r)["id"], ds)
	}).Methods(http.MethodPut)

	r.HandleFunc("/documents/{id}/files", func(w http.ResponseWriter, r *http.Request) {
		document.AttachFile(r.Context(), log, w, r, mux.Vars(r)["id"], ds)
	}).Methods(http.MethodPost)

	r.HandleFunc("/documents/{id}/files/register", func(w http.ResponseWriter, r *http.Request) {
		document.RegisterFile(r.Context(), log, w, r, mux.Vars(r)["id"], ds)
	}).Methods(http.MethodPost)
}

func setupFileRoutes(r *mux.Router, log *slog.Logger, fs DocumentService) {
	r.HandleFunc("/files/{id}/verify", func(w http.ResponseWriter, r *http.Request) {
		file.VerifyIntegrity(r.Context(), log, w, r, mux.Vars(r)["id"], fs)
	}).Methods(http.MethodGet)

	r.HandleFunc("/files/{id}/sign", func(w http.ResponseWriter, r *http.Request) {
		file.Sign(r.Context(), log, w, r, mux.Vars(r)["id"], fs)
	}).Methods(http.MethodPost)

	r.HandleFunc("/files/{id}/signature/verify", func(w http.ResponseWriter, r *http.Request) {
		file.VerifySignature(r.Context(), log, w, r, mux.Vars(r)["id"], fs)
	}).Methods(http.MethodGet)

	r.HandleFunc("/files/{id}/url", func(w http.ResponseWriter, r *http.Request) {
		file.DownloadURL(r.Context(), log, w, r, mux.Vars(r)["id"], fs)
	}).Methods(http.MethodGet)

	r.HandleFunc("/files/{id}", func(w http.ResponseWriter, r *http.Request) {
		file.Delete(r.Context(), log, w, r, mux.Vars(r)["id"], fs)
	}).Methods(http.MethodDelete)
}

func setupUploadRoutes(r *mux.Router, log *slog.Logger, uc UploadCoordinator) {
	r.HandleFunc("/uploads", func(w http.ResponseWriter, r *http.Request) {
		upload.Initiate(r.Context(), log, w, r, uc)
	}).Methods(http.MethodPost)

	r.HandleFunc("/uploads/{uploadId}", func(w http.ResponseWriter, r *http.Request) {
		upload.Status(r.Context(), log, w, r, mux.Vars(r)["uploadId"], uc)
	}).Methods(http.MethodGet)

	r.HandleFunc("/uploads/{uploadId}/parts/{partNumber}", func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		upload.UploadPart(r.Context(), log, w, r, vars["uploadId"], vars["partNumber"], uc)
	}).Methods(http.MethodPut)

	r.HandleFunc("/uploads/{uploadId}/complete", func(w http.ResponseWriter, r *http.Request) {
		upload.Complete(r.Context(), log, w, r, mux.Vars(r)["uploadId"], uc)
	}).Methods(http.MethodPost)

	r.HandleFunc("/uploads/{uploadId}", func(w http.ResponseWriter, r *http.Request) {
		upload.Abort(r.Context(), log, w, r, mux.Vars(r)["uploadId"], uc)
	}).Methods(http.MethodDelete)
}
