package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks the integrity, upload and party reconciliation paths.
type Metrics struct {
	PartyOperations  *prometheus.CounterVec
	UploadOperations *prometheus.CounterVec
	UploadedBytes    prometheus.Counter
	SignaturesIssued prometheus.Counter
	IntegrityChecks  *prometheus.CounterVec
	SigningFailures  prometheus.Counter
	DocumentsCreated prometheus.Counter
	DocumentsUpdated prometheus.Counter
	HTTPRequests     *prometheus.HistogramVec
}

// New registers all metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		PartyOperations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "notary_party_operations_total",
			Help: "Party-link operations applied by reconciliation, by kind (create, update, remove)",
		}, []string{"kind"}),
		UploadOperations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "notary_upload_operations_total",
			Help: "Blob store operations, by operation and result",
		}, []string{"operation", "result"}),
		UploadedBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "notary_uploaded_bytes_total",
			Help: "Bytes written to the blob store through attach and multipart parts",
		}),
		SignaturesIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "notary_signatures_issued_total",
			Help: "Digests signed by the signing authority",
		}),
		IntegrityChecks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "notary_integrity_checks_total",
			Help: "Digest and signature verifications, by check and outcome",
		}, []string{"check", "outcome"}),
		SigningFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "notary_signing_failures_total",
			Help: "Signing authority calls that failed in transport",
		}),
		DocumentsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "notary_documents_created_total",
			Help: "Documents created",
		}),
		DocumentsUpdated: f.NewCounter(prometheus.CounterOpts{
			Name: "notary_documents_updated_total",
			Help: "Documents updated",
		}),
		HTTPRequests: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notary_http_request_duration_seconds",
			Help:    "HTTP request latency, by method, route and status code",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}
}

func (m *Metrics) ObservePartyPlan(creates, updates, removes int) {
	m.PartyOperations.WithLabelValues("create").Add(float64(creates))
	m.PartyOperations.WithLabelValues("update").Add(float64(updates))
	m.PartyOperations.WithLabelValues("remove").Add(float64(removes))
}

// ObserveUpload records the outcome of a blob store call.
func (m *Metrics) ObserveUpload(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.UploadOperations.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) AddUploadedBytes(n int64) {
	m.UploadedBytes.Add(float64(n))
}

func (m *Metrics) IncrementSignaturesIssued() {
	m.SignaturesIssued.Inc()
}

func (m *Metrics) IncrementSigningFailures() {
	m.SigningFailures.Inc()
}

// ObserveIntegrityCheck records a verification; check is "digest" or "signature".
func (m *Metrics) ObserveIntegrityCheck(check string, ok bool) {
	outcome := "match"
	if !ok {
		outcome = "mismatch"
	}
	m.IntegrityChecks.WithLabelValues(check, outcome).Inc()
}

func (m *Metrics) IncrementDocumentsCreated() {
	m.DocumentsCreated.Inc()
}

func (m *Metrics) IncrementDocumentsUpdated() {
	m.DocumentsUpdated.Inc()
}

func (m *Metrics) ObserveHTTPRequest(method, route string, code int, seconds float64) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Observe(seconds)
}
