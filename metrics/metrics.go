package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes.
const (
	StatusSaved   = "saved"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

var (
	ProfileSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_submissions_total",
			Help: "Profile submissions by persistence outcome",
		},
		[]string{"status"},
	)

	ProfileUploadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_uploads_total",
			Help: "Profile images written to the content directory",
		},
	)

	ProfileUploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_upload_bytes_total",
			Help: "Bytes written to the content directory",
		},
	)

	MongoConnectAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mongo_connect_attempts_total",
			Help: "MongoDB connection attempts by result",
		},
		[]string{"result"},
	)
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
