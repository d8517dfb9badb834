package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UploadsTotal counts finished blob uploads by outcome.
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fileserve",
		Name:      "uploads_total",
		Help:      "Number of blob uploads by status.",
	}, []string{"status"})

	// UploadBytesTotal counts bytes handed to the blob store.
	UploadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fileserve",
		Name:      "upload_bytes_total",
		Help:      "Total bytes written to the blob store.",
	})

	// IngestRejectsTotal counts multipart requests rejected while streaming.
	IngestRejectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fileserve",
		Name:      "ingest_rejects_total",
		Help:      "Number of multipart requests rejected by the ingest middleware.",
	})
)
