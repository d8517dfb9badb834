package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/venturelink/fileserve/applications/server"
	"github.com/venturelink/fileserve/applications/server/config"
	"github.com/venturelink/fileserve/applications/server/domain"
)

// Owner context headers set by the platform's auth layer in front of this
// service.
const (
	headerUserID      = "X-User-Id"
	headerProfileID   = "X-Profile-Id"
	headerProfileType = "X-Profile-Type"
)

func NewRouter(svc server.FileService, upload config.Upload, logger log.Logger) http.Handler {
	r := mux.NewRouter()

	ingest := MultipartIngest(upload, logger)
	r.Handle("/files/upload", ingest(UploadFileHandler(svc, logger))).Methods(http.MethodPost)
	r.HandleFunc("/files/info/{fileId}", GetFileInfoHandler(svc, logger)).Methods(http.MethodGet)
	r.HandleFunc("/files/{fileId}", FetchFileHandler(svc, logger)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}

// UploadFileHandler stores the first general attachment and links it to the
// owner selected by the documentType field and the auth headers.
func UploadFileHandler(svc server.FileService, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		att := FormAttachments(r)
		if att == nil || len(att.General) == 0 {
			writeError(w, http.StatusBadRequest, errors.New("no file uploaded"))
			return
		}

		// Temp files the service does not consume must not outlive the
		// request; cleanup is idempotent so the consumed one is fine too.
		defer svc.CleanupFiles(att.Paths())

		fields := FormFields(r)

		opts := domain.UploadOptions{
			DocumentType: domain.DocumentType(fields["documentType"]),
			UserID:       r.Header.Get(headerUserID),
			ProfileID:    r.Header.Get(headerProfileID),
			ProfileType:  domain.ProfileType(r.Header.Get(headerProfileType)),
		}

		if v := fields["expiresIn"]; v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, errors.New("invalid expiresIn duration"))
				return
			}
			opts.ExpiresIn = d
		}

		id, err := svc.Upload(r.Context(), att.General[0], opts)
		if err != nil {
			level.Error(logger).Log("msg", "upload error", "err", err)
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{"_id": id})
	}
}

// FetchFileHandler streams blob bytes to the client; response back-pressure
// throttles the blob-store read.
func FetchFileHandler(svc server.FileService, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fileID := mux.Vars(r)["fileId"]

		blob, err := svc.Fetch(r.Context(), fileID)
		if err != nil {
			if errors.Is(err, domain.ErrBlobNotFound) {
				writeError(w, http.StatusNotFound, domain.ErrBlobNotFound)
				return
			}

			level.Error(logger).Log("msg", "fetch error", "err", err)
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		defer blob.Body.Close()

		w.Header().Set("Content-Type", blob.Info.ContentType)
		w.Header().Set("Content-Length", strconv.FormatInt(blob.Info.Length, 10))

		if _, err = io.Copy(w, blob.Body); err != nil {
			level.Error(logger).Log("msg", "error body copy", "err", err)
			return
		}
	}
}

type fileInfoResponse struct {
	ID          string           `json:"_id"`
	Filename    string           `json:"filename"`
	Length      int64            `json:"length"`
	ChunkSize   int32            `json:"chunkSize"`
	UploadDate  time.Time        `json:"uploadDate"`
	ContentType string           `json:"contentType"`
	Metadata    metadataResponse `json:"metadata"`
}

type metadataResponse struct {
	Mimetype   string     `json:"mimetype,omitempty"`
	Expiration *time.Time `json:"expiration,omitempty"`
}

func GetFileInfoHandler(svc server.FileService, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fileID := mux.Vars(r)["fileId"]

		info, err := svc.Info(r.Context(), fileID)
		if err != nil {
			if errors.Is(err, domain.ErrBlobNotFound) {
				writeError(w, http.StatusNotFound, domain.ErrBlobNotFound)
				return
			}

			level.Error(logger).Log("msg", "file info error", "err", err)
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, fileInfoResponse{
			ID:          info.ID,
			Filename:    info.Filename,
			Length:      info.Length,
			ChunkSize:   info.ChunkSize,
			UploadDate:  info.UploadDate,
			ContentType: info.ContentType,
			Metadata: metadataResponse{
				Mimetype:   info.MimeType,
				Expiration: info.ExpireAt,
			},
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Println("can't write response ", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
