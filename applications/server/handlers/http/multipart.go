package http

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"

	"github.com/venturelink/fileserve/applications/server/config"
	"github.com/venturelink/fileserve/applications/server/domain"
	"github.com/venturelink/fileserve/applications/server/metrics"
)

// Form field names routed into the special-purpose attachment buckets.
const (
	fieldCodeInterpreter = "codeInterpreterAttachments"
	fieldFileSearch      = "fileSearchAttachments"
)

// Plain form fields never need more than this.
const maxFieldSize = 1 << 20

type ctxKey int

const (
	fieldsKey ctxKey = iota
	attachmentsKey
)

// FormFields returns the plain form fields collected by the ingest
// middleware, or nil if the request did not pass through it.
func FormFields(r *http.Request) map[string]string {
	fields, _ := r.Context().Value(fieldsKey).(map[string]string)
	return fields
}

// FormAttachments returns the uploaded file buckets collected by the ingest
// middleware, or nil if the request did not pass through it.
func FormAttachments(r *http.Request) *domain.Attachments {
	att, _ := r.Context().Value(attachmentsKey).(*domain.Attachments)
	return att
}

// MultipartIngest streams a multipart/form-data POST body part by part,
// writing file parts under unique names into cfg.Dir and enforcing the
// per-file size and per-field count limits while bytes are still arriving.
// The first violation is terminal for the whole request: every temp file
// written so far is deleted and the next handler is never invoked.
// Non-multipart requests pass through untouched.
func MultipartIngest(cfg config.Upload, logger log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost ||
				!strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
				next.ServeHTTP(w, r)
				return
			}

			mr, err := r.MultipartReader()
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Errorf("can't parse form data: %w", err))
				return
			}

			if err = os.MkdirAll(cfg.Dir, 0o755); err != nil {
				level.Error(logger).Log("msg", "can't create upload dir",
					"dir", cfg.Dir,
					"err", err,
				)
				writeError(w, http.StatusInternalServerError, fmt.Errorf("can't create upload dir: %w", err))
				return
			}

			s := newIngestSession(cfg)
			if err = s.consume(mr); err != nil {
				s.cleanup(logger)
				metrics.IngestRejectsTotal.Inc()
				level.Error(logger).Log("msg", "multipart ingest rejected", "err", err)
				// A client that aborted mid-stream never sees this.
				writeError(w, http.StatusBadRequest, err)
				return
			}

			ctx := context.WithValue(r.Context(), fieldsKey, s.fields)
			ctx = context.WithValue(ctx, attachmentsKey, s.attachments())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ingestSession accumulates the state of one multipart request: collected
// fields, per-field file counts, the temp paths written so far and the
// classified buckets. consume returning an error means the session is
// rejected and paths must be cleaned up.
type ingestSession struct {
	cfg    config.Upload
	fields map[string]string
	counts map[string]int
	paths  []string

	codeInterpreter []domain.UploadedFile
	fileSearch      []domain.UploadedFile
	general         []domain.UploadedFile
}

func newIngestSession(cfg config.Upload) *ingestSession {
	return &ingestSession{
		cfg:    cfg,
		fields: map[string]string{},
		counts: map[string]int{},
	}
}

func (s *ingestSession) consume(mr *multipart.Reader) error {
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("can't parse form data: %w", err)
		}

		if part.FileName() == "" {
			if err = s.saveField(part); err != nil {
				return err
			}
			continue
		}

		if err = s.saveFile(part); err != nil {
			return err
		}
	}
}

// saveField stores a plain field value, last write wins.
func (s *ingestSession) saveField(part *multipart.Part) error {
	val, err := io.ReadAll(io.LimitReader(part, maxFieldSize))
	if err != nil {
		return fmt.Errorf("can't read field %q: %w", part.FormName(), err)
	}

	s.fields[part.FormName()] = string(val)

	return nil
}

// saveFile streams one file part to a uniquely named temp file. The byte
// count is checked against the limit while copying, not after buffering:
// the copy reads at most limit+1 bytes and the remainder of an oversized
// part is never pulled off the wire.
func (s *ingestSession) saveFile(part *multipart.Part) error {
	field := part.FormName()

	s.counts[field]++
	if s.counts[field] > s.cfg.MaxFilesPerField {
		return fmt.Errorf("exceeded maximum number of files (%d) for field %q",
			s.cfg.MaxFilesPerField, field)
	}

	original := filepath.Base(part.FileName())
	stored := uuid.NewString() + "_" + original
	dst := filepath.Join(s.cfg.Dir, stored)

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("can't create temp file: %w", err)
	}

	// Track the path before writing so a failed copy is still cleaned up.
	s.paths = append(s.paths, dst)

	n, copyErr := io.Copy(f, io.LimitReader(part, s.cfg.MaxFileSize+1))
	closeErr := f.Close()

	if copyErr != nil {
		return fmt.Errorf("can't save file: %w", copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("can't save file: %w", closeErr)
	}
	if n > s.cfg.MaxFileSize {
		return fmt.Errorf("file size exceeds the limit of %s",
			humanize.IBytes(uint64(s.cfg.MaxFileSize)))
	}

	file := domain.UploadedFile{
		FieldName:    field,
		OriginalName: original,
		StoredName:   stored,
		Path:         dst,
		MimeType:     part.Header.Get("Content-Type"),
	}

	switch field {
	case fieldCodeInterpreter:
		s.codeInterpreter = append(s.codeInterpreter, file)
	case fieldFileSearch:
		s.fileSearch = append(s.fileSearch, file)
	default:
		s.general = append(s.general, file)
	}

	return nil
}

func (s *ingestSession) attachments() *domain.Attachments {
	return &domain.Attachments{
		CodeInterpreter: s.codeInterpreter,
		FileSearch:      s.fileSearch,
		General:         s.general,
	}
}

// cleanup deletes every temp file written during the session, best effort.
func (s *ingestSession) cleanup(logger log.Logger) {
	for _, path := range s.paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			level.Warn(logger).Log("msg", "can't remove temp file",
				"path", path,
				"err", err,
			)
		}
	}
}
