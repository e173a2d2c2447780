package web

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/tabledrop/tabledrop/internal/core"
	"github.com/tabledrop/tabledrop/internal/logging"
)

// FileReport is the per-file entry in an upload response.
type FileReport struct {
	FileName   string   `json:"file_name"`
	Table      string   `json:"table,omitempty"`
	Columns    []string `json:"columns,omitempty"`
	RowsLoaded int      `json:"rows_loaded"`
	DurationMs int64    `json:"duration_ms"`
	Error      string   `json:"error,omitempty"`
	ErrorCode  string   `json:"error_code,omitempty"`
}

// UploadResponse is the body for POST /api/upload.
type UploadResponse struct {
	Results []FileReport `json:"results"`
}

// handleUpload accepts a multipart request carrying up to
// MaxFilesPerRequest parts under the `files` field. Each part is
// spooled to a temp file and handed to the orchestrator, which owns
// the temp file from then on. The response carries one entry per
// file; the status is 500-class only when every file failed.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	parts := r.MultipartForm.File["files"]
	if len(parts) == 0 {
		writeErrorMessage(w, http.StatusBadRequest, "no files provided")
		return
	}
	if len(parts) > s.cfg.Upload.MaxFilesPerRequest {
		writeErrorMessage(w, http.StatusBadRequest, "too many files in one request")
		return
	}

	files := make([]core.UploadedFile, 0, len(parts))
	for _, part := range parts {
		path, err := s.spoolPart(part)
		if err != nil {
			// Spooled files already handed over stay owned by the
			// orchestrator; the ones we just wrote must not leak.
			for _, f := range files {
				os.Remove(f.Path)
			}
			logger.Error("spooling upload failed", "file", part.Filename, "error", err)
			writeErrorMessage(w, http.StatusInternalServerError, "storing uploaded file failed")
			return
		}
		files = append(files, core.UploadedFile{
			Path:         path,
			OriginalName: filepath.Base(part.Filename),
		})
	}

	results, err := s.service.ProcessBatch(r.Context(), files)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrTooManyUploads) {
			status = http.StatusTooManyRequests
		}
		s.respondError(w, r, err, status)
		return
	}

	resp := UploadResponse{Results: make([]FileReport, 0, len(results))}
	failed := 0
	for _, res := range results {
		report := FileReport{
			FileName:   res.FileName,
			Table:      res.Table,
			Columns:    res.Columns,
			RowsLoaded: res.RowsLoaded,
			DurationMs: res.Duration.Milliseconds(),
		}
		if res.Err != nil {
			failed++
			msg := core.MapError(res.Err)
			report.Error = msg.Message
			report.ErrorCode = msg.Code
		}
		resp.Results = append(resp.Results, report)
	}

	status := http.StatusOK
	if failed == len(results) {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, resp)
}

// spoolPart copies one multipart file to a temp file and returns its
// path. The caller owns the path on success.
func (s *Server) spoolPart(part *multipart.FileHeader) (string, error) {
	src, err := part.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp(s.cfg.Upload.TempDir, "upload-*.csv")
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}
