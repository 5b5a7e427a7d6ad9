package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/infinityseifer/eda-auto/domain/core"
	"github.com/infinityseifer/eda-auto/domain/dataset"
)

var allowedExts = map[string]bool{
	".csv":  true,
	".xlsx": true,
}

// uploadProbeRows bounds the metadata probe after upload; the full
// pipeline re-reads with its own sample cap
const uploadProbeRows = 100000

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	info, err := os.Stat(s.cfg.Storage.Dir)
	storageOK := err == nil && info.IsDir()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ready": storageOK,
		"details": map[string]bool{
			"storage":  storageOK,
			"registry": s.datasets != nil,
		},
	})
}

// handleUploadDataset validates, persists and probes an uploaded
// dataset file. Bad uploads are cleaned up before the error returns.
func (s *Server) handleUploadDataset(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.cfg.Upload.MaxSizeMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		if isOversize(err) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("%v (max %d MB)", core.ErrOversizePayload, s.cfg.Upload.MaxSizeMB))
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid upload: %v", err))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExts[ext] {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%v: %s (allowed: .csv, .xlsx)", core.ErrUnsupportedFormat, ext))
		return
	}

	if err := os.MkdirAll(s.cfg.Storage.Dir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}

	ds := dataset.New(header.Filename, "", ext, header.Size)
	storedPath := filepath.Join(s.cfg.Storage.Dir, ds.ID.String()+ext)
	ds.StoredPath = storedPath

	out, err := os.Create(storedPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist upload")
		return
	}
	written, err := io.Copy(out, file)
	out.Close()
	if err != nil {
		os.Remove(storedPath)
		if isOversize(err) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("%v (max %d MB)", core.ErrOversizePayload, s.cfg.Upload.MaxSizeMB))
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read upload: %v", err))
		return
	}
	ds.SizeBytes = written

	// Probe the file so corrupt uploads fail here, not mid-pipeline
	f, err := s.loader.Load(storedPath, uploadProbeRows)
	if err != nil {
		os.Remove(storedPath)
		status := http.StatusInternalServerError
		if core.IsInputError(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status,
			fmt.Sprintf("failed to parse file: %v. Ensure the file is a valid %s and not password-protected.", err, strings.ToUpper(ext[1:])))
		return
	}
	ds.RowCount = f.Rows()
	ds.ColCount = f.Cols()

	if s.datasets != nil {
		if err := s.datasets.Create(r.Context(), ds); err != nil {
			s.log.Warn("dataset registry insert failed: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"dataset_id": ds.ID,
		"filename":   ds.OriginalFilename,
		"stored_at":  ds.StoredPath,
		"size_bytes": ds.SizeBytes,
		"meta":       map[string]int{"rows": ds.RowCount, "cols": ds.ColCount},
	})
}

// handleListDatasets lists uploads from the registry when available,
// falling back to a storage directory scan
func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	if s.datasets != nil {
		list, err := s.datasets.List(r.Context())
		if err == nil {
			writeJSON(w, http.StatusOK, list)
			return
		}
		s.log.Warn("dataset registry list failed, falling back to scan: %v", err)
	}

	var out []map[string]string
	entries, _ := os.ReadDir(s.cfg.Storage.Dir)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if allowedExts[ext] {
			out = append(out, map[string]string{
				"dataset_id": strings.TrimSuffix(e.Name(), ext),
				"path":       filepath.Join(s.cfg.Storage.Dir, e.Name()),
				"ext":        ext,
			})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// resolveDatasetPath finds the stored file for a dataset identifier
func (s *Server) resolveDatasetPath(id core.DatasetID) (string, error) {
	for ext := range allowedExts {
		p := filepath.Join(s.cfg.Storage.Dir, id.String()+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", core.ErrDatasetNotFound, id)
}

// isOversize reports whether an upload error came from the request
// body size cap. multipart parsing does not always wrap the
// MaxBytesReader error, hence the message fallback.
func isOversize(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

// handleRunJob triggers the pipeline. The default is a synchronous
// run returning the pipeline result inline; async=1 enqueues the run
// and returns a job identifier for later status lookup.
func (s *Server) handleRunJob(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseDatasetID(r.URL.Query().Get("dataset_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	path, err := s.resolveDatasetPath(id)
	if err != nil {
		status := http.StatusInternalServerError
		if core.IsNotFoundError(err) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}

	theme := r.URL.Query().Get("theme")
	if theme == "" {
		theme = "light"
	}
	accent := r.URL.Query().Get("color")

	if r.URL.Query().Get("async") == "1" {
		jobID := s.jobs.Enqueue(path, id, theme, accent)
		writeJSON(w, http.StatusAccepted, map[string]string{
			"job_id": jobID.String(),
			"status": "queued",
		})
		return
	}

	result := s.orchestrator.Run(r.Context(), path, id, theme, accent)
	s.recordReport(r, id, theme, result.DeckPath)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job_id": "sync",
		"status": "finished",
		"result": result,
	})
}

func (s *Server) recordReport(r *http.Request, id core.DatasetID, theme, deckName string) {
	if s.reports == nil || deckName == "" {
		return
	}
	full := filepath.Join(s.cfg.Storage.Dir, "reports", deckName)
	var size int64
	if info, err := os.Stat(full); err == nil {
		size = info.Size()
	}
	rep := &dataset.Report{
		Filename:  deckName,
		DatasetID: id,
		Theme:     theme,
		SizeBytes: size,
		CreatedAt: time.Now(),
	}
	if err := s.reports.Upsert(r.Context(), rep); err != nil {
		s.log.Warn("report registry upsert failed: %v", err)
	}
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseJobID(chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	job, ok := s.jobs.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, core.ErrJobNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleListReports lists decks by scanning the reports directory
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	reportsDir := filepath.Join(s.cfg.Storage.Dir, "reports")
	var out []map[string]interface{}
	entries, _ := os.ReadDir(reportsDir)
	for _, e := range entries {
		if e.IsDir() || !validReportName(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, map[string]interface{}{
			"name": e.Name(),
			"path": filepath.Join(reportsDir, e.Name()),
			"size": info.Size(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// validReportName accepts only names matching the deck naming
// convention, with no path separators. The path-traversal defense for
// the download handler.
func validReportName(name string) bool {
	if name != filepath.Base(name) || strings.Contains(name, "..") {
		return false
	}
	return strings.HasPrefix(name, "report_") && strings.HasSuffix(name, ".html")
}

func (s *Server) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if !validReportName(name) {
		writeError(w, http.StatusNotFound, core.ErrReportNotFound.Error())
		return
	}

	full := filepath.Join(s.cfg.Storage.Dir, "reports", name)
	if _, err := os.Stat(full); err != nil {
		writeError(w, http.StatusNotFound, core.ErrReportNotFound.Error())
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeFile(w, r, full)
}
