package web

import (
	"bytes"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"noticeboard/internal/adapters/blob"
	"noticeboard/internal/adapters/http/perf"
	"noticeboard/internal/application/projections"
)

// GET /uploads/{ref}
// References are never reused, so responses may be cached indefinitely.
func (s *server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	if !blob.ValidRef(ref) {
		http.NotFound(w, r)
		return
	}
	data, err := s.Blobs.Get(r.Context(), ref)
	if errors.Is(err, blob.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}

	ct := mime.TypeByExtension(filepath.Ext(ref))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeContent(w, r, ref, time.Time{}, bytes.NewReader(data))
}

// GET /api/admin/dispatches?limit=N&announcement_id=ID
func (s *server) handleListDispatches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	views, err := projections.QueryListDispatches(r.Context(), projections.ListDispatchesQuery{
		AnnouncementID: q.Get("announcement_id"),
		Limit:          limit,
	}, projections.ListDispatchesDeps{DispatchLog: s.DispatchLog})
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// GET /api/admin/perf?minutes=N&top=N
func (s *server) handlePerf(w http.ResponseWriter, r *http.Request) {
	if s.Collector == nil {
		writeJSON(w, http.StatusOK, perf.Snapshot{})
		return
	}
	minutes := queryInt(r, "minutes", 60)
	top := queryInt(r, "top", 10)
	since := s.Now().Add(-time.Duration(minutes) * time.Minute)
	writeJSON(w, http.StatusOK, s.Collector.Snapshot(since, top))
}

// queryInt reads a positive integer parameter, falling back on anything else.
func queryInt(r *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
