package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"noticeboard/internal/adapters/blob"
	"noticeboard/internal/adapters/http/middleware"
	"noticeboard/internal/adapters/http/perf"
	announcementStore "noticeboard/internal/adapters/storage/announcement"
	dispatchLogStore "noticeboard/internal/adapters/storage/dispatchlog"
	recipientStore "noticeboard/internal/adapters/storage/recipient"
	"noticeboard/internal/application/orchestrators"
)

// DefaultMaxUploadBytes caps an image upload when Deps.MaxUploadBytes is unset.
const DefaultMaxUploadBytes = 10 << 20

// Deps holds everything the HTTP layer needs.
type Deps struct {
	Announcements  announcementStore.Store
	Recipients     recipientStore.Store
	DispatchLog    dispatchLogStore.Store
	Blobs          blob.Store
	Notify         orchestrators.NotifyDeps
	Collector      *perf.Collector         // optional
	Limiter        *middleware.RateLimiter // optional; applied to mutating routes only
	CORSOrigins    []string
	MaxUploadBytes int64
	SlowRequest    time.Duration
	GenerateID     func() string
	Now            func() time.Time
}

type server struct {
	Deps
}

// NewRouter wires HTTP handlers for the noticeboard API.
func NewRouter(d Deps) http.Handler {
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s := &server{Deps: d}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Timing(d.Collector, d.SlowRequest))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.SecurityHeaders)

	r.Get("/announcements", s.handleListAnnouncements)
	r.Get("/announcements/{id}", s.handleGetAnnouncement)
	r.Get("/emails", s.handleListRecipients)
	r.Get("/emails/check/{email}", s.handleCheckRecipient)
	r.Get("/uploads/{ref}", s.handleUpload)
	r.Get("/api/admin/dispatches", s.handleListDispatches)
	r.Get("/api/admin/perf", s.handlePerf)

	// Every announcement mutation fans out into a mail send.
	r.Group(func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(middleware.RateLimit(d.Limiter))
		}
		r.Post("/announcements", s.handleCreateAnnouncement)
		r.Put("/announcements/{id}", s.handleUpdateAnnouncement)
		r.Delete("/announcements/{id}", s.handleDeleteAnnouncement)
		r.Post("/emails", s.handleAddRecipient)
		r.Delete("/emails/{id}", s.handleRemoveRecipient)
	})

	return r
}

// internalError logs err and returns a generic 500. Details never reach the client.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal_error", "error", err.Error(), "path", r.URL.Path, "request_id", chimw.GetReqID(r.Context()))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response_encode_failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
