package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"noticeboard/internal/adapters/blob"
	"noticeboard/internal/application/orchestrators"
	"noticeboard/internal/application/projections"
	"noticeboard/internal/domain/announcement"
)

// multipartMemory is how much of a multipart form is held in memory before spilling to disk.
const multipartMemory = 4 << 20

// formOverhead allows for the text fields and multipart framing around the image.
const formOverhead = 1 << 20

// requestError is a client error with the status it maps to.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

// announcementForm is the parsed multipart body of a create or update.
type announcementForm struct {
	title       string
	content     string
	removeImage bool
	image       *orchestrators.ImageUpload
}

// GET /announcements?view=admin|employee
func (s *server) handleListAnnouncements(w http.ResponseWriter, r *http.Request) {
	views, err := projections.QueryListAnnouncements(r.Context(), projections.ListAnnouncementsQuery{
		View: r.URL.Query().Get("view"),
	}, projections.ListAnnouncementsDeps{AnnouncementStore: s.Announcements})
	if errors.Is(err, projections.ErrInvalidView) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// GET /announcements/{id}
func (s *server) handleGetAnnouncement(w http.ResponseWriter, r *http.Request) {
	view, err := projections.QueryGetAnnouncement(r.Context(), chi.URLParam(r, "id"),
		projections.GetAnnouncementDeps{AnnouncementStore: s.Announcements})
	if err != nil {
		s.announcementError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// POST /announcements (multipart: title, content, image?)
func (s *server) handleCreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	form, err := s.parseAnnouncementForm(w, r)
	if err != nil {
		s.announcementError(w, r, err)
		return
	}

	res, err := orchestrators.ExecuteCreateAnnouncement(r.Context(), orchestrators.CreateAnnouncementInput{
		Title: form.title,
		Body:  form.content,
		Image: form.image,
	}, orchestrators.CreateAnnouncementDeps{
		AnnouncementStore: s.Announcements,
		Blobs:             s.Blobs,
		Notify:            s.Notify,
		GenerateID:        s.GenerateID,
		Now:               s.Now,
	})
	if err != nil {
		s.announcementError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":      res.Announcement.ID,
		"message": res.Message(),
	})
}

// PUT /announcements/{id} (multipart: title, content, removeImage, image?)
func (s *server) handleUpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	form, err := s.parseAnnouncementForm(w, r)
	if err != nil {
		s.announcementError(w, r, err)
		return
	}

	res, err := orchestrators.ExecuteUpdateAnnouncement(r.Context(), orchestrators.UpdateAnnouncementInput{
		ID:          chi.URLParam(r, "id"),
		Title:       form.title,
		Body:        form.content,
		Image:       form.image,
		RemoveImage: form.removeImage,
	}, orchestrators.UpdateAnnouncementDeps{
		AnnouncementStore: s.Announcements,
		Blobs:             s.Blobs,
		Notify:            s.Notify,
		Now:               s.Now,
	})
	if err != nil {
		s.announcementError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":      res.Announcement.ID,
		"message": res.Message(),
	})
}

// DELETE /announcements/{id}
func (s *server) handleDeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	res, err := orchestrators.ExecuteDeleteAnnouncement(r.Context(), chi.URLParam(r, "id"), orchestrators.DeleteAnnouncementDeps{
		AnnouncementStore: s.Announcements,
		Blobs:             s.Blobs,
		Notify:            s.Notify,
	})
	if err != nil {
		s.announcementError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":      res.Snapshot.ID,
		"message": res.Message(),
	})
}

// announcementError maps workflow errors to responses. Storage details are only logged.
func (s *server) announcementError(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		writeError(w, reqErr.status, reqErr.msg)
	case errors.Is(err, announcement.ErrNotFound):
		writeError(w, http.StatusNotFound, "announcement not found")
	case errors.Is(err, announcement.ErrEmptyTitle),
		errors.Is(err, announcement.ErrTitleTooLong),
		errors.Is(err, announcement.ErrEmptyID):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		internalError(w, r, err)
	}
}

// parseAnnouncementForm reads a multipart (or urlencoded) announcement body.
// An uploaded image is validated and renamed with the extension of its real format.
func (s *server) parseAnnouncementForm(w http.ResponseWriter, r *http.Request) (announcementForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes+formOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			return announcementForm{}, &requestError{status: http.StatusRequestEntityTooLarge, msg: blob.ErrImageTooLarge.Error()}
		case errors.Is(err, http.ErrNotMultipart):
			if err := r.ParseForm(); err != nil {
				return announcementForm{}, badRequest("invalid form body")
			}
		default:
			return announcementForm{}, badRequest("invalid multipart body")
		}
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	form := announcementForm{
		title:       r.FormValue("title"),
		content:     r.FormValue("content"),
		removeImage: parseFlag(r.FormValue("removeImage")),
	}
	// Removal wins over an upload, so an attached file is never looked at.
	if form.removeImage {
		return form, nil
	}

	image, err := s.readImage(r)
	if err != nil {
		return announcementForm{}, err
	}
	form.image = image
	return form, nil
}

// readImage returns the validated "image" part, or nil when none was sent.
func (s *server) readImage(r *http.Request) (*orchestrators.ImageUpload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, badRequest("invalid image part")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.MaxUploadBytes+1))
	if err != nil {
		return nil, badRequest("could not read image")
	}
	// Browsers send an empty part when the file input is left blank.
	if len(data) == 0 {
		return nil, nil
	}

	info, err := blob.InspectImage(data, s.MaxUploadBytes)
	switch {
	case errors.Is(err, blob.ErrImageTooLarge):
		return nil, &requestError{status: http.StatusRequestEntityTooLarge, msg: err.Error()}
	case err != nil:
		return nil, badRequest("%s", blob.ErrUnsupportedImage.Error())
	}

	base := filepath.Base(header.Filename)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + info.Ext()
	return &orchestrators.ImageUpload{Name: name, Data: data}, nil
}

// parseFlag accepts the checkbox and string forms clients send for booleans.
func parseFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "on", "yes":
		return true
	}
	return false
}
