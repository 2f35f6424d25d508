package web

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"noticeboard/internal/application/orchestrators"
	"noticeboard/internal/application/projections"
	"noticeboard/internal/domain/recipient"
)

// GET /emails
func (s *server) handleListRecipients(w http.ResponseWriter, r *http.Request) {
	views, err := projections.QueryListRecipients(r.Context(), projections.RecipientsDeps{RecipientStore: s.Recipients})
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// POST /emails {"email": "..."}
func (s *server) handleAddRecipient(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := strictDecode(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rec, err := orchestrators.ExecuteAddRecipient(r.Context(), orchestrators.AddRecipientInput{Email: body.Email},
		orchestrators.AddRecipientDeps{RecipientStore: s.Recipients, GenerateID: s.GenerateID, Now: s.Now})
	switch {
	case errors.Is(err, recipient.ErrDuplicate):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, recipient.ErrEmptyEmail), errors.Is(err, recipient.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": rec.ID, "email": rec.Email})
}

// DELETE /emails/{id}
func (s *server) handleRemoveRecipient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := orchestrators.ExecuteRemoveRecipient(r.Context(), id, orchestrators.RemoveRecipientDeps{RecipientStore: s.Recipients})
	switch {
	case errors.Is(err, recipient.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
}

// GET /emails/check/{email}
func (s *server) handleCheckRecipient(w http.ResponseWriter, r *http.Request) {
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid email")
		return
	}
	exists, err := projections.QueryRecipientExists(r.Context(), email, projections.RecipientsDeps{RecipientStore: s.Recipients})
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}
