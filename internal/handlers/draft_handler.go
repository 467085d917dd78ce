package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"jobcard-backend/internal/jobcard"
	"jobcard-backend/internal/services"

	"github.com/gorilla/mux"
)

// DraftHandler serves the job card form: a draft is opened, edited field by
// field with the preview recomputed on each change, then submitted.
type DraftHandler struct {
	Service *services.DraftService
}

func NewDraftHandler(s *services.DraftService) *DraftHandler {
	return &DraftHandler{Service: s}
}

func (h *DraftHandler) Open(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, h.Service.Open())
}

// OpenEdit handles POST /api/job-card-drafts/edit/{id}
func (h *DraftHandler) OpenEdit(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.OpenEdit(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Get(mux.Vars(r)["draftId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DraftHandler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Discard(mux.Vars(r)["draftId"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DraftHandler) AddPart(w http.ResponseWriter, r *http.Request) {
	row, d, err := h.Service.AddPart(mux.Vars(r)["draftId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"row": row, "draft": d})
}

func (h *DraftHandler) RemovePart(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	row, err := strconv.Atoi(vars["row"])
	if err != nil {
		badRequest(w, "row must be a number")
		return
	}
	d, err := h.Service.RemovePart(vars["draftId"], row)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// UpdateFields handles PATCH /api/job-card-drafts/{draftId}/fields. The
// body is one {"path","value"} object or an array of them.
func (h *DraftHandler) UpdateFields(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	var updates []services.FieldUpdate
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '{' {
		var one services.FieldUpdate
		err = json.Unmarshal(body, &one)
		updates = append(updates, one)
	} else {
		err = json.Unmarshal(body, &updates)
	}
	if err != nil || len(updates) == 0 {
		badRequest(w, "Invalid request body")
		return
	}
	d, err := h.Service.UpdateFields(mux.Vars(r)["draftId"], updates)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Preview returns JSON, or the rendered HTML when asked for with
// ?format=html or an Accept header preferring text/html.
func (h *DraftHandler) Preview(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Preview(mux.Vars(r)["draftId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "html" || strings.HasPrefix(r.Header.Get("Accept"), "text/html") {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := jobcard.RenderPreviewHTML(w, p); err != nil {
			writeError(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *DraftHandler) Submit(w http.ResponseWriter, r *http.Request) {
	card, err := h.Service.Submit(r.Context(), mux.Vars(r)["draftId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jobcard.View(card))
}
