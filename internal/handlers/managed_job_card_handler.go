package handlers

import (
	"encoding/json"
	"net/http"

	"jobcard-backend/internal/middleware"
	"jobcard-backend/internal/models"
	"jobcard-backend/internal/services"

	"github.com/gorilla/mux"
)

type ManagedJobCardHandler struct {
	Service *services.ManagedJobCardService
	Reports *services.ReportService
}

func NewManagedJobCardHandler(s *services.ManagedJobCardService, reports *services.ReportService) *ManagedJobCardHandler {
	return &ManagedJobCardHandler{Service: s, Reports: reports}
}

// List handles GET /api/managed-job-cards?search=&status=&sort=priority
func (h *ManagedJobCardHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cards, err := h.Service.List(r.Context(), q.Get("search"), q.Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if q.Get("sort") == "priority" {
		services.SortByPriority(cards)
	}
	writeJSON(w, http.StatusOK, cards)
}

func (h *ManagedJobCardHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	n, err := h.Service.NextNumber(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"jcNumber": n})
}

func (h *ManagedJobCardHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ManagedJobCardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.ManagedJobCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	c, err := h.Service.Create(r.Context(), req, middleware.Operator(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *ManagedJobCardHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.ManagedJobCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	c, err := h.Service.Update(r.Context(), mux.Vars(r)["id"], req, middleware.Operator(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ManagedJobCardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), mux.Vars(r)["id"], confirmed(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ManagedJobCardHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req models.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	c, err := h.Service.SetStatus(r.Context(), mux.Vars(r)["id"], req.Status, middleware.Operator(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// UpdateStage handles PATCH /api/managed-job-cards/{id}/stages/{stageId}
func (h *ManagedJobCardHandler) UpdateStage(w http.ResponseWriter, r *http.Request) {
	var req models.StageUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	vars := mux.Vars(r)
	c, err := h.Service.UpdateStage(r.Context(), vars["id"], vars["stageId"], req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ManagedJobCardHandler) Progress(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Progress(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ManagedJobCardHandler) PDF(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := h.Reports.ManagedJobCardPDF(c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	attachment(w, "application/pdf", c.JCNumber+".pdf", data)
}
