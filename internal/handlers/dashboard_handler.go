package handlers

import (
	"net/http"

	"jobcard-backend/internal/jobcard"
	"jobcard-backend/internal/services"
	"jobcard-backend/internal/timeutil"
)

type DashboardHandler struct {
	Service *services.DashboardService
}

func NewDashboardHandler(s *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{Service: s}
}

func year(r *http.Request) (int, error) {
	return queryInt(r, "year", timeutil.Now().Year())
}

// Summary handles GET /api/dashboard/summary?year=
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	y, err := year(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	s, err := h.Service.Summary(r.Context(), y)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *DashboardHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	y, err := year(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	months, err := h.Service.Monthly(r.Context(), y)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"year": y, "months": months})
}

func (h *DashboardHandler) Customers(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", jobcard.DefaultTopCustomers)
	if err != nil || limit < 1 {
		badRequest(w, "limit must be a positive number")
		return
	}
	top, err := h.Service.TopCustomers(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, top)
}

func (h *DashboardHandler) Sections(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Service.Sections(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
