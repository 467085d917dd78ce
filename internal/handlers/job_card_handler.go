package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"jobcard-backend/internal/models"
	"jobcard-backend/internal/services"
	"jobcard-backend/internal/timeutil"

	"github.com/gorilla/mux"
)

// maxImportBytes bounds an uploaded export file.
const maxImportBytes = 20 << 20

type JobCardHandler struct {
	Service *services.JobCardService
	Reports *services.ReportService
	Share   *services.ShareService
	Backups *services.BackupService
}

func NewJobCardHandler(s *services.JobCardService, reports *services.ReportService, share *services.ShareService, backup *services.BackupService) *JobCardHandler {
	return &JobCardHandler{Service: s, Reports: reports, Share: share, Backups: backup}
}

// List handles GET /api/job-cards?search=
func (h *JobCardHandler) List(w http.ResponseWriter, r *http.Request) {
	cards, err := h.Service.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (h *JobCardHandler) Get(w http.ResponseWriter, r *http.Request) {
	card, err := h.Service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (h *JobCardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var card models.JobCard
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	created, err := h.Service.Create(r.Context(), card)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *JobCardHandler) Update(w http.ResponseWriter, r *http.Request) {
	var card models.JobCard
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	updated, err := h.Service.Update(r.Context(), mux.Vars(r)["id"], card)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/job-cards/{id}?confirm=true
func (h *JobCardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), mux.Vars(r)["id"], confirmed(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /api/job-cards?confirm=true
func (h *JobCardHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Clear(r.Context(), confirmed(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *JobCardHandler) SetCompletion(w http.ResponseWriter, r *http.Request) {
	var req models.CompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	card, err := h.Service.SetCompletion(r.Context(), mux.Vars(r)["id"], req.IsCompleted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (h *JobCardHandler) PDF(w http.ResponseWriter, r *http.Request) {
	card, err := h.Service.Store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := h.Reports.JobCardPDF(card)
	if err != nil {
		writeError(w, r, err)
		return
	}
	name := "job-card-" + strings.ReplaceAll(card.ChargeNo, "/", "-") + ".pdf"
	if card.ChargeNo == "" {
		name = "job-card-" + card.ID + ".pdf"
	}
	attachment(w, "application/pdf", name, data)
}

func (h *JobCardHandler) ShareLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.Share.Links(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}

// ShareWhatsApp handles POST /api/job-cards/{id}/share/whatsapp
func (h *JobCardHandler) ShareWhatsApp(w http.ResponseWriter, r *http.Request) {
	var req models.ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if err := h.Share.SendWhatsApp(r.Context(), mux.Vars(r)["id"], req.Phone); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

// ShareSMS handles POST /api/job-cards/{id}/share/sms
func (h *JobCardHandler) ShareSMS(w http.ResponseWriter, r *http.Request) {
	var req models.ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if err := h.Share.SendSMS(r.Context(), mux.Vars(r)["id"], req.Phone); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (h *JobCardHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, name, err := h.Service.Export(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	attachment(w, "application/json", name, data)
}

func (h *JobCardHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	cards, err := h.Service.Store.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := h.Reports.JobCardsExcel(cards)
	if err != nil {
		writeError(w, r, err)
		return
	}
	name := "manufacturing-job-cards-" + timeutil.Today() + ".xlsx"
	attachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", name, data)
}

// Import handles POST /api/job-cards/import. The body is either the raw
// export file or a multipart form with the file under "file".
func (h *JobCardHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			badRequest(w, "file is required")
			return
		}
		defer file.Close()
		src = file
	}
	data, err := io.ReadAll(src)
	if err != nil {
		badRequest(w, "could not read upload: "+err.Error())
		return
	}
	n, err := h.Service.Import(r.Context(), data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}

// Backup handles POST /api/job-cards/backup
func (h *JobCardHandler) Backup(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Backups.Run(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *JobCardHandler) BackupHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	list, err := h.Backups.History(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
