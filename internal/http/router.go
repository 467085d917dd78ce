package http

import (
	"net/http"

	"jobcard-backend/internal/events"
	"jobcard-backend/internal/handlers"
	"jobcard-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	JobCards  *handlers.JobCardHandler
	Drafts    *handlers.DraftHandler
	Managed   *handlers.ManagedJobCardHandler
	Dashboard *handlers.DashboardHandler
	Health    *handlers.HealthHandler
	Hub       *events.Hub
}

func NewRouter(h Handlers, authMiddleware *middleware.AuthMiddleware) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.PanicRecovery)
	r.Use(middleware.MetricsMiddleware)

	// Public API routes - Authentication
	r.HandleFunc("/auth/login", h.Auth.Login).Methods("POST")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Authenticate)
	api.Use(middleware.APILogging)
	api.HandleFunc("/me", h.Auth.Me).Methods("GET")

	// Job cards; fixed paths before /{id}
	jobCards := api.PathPrefix("/job-cards").Subrouter()
	jobCards.HandleFunc("", h.JobCards.List).Methods("GET")
	jobCards.HandleFunc("", h.JobCards.Create).Methods("POST")
	jobCards.HandleFunc("", h.JobCards.Clear).Methods("DELETE")
	jobCards.HandleFunc("/export", h.JobCards.Export).Methods("GET")
	jobCards.HandleFunc("/export/xlsx", h.JobCards.ExportXLSX).Methods("GET")
	jobCards.HandleFunc("/import", h.JobCards.Import).Methods("POST")
	jobCards.HandleFunc("/backup", h.JobCards.Backup).Methods("POST")
	jobCards.HandleFunc("/backups", h.JobCards.BackupHistory).Methods("GET")
	jobCards.HandleFunc("/{id}", h.JobCards.Get).Methods("GET")
	jobCards.HandleFunc("/{id}", h.JobCards.Update).Methods("PUT")
	jobCards.HandleFunc("/{id}", h.JobCards.Delete).Methods("DELETE")
	jobCards.HandleFunc("/{id}/completion", h.JobCards.SetCompletion).Methods("PATCH")
	jobCards.HandleFunc("/{id}/pdf", h.JobCards.PDF).Methods("GET")
	jobCards.HandleFunc("/{id}/share", h.JobCards.ShareLinks).Methods("GET")
	jobCards.HandleFunc("/{id}/share/whatsapp", h.JobCards.ShareWhatsApp).Methods("POST")
	jobCards.HandleFunc("/{id}/share/sms", h.JobCards.ShareSMS).Methods("POST")

	// Job card form drafts
	drafts := api.PathPrefix("/job-card-drafts").Subrouter()
	drafts.HandleFunc("", h.Drafts.Open).Methods("POST")
	drafts.HandleFunc("/edit/{id}", h.Drafts.OpenEdit).Methods("POST")
	drafts.HandleFunc("/{draftId}", h.Drafts.Get).Methods("GET")
	drafts.HandleFunc("/{draftId}", h.Drafts.Discard).Methods("DELETE")
	drafts.HandleFunc("/{draftId}/parts", h.Drafts.AddPart).Methods("POST")
	drafts.HandleFunc("/{draftId}/parts/{row:[0-9]+}", h.Drafts.RemovePart).Methods("DELETE")
	drafts.HandleFunc("/{draftId}/fields", h.Drafts.UpdateFields).Methods("PATCH")
	drafts.HandleFunc("/{draftId}/preview", h.Drafts.Preview).Methods("GET")
	drafts.HandleFunc("/{draftId}/submit", h.Drafts.Submit).Methods("POST")

	// Dashboard
	dashboard := api.PathPrefix("/dashboard").Subrouter()
	dashboard.HandleFunc("/summary", h.Dashboard.Summary).Methods("GET")
	dashboard.HandleFunc("/monthly", h.Dashboard.Monthly).Methods("GET")
	dashboard.HandleFunc("/customers", h.Dashboard.Customers).Methods("GET")
	dashboard.HandleFunc("/sections", h.Dashboard.Sections).Methods("GET")

	// Managed job cards (job card master)
	managed := api.PathPrefix("/managed-job-cards").Subrouter()
	managed.HandleFunc("", h.Managed.List).Methods("GET")
	managed.HandleFunc("", h.Managed.Create).Methods("POST")
	managed.HandleFunc("/next-number", h.Managed.NextNumber).Methods("GET")
	managed.HandleFunc("/{id}", h.Managed.Get).Methods("GET")
	managed.HandleFunc("/{id}", h.Managed.Update).Methods("PUT")
	managed.HandleFunc("/{id}", h.Managed.Delete).Methods("DELETE")
	managed.HandleFunc("/{id}/status", h.Managed.SetStatus).Methods("PATCH")
	managed.HandleFunc("/{id}/stages/{stageId}", h.Managed.UpdateStage).Methods("PATCH")
	managed.HandleFunc("/{id}/progress", h.Managed.Progress).Methods("GET")
	managed.HandleFunc("/{id}/pdf", h.Managed.PDF).Methods("GET")

	// Change notifications
	r.Handle("/ws/job-cards", authMiddleware.Authenticate(http.HandlerFunc(h.Hub.ServeWS))).Methods("GET")

	// Health check endpoints
	r.HandleFunc("/health", h.Health.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", h.Health.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", h.Health.DetailedHealth).Methods("GET")

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	return r
}
