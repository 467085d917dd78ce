package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobcard-backend/internal/auth"
	"jobcard-backend/internal/cache"
	"jobcard-backend/internal/config"
	"jobcard-backend/internal/database"
	"jobcard-backend/internal/db"
	"jobcard-backend/internal/events"
	"jobcard-backend/internal/handlers"
	"jobcard-backend/internal/health"
	h "jobcard-backend/internal/http"
	"jobcard-backend/internal/jobcard"
	"jobcard-backend/internal/middleware"
	"jobcard-backend/internal/models"
	"jobcard-backend/internal/repositories"
	"jobcard-backend/internal/services"
	"jobcard-backend/internal/sms"
	"jobcard-backend/internal/store"
	"jobcard-backend/internal/whatsapp"
)

// storage is the opened persistence backend.
type storage struct {
	name    string
	slot    store.Slot
	backups services.BackupLog
	ping    health.PingFunc
	close   func()
}

// openStorage connects the configured slot backend. Postgres runs the
// migrations first; sqlite creates its schema on open.
func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Println("[Main] Running database migrations...")
		if err := database.NewMigrator(pool, cfg.Storage.MigrationsDir).RunMigrations(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return &storage{
			name:    "postgres",
			slot:    repositories.NewSlotRepository(pool),
			backups: repositories.NewBackupRepository(pool),
			ping:    pool.Ping,
			close:   pool.Close,
		}, nil
	case "sqlite", "":
		sqlDB, err := repositories.OpenSQLite(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &storage{
			name:    "sqlite",
			slot:    repositories.NewSQLiteSlotRepository(sqlDB),
			backups: repositories.NewSQLiteBackupRepository(sqlDB),
			ping:    sqlDB.PingContext,
			close:   func() { sqlDB.Close() },
		}, nil
	case "memory":
		log.Println("[Main] WARNING: memory storage, nothing survives a restart")
		return &storage{name: "memory", slot: store.NewMemorySlot(), close: func() {}}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("[Main] Storage unavailable: %v", err)
	}
	defer st.close()
	log.Printf("[Main] Using %s storage", st.name)

	jobStore := store.New[models.JobCard](st.slot, cfg.Storage.JobCardsKey)
	managedStore := store.New[models.ManagedJobCard](st.slot, cfg.Storage.ManagedKey)
	userStore := store.New[models.User](st.slot, cfg.Storage.UsersKey)
	for _, load := range []func(context.Context) error{jobStore.Load, managedStore.Load, userStore.Load} {
		if err := load(ctx); err != nil {
			log.Fatalf("[Main] %v", err)
		}
	}

	// Redis is optional; without it the dashboard is computed on every request
	var redisPing health.PingFunc
	if cfg.Redis.Enabled {
		if err := cache.Init(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password); err != nil {
			log.Printf("[Main] Redis unavailable, running without cache: %v", err)
		} else {
			log.Printf("[Main] Redis connected at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
			redisPing = func(ctx context.Context) error { return cache.GetClient().Ping(ctx).Err() }
		}
	}
	defer cache.Close()

	header := jobcard.Header{
		CompanyName:    cfg.Company.Name,
		CompanyAddress: cfg.Company.Address,
		Email:          cfg.Company.Email,
		Mobile:         cfg.Company.Mobile,
		FormatNo:       cfg.Company.FormatNo,
		RevNo:          cfg.Company.RevNo,
		RevDate:        cfg.Company.RevDate,
	}

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.ExpirationHours)*time.Hour)
	userService := services.NewUserService(userStore, jwtManager)
	if cfg.Auth.Enabled {
		if err := userService.EnsureAdmin(ctx, cfg.Auth.AdminName, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			log.Fatalf("[Main] Failed to create admin account: %v", err)
		}
	} else {
		log.Println("[Main] Authentication disabled, requests act as the X-Operator header")
	}

	jobCardService := services.NewJobCardService(jobStore, header)
	draftService := services.NewDraftService(jobCardService, header, cfg.DraftIdle())
	managedService := services.NewManagedJobCardService(managedStore, cfg.Company.ManagedFormatNo)
	dashboardService := services.NewDashboardService(jobStore, time.Duration(cfg.Redis.TTL)*time.Second)
	reportService := services.NewReportService(header)

	provider, err := whatsapp.NewProvider(whatsapp.Config{
		Provider:      cfg.WhatsApp.Provider,
		APIKey:        cfg.WhatsApp.APIKey,
		PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		BaseURL:       cfg.WhatsApp.BaseURL,
		TemplateName:  cfg.WhatsApp.TemplateName,
	})
	if err != nil {
		log.Printf("[Main] WhatsApp sending disabled: %v", err)
	}
	shareService := services.NewShareService(jobCardService, provider)
	if sender, err := sms.NewFast2SMSService(sms.Config{
		APIKey:   cfg.SMS.APIKey,
		Route:    cfg.SMS.Route,
		SenderID: cfg.SMS.SenderID,
		BaseURL:  cfg.SMS.BaseURL,
	}); err == nil {
		shareService.SMS = sender
	} else {
		log.Printf("[Main] SMS sending disabled: %v", err)
	}

	var putter services.ObjectPutter
	if client, err := config.NewR2Client(ctx, cfg.Backup); err == nil {
		putter = client
	} else {
		log.Printf("[Main] Backups disabled: %v", err)
	}
	backupService := services.NewBackupService(jobCardService, putter, st.backups, cfg.Backup.Bucket, cfg.Backup.Prefix)

	hub := events.NewHub()
	go hub.Run(ctx)
	jobStore.OnChange(hub.Publish)
	jobStore.OnChange(dashboardService.InvalidateOnChange)
	managedStore.OnChange(hub.Publish)

	draftService.StartJanitor(ctx, time.Minute)

	router := h.NewRouter(h.Handlers{
		Auth:      handlers.NewAuthHandler(userService),
		JobCards:  handlers.NewJobCardHandler(jobCardService, reportService, shareService, backupService),
		Drafts:    handlers.NewDraftHandler(draftService),
		Managed:   handlers.NewManagedJobCardHandler(managedService, reportService),
		Dashboard: handlers.NewDashboardHandler(dashboardService),
		Health:    handlers.NewHealthHandler(health.NewHealthChecker(st.name, st.ping, redisPing)),
		Hub:       hub,
	}, middleware.NewAuthMiddleware(jwtManager, userStore, cfg.Auth.Enabled))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           middleware.NewCORS(cfg)(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[Main] Server running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[Main] Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[Main] Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Main] Graceful shutdown failed: %v", err)
	}
}
