package main // Entry point package

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/iliyamo/directory-admin/internal/apiclient"
	"github.com/iliyamo/directory-admin/internal/config"
	"github.com/iliyamo/directory-admin/internal/handler"
	"github.com/iliyamo/directory-admin/internal/middleware"
	"github.com/iliyamo/directory-admin/internal/queue"
	"github.com/iliyamo/directory-admin/internal/router"
	"github.com/iliyamo/directory-admin/internal/service"
	"github.com/iliyamo/directory-admin/internal/session"
	"github.com/iliyamo/directory-admin/internal/settings"
	"github.com/iliyamo/directory-admin/internal/telemetry"
)

const serviceName = "directory-admin"

func main() {
	cfg := config.Load() // Load environment config
	shutdownTelemetry := telemetry.Setup(serviceName)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rl := config.LoadRateLimitConfig()
	b := openBackends(ctx, cfg, rl.Enabled)
	defer b.Close()

	api := apiclient.New(cfg.APIBaseURL, cfg.APITimeout)
	sessions := session.NewManager(api, b.sessions, cfg.SessionSecret, cfg.SessionTTL)

	con := handler.NewConsole(api, sessions)
	con.Settings = settings.NewRegistry(b.prefs)
	con.LoginPath = cfg.LoginPath
	con.CookieSecure = cfg.CookieSecure
	con.Compensate = cfg.UploadCompensate
	con.MapAPIKey = cfg.MapAPIKey
	con.Audit = &service.Recorder{Pub: service.Nop{}}

	if cfg.AuditEnabled {
		con.Audit.Pub = service.NewAMQPPublisher(cfg.RabbitURL)
		go func() {
			if err := queue.StartAuditConsumer(ctx, cfg.RabbitURL, "logs"); err != nil && ctx.Err() == nil {
				log.Printf("audit-consumer: stopped: %v", err)
			}
		}()
	}

	e := router.New(con, router.Options{
		AdminRoles: cfg.AdminRoles,
		LoginLimit: middleware.NewTokenBucket(rl, b.redis),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(e, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("listening on %s (env=%s, sessions=%s, settings=%s)", server.Addr, cfg.Env, cfg.SessionBackend, cfg.SettingsBackend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("server error: %v", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
