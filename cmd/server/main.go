package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"noticeboard/internal/adapters/blob"
	emailPkg "noticeboard/internal/adapters/email"
	web "noticeboard/internal/adapters/http"
	"noticeboard/internal/adapters/http/middleware"
	"noticeboard/internal/adapters/http/perf"
	"noticeboard/internal/adapters/storage"
	announcementStore "noticeboard/internal/adapters/storage/announcement"
	dispatchLogStore "noticeboard/internal/adapters/storage/dispatchlog"
	recipientStore "noticeboard/internal/adapters/storage/recipient"
	"noticeboard/internal/application/orchestrators"
	"noticeboard/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server_exit", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(cfg.NewLogger(os.Stderr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(ctx, cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()
	if err := storage.MigrateDB(db); err != nil {
		return err
	}

	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQuery)

	blobs, err := blob.NewLocalFS(cfg.UploadDir)
	if err != nil {
		return err
	}

	announcements := announcementStore.NewSQLiteStore(timedDB)
	recipients := recipientStore.NewSQLiteStore(timedDB)
	dispatches := dispatchLogStore.NewSQLiteStore(timedDB)

	handler := web.NewRouter(web.Deps{
		Announcements: announcements,
		Recipients:    recipients,
		DispatchLog:   dispatches,
		Blobs:         blobs,
		Notify: orchestrators.NotifyDeps{
			Recipients:      recipients,
			Sender:          newSender(cfg),
			DispatchLog:     dispatches,
			Collector:       collector,
			From:            cfg.MailFrom,
			InternalAddress: cfg.MailInternalTo,
			ReplyTo:         cfg.MailReplyTo,
			Timeout:         cfg.DispatchTimeout,
			GenerateID:      newID,
			Now:             time.Now,
		},
		Collector:      collector,
		Limiter:        middleware.NewRateLimiter(ctx, cfg.MutationsPerMin, time.Minute),
		CORSOrigins:    cfg.CORSOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
		SlowRequest:    cfg.SlowRequest,
		GenerateID:     newID,
		Now:            time.Now,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Mutations wait for the dispatch to settle before responding.
		WriteTimeout: cfg.DispatchTimeout + 30*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_start", "version", version, "addr", cfg.Addr, "env", cfg.Env,
			"schema", storage.LatestSchemaVersion(), "mail_provider", cfg.MailProvider(), "upload_dir", blobs.Root())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.DispatchTimeout+5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newSender picks the mail transport: Resend when a key is set, then SMTP, then noop.
func newSender(cfg config.Config) emailPkg.Sender {
	switch cfg.MailProvider() {
	case "resend":
		return emailPkg.NewResendSender(cfg.ResendKey, cfg.MailFrom)
	case "smtp":
		return emailPkg.NewSMTPSender(emailPkg.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.MailFrom,
		})
	default:
		if cfg.IsProduction() {
			slog.Warn("email_disabled", "reason", "no mail provider configured in production")
		}
		return emailPkg.NewNoopSender()
	}
}

// newID returns a time-ordered UUIDv7 so ids sort by creation.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
