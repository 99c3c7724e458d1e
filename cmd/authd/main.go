package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"blogger-auth/internal/config"
	"blogger-auth/internal/mailer"
	"blogger-auth/internal/observability/logging"
	"blogger-auth/internal/observability/metrics"
	impl "blogger-auth/internal/service/impl"
	"blogger-auth/internal/store"
	httpx "blogger-auth/internal/transport/http"
	"blogger-auth/pkg/db"
)

func main() {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: "authd",
		Environment: env,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	slog.SetDefault(logger)

	logger.Info("starting service")

	cfg := config.Load()

	metrics.MustRegister("authd")

	gdb, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}

	st := store.New(gdb)

	pw := impl.NewPasswordServiceArgon2id()
	ts := impl.NewTokenServiceHS256(impl.TokenConfig{
		AccessTTL:   cfg.AccessTTL,
		RefreshTTL:  cfg.RefreshTTL,
		RecoveryTTL: cfg.RecoveryTTL,
		SigningKey:  []byte(cfg.SigningKey),
	})

	mail := impl.NewEmailServiceImpl(
		mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUsername, cfg.SMTPPassword),
		cfg.PublicBaseURL,
	)

	handler := httpx.NewRouter(httpx.Services{
		Auth:         impl.NewAuthServiceImpl(st, pw, ts),
		Devices:      impl.NewDeviceServiceImpl(st, ts),
		Recovery:     impl.NewRecoveryServiceImpl(st, ts, pw, mail),
		Registration: impl.NewRegistrationServiceImpl(st, pw, mail),
		Guard:        impl.NewVisitGuardImpl(st),
	}, httpx.Options{
		CORSOrigins:      cfg.CORSOrigins,
		EnableTestingAPI: cfg.EnableTestingAPI,
		Wipe:             st.DeleteAllData,
	})

	if cfg.EnableTestingAPI {
		logger.Warn("testing API is enabled; do not run this configuration in production")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("auth service listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
