package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"blogger-auth/internal/observability/middleware"
	"blogger-auth/internal/service"
)

type Services struct {
	Auth         service.AuthService
	Devices      service.DeviceService
	Recovery     service.RecoveryService
	Registration service.RegistrationService
	Guard        service.RateGuard
}

type Options struct {
	CORSOrigins string // comma-separated, empty means "*"

	// Wipe drops all application data; mounted only when EnableTestingAPI
	// is set (e2e suites reset state between runs this way).
	EnableTestingAPI bool
	Wipe             func(ctx context.Context) error
}

func NewRouter(svc Services, opts Options) http.Handler {
	h := &handlers{svc: svc, wipe: opts.Wipe}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	// Coarse per-IP ceiling across the whole surface; the visit guard below
	// enforces the fine-grained per-endpoint window.
	r.Use(httprate.LimitByIP(100, 1*time.Minute))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   splitOrigins(opts.CORSOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(middleware.WithRequestAndTrace)
	r.Use(middleware.WithMetrics)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		// Anonymous credential-bearing endpoints go through the visit guard;
		// refresh/logout/me are already gated by possession of a token.
		r.Post("/login", h.guarded(h.login))
		r.Post("/registration", h.guarded(h.register))
		r.Post("/registration-confirmation", h.guarded(h.confirmRegistration))
		r.Post("/registration-email-resending", h.guarded(h.resendConfirmation))
		r.Post("/password-recovery", h.guarded(h.passwordRecovery))
		r.Post("/new-password", h.guarded(h.newPassword))

		r.Post("/refresh-token", h.refresh)
		r.Post("/logout", h.logout)
		r.Get("/me", h.me)
	})

	r.Route("/security", func(r chi.Router) {
		r.Get("/devices", h.listDevices)
		r.Delete("/devices", h.revokeOtherDevices)
		r.Delete("/devices/{deviceId}", h.revokeDevice)
	})

	if opts.EnableTestingAPI && opts.Wipe != nil {
		r.Delete("/testing/all-data", h.wipeAllData)
	}

	return r
}

func splitOrigins(raw string) []string {
	out := []string{}
	for _, o := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(o); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
