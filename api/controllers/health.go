package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/platedrop/ordercore/api/responses"
	"github.com/platedrop/ordercore/pkg/config"
	"github.com/platedrop/ordercore/pkg/logger"
)

// Pinger is anything whose connectivity the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-OrderCore-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, cartDB Pinger, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-OrderCore-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]string{}
		ready := true
		for name, p := range map[string]Pinger{"cart_db": cartDB, "redis": cache} {
			if p == nil {
				checks[name] = "disabled"
				continue
			}
			if err := p.Ping(ctx); err != nil {
				checks[name] = "down"
				ready = false
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "check", name), "readiness check failed: "+err.Error())
				}
				continue
			}
			checks[name] = "up"
		}

		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "degraded"
		}
		responses.WriteSuccessStatus(w, status, map[string]any{"status": state, "checks": checks})
	}
}
