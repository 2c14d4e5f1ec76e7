package controllers

import (
	"context"
	"net/http"

	"github.com/orangegegege/equipment-manager/api/responses"
	"github.com/orangegegege/equipment-manager/pkg/config"
	pkgerrors "github.com/orangegegege/equipment-manager/pkg/errors"
	"github.com/orangegegege/equipment-manager/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessCheck is one named dependency probed by the readiness endpoint.
type ReadinessCheck struct {
	Name   string
	Pinger pinger
}

// NewReadinessCheck pairs a dependency with the name it reports under.
func NewReadinessCheck(name string, p pinger) ReadinessCheck {
	return ReadinessCheck{Name: name, Pinger: p}
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Equipment-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every wired dependency and reports per-check status.
// Any failure flips the endpoint to a dependency error so orchestrators
// stop routing traffic here.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks ...ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Equipment-Env", cfg.App.Env)

		statuses := make(map[string]string, len(checks))
		failed := false
		for _, check := range checks {
			if check.Pinger == nil {
				continue
			}
			if err := check.Pinger.Ping(r.Context()); err != nil {
				statuses[check.Name] = err.Error()
				failed = true
				if logg != nil {
					logg.Error(logg.WithField(r.Context(), "check", check.Name), "readiness check failed", err)
				}
				continue
			}
			statuses[check.Name] = "ok"
		}

		if failed {
			responses.WriteError(r.Context(), nil, w,
				pkgerrors.New(pkgerrors.CodeDependency, "service not ready").WithDetails(statuses))
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": statuses})
	}
}
