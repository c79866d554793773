package bootstrap

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/glowdesk/glowdesk/core"
	"github.com/glowdesk/glowdesk/pkg/logger"
	"github.com/glowdesk/glowdesk/pkg/pg"
)

const maxBodyBytes = 1 << 20

// envelope is the outer shape of every provider delivery.
type envelope struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Handler returns the webhook endpoint. Signature verification happens
// against the raw body before anything is parsed; deliveries that fail
// it are rejected without touching storage.
func Handler(cfg Config, svc *Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			core.JSONError(w, core.ErrBadRequest)
			return
		}

		if err := verifySignature(cfg.WebhookSecret, body, r.Header, cfg.MaxAge); err != nil {
			log.WarnContext(ctx, "webhook signature rejected", logger.Error(err))
			core.JSONError(w, core.ErrUnauthorized)
			return
		}

		var evt envelope
		if err := json.Unmarshal(body, &evt); err != nil {
			core.JSONError(w, core.ErrBadRequest)
			return
		}

		if evt.Type != EventUserCreated {
			// Acknowledge so the provider stops retrying event types we
			// never act on.
			core.JSON(w, http.StatusOK, map[string]string{"status": "ignored"})
			return
		}

		var payload UserCreated
		if err := json.Unmarshal(evt.Data, &payload); err != nil {
			core.JSONError(w, core.ErrBadRequest)
			return
		}

		res, err := svc.Provision(ctx, payload)
		switch {
		case err == nil:
			status := http.StatusOK
			if res.Created {
				status = http.StatusCreated
			}
			core.JSON(w, status, map[string]string{"tenant_id": res.TenantID.String()})
		case errors.Is(err, ErrInvalidEvent):
			core.JSONError(w, core.ErrBadRequest)
		case pg.IsUniqueViolation(err):
			// Concurrent duplicate delivery lost the race; the tenant
			// exists, so acknowledge.
			log.InfoContext(ctx, "concurrent provisioning delivery ignored",
				slog.String("event_id", evt.ID))
			core.JSON(w, http.StatusOK, map[string]string{"status": "exists"})
		default:
			log.ErrorContext(ctx, "tenant provisioning failed",
				logger.Error(err), slog.String("event_id", evt.ID))
			core.JSONError(w, core.ErrInternalServerError)
		}
	}
}
