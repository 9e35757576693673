package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/stayora/stayora-auth/internal/auth"
)

// Handler processes background tasks on the worker.
type Handler struct {
	logger *slog.Logger
	mailer auth.Mailer
}

func NewHandler(logger *slog.Logger, mailer auth.Mailer) *Handler {
	return &Handler{
		logger: logger,
		mailer: mailer,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeEmailDelivery, h.HandleEmailDelivery)
}

func (h *Handler) HandleEmailDelivery(ctx context.Context, t *asynq.Task) error {
	var payload EmailDeliveryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	h.logger.Info("delivering email",
		"to", payload.To,
		"template", payload.Template,
	)

	if err := h.mailer.Send(ctx, payload.To, payload.Subject, payload.Template, payload.Data); err != nil {
		h.logger.Error("email delivery failed", "to", payload.To, "error", err)
		return err
	}

	h.logger.Info("email delivered", "to", payload.To, "template", payload.Template)
	return nil
}
