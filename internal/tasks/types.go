package tasks

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/stayora/stayora-auth/internal/auth"
)

// Task type names
const (
	TypeEmailDelivery = "email:deliver"
)

// EmailDeliveryPayload carries one templated email to the worker.
type EmailDeliveryPayload struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`
}

func NewEmailDeliveryTask(payload EmailDeliveryPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeEmailDelivery, data, asynq.Queue("critical"), asynq.MaxRetry(5)), nil
}

// QueueMailer satisfies auth.Mailer by enqueueing delivery instead of
// blocking the request on SMTP. An enqueue failure surfaces to the caller
// like any other delivery error.
type QueueMailer struct {
	client *asynq.Client
}

func NewQueueMailer(client *asynq.Client) *QueueMailer {
	return &QueueMailer{client: client}
}

func (m *QueueMailer) Send(ctx context.Context, to, subject, template string, data map[string]any) error {
	task, err := NewEmailDeliveryTask(EmailDeliveryPayload{
		To:       to,
		Subject:  subject,
		Template: template,
		Data:     data,
	})
	if err != nil {
		return err
	}

	_, err = m.client.EnqueueContext(ctx, task)
	return err
}

var _ auth.Mailer = (*QueueMailer)(nil)
