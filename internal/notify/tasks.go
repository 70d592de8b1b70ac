package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/chezvous/backend-booking/internal/common"
	"github.com/chezvous/backend-booking/internal/obs"
)

// TypeEmailSend is the asynq task type for a single outbound email.
const TypeEmailSend = "email:send"

type emailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Enqueuer implements Dispatcher by enqueuing one asynq task per email.
// Once Enqueue returns, the message is persisted in Redis, which is the
// "durably queued" point the webhook ledger commits against.
type Enqueuer struct {
	Client *asynq.Client
	Mailer Mailer
}

// PaymentConfirmed implements Dispatcher.
func (e Enqueuer) PaymentConfirmed(ctx context.Context, b Booking) error {
	return e.enqueue(ctx, e.Mailer.ConfirmationEmails(b))
}

// PaymentInitiated implements Dispatcher.
func (e Enqueuer) PaymentInitiated(ctx context.Context, b Booking, link string) error {
	return e.enqueue(ctx, e.Mailer.InitiationEmails(b, link))
}

func (e Enqueuer) enqueue(ctx context.Context, emails []common.Email) error {
	if e.Client == nil {
		return errors.New("notify: task client not configured")
	}
	var joined error
	for _, em := range emails {
		payload, err := json.Marshal(emailPayload{To: em.To, Subject: em.Subject, HTML: em.HTML})
		if err != nil {
			joined = errors.Join(joined, err)
			continue
		}
		task := asynq.NewTask(TypeEmailSend, payload, asynq.MaxRetry(5), asynq.Timeout(time.Minute))
		if _, err := e.Client.EnqueueContext(ctx, task); err != nil {
			joined = errors.Join(joined, fmt.Errorf("notify: enqueue email to %s: %w", em.To, err))
		}
	}
	return joined
}

// EmailWorker consumes email:send tasks and delivers them through the sender.
type EmailWorker struct {
	Mail   common.EmailSender
	Logger zerolog.Logger
}

// HandleEmailSend is the asynq handler for TypeEmailSend.
func (w EmailWorker) HandleEmailSend(_ context.Context, t *asynq.Task) error {
	var payload emailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		// malformed payloads will never succeed; skip retries
		return fmt.Errorf("notify: decode email task: %w: %w", err, asynq.SkipRetry)
	}
	err := w.Mail.Send(payload.To, payload.Subject, payload.HTML)
	result := "success"
	if err != nil {
		result = "error"
		w.Logger.Error().Err(err).Str("to", payload.To).Str("subject", payload.Subject).Msg("email send failed")
	}
	if obs.NotificationDispatchTotal != nil {
		obs.NotificationDispatchTotal.WithLabelValues(result).Inc()
	}
	return err
}
