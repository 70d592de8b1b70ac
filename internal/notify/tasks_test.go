package notify_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/chezvous/backend-booking/internal/common"
	"github.com/chezvous/backend-booking/internal/notify"
)

func TestEmailWorkerDelivers(t *testing.T) {
	t.Parallel()

	inbox := &common.InMemoryEmail{}
	w := notify.EmailWorker{Mail: inbox, Logger: zerolog.Nop()}

	payload, err := json.Marshal(map[string]string{
		"to":      "ada@example.com",
		"subject": "Payment Successful - Booking Confirmed",
		"html":    "<p>hi</p>",
	})
	require.NoError(t, err)

	err = w.HandleEmailSend(context.Background(), asynq.NewTask(notify.TypeEmailSend, payload))
	require.NoError(t, err)
	require.Len(t, inbox.Outbox, 1)
	require.Equal(t, "ada@example.com", inbox.Outbox[0].To)
}

func TestEmailWorkerSkipsMalformedPayload(t *testing.T) {
	t.Parallel()

	w := notify.EmailWorker{Mail: &common.InMemoryEmail{}, Logger: zerolog.Nop()}
	err := w.HandleEmailSend(context.Background(), asynq.NewTask(notify.TypeEmailSend, []byte("{broken")))
	require.Error(t, err)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestEnqueuerPersistsBothEmails(t *testing.T) {
	mr := miniredis.RunT(t)
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	e := notify.Enqueuer{
		Client: client,
		Mailer: notify.Mailer{OwnerEmail: "owner@example.com"},
	}
	require.NoError(t, e.PaymentConfirmed(context.Background(), testBooking))

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = inspector.Close() })
	tasks, err := inspector.ListPendingTasks("default")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Equal(t, notify.TypeEmailSend, tasks[0].Type)
}
