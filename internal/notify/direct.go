package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/chezvous/backend-booking/internal/common"
	"github.com/chezvous/backend-booking/internal/obs"
)

// Direct sends booking notifications synchronously through an EmailSender.
// Used in development and tests; production runs the asynq-backed Enqueuer.
type Direct struct {
	Mail   common.EmailSender
	Mailer Mailer
	Logger zerolog.Logger
}

// PaymentConfirmed implements Dispatcher.
func (d Direct) PaymentConfirmed(_ context.Context, b Booking) error {
	return d.send(d.Mailer.ConfirmationEmails(b))
}

// PaymentInitiated implements Dispatcher.
func (d Direct) PaymentInitiated(_ context.Context, b Booking, link string) error {
	return d.send(d.Mailer.InitiationEmails(b, link))
}

func (d Direct) send(emails []common.Email) error {
	if d.Mail == nil {
		return errors.New("notify: email sender not configured")
	}
	var joined error
	for _, em := range emails {
		err := d.Mail.Send(em.To, em.Subject, em.HTML)
		result := "success"
		if err != nil {
			result = "error"
			joined = errors.Join(joined, fmt.Errorf("notify: send to %s: %w", em.To, err))
			d.Logger.Error().Err(err).Str("to", em.To).Str("subject", em.Subject).Msg("email send failed")
		}
		if obs.NotificationDispatchTotal != nil {
			obs.NotificationDispatchTotal.WithLabelValues(result).Inc()
		}
	}
	return joined
}
