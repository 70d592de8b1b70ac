package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/chezvous/backend-booking/internal/common"
	"github.com/chezvous/backend-booking/internal/notify"
)

var testBooking = notify.Booking{
	Name:     "Ada Obi",
	Email:    "ada@example.com",
	CheckIn:  "2026-09-01",
	CheckOut: "2026-09-03",
	Nights:   2,
	Total:    50000,
}

func TestConfirmationEmails(t *testing.T) {
	t.Parallel()

	m := notify.Mailer{OwnerEmail: "owner@example.com"}
	emails := m.ConfirmationEmails(testBooking)
	require.Len(t, emails, 2)

	customer, owner := emails[0], emails[1]
	require.Equal(t, "ada@example.com", customer.To)
	require.Equal(t, "Payment Successful - Booking Confirmed", customer.Subject)
	require.Contains(t, customer.HTML, "Ada Obi")
	require.Contains(t, customer.HTML, "₦50,000")
	require.Contains(t, customer.HTML, "2026-09-01")

	require.Equal(t, "owner@example.com", owner.To)
	require.Equal(t, "New Payment Received", owner.Subject)
	require.Contains(t, owner.HTML, "ada@example.com")
	require.Contains(t, owner.HTML, "₦50,000")
}

func TestInitiationEmailsCarryLink(t *testing.T) {
	t.Parallel()

	m := notify.Mailer{OwnerEmail: "owner@example.com"}
	link := "https://checkout.paystack.com/xyz"
	emails := m.InitiationEmails(testBooking, link)
	require.Len(t, emails, 2)
	require.Contains(t, emails[0].HTML, link)
	require.Contains(t, emails[1].HTML, link)
}

func TestStayDescriptionFallsBackToNights(t *testing.T) {
	t.Parallel()

	b := notify.Booking{Nights: 3}
	require.Contains(t, b.StayDescription(), "3 night(s)")

	require.Contains(t, testBooking.StayDescription(), "2026-09-03")
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	require.Equal(t, "50,000", notify.FormatAmount(50000))
	require.Equal(t, "1,500.50", notify.FormatAmount(1500.50))
	require.Equal(t, "999", notify.FormatAmount(999))
	require.Equal(t, "1,234,567", notify.FormatAmount(1234567))
	require.Equal(t, "0", notify.FormatAmount(0))
	require.Equal(t, "33.33", notify.FormatAmount(33.33))

	// fractions at or past .995 carry into the whole part, matching the
	// minor-unit amount the gateway actually charges
	require.Equal(t, "50", notify.FormatAmount(49.995))
	require.Equal(t, "1,000", notify.FormatAmount(999.999))
	require.Equal(t, "1", notify.FormatAmount(0.999))
	require.Equal(t, "0.99", notify.FormatAmount(0.994))
}

func TestDirectSendsBothEmails(t *testing.T) {
	t.Parallel()

	inbox := &common.InMemoryEmail{}
	d := notify.Direct{
		Mail:   inbox,
		Mailer: notify.Mailer{OwnerEmail: "owner@example.com"},
		Logger: zerolog.Nop(),
	}

	require.NoError(t, d.PaymentConfirmed(context.Background(), testBooking))
	require.Len(t, inbox.Outbox, 2)
	require.Equal(t, "ada@example.com", inbox.Outbox[0].To)
	require.Equal(t, "owner@example.com", inbox.Outbox[1].To)

	require.NoError(t, d.PaymentInitiated(context.Background(), testBooking, "https://checkout.paystack.com/xyz"))
	require.Len(t, inbox.Outbox, 4)
}

type brokenSender struct{}

func (brokenSender) Send(string, string, string) error { return errors.New("connection refused") }

func TestDirectReportsSendFailures(t *testing.T) {
	t.Parallel()

	d := notify.Direct{
		Mail:   brokenSender{},
		Mailer: notify.Mailer{OwnerEmail: "owner@example.com"},
		Logger: zerolog.Nop(),
	}
	err := d.PaymentConfirmed(context.Background(), testBooking)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ada@example.com")
	require.Contains(t, err.Error(), "owner@example.com")
}
