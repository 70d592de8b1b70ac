package notify

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/chezvous/backend-booking/internal/common"
)

// Booking carries the customer and stay details rendered into emails.
type Booking struct {
	Name     string
	Email    string
	CheckIn  string
	CheckOut string
	Nights   int
	Total    float64
}

// StayDescription renders the stay either as explicit dates or a night count,
// whichever the metadata carried.
func (b Booking) StayDescription() string {
	if b.CheckIn != "" && b.CheckOut != "" {
		return fmt.Sprintf("from <b>%s</b> to <b>%s</b>", b.CheckIn, b.CheckOut)
	}
	return fmt.Sprintf("for <b>%d night(s)</b>", b.Nights)
}

// Dispatcher requests that booking notifications be sent. Implementations may
// send synchronously or enqueue for a worker.
type Dispatcher interface {
	// PaymentConfirmed sends the customer confirmation and the owner alert.
	PaymentConfirmed(ctx context.Context, b Booking) error
	// PaymentInitiated sends the customer the payment link and alerts the owner.
	PaymentInitiated(ctx context.Context, b Booking, link string) error
}

// Mailer builds the HTML emails for booking notifications. The From identity
// belongs to the transport, not here.
type Mailer struct {
	OwnerEmail string
	SiteName   string
}

func (m Mailer) site() string {
	if strings.TrimSpace(m.SiteName) == "" {
		return "Chez Nous Chez Vous Apartments"
	}
	return m.SiteName
}

// ConfirmationEmails builds the two messages sent when a payment succeeds.
func (m Mailer) ConfirmationEmails(b Booking) []common.Email {
	customer := common.Email{
		To:      b.Email,
		Subject: "Payment Successful - Booking Confirmed",
		HTML: fmt.Sprintf(
			"<h2>Hello %s,</h2>"+
				"<p>Your booking %s has been confirmed.</p>"+
				"<p>Total Paid: <b>₦%s</b></p>"+
				"<p>We look forward to hosting you.</p>",
			b.Name, b.StayDescription(), FormatAmount(b.Total)),
	}
	owner := common.Email{
		To:      m.OwnerEmail,
		Subject: "New Payment Received",
		HTML: fmt.Sprintf(
			"<h2>New Booking</h2>"+
				"<p><b>Name:</b> %s</p>"+
				"<p><b>Email:</b> %s</p>"+
				"<p><b>Stay:</b> %s</p>"+
				"<p><b>Amount:</b> ₦%s</p>",
			b.Name, b.Email, b.StayDescription(), FormatAmount(b.Total)),
	}
	return []common.Email{customer, owner}
}

// InitiationEmails builds the two messages sent when a payment link is created.
func (m Mailer) InitiationEmails(b Booking, link string) []common.Email {
	customer := common.Email{
		To:      b.Email,
		Subject: fmt.Sprintf("Payment Initialization Successful - %s", m.site()),
		HTML: fmt.Sprintf(
			"<h2>Dear %s,</h2>"+
				"<p>Your booking %s has been initialized.</p>"+
				"<p>Total Amount: <b>₦%s</b></p>"+
				"<p>Click the link below to complete your payment:</p>"+
				"<p><a href=%q>Complete Payment</a></p>"+
				"<p>Thank you for choosing %s!</p>",
			b.Name, b.StayDescription(), FormatAmount(b.Total), link, m.site()),
	}
	owner := common.Email{
		To:      m.OwnerEmail,
		Subject: "New Booking Payment Started",
		HTML: fmt.Sprintf(
			"<h3>New Booking Payment Started</h3>"+
				"<p><b>Name:</b> %s</p>"+
				"<p><b>Email:</b> %s</p>"+
				"<p><b>Stay:</b> %s</p>"+
				"<p><b>Amount:</b> ₦%s</p>"+
				"<p>Payment Link: <a href=%q>%s</a></p>",
			b.Name, b.Email, b.StayDescription(), FormatAmount(b.Total), link, link),
	}
	return []common.Email{customer, owner}
}

// FormatAmount renders a major-unit amount with thousands separators, two
// decimals only when the amount is fractional. Rounding goes through the same
// minor-unit conversion the gateway charge uses, so the email never states a
// different total than the transaction.
func FormatAmount(v float64) string {
	kobo := int64(math.Round(v * 100))
	s := groupThousands(fmt.Sprintf("%d", kobo/100))
	if rem := kobo % 100; rem != 0 {
		return fmt.Sprintf("%s.%02d", s, rem)
	}
	return s
}

func groupThousands(digits string) string {
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	var out strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(r)
	}
	if neg {
		return "-" + out.String()
	}
	return out.String()
}
