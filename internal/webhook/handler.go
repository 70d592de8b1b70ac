// Package webhook receives signed payment events from the gateway, verifies
// their authenticity and triggers booking confirmations at most once per
// event, no matter how often the gateway retries delivery.
package webhook

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/chezvous/backend-booking/internal/common"
	"github.com/chezvous/backend-booking/internal/gateway"
	"github.com/chezvous/backend-booking/internal/ledger"
	"github.com/chezvous/backend-booking/internal/notify"
	"github.com/chezvous/backend-booking/internal/obs"
)

// Verifier authenticates a webhook payload against its signature header.
type Verifier interface {
	VerifyWebhook(signature string, body []byte) bool
}

// Handler processes gateway payment webhooks.
//
// Ordering contract: the event id is reserved in the ledger before
// notification dispatch and committed after the emails are durably enqueued.
// A dispatch failure still commits: a confirmed payment must never produce
// two automated confirmation emails, so failed sends are surfaced in the log
// for a manual resend instead of being retried through the gateway. The one
// accepted duplicate window is a crash between dispatch and commit, which
// surfaces as a resend after the reservation TTL lapses.
type Handler struct {
	Verifier Verifier
	Ledger   ledger.Ledger
	Notify   notify.Dispatcher
	Logger   zerolog.Logger
}

// Handle implements the webhook endpoint.
func (h Handler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.Verifier == nil || h.Ledger == nil || h.Notify == nil {
		common.JSONError(w, http.StatusInternalServerError, "WEBHOOK_NOT_CONFIGURED", "webhook unavailable", nil)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "unable to read payload", nil)
		return
	}

	signature := r.Header.Get(gateway.SignatureHeader)
	if !h.Verifier.VerifyWebhook(signature, body) {
		// possible spoofing attempt; keep the source around for audit
		h.Logger.Warn().
			Str("remote_addr", r.RemoteAddr).
			Bool("signature_present", strings.TrimSpace(signature) != "").
			Msg("webhook signature verification failed")
		h.count("rejected")
		common.JSONError(w, http.StatusUnauthorized, "INVALID_SIGNATURE", "signature verification failed", nil)
		return
	}

	ev, err := gateway.ParseEvent(body)
	if err != nil {
		// Authenticated but undecodable. Retrying will not fix it, so ack and
		// keep the evidence server-side rather than trigger a retry storm.
		h.Logger.Error().Err(err).Msg("webhook body malformed")
		h.count("malformed")
		common.Ack(w, "ignored")
		return
	}

	if ev.Event != gateway.EventChargeSuccess {
		h.count("ignored")
		common.Ack(w, "ignored")
		return
	}

	b, err := bookingFrom(ev.Data.Metadata)
	if err != nil {
		// Same reasoning as above: a charge.success with broken metadata is
		// permanently broken; never send a half-blank confirmation.
		h.Logger.Error().Err(err).Str("event_id", ev.ID()).Msg("charge.success metadata incomplete")
		h.count("malformed")
		common.Ack(w, "ignored")
		return
	}

	id := ev.ID()
	if id == "" {
		id = common.Sha256Hex(body)
	}

	ctx := r.Context()
	reserved, err := h.Ledger.Reserve(ctx, id)
	if err != nil {
		// A broken ledger means the duplicate guarantee is gone; 5xx so the
		// gateway redelivers once the store recovers.
		h.Logger.Error().Err(err).Str("event_id", id).Msg("ledger reserve failed")
		h.count("ledger_error")
		common.JSONError(w, http.StatusInternalServerError, "LEDGER_ERROR", "event store unavailable", nil)
		return
	}
	if !reserved {
		h.count("duplicate")
		common.Ack(w, "duplicate")
		return
	}

	if err := h.Notify.PaymentConfirmed(ctx, b); err != nil {
		h.Logger.Error().Err(err).
			Str("event_id", id).
			Str("email", b.Email).
			Str("name", b.Name).
			Int("nights", b.Nights).
			Float64("total", b.Total).
			Msg("confirmation dispatch failed; resend manually")
	}
	if err := h.Ledger.Commit(ctx, id); err != nil {
		// The reservation still blocks retries until its TTL lapses.
		h.Logger.Error().Err(err).Str("event_id", id).Msg("ledger commit failed")
	}

	h.count("processed")
	common.Ack(w, "processed")
}

func (h Handler) count(result string) {
	if obs.WebhookEventsTotal != nil {
		obs.WebhookEventsTotal.WithLabelValues(result).Inc()
	}
}

// bookingFrom validates a charge.success metadata payload. Every field the
// confirmation emails render must be present; a stay is described either by
// a night count or by both dates.
func bookingFrom(md gateway.Metadata) (notify.Booking, error) {
	var missing []string
	if strings.TrimSpace(md.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(md.Name) == "" {
		missing = append(missing, "name")
	}
	if md.Total <= 0 {
		missing = append(missing, "total")
	}
	if md.Nights <= 0 && (md.CheckIn == "" || md.CheckOut == "") {
		missing = append(missing, "nights")
	}
	if len(missing) > 0 {
		return notify.Booking{}, fmt.Errorf("missing metadata fields: %s", strings.Join(missing, ", "))
	}
	return notify.Booking{
		Name:     strings.TrimSpace(md.Name),
		Email:    strings.TrimSpace(md.Email),
		CheckIn:  md.CheckIn,
		CheckOut: md.CheckOut,
		Nights:   md.Nights,
		Total:    md.Total,
	}, nil
}
