package booking_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/chezvous/backend-booking/internal/booking"
	"github.com/chezvous/backend-booking/internal/gateway"
	"github.com/chezvous/backend-booking/internal/notify"
)

type fakeGateway struct {
	got  gateway.TransactionRequest
	resp gateway.TransactionResponse
	err  error
}

func (g *fakeGateway) InitializeTransaction(_ context.Context, req gateway.TransactionRequest) (gateway.TransactionResponse, error) {
	g.got = req
	return g.resp, g.err
}

type linkRecorder struct {
	booking notify.Booking
	link    string
	calls   int
}

func (r *linkRecorder) PaymentConfirmed(context.Context, notify.Booking) error { return nil }

func (r *linkRecorder) PaymentInitiated(_ context.Context, b notify.Booking, link string) error {
	r.booking = b
	r.link = link
	r.calls++
	return nil
}

func newBookingHandler(gw *fakeGateway, disp notify.Dispatcher) *booking.Handler {
	return &booking.Handler{
		Gateway:     gw,
		Notify:      disp,
		Validate:    validator.New(),
		CallbackURL: "https://chezvous.example.com/merci",
		Logger:      zerolog.Nop(),
	}
}

func post(t *testing.T, h *booking.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/initialize", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Initialize(rr, req)
	return rr
}

const validInit = `{"name":"Ada Obi","email":"ada@example.com","checkIn":"2026-09-01","checkOut":"2026-09-03","amount":50000}`

func TestInitializeHappyPath(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{resp: gateway.TransactionResponse{
		AuthorizationURL: "https://checkout.paystack.com/xyz",
		Reference:        "ref-77",
	}}
	rec := &linkRecorder{}
	rr := post(t, newBookingHandler(gw, rec), validInit)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Status           string `json:"status"`
		AuthorizationURL string `json:"authorizationUrl"`
		Reference        string `json:"reference"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "success", resp.Status)
	require.Equal(t, "https://checkout.paystack.com/xyz", resp.AuthorizationURL)
	require.Equal(t, "ref-77", resp.Reference)

	// amount converted to kobo, booking details echoed into metadata
	require.Equal(t, int64(5000000), gw.got.Amount)
	require.Equal(t, "ada@example.com", gw.got.Email)
	require.Equal(t, "https://chezvous.example.com/merci", gw.got.CallbackURL)
	require.Equal(t, 2, gw.got.Metadata.Nights)
	require.Equal(t, float64(50000), gw.got.Metadata.Total)

	require.Equal(t, 1, rec.calls)
	require.Equal(t, "https://checkout.paystack.com/xyz", rec.link)
	require.Equal(t, "Ada Obi", rec.booking.Name)
}

func TestInitializeValidation(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty body":     `{}`,
		"missing email":  `{"name":"Ada","checkIn":"2026-09-01","checkOut":"2026-09-03","amount":50000}`,
		"bad email":      `{"name":"Ada","email":"nope","checkIn":"2026-09-01","checkOut":"2026-09-03","amount":50000}`,
		"zero amount":    `{"name":"Ada","email":"ada@example.com","checkIn":"2026-09-01","checkOut":"2026-09-03","amount":0}`,
		"negative":       `{"name":"Ada","email":"ada@example.com","checkIn":"2026-09-01","checkOut":"2026-09-03","amount":-5}`,
		"same-day stay":  `{"name":"Ada","email":"ada@example.com","checkIn":"2026-09-01","checkOut":"2026-09-01","amount":50000}`,
		"reversed dates": `{"name":"Ada","email":"ada@example.com","checkIn":"2026-09-03","checkOut":"2026-09-01","amount":50000}`,
		"bad date":       `{"name":"Ada","email":"ada@example.com","checkIn":"tomorrow","checkOut":"2026-09-03","amount":50000}`,
	}
	for name, body := range cases {
		gw := &fakeGateway{}
		rr := post(t, newBookingHandler(gw, &linkRecorder{}), body)
		require.Equal(t, http.StatusBadRequest, rr.Code, name)
		require.Equal(t, int64(0), gw.got.Amount, "gateway must not be called: %s", name)
	}
}

func TestInitializeMalformedJSON(t *testing.T) {
	t.Parallel()

	rr := post(t, newBookingHandler(&fakeGateway{}, &linkRecorder{}), `{"name":`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestInitializeGatewayFailure(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{err: errors.New("paystack: initialization failed")}
	rec := &linkRecorder{}
	rr := post(t, newBookingHandler(gw, rec), validInit)

	require.Equal(t, http.StatusBadGateway, rr.Code)
	require.Equal(t, 0, rec.calls)
}

func TestInitializeGatewayTimeout(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{err: context.DeadlineExceeded}
	rr := post(t, newBookingHandler(gw, &linkRecorder{}), validInit)
	require.Equal(t, http.StatusGatewayTimeout, rr.Code)
}

type failingDispatcher struct{}

func (failingDispatcher) PaymentConfirmed(context.Context, notify.Booking) error { return nil }
func (failingDispatcher) PaymentInitiated(context.Context, notify.Booking, string) error {
	return errors.New("smtp down")
}

func TestInitializeEmailFailureDoesNotHideLink(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{resp: gateway.TransactionResponse{AuthorizationURL: "https://checkout.paystack.com/xyz"}}
	rr := post(t, newBookingHandler(gw, failingDispatcher{}), validInit)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "https://checkout.paystack.com/xyz")
}
