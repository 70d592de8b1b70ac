package gateway

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// EventChargeSuccess is the event kind that confirms a completed payment.
// Every other kind is acknowledged without action.
const EventChargeSuccess = "charge.success"

// Metadata is the booking payload attached to a transaction at initialization
// and echoed back inside webhook events.
type Metadata struct {
	Name     string  `json:"name,omitempty"`
	Email    string  `json:"email,omitempty"`
	CheckIn  string  `json:"checkIn,omitempty"`
	CheckOut string  `json:"checkOut,omitempty"`
	Nights   int     `json:"nights,omitempty"`
	Total    float64 `json:"total,omitempty"`
}

// EventData is the payload section of a webhook event.
type EventData struct {
	ID        int64    `json:"id,omitempty"`
	Reference string   `json:"reference,omitempty"`
	Status    string   `json:"status,omitempty"`
	Amount    int64    `json:"amount,omitempty"`
	Metadata  Metadata `json:"metadata"`
}

// Event is a parsed webhook event. Parse only after the signature over the
// raw body has been verified.
type Event struct {
	Event string    `json:"event"`
	Data  EventData `json:"data"`
}

// ParseEvent decodes a verified webhook body.
func ParseEvent(body []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return Event{}, fmt.Errorf("gateway: decode event: %w", err)
	}
	return ev, nil
}

// ID returns the gateway-assigned identifier for the event: the numeric
// transaction id when present, otherwise the transaction reference. Returns
// empty when the event carries neither; callers must then derive their own
// stable identifier.
func (e Event) ID() string {
	if e.Data.ID != 0 {
		return strconv.FormatInt(e.Data.ID, 10)
	}
	return strings.TrimSpace(e.Data.Reference)
}
