package booking

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DateLayout is the wire format for check-in/check-out dates.
const DateLayout = "2006-01-02"

// InitRequest is the single validation contract for payment initiation,
// replacing the divergent per-page variants of the old site backend.
type InitRequest struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	CheckIn  string  `json:"checkIn" validate:"required"`
	CheckOut string  `json:"checkOut" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
}

// Nights parses the stay dates and returns the number of nights. The
// check-out date must be strictly after check-in.
func (r InitRequest) Nights() (int, error) {
	in, err := time.Parse(DateLayout, r.CheckIn)
	if err != nil {
		return 0, fmt.Errorf("invalid checkIn date: %w", err)
	}
	out, err := time.Parse(DateLayout, r.CheckOut)
	if err != nil {
		return 0, fmt.Errorf("invalid checkOut date: %w", err)
	}
	nights := int(out.Sub(in).Hours() / 24)
	if nights <= 0 {
		return 0, errors.New("checkOut must be after checkIn")
	}
	return nights, nil
}

// ToMinorUnits converts a major-unit amount to the gateway's minor unit
// (naira to kobo): multiply by 100 and round half away from zero. Rounding
// rather than truncating keeps amounts like 49.995 from silently losing a
// kobo.
func ToMinorUnits(major float64) int64 {
	return int64(math.Round(major * 100))
}
