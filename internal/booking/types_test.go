package booking

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNights(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		checkIn  string
		checkOut string
		want     int
		wantErr  bool
	}{
		{"two nights", "2026-09-01", "2026-09-03", 2, false},
		{"single night", "2026-09-01", "2026-09-02", 1, false},
		{"month boundary", "2026-08-30", "2026-09-02", 3, false},
		{"same day", "2026-09-01", "2026-09-01", 0, true},
		{"reversed", "2026-09-03", "2026-09-01", 0, true},
		{"bad check-in", "01/09/2026", "2026-09-03", 0, true},
		{"bad check-out", "2026-09-01", "soon", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := InitRequest{CheckIn: tc.checkIn, CheckOut: tc.checkOut}.Nights()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestToMinorUnits(t *testing.T) {
	t.Parallel()

	require.Equal(t, int64(5000000), ToMinorUnits(50000))
	require.Equal(t, int64(150050), ToMinorUnits(1500.50))
	require.Equal(t, int64(5000), ToMinorUnits(49.995))
	require.Equal(t, int64(1), ToMinorUnits(0.01))
	require.Equal(t, int64(3333), ToMinorUnits(33.33))
	require.Equal(t, int64(0), ToMinorUnits(0))
}
