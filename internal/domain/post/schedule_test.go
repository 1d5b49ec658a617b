package post

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScheduledAt(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-11-01T09:00:00Z", time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC)},
		{"2026-11-01T09:00:00.250+02:00", time.Date(2026, 11, 1, 7, 0, 0, 250000000, time.UTC)},
		{"2026-07-01T09:00:00", time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)},
		{"2026-07-01", time.Date(2026, 6, 30, 23, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScheduledAt(tt.in, london)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	for _, bad := range []string{"", "tomorrow", "2026-13-01T00:00:00Z", "01/11/2026"} {
		_, err := ParseScheduledAt(bad, london)
		assert.ErrorIs(t, err, ErrInvalidScheduledAt, bad)
	}
}
