package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey_Deterministic(t *testing.T) {
	in := Input{Title: "Launch", Body: "We are live", ScheduledAt: "2026-11-01T09:00:00Z", Channels: []string{"linkedin", "x"}}

	first := Key(in)
	assert.Len(t, first, Length)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Key(in))
	}
	// Pinned so a change to the digest layout shows up as a failure.
	assert.Equal(t, "181b8310d97f425006f7bd05a2035bd9", first)
}

func TestKey_Distinguishes(t *testing.T) {
	base := Input{Title: "", Body: "body", ScheduledAt: "2026-11-01T09:00:00Z", Channels: []string{"a", "b"}}

	tests := []struct {
		name  string
		other Input
	}{
		{"whitespace title", Input{Title: " ", Body: base.Body, ScheduledAt: base.ScheduledAt, Channels: base.Channels}},
		{"channel order", Input{Body: base.Body, ScheduledAt: base.ScheduledAt, Channels: []string{"b", "a"}}},
		{"scheduled at", Input{Body: base.Body, ScheduledAt: "2026-11-01T09:00:01Z", Channels: base.Channels}},
		{"trailing space in body", Input{Body: "body ", ScheduledAt: base.ScheduledAt, Channels: base.Channels}},
	}
	want := Key(base)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, want, Key(tt.other))
		})
	}
}
