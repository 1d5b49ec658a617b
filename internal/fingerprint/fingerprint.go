// Package fingerprint derives the idempotency key of a post from its content.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Length is the number of hex characters kept from the digest (128 bits).
const Length = 32

const delimiter = "|"

// Input is the content a post is deduplicated on. Values are hashed as given;
// nothing is trimmed or normalised.
type Input struct {
	Title       string
	Body        string
	ScheduledAt string
	Channels    []string
}

// Key returns the deterministic idempotency key for in. The workspace is not part
// of the key; stores scope it separately.
func Key(in Input) string {
	h := sha256.New()
	h.Write([]byte(in.Title))
	h.Write([]byte(delimiter))
	h.Write([]byte(in.Body))
	h.Write([]byte(delimiter))
	h.Write([]byte(in.ScheduledAt))
	h.Write([]byte(delimiter))
	h.Write([]byte(strings.Join(in.Channels, ",")))
	return hex.EncodeToString(h.Sum(nil))[:Length]
}
