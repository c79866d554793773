package bootstrap

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const (
	headerSignature = "X-Webhook-Signature"
	headerTimestamp = "X-Webhook-Timestamp"
	headerID        = "X-Webhook-ID"

	// Far-future timestamps are rejected beyond this skew allowance.
	maxClockSkew = time.Minute
)

// signPayload computes the hex HMAC-SHA256 over "timestamp.payload",
// the scheme the identity provider signs deliveries with.
func signPayload(secret string, timestamp int64, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(h, "%d.", timestamp)
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// verifySignature checks the delivery headers against the raw body.
// The timestamp is bound into the signature, so replaying an old
// delivery with a fresh timestamp fails the HMAC comparison.
func verifySignature(secret string, payload []byte, header http.Header, maxAge time.Duration) error {
	got := header.Get(headerSignature)
	rawTS := header.Get(headerTimestamp)
	if got == "" || rawTS == "" {
		return fmt.Errorf("%w: missing signature headers", ErrInvalidSignature)
	}

	timestamp, err := strconv.ParseInt(rawTS, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: malformed timestamp", ErrInvalidSignature)
	}

	age := time.Since(time.Unix(timestamp, 0))
	if age > maxAge {
		return fmt.Errorf("%w: delivery outside the replay window", ErrInvalidSignature)
	}
	if age < -maxClockSkew {
		return fmt.Errorf("%w: timestamp is in the future", ErrInvalidSignature)
	}

	want := signPayload(secret, timestamp, payload)
	if !hmac.Equal([]byte(want), []byte(got)) {
		return fmt.Errorf("%w: signature mismatch", ErrInvalidSignature)
	}
	return nil
}
