package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/coalmart/coalmart/internal/models"
)

// maximum allowed difference between the signed timestamp and now,
// bounds replay of captured webhook deliveries
const signatureTolerance = 5 * time.Minute

// VerifySignature checks the processor signature header against the
// raw request body. The header carries a signed timestamp and an
// HMAC-SHA256 of "<timestamp>.<body>" under the shared webhook secret:
//
//	t=1690000000,v1=5257a8...
func VerifySignature(body []byte, header, secret string, now time.Time) error {
	var ts string
	var sigs []string

	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts = v
		case "v1":
			sigs = append(sigs, v)
		}
	}

	if ts == "" || len(sigs) == 0 {
		return models.ErrInvalidSignature
	}

	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return models.ErrInvalidSignature
	}

	signedAt := time.Unix(sec, 0)
	if d := now.Sub(signedAt); d > signatureTolerance || d < -signatureTolerance {
		return models.ErrInvalidSignature
	}

	expected := Sign(body, ts, secret)
	for _, sig := range sigs {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}

	return models.ErrInvalidSignature
}

// Sign computes the hex HMAC-SHA256 signature over "<timestamp>.<body>".
func Sign(body []byte, timestamp, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureHeader builds a signature header for a body signed at ts.
func SignatureHeader(body []byte, ts time.Time, secret string) string {
	stamp := strconv.FormatInt(ts.Unix(), 10)
	return fmt.Sprintf("t=%s,v1=%s", stamp, Sign(body, stamp, secret))
}
