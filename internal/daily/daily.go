// internal/daily/daily.go
//
// Deterministic board selection for the Daily Challenge.
// Every player gets the same generated board for a given UTC date; the seed
// is HMAC(salt, YYYY-MM-DD), so it cannot be predicted without the salt.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns the generator seed for a date.
// The top bit is cleared so the value fits a SQLite INTEGER unchanged.
func Seed(date time.Time, salt string) int64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	return int64(binary.BigEndian.Uint64(sum[:8]) &^ (1 << 63))
}
