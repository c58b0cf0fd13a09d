package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// NewID returns an opaque identifier for tagging connections. Uniqueness is
// best effort; IDs only disambiguate handles, they carry no meaning.
func NewID() string {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("t%d", time.Now().UnixNano())
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
