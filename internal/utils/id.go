package utils

import (
	"strconv"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// NewID returns a best-effort unique 21 character NanoID.
func NewID() string {
	if id, err := gonanoid.New(); err == nil {
		return id
	}

	// Fallback to timestamp if crypto/rand is unavailable.
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}
