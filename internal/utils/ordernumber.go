package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateOrderNumber returns ORD-YYYYMMDD-XXXXXXXX: the UTC date and
// eight hex characters of a random UUID.
func GenerateOrderNumber() string {
	return orderNumberAt(time.Now())
}

func orderNumberAt(t time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "ORD-" + t.UTC().Format("20060102") + "-" + suffix
}
