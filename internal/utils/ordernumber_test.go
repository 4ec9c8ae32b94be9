package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var orderNumberPattern = regexp.MustCompile(`^ORD-\d{8}-[0-9A-F]{8}$`)

func TestGenerateOrderNumber(t *testing.T) {
	assert.Regexp(t, orderNumberPattern, GenerateOrderNumber())

	// the date is taken in UTC
	at := time.Date(2026, 3, 1, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*3600))
	assert.Contains(t, orderNumberAt(at), "ORD-20260302-")

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		seen[GenerateOrderNumber()] = true
	}
	assert.Len(t, seen, 20)
}
