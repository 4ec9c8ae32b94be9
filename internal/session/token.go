package session

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpirySkew treats tokens expiring within this window as already expired.
const ExpirySkew = 5000 * time.Millisecond

type Reason string

const (
	ReasonNone             Reason = ""
	ReasonMissing          Reason = "missing"
	ReasonInvalidFormat    Reason = "invalid_format"
	ReasonInvalidStructure Reason = "invalid_structure"
	ReasonDecodeFailed     Reason = "decode_failed"
	ReasonExpired          Reason = "expired"
)

var segmentPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Claims is the unverified payload of a token. No signature check happens here.
type Claims struct {
	UserID    uint
	Role      string
	Email     string
	ExpiresAt *time.Time
	Raw       jwt.MapClaims
}

type Validation struct {
	Valid  bool
	Claims *Claims
	Reason Reason
}

// Decode reads the payload of token. It reports false when the token is not
// three base64url segments, the payload is not a JSON object, or none of
// exp, userId or role is present.
func Decode(token string) (*Claims, bool) {
	c, reason := decode(token)
	return c, reason == ReasonNone
}

func decode(token string) (*Claims, Reason) {
	if token == "" {
		return nil, ReasonMissing
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ReasonInvalidFormat
	}
	for _, p := range parts {
		if !segmentPattern.MatchString(p) {
			return nil, ReasonInvalidStructure
		}
	}

	payload, err := jwt.NewParser().DecodeSegment(parts[1])
	if err != nil {
		return nil, ReasonDecodeFailed
	}

	var raw jwt.MapClaims
	if err := json.Unmarshal(payload, &raw); err != nil || raw == nil {
		return nil, ReasonDecodeFailed
	}

	_, hasExp := raw["exp"]
	_, hasUser := raw["userId"]
	_, hasRole := raw["role"]
	if !hasExp && !hasUser && !hasRole {
		return nil, ReasonDecodeFailed
	}

	c := &Claims{Raw: raw}
	if hasExp {
		exp, err := raw.GetExpirationTime()
		if err != nil || exp == nil {
			return nil, ReasonDecodeFailed
		}
		t := exp.Time
		c.ExpiresAt = &t
	}
	if id, ok := raw["userId"].(float64); ok && id > 0 {
		c.UserID = uint(id)
	}
	c.Role, _ = raw["role"].(string)
	c.Email, _ = raw["email"].(string)

	return c, ReasonNone
}

// IsExpired reports whether token is undecodable or expires within ExpirySkew of now.
// A decodable token without exp never expires.
func IsExpired(token string, now time.Time) bool {
	c, ok := Decode(token)
	if !ok {
		return true
	}
	return c.expired(now)
}

func (c *Claims) expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Add(ExpirySkew).Before(*c.ExpiresAt)
}

func Validate(token string, now time.Time) Validation {
	c, reason := decode(token)
	if reason != ReasonNone {
		return Validation{Reason: reason}
	}
	if c.expired(now) {
		return Validation{Claims: c, Reason: ReasonExpired}
	}
	return Validation{Valid: true, Claims: c}
}
