package session

import (
	"net/http"
	"strings"
)

// Transport attaches the stored token to outgoing requests only while it
// validates, and forces a logout when the server answers 401 or 403.
type Transport struct {
	Base  http.RoundTripper
	Guard *Guard

	// AuthPrefix marks endpoints whose 401 means bad credentials rather than a
	// dead session.
	AuthPrefix string
}

func NewTransport(guard *Guard, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base, Guard: guard, AuthPrefix: "/api/auth/"}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.Header.Del("Authorization")

	token, _ := t.Guard.Tab().Get(KeyAuthToken)
	if token != "" {
		if v := Validate(token, t.Guard.now()); v.Valid {
			out.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := t.Base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if t.AuthPrefix == "" || !strings.HasPrefix(req.URL.Path, t.AuthPrefix) {
			t.Guard.ForceLogout(req.URL.Path, MessageUnauthorized)
		}
	}
	return resp, nil
}
