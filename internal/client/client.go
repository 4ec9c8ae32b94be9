package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront-be/internal/cart"
	"storefront-be/internal/order"
	"storefront-be/internal/product"
	"storefront-be/internal/session"
	"storefront-be/internal/user"
)

// APIError is a non-2xx response. Message comes from the {"error": ...} body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	guard   *session.Guard
}

// New builds a client whose requests pass through the session transport of guard.
func New(baseURL string, guard *session.Guard, base http.RoundTripper) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   15 * time.Second,
			Transport: session.NewTransport(guard, base),
		},
		guard: guard,
	}
}

func (c *Client) Guard() *session.Guard { return c.guard }

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type Session struct {
	Token string     `json:"token"`
	Role  user.Role  `json:"role"`
	User  *user.User `json:"user"`
}

// Login stores the token, role and user in the shared storage. The guard
// validates the token as it is written.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &s)
	if err != nil {
		return nil, err
	}
	if err := c.store(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Register(ctx context.Context, email, password, name string) (*Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	}, &s)
	if err != nil {
		return nil, err
	}
	if err := c.store(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) store(s *Session) error {
	if v := session.Validate(s.Token, time.Now()); !v.Valid {
		return fmt.Errorf("server returned unusable token: %s", v.Reason)
	}

	u, err := json.Marshal(s.User)
	if err != nil {
		return err
	}

	tab := c.guard.Tab()
	tab.Set(session.KeyRole, string(s.Role))
	tab.Set(session.KeyUser, string(u))
	tab.Set(session.KeyAuthToken, s.Token)
	return nil
}

// Logout clears the local session even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)

	tab := c.guard.Tab()
	for _, key := range []string{session.KeyAuthToken, session.KeyRole, session.KeyUser} {
		tab.Remove(key)
	}
	return err
}

// RedirectAfterLogin returns and forgets the page recorded by a forced logout.
func (c *Client) RedirectAfterLogin() (string, bool) {
	return c.guard.Tab().TakeSession(session.KeyRedirectAfterLogin)
}

// LogoutMessage returns and forgets the message recorded by a forced logout.
func (c *Client) LogoutMessage() (string, bool) {
	return c.guard.Tab().TakeSession(session.KeyLogoutMessage)
}

func (c *Client) Me(ctx context.Context) (*user.User, error) {
	var u user.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Products(ctx context.Context, query url.Values) (*product.ListResult, error) {
	path := "/api/products"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var res product.ListResult
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Product(ctx context.Context, id uint) (*product.Product, error) {
	var p product.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/products/%d", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Cart(ctx context.Context) (*cart.Cart, error) {
	var res cart.Cart
	if err := c.do(ctx, http.MethodGet, "/api/cart", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) AddToCart(ctx context.Context, productID uint, size string, quantity int) (*cart.CartItem, error) {
	var item cart.CartItem
	err := c.do(ctx, http.MethodPost, "/api/cart/items", cart.AddToCartParams{
		ProductID: productID,
		Size:      size,
		Quantity:  quantity,
	}, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) Checkout(ctx context.Context, shipping order.Shipping) (*order.Order, error) {
	var o order.Order
	if err := c.do(ctx, http.MethodPost, "/api/cart/checkout", map[string]any{"shipping": shipping}, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) Orders(ctx context.Context, status string, page int) (*order.ListResult, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}

	path := "/api/orders"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var res order.ListResult
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CancelOrder(ctx context.Context, id uint) (*order.Order, error) {
	var o order.Order
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/orders/%d/cancel", id), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}
