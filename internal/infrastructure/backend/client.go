// Package backend is the HTTP client for the MarketingCRM backend API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketingcrm/portal/internal/api/metrics"
	"github.com/marketingcrm/portal/internal/core/domain"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 20 << 20

	detailEmailRegistered = "Email already registered"
)

// Config holds the backend location and the per-call deadline.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements every backend port over HTTP. Each call runs under its
// own deadline derived from the caller's context.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	log     zerolog.Logger
}

// New validates cfg and builds a Client.
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		base:    base,
		timeout: timeout,
		log:     log.With().Str("component", "backend").Logger(),
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   20,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
				ForceAttemptHTTP2:     true,
			},
		},
	}, nil
}

// call describes one backend request. endpoint is the route template used
// as the metrics label.
type call struct {
	endpoint    string
	method      string
	path        string
	bearer      string
	body        []byte
	contentType string
}

type reply struct {
	status int
	header http.Header
	body   []byte
}

func (c *Client) do(ctx context.Context, in call) (*reply, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in.body != nil {
		body = bytes.NewReader(in.body)
	}
	req, err := http.NewRequestWithContext(ctx, in.method, c.base.String()+in.path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if in.contentType != "" {
		req.Header.Set("Content-Type", in.contentType)
	}
	if in.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+in.bearer)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(in.endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(in.endpoint, "error").Inc()
		c.log.Error().Err(err).Str("endpoint", in.endpoint).Msg("backend request failed")
		return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrBackendUnavailable, in.method, in.endpoint, err)
	}
	defer resp.Body.Close()
	metrics.BackendRequestsTotal.WithLabelValues(in.endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrBackendUnavailable, in.endpoint, err)
	}

	out := &reply{status: resp.StatusCode, header: resp.Header, body: raw}
	if resp.StatusCode >= 300 {
		c.log.Warn().Int("status", resp.StatusCode).Str("endpoint", in.endpoint).Msg("backend rejected request")
		return out, statusError(out)
	}
	return out, nil
}

// statusError maps a non-2xx reply onto the domain error taxonomy.
func statusError(r *reply) error {
	detail := parseDetail(r.body)
	switch r.status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, detail)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrForbidden, detail)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, detail)
	}
	return &domain.BackendError{Status: r.status, Detail: detail}
}

// parseDetail extracts the error detail the backend puts in its JSON body.
// Validation replies carry a list instead of a string; those are returned raw.
func parseDetail(body []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}
	var s string
	if err := json.Unmarshal(env.Detail, &s); err == nil {
		return s
	}
	return string(env.Detail)
}

func decode[T any](r *reply, endpoint string) (T, error) {
	var v T
	if err := json.Unmarshal(r.body, &v); err != nil {
		return v, &domain.BackendError{Status: r.status, Detail: fmt.Sprintf("decode %s response: %v", endpoint, err)}
	}
	return v, nil
}

func jsonCall(endpoint, method, path, bearer string, payload any) (call, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return call{}, fmt.Errorf("marshal %s: %w", endpoint, err)
	}
	return call{endpoint: endpoint, method: method, path: path, bearer: bearer, body: b, contentType: "application/json"}, nil
}

func (c *Client) tokenPair(r *reply, endpoint string) (*domain.TokenPair, error) {
	pair, err := decode[domain.TokenPair](r, endpoint)
	if err != nil {
		return nil, err
	}
	if pair.AccessToken == "" {
		return nil, &domain.BackendError{Status: r.status, Detail: endpoint + " response has no access_token"}
	}
	return &pair, nil
}

// ── auth ──────────────────────────────────────────────────────────────────────

// Token exchanges email and password for a credential pair. The backend
// expects an OAuth2 password form with the email as username.
func (c *Client) Token(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	form := url.Values{"username": {email}, "password": {password}}
	r, err := c.do(ctx, call{
		endpoint:    "/token",
		method:      http.MethodPost,
		path:        "/token",
		body:        []byte(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	})
	if errors.Is(err, domain.ErrUnauthorized) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	return c.tokenPair(r, "/token")
}

func (c *Client) Register(ctx context.Context, email, password string, role domain.Role) (*domain.TokenPair, error) {
	in, err := jsonCall("/register", http.MethodPost, "/register", "", map[string]string{
		"email":    email,
		"password": password,
		"role":     string(role),
	})
	if err != nil {
		return nil, err
	}
	r, err := c.do(ctx, in)
	var be *domain.BackendError
	if errors.As(err, &be) && be.Status == http.StatusBadRequest && be.Detail == detailEmailRegistered {
		return nil, domain.ErrUserExists
	}
	if err != nil {
		return nil, err
	}
	return c.tokenPair(r, "/register")
}

// RefreshToken trades a refresh credential for a new access credential. The
// backend takes the refresh credential as a bare JSON string body.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	in, err := jsonCall("/refresh-token", http.MethodPost, "/refresh-token", "", refreshToken)
	if err != nil {
		return "", err
	}
	r, err := c.do(ctx, in)
	if err != nil {
		return "", err
	}
	pair, err := c.tokenPair(r, "/refresh-token")
	if err != nil {
		return "", err
	}
	return pair.AccessToken, nil
}

// ── profile ───────────────────────────────────────────────────────────────────

func (c *Client) Profile(ctx context.Context, bearer string) (*domain.Profile, error) {
	r, err := c.do(ctx, call{endpoint: "/users/me", method: http.MethodGet, path: "/users/me", bearer: bearer})
	if err != nil {
		return nil, err
	}
	p, err := decode[domain.Profile](r, "/users/me")
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProfile(ctx context.Context, bearer string, upd domain.ProfileUpdate) (*domain.Profile, error) {
	in, err := jsonCall("/users/me", http.MethodPut, "/users/me", bearer, upd)
	if err != nil {
		return nil, err
	}
	r, err := c.do(ctx, in)
	if err != nil {
		return nil, err
	}
	p, err := decode[domain.Profile](r, "/users/me")
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ── orders ────────────────────────────────────────────────────────────────────

func (c *Client) MyRequests(ctx context.Context, bearer string) ([]domain.Order, error) {
	return c.orders(ctx, bearer, "/my-requests")
}

func (c *Client) Orders(ctx context.Context, bearer string) ([]domain.Order, error) {
	return c.orders(ctx, bearer, "/orders")
}

func (c *Client) orders(ctx context.Context, bearer, path string) ([]domain.Order, error) {
	r, err := c.do(ctx, call{endpoint: path, method: http.MethodGet, path: path, bearer: bearer})
	if err != nil {
		return nil, err
	}
	orders, err := decode[[]domain.Order](r, path)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, bearer, orderID string, status domain.OrderStatus) error {
	in, err := jsonCall("/orders/{id}/update-status", http.MethodPut,
		"/orders/"+url.PathEscape(orderID)+"/update-status", bearer,
		map[string]string{"status": string(status)})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, in)
	return err
}

func (c *Client) Invoice(ctx context.Context, bearer, orderID string) (*domain.Attachment, error) {
	return c.download(ctx, bearer, "/orders/{id}/invoice", "/orders/"+url.PathEscape(orderID)+"/invoice")
}

func (c *Client) PaymentProof(ctx context.Context, bearer, orderID string) (*domain.Attachment, error) {
	return c.download(ctx, bearer, "/admin/download-payment/{id}", "/admin/download-payment/"+url.PathEscape(orderID))
}

func (c *Client) download(ctx context.Context, bearer, endpoint, path string) (*domain.Attachment, error) {
	r, err := c.do(ctx, call{endpoint: endpoint, method: http.MethodGet, path: path, bearer: bearer})
	if err != nil {
		return nil, err
	}
	att := &domain.Attachment{Body: r.body, ContentType: r.header.Get("Content-Type")}
	if _, params, err := mime.ParseMediaType(r.header.Get("Content-Disposition")); err == nil {
		att.Filename = params["filename"]
	}
	return att, nil
}

// ── requests ──────────────────────────────────────────────────────────────────

// RequestService submits a service request with its payment proof as a
// multipart form and returns the order id the backend assigned.
func (c *Client) RequestService(ctx context.Context, bearer string, req domain.ServiceRequest) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"serviceType", req.ServiceType},
		{"email", req.Email},
		{"amount", strconv.FormatFloat(req.Amount, 'f', -1, 64)},
		{"transfer_id", req.TransferID},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return "", fmt.Errorf("write field %s: %w", f[0], err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, req.File.Filename))
	contentType := req.File.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(req.File.Body); err != nil {
		return "", fmt.Errorf("write file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	r, err := c.do(ctx, call{
		endpoint:    "/request-service",
		method:      http.MethodPost,
		path:        "/request-service",
		bearer:      bearer,
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
	})
	if err != nil {
		return "", err
	}
	out, err := decode[struct {
		OrderID string `json:"order_id"`
	}](r, "/request-service")
	if err != nil {
		return "", err
	}
	return out.OrderID, nil
}

// Ping reports whether the backend answers at all. Any reply below 500 counts.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, call{endpoint: "/", method: http.MethodGet, path: "/"})
	var be *domain.BackendError
	if errors.As(err, &be) && be.Status < http.StatusInternalServerError {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrForbidden) {
		return nil
	}
	return err
}
