package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/carectl/internal/apperrors"
	"github.com/nkiryanov/carectl/internal/logger"
	"github.com/nkiryanov/carectl/internal/session"
)

const RequestIDHeader = "X-Request-Id"

// APIError is a non-2xx backend response
// Message is the backend message as is
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == apperrors.ErrNotFound && e.StatusCode == http.StatusNotFound
}

type options struct {
	base http.RoundTripper
	log  logger.Logger
}

type Option func(*options)

// WithTransport sets the transport requests are finally sent with
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.log = l }
}

func newOptions(opts []Option) options {
	o := options{base: http.DefaultTransport, log: logger.NewNoOpLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Client of the cooperative backend
// Every call except the ones of TokenClient runs within the session
type Client struct {
	Auth          *AuthService
	Patients      *PatientsService
	Professionals *ProfessionalsService
	Schedules     *SchedulesService
	Appointments  *AppointmentsService
	Reports       *ReportsService
	Dashboard     *DashboardService
	Users         *UsersService
}

// New builds client which sends requests through manager's session transport
// tokens is used to log in and register, as it does not need a session
func New(baseURL string, tokens *TokenClient, manager *session.Manager, opts ...Option) *Client {
	o := newOptions(opts)

	c := &conn{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: &session.Transport{Manager: manager, Base: o.base},
		},
		log:       o.log.With("component", "apiclient"),
		inSession: true,
	}

	return &Client{
		Auth:          &AuthService{conn: c, tokens: tokens, manager: manager},
		Patients:      &PatientsService{conn: c},
		Professionals: &ProfessionalsService{conn: c},
		Schedules:     &SchedulesService{conn: c},
		Appointments:  &AppointmentsService{conn: c},
		Reports:       &ReportsService{conn: c},
		Dashboard:     &DashboardService{conn: c},
		Users:         &UsersService{conn: c},
	}
}

// Connection to backend shared by services
type conn struct {
	baseURL string
	http    *http.Client
	log     logger.Logger

	// 401 in session means it is expired and can not be recovered
	inSession bool
}

// do sends in as json body and decodes response into out
// Both in and out may be nil
func (c *conn) do(ctx context.Context, method string, path string, query url.Values, in any, out any) error {
	resp, err := c.send(ctx, method, path, query, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close() // nolint:errcheck

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode response of %s %s. Err: %w", method, path, err)
	}

	return nil
}

// download returns raw response body and its content type
func (c *conn) download(ctx context.Context, path string, query url.Values) ([]byte, string, error) {
	resp, err := c.send(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close() // nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response of GET %s. Err: %w", path, err)
	}

	return body, resp.Header.Get("Content-Type"), nil
}

// send returns response with 2xx status, any other status is turned into error
func (c *conn) send(ctx context.Context, method string, path string, query url.Values, in any) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request. Err: %w", err)
		}
		// bytes.Reader lets the request be replayed after refresh
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request. Err: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request %s %s. Err: %w", method, path, err)
	}

	c.log.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", req.Header.Get(RequestIDHeader),
		"elapsed", time.Since(start),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close() // nolint:errcheck
	apiErr := decodeError(resp)

	if resp.StatusCode == http.StatusUnauthorized && c.inSession {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrSessionExpired, apiErr)
	}
	return nil, apiErr
}

func decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}

func idPath(prefix string, id int64, rest ...string) string {
	p := fmt.Sprintf("%s/%d", prefix, id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

// Query with empty values dropped
func query(pairs ...string) url.Values {
	q := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			q.Set(pairs[i], pairs[i+1])
		}
	}
	return q
}
