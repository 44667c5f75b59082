// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/pkg/constants"
)

// ClientAPI defines the interface for Zoom API operations
// This allows for easy mocking and testing of the Zoom client
type ClientAPI interface {
	CreateMeeting(ctx context.Context, userID string, webinar bool, request *MeetingRequest) (*MeetingResponse, error)
	UpdateMeeting(ctx context.Context, meetingID int64, webinar bool, request *MeetingRequest) error
	DeleteMeeting(ctx context.Context, meetingID int64, webinar bool) error
	GetMeeting(ctx context.Context, meetingID int64, webinar bool) (*MeetingResponse, error)
	GetInvitation(ctx context.Context, meetingID int64) (string, error)
	ListRegistrants(ctx context.Context, meetingID int64, webinar bool) ([]Registrant, error)

	ListRecordings(ctx context.Context, meetingIDOrUUID string) (*RecordingsResponse, error)
	GetRecordingSettings(ctx context.Context, meetingIDOrUUID string) (*RecordingSettings, error)

	ListTrackingFields(ctx context.Context) ([]TrackingField, error)

	ListUsers(ctx context.Context) ([]ZoomUser, error)
	GetUser(ctx context.Context, identifier string) (*ZoomUser, error)
	GetUserSettings(ctx context.Context, userID string) (*UserSettings, error)
	GetUserSecuritySettings(ctx context.Context, userID string) (*MeetingSecurity, error)
	ListSchedulers(ctx context.Context, userID string) ([]Scheduler, error)
	UpdateUserType(ctx context.Context, userID string, userType int) error
}

const (
	// BaseURL is the base URL for the global Zoom API region
	BaseURL = "https://api.zoom.us/v2"
	// EUBaseURL is the base URL for the EU Zoom API region
	EUBaseURL = "https://eu01api-www4local.zoom.us/v2"
	// AuthURL is the OAuth token endpoint
	AuthURL = "https://zoom.us/oauth/token"
	// DefaultClientTimeout is the default HTTP client timeout for Zoom API requests
	DefaultClientTimeout = 30 * time.Second

	// Default retry configuration
	DefaultMaxAttempts          = 5
	DefaultConnectionRetryDelay = 1 * time.Second
	DefaultRateLimitWait        = 1 * time.Second
	DefaultQPSRateLimitWait     = 60 * time.Second
	// DefaultPageSize is the largest page Zoom returns for list endpoints
	DefaultPageSize = 300

	tracerName = "github.com/linuxfoundation/lfx-v2-meeting-sync/internal/infrastructure/zoom/api"
)

// Region names accepted by RegionBaseURL.
const (
	RegionGlobal = "global"
	RegionEU     = "eu"
)

// RegionBaseURL returns the API base URL for a region, defaulting to global.
func RegionBaseURL(region string) string {
	if strings.EqualFold(strings.TrimSpace(region), RegionEU) {
		return EUBaseURL
	}
	return BaseURL
}

// Config holds the configuration for the Zoom client
type Config struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	// Optional: override base URL for testing or region selection
	BaseURL string
	// Optional: override auth URL for testing
	AuthURL string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
	// Optional: retry configuration
	MaxAttempts          int
	ConnectionRetryDelay time.Duration
	RateLimitWait        time.Duration
	QPSRateLimitWait     time.Duration
	// Optional: page size sent on paginated calls
	PageSize int
	// Optional: scopes the access token must carry
	RequiredScopes []string
}

func (c *Config) setDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = BaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.AuthURL == "" {
		c.AuthURL = AuthURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultClientTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.ConnectionRetryDelay == 0 {
		c.ConnectionRetryDelay = DefaultConnectionRetryDelay
	}
	if c.RateLimitWait == 0 {
		c.RateLimitWait = DefaultRateLimitWait
	}
	if c.QPSRateLimitWait == 0 {
		c.QPSRateLimitWait = DefaultQPSRateLimitWait
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.RequiredScopes == nil {
		c.RequiredScopes = DefaultRequiredScopes
	}
}

// Client represents a Zoom API client
type Client struct {
	httpClient *http.Client
	config     Config
	tokens     TokenSource
	cooldown   *Cooldown

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTokenSource replaces the OAuth token provider.
func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithCooldown shares a quota cooldown between clients and the scheduler.
func WithCooldown(cooldown *Cooldown) Option {
	return func(c *Client) {
		c.cooldown = cooldown
	}
}

// Ensure that Client implements ClientAPI
var _ ClientAPI = (*Client)(nil)

// NewClient creates a new Zoom API client
func NewClient(config Config, opts ...Option) *Client {
	config.setDefaults()

	c := &Client{
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		config: config,
		now:    time.Now,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tokens == nil {
		c.tokens = NewTokenProvider(config)
	}
	if c.cooldown == nil {
		c.cooldown = NewCooldown(nil)
	}

	meter := otel.Meter(tracerName)
	c.calls, _ = meter.Int64Counter("zoom.api.requests",
		metric.WithDescription("Zoom API requests by method and status"))
	c.duration, _ = meter.Float64Histogram("zoom.api.request.duration",
		metric.WithDescription("Zoom API request latency"),
		metric.WithUnit("s"))

	return c
}

// Cooldown returns the quota cooldown shared by this client.
func (c *Client) Cooldown() *Cooldown {
	return c.cooldown
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// errorResponse is the body Zoom returns for failed calls.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

// doRequest performs an authenticated call to the Zoom API and decodes the JSON
// response into out. Connection resets and rate limiting are retried up to
// MaxAttempts calls in total.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "zoom.api.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("zoom.path", path),
		),
	)
	defer span.End()

	err := c.doWithRetry(ctx, method, path, query, body, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Client) doWithRetry(ctx context.Context, method, path string, query url.Values, body, out any) error {
	jsonBody, err := c.marshalRequestBody(method, body)
	if err != nil {
		return err
	}

	fullURL := c.config.BaseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	reauthenticated := false
	for attempt := 1; ; attempt++ {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return err
		}

		req, err := c.createRequest(ctx, method, fullURL, jsonBody, token)
		if err != nil {
			return err
		}

		c.logRequestAttempt(ctx, method, path, attempt)

		resp, duration, err := c.executeRequestWithTiming(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			c.record(ctx, method, 0, duration)
			if isConnectionReset(err) && attempt < c.config.MaxAttempts {
				c.logRetry(ctx, method, path, 0, attempt, c.config.ConnectionRetryDelay, err)
				if err := c.sleep(ctx, c.config.ConnectionRetryDelay); err != nil {
					return err
				}
				continue
			}
			c.logFinalFailure(ctx, method, path, 0, duration, attempt, err)
			return domain.NewConnectionError(
				fmt.Sprintf("zoom request %s %s failed after %d attempts", method, path, attempt), err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		c.record(ctx, method, resp.StatusCode, duration)
		if readErr != nil {
			return domain.NewConnectionError("failed to read Zoom response body", readErr)
		}

		if resp.StatusCode < http.StatusBadRequest {
			c.logSuccessfulResponse(ctx, method, path, resp.StatusCode, duration, attempt)
			return decodeResponse(respBody, out)
		}

		apiErr, parsed := parseErrorResponse(respBody)
		switch resp.StatusCode {
		case http.StatusBadRequest:
			c.logErrorResponse(ctx, method, path, resp.StatusCode, duration, respBody)
			return domain.NewBadRequestError(apiErr.badRequestMessage(), apiErr.Code)
		case http.StatusNotFound:
			c.logErrorResponse(ctx, method, path, resp.StatusCode, duration, respBody)
			return domain.NewRemoteNotFoundError(apiErr.Message, apiErr.Code)
		case http.StatusUnauthorized:
			invalidator, ok := c.tokens.(tokenInvalidator)
			if ok && !reauthenticated && attempt < c.config.MaxAttempts {
				reauthenticated = true
				invalidator.Invalidate()
				c.logRetry(ctx, method, path, resp.StatusCode, attempt, 0, nil)
				continue
			}
			c.logErrorResponse(ctx, method, path, resp.StatusCode, duration, respBody)
			return domain.NewCredentialError(fmt.Sprintf("zoom rejected the access token: %s", apiErr.Message))
		case http.StatusTooManyRequests:
			wait, err := c.rateLimitWait(ctx, resp.Header, path, apiErr)
			if err != nil {
				c.logFinalFailure(ctx, method, path, resp.StatusCode, duration, attempt, err)
				return err
			}
			if attempt >= c.config.MaxAttempts {
				err := domain.NewRetryExhaustedError(apiErr.Message, resp.StatusCode, apiErr.Code)
				c.logFinalFailure(ctx, method, path, resp.StatusCode, duration, attempt, err)
				return err
			}
			c.logRetry(ctx, method, path, resp.StatusCode, attempt, wait, nil)
			if err := c.sleep(ctx, wait); err != nil {
				return err
			}
		default:
			c.logErrorResponse(ctx, method, path, resp.StatusCode, duration, respBody)
			message := apiErr.Message
			if !parsed {
				message = fmt.Sprintf("HTTP %d", resp.StatusCode)
			}
			return domain.NewRemoteError(message, resp.StatusCode, apiErr.Code)
		}
	}
}

// rateLimitWait decides how long to back off after a 429. When the account
// quota is spent it stores the cooldown and returns a QuotaExhausted error.
func (c *Client) rateLimitWait(ctx context.Context, header http.Header, path string, apiErr errorResponse) (time.Duration, error) {
	if header.Get(constants.RateLimitTypeHeader) == constants.RateLimitTypeQPS && strings.Contains(path, "metrics") {
		return c.config.QPSRateLimitWait, nil
	}

	raw := header.Get(constants.RetryAfterHeader)
	if raw == "" {
		return c.config.RateLimitWait, nil
	}

	now := c.now()
	retryAfter, ok := parseRetryAfter(raw, now)
	if !ok {
		return c.config.RateLimitWait, nil
	}

	if header.Get(constants.RateLimitRemainingHeader) == "0" {
		if err := c.cooldown.Set(ctx, retryAfter); err != nil {
			slog.WarnContext(ctx, "failed to persist Zoom quota cooldown", logging.ErrKey, err)
		}
		slog.ErrorContext(ctx, "Zoom API quota exhausted",
			"retry_after", retryAfter.Format(time.RFC3339),
			logging.PriorityCritical())
		return 0, domain.NewQuotaExhaustedError(apiErr.Message, apiErr.Code, retryAfter)
	}

	slog.DebugContext(ctx, "Zoom rate limit remaining",
		"remaining", header.Get(constants.RateLimitRemainingHeader))

	wait := retryAfter.Sub(now)
	if wait < 0 {
		wait = 0
	}
	return wait, nil
}

// parseRetryAfter accepts an absolute timestamp (RFC 3339 or HTTP date) or a delay in seconds.
func parseRetryAfter(raw string, now time.Time) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := http.ParseTime(raw); err == nil {
		return t, true
	}
	if seconds, err := strconv.Atoi(raw); err == nil && seconds >= 0 {
		return now.Add(time.Duration(seconds) * time.Second), true
	}
	return time.Time{}, false
}

// isConnectionReset reports whether a transport error is worth retrying.
func isConnectionReset(err error) bool {
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	return strings.Contains(err.Error(), "connection reset")
}

// marshalRequestBody marshals the request body to JSON; GET requests carry no body.
func (c *Client) marshalRequestBody(method string, body any) ([]byte, error) {
	if body == nil || method == http.MethodGet {
		return nil, nil
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, domain.NewInternalError("failed to marshal request body", err)
	}
	return jsonBody, nil
}

// createRequest creates a new HTTP request with the given parameters
func (c *Client) createRequest(ctx context.Context, method, url string, jsonBody []byte, token string) (*http.Request, error) {
	var bodyReader io.Reader
	if jsonBody != nil {
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, domain.NewInternalError("failed to create request", err)
	}
	req.Header.Set(constants.AuthorizationHeader, constants.BearerPrefix+token)
	req.Header.Set(constants.AcceptHeader, constants.ContentTypeJSON)
	if method != http.MethodGet {
		req.Header.Set(constants.ContentTypeHeader, constants.ContentTypeJSON)
	}
	return req, nil
}

// executeRequestWithTiming executes the request and returns the response, duration, and error
func (c *Client) executeRequestWithTiming(req *http.Request) (*http.Response, time.Duration, error) {
	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	return resp, time.Since(startTime), err
}

func (c *Client) record(ctx context.Context, method string, status int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.Int("status", status),
	)
	c.calls.Add(ctx, 1, attrs)
	c.duration.Record(ctx, duration.Seconds(), attrs)
}

func decodeResponse(body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return domain.NewInternalError("failed to decode Zoom response", err)
	}
	return nil
}

// parseErrorResponse attempts to parse a Zoom API error response
func parseErrorResponse(body []byte) (errorResponse, bool) {
	var errResp errorResponse
	if len(bytes.TrimSpace(body)) == 0 {
		return errResp, false
	}
	if err := json.Unmarshal(body, &errResp); err != nil {
		return errResp, false
	}
	return errResp, true
}

// badRequestMessage appends every validation sub-error to the base message.
func (e errorResponse) badRequestMessage() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, sub := range e.Errors {
		b.WriteString(" ")
		b.WriteString(sub.Message)
	}
	return b.String()
}

// logRequestAttempt logs the request attempt
func (c *Client) logRequestAttempt(ctx context.Context, method, path string, attempt int) {
	if attempt == 1 {
		slog.DebugContext(ctx, "making Zoom API request",
			"method", method,
			"path", path,
			"max_attempts", c.config.MaxAttempts,
		)
		return
	}
	slog.DebugContext(ctx, "retrying Zoom API request",
		"method", method,
		"path", path,
		"attempt", attempt,
		"max_attempts", c.config.MaxAttempts,
	)
}

// logSuccessfulResponse logs successful responses
func (c *Client) logSuccessfulResponse(ctx context.Context, method, path string, status int, duration time.Duration, attempt int) {
	slog.InfoContext(ctx, "Zoom API request completed",
		"method", method,
		"path", path,
		"status", status,
		"duration", duration.String(),
		"attempt", attempt,
	)
}

// logErrorResponse logs non-retryable error responses
func (c *Client) logErrorResponse(ctx context.Context, method, path string, status int, duration time.Duration, body []byte) {
	slog.ErrorContext(ctx, "Zoom API error response",
		"method", method,
		"path", path,
		"status", status,
		"duration", duration.String(),
		"body", string(body),
		logging.ErrKey, fmt.Errorf("status: %d", status))
}

func (c *Client) logRetry(ctx context.Context, method, path string, status, attempt int, wait time.Duration, err error) {
	args := []any{
		"method", method,
		"path", path,
		"attempt", attempt,
		"max_attempts", c.config.MaxAttempts,
		"wait", wait.String(),
	}
	if status != 0 {
		args = append(args, "status", status)
	}
	if err != nil {
		args = append(args, logging.ErrKey, err)
	}
	slog.WarnContext(ctx, "Zoom API request failed, retrying", args...)
}

// logFinalFailure logs the final failure after all retries
func (c *Client) logFinalFailure(ctx context.Context, method, path string, status int, duration time.Duration, attempt int, err error) {
	slog.ErrorContext(ctx, "Zoom API request failed",
		"method", method,
		"path", path,
		"status", status,
		"duration", duration.String(),
		"attempts", attempt,
		logging.ErrKey, err,
		logging.PriorityCritical())
}
