// Package amadeus implements flight and hotel search against the Amadeus
// self-service APIs.
package amadeus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/example/trip-planner/internal/domain/trip"
)

const defaultBaseURL = "https://test.api.amadeus.com"

// Retry policy for timeouts and 5xx responses.
const (
	maxRetries  = 2
	backoffBase = 600 * time.Millisecond
	backoffJit  = 300 * time.Millisecond
)

type Options struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration

	// RequestsPerSecond throttles outgoing calls. Zero disables throttling.
	RequestsPerSecond float64

	MaxFlightResults int
	MaxHotelResults  int

	Logger *zap.Logger
}

// Client is safe for concurrent use. It satisfies both trip.FlightProvider
// and trip.HotelProvider.
type Client struct {
	http    *http.Client
	base    string
	id      string
	secret  string
	limiter *rate.Limiter
	log     *zap.Logger
	tracer  trace.Tracer

	maxFlights int
	maxHotels  int

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func New(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), int(math.Max(1, opts.RequestsPerSecond)))
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		http:       &http.Client{Timeout: timeout},
		base:       base,
		id:         strings.TrimSpace(opts.ClientID),
		secret:     strings.TrimSpace(opts.ClientSecret),
		limiter:    limiter,
		log:        log.Named("amadeus"),
		tracer:     otel.Tracer("github.com/example/trip-planner/internal/infrastructure/amadeus"),
		maxFlights: positive(opts.MaxFlightResults, 5),
		maxHotels:  positive(opts.MaxHotelResults, 3),
		now:        time.Now,
		sleep:      sleepCtx,
	}
	return c
}

func (c *Client) Name() string { return "amadeus" }

// Ping fetches a token, which proves both reachability and credentials.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.accessToken(ctx)
	return err
}

// HTTPError is a non-retryable response from the API.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("amadeus http %d: %s", e.Status, e.Body)
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.id == "" || c.secret == "" {
		return "", fmt.Errorf("%w: AMADEUS_CLIENT_ID and AMADEUS_CLIENT_SECRET are required", trip.ErrProviderUnavailable)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.id)
	form.Set("client_secret", c.secret)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: token request: %v", trip.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token request http %d: %s", trip.ErrProviderUnavailable, resp.StatusCode, string(body))
	}
	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("amadeus parse token: %w", err)
	}
	if parsed.ExpiresIn <= 0 {
		parsed.ExpiresIn = 1800
	}
	c.token = parsed.AccessToken
	// refresh 30s early
	c.tokenExpiry = c.now().Add(time.Duration(parsed.ExpiresIn-30) * time.Second)
	return c.token, nil
}

func (c *Client) dropToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// get performs an authenticated GET and decodes the JSON body into out.
// Transport failures and 5xx responses are retried; when retries run out the
// error wraps trip.ErrProviderTransient.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "amadeus.request", trace.WithAttributes(attribute.String("http.path", path)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	u := c.base + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var last error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			d := backoff(attempt - 1)
			c.log.Debug("retrying", zap.String("path", path), zap.Int("attempt", attempt), zap.Duration("delay", d), zap.Error(last))
			if err := c.sleep(ctx, d); err != nil {
				return err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		status, body, err := c.do(ctx, u, token)
		span.SetAttributes(attribute.Int("http.attempts", attempt+1))
		switch {
		case err != nil && ctx.Err() != nil:
			return ctx.Err()
		case err != nil && retryable(err):
			last = err
			continue
		case err != nil:
			return fmt.Errorf("%w: %v", trip.ErrProviderUnavailable, err)
		case status >= 500:
			last = &HTTPError{Status: status, Body: string(body)}
			continue
		case status == http.StatusUnauthorized:
			c.dropToken()
			return fmt.Errorf("%w: %v", trip.ErrProviderUnavailable, &HTTPError{Status: status, Body: string(body)})
		case status < 200 || status >= 300:
			return &HTTPError{Status: status, Body: string(body)}
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("amadeus parse %s: %w", path, err)
		}
		return nil
	}
	return fmt.Errorf("%w: %s after %d attempts: %v", trip.ErrProviderTransient, path, maxRetries+1, last)
}

func (c *Client) do(ctx context.Context, u, token string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

func backoff(attempt int) time.Duration {
	return backoffBase*time.Duration(1<<attempt) + time.Duration(rand.Float64()*float64(backoffJit))
}

// retryable reports transport errors worth another attempt: timeouts, resets,
// refused dials and bodies cut short.
func retryable(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func positive(v, d int) int {
	if v > 0 {
		return v
	}
	return d
}
