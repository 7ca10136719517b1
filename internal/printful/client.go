// Package printful is a thin gateway to the Printful store API. It owns
// transport concerns only: authentication headers, retry with backoff,
// request pacing, and rate-limit handling. Business logic lives in the
// builder and fleet packages.
package printful

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/mirandola/podforge/internal/clock"
)

const defaultBaseURL = "https://api.printful.com"

// rateLimitFallback is the wait applied on a 429 response that carries
// no Retry-After header.
const rateLimitFallback = 60 * time.Second

// Client talks HTTP+JSON to the vendor API. Safe for sequential use;
// the request pacer is the only shared state and is mutex-protected.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	token       string
	storeID     string
	retry       RetryPolicy
	minInterval time.Duration
	clock       clock.Clock

	mu          sync.Mutex
	lastRequest time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryPolicy overrides the transport retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

// WithMinInterval sets the minimum spacing between consecutive requests.
// Zero disables pacing.
func WithMinInterval(d time.Duration) Option {
	return func(c *Client) { c.minInterval = d }
}

// WithClock substitutes the clock used for pacing and backoff sleeps.
func WithClock(ck clock.Clock) Option {
	return func(c *Client) { c.clock = ck }
}

// NewClient creates a gateway authenticated with the given token and
// store id.
func NewClient(token, storeID string, opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     defaultBaseURL,
		token:       token,
		storeID:     storeID,
		retry:       DefaultRetryPolicy(),
		minInterval: time.Second,
		clock:       clock.System{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the common vendor response wrapper.
type envelope struct {
	Code       int
	Result     json.RawMessage
	ErrMessage string
	ErrReason  string
}

// Do performs one API call, retrying transport failures per the retry
// policy and honoring rate-limit waits. A parsed vendor error body is
// returned as *APIError without retrying.
func (c *Client) Do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encode request body")
		}
	}

	lg := zctx.From(ctx)

	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if err := c.pace(ctx); err != nil {
			return nil, err
		}

		env, retryAfter, err := c.roundTrip(ctx, method, path, payload)
		switch {
		case err == nil && retryAfter > 0:
			// Rate limited. The vendor-prescribed wait counts against
			// the same attempt budget as transport retries.
			lastErr = errors.Errorf("rate limited on %s %s", method, path)
			lg.Warn("Rate limited, waiting",
				zap.String("path", path),
				zap.Duration("retry_after", retryAfter),
			)
			if serr := c.clock.Sleep(ctx, retryAfter); serr != nil {
				return nil, serr
			}
			continue
		case err != nil:
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return nil, err
			}
			lastErr = err
			if attempt < c.retry.MaxAttempts {
				delay := c.retry.Backoff(attempt)
				lg.Warn("Request failed, retrying",
					zap.String("method", method),
					zap.String("path", path),
					zap.Int("attempt", attempt),
					zap.Duration("backoff", delay),
					zap.Error(err),
				)
				if serr := c.clock.Sleep(ctx, delay); serr != nil {
					return nil, serr
				}
			}
			continue
		}

		return env.Result, nil
	}

	return nil, errors.Wrapf(lastErr, "%s %s: all %d attempts failed", method, path, c.retry.MaxAttempts)
}

// roundTrip performs a single HTTP exchange. A positive retryAfter with
// a nil error signals a rate-limit response.
func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte) (env envelope, retryAfter time.Duration, err error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return env, 0, errors.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	if c.storeID != "" {
		req.Header.Set("X-PF-Store-Id", c.storeID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return env, 0, errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return env, 0, errors.Wrap(err, "read response body")
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return env, parseRetryAfter(resp.Header.Get("Retry-After")), nil
	}

	env, err = decodeEnvelope(raw)
	if err != nil {
		// A non-JSON body usually means an intermediary failure page;
		// treat it like a transport error and let the retry loop decide.
		return env, 0, errors.Wrapf(err, "%s %s: status %d", method, path, resp.StatusCode)
	}

	code := env.Code
	if code == 0 {
		code = resp.StatusCode
	}
	if code != http.StatusOK && code != http.StatusCreated {
		return env, 0, &APIError{
			StatusCode: resp.StatusCode,
			Code:       code,
			Message:    env.ErrMessage,
			Reason:     env.ErrReason,
		}
	}

	return env, 0, nil
}

// pace enforces the minimum spacing between consecutive requests.
func (c *Client) pace(ctx context.Context) error {
	if c.minInterval <= 0 {
		return nil
	}

	c.mu.Lock()
	elapsed := c.clock.Now().Sub(c.lastRequest)
	wait := c.minInterval - elapsed
	c.mu.Unlock()

	if wait > 0 {
		if err := c.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.lastRequest = c.clock.Now()
	c.mu.Unlock()
	return nil
}

func parseRetryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(header)
	if err != nil || secs <= 0 {
		return rateLimitFallback
	}
	return time.Duration(secs) * time.Second
}

// decodeEnvelope extracts the code, result, and error fields from the
// vendor response wrapper, leaving the result as raw JSON for typed
// helpers to decode.
func decodeEnvelope(data []byte) (envelope, error) {
	var env envelope
	d := jx.DecodeBytes(data)
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "code":
			v, err := d.Int()
			if err != nil {
				return errors.Wrap(err, "code")
			}
			env.Code = v
		case "result":
			raw, err := d.Raw()
			if err != nil {
				return errors.Wrap(err, "result")
			}
			env.Result = json.RawMessage(raw)
		case "error":
			if d.Next() == jx.Null {
				return d.Null()
			}
			return d.ObjBytes(func(d *jx.Decoder, k []byte) error {
				switch string(k) {
				case "message":
					s, err := d.Str()
					if err != nil {
						return errors.Wrap(err, "error.message")
					}
					env.ErrMessage = s
				case "reason":
					s, err := d.Str()
					if err != nil {
						return errors.Wrap(err, "error.reason")
					}
					env.ErrReason = s
				default:
					return d.Skip()
				}
				return nil
			})
		default:
			return d.Skip()
		}
		return nil
	}); err != nil {
		return env, err
	}
	return env, nil
}
