// Package api is the client for the authenticated ShiftPay remote API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"

	"shiftpay/internal/config"
	"shiftpay/internal/errors"
)

// maxErrorBody bounds how much of a failed response body is kept in the error
const maxErrorBody = 4 << 10

// Options configures a Client
type Options struct {
	BaseURL            string
	Timeout            time.Duration
	BreakerMaxFailures uint32
	BreakerTimeout     time.Duration
}

// OptionsFromConfig maps the remote section of the configuration
func OptionsFromConfig(cfg config.RemoteConfig) Options {
	return Options{
		BaseURL:            cfg.BaseURL,
		Timeout:            cfg.Timeout,
		BreakerMaxFailures: cfg.BreakerMaxFailures,
		BreakerTimeout:     cfg.BreakerTimeout,
	}
}

// Client sends JSON requests to {BaseURL}/api/{resource} with a bearer token.
// Consecutive server failures open a circuit breaker that fails fast until
// BreakerTimeout has passed.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[json.RawMessage]

	Shifts    *ShiftsResource
	WorkInfos *WorkInfosResource
}

// NewClient builds a client that authenticates every request with tokens
// from source. A nil source sends requests without credentials.
func NewClient(opts Options, source oauth2.TokenSource) *Client {
	httpClient := &http.Client{}
	if source != nil {
		httpClient = oauth2.NewClient(context.Background(), source)
	}
	httpClient.Timeout = opts.Timeout

	maxFailures := opts.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 1
	}

	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    httpClient,
	}
	c.breaker = gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
		Name:        "shiftpay-api",
		MaxRequests: 1,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
		IsSuccessful: isSuccessful,
	})
	c.Shifts = &ShiftsResource{client: c}
	c.WorkInfos = &WorkInfosResource{client: c}
	return c
}

// isSuccessful keeps client errors (4xx) and cancellations from tripping the breaker
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	if status := errors.APIStatus(err); status >= 400 && status < 500 {
		return true
	}
	return stderrors.Is(err, context.Canceled)
}

// URL builds the absolute URL of resource with optional query parameters
func (c *Client) URL(resource string, query url.Values) string {
	u := c.baseURL + "/api/" + resource
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Do sends one request. A non-nil body is sent as JSON. The decoded response
// is returned only when the server declares a JSON content type; otherwise
// the result is nil.
func (c *Client) Do(ctx context.Context, method, resource string, query url.Values, body any) (json.RawMessage, error) {
	target := c.URL(resource, query)

	result, err := c.breaker.Execute(func() (json.RawMessage, error) {
		return c.send(ctx, method, target, body)
	})
	if err != nil {
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.WrapError(err, errors.ErrorTypeAPI, "remote service unavailable, try again later")
		}
		log.Debug().Err(err).Str("method", method).Str("url", target).Msg("api request failed")
		return nil, err
	}
	return result, nil
}

func (c *Client) send(ctx context.Context, method, target string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrorTypeInvalidInput, "failed to encode request body")
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeInvalidInput, fmt.Sprintf("invalid request %s %s", method, target))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if appErr := errors.FromContext(method+" "+target, err); appErr != nil {
			return nil, appErr
		}
		return nil, errors.WrapError(err, errors.ErrorTypeAPI, fmt.Sprintf("%s %s failed", method, target))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, errors.NewAPIError(method, target, resp.StatusCode, strings.TrimSpace(string(text))).
			WithContext("statusText", http.StatusText(resp.StatusCode))
	}

	if !isJSON(resp.Header.Get("Content-Type")) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeAPI, fmt.Sprintf("%s %s: failed to read response", method, target))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, errors.NewInvalidInputError("response", string(data), "not valid JSON")
	}
	return data, nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
