package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	domcheckout "example.com/voltcart/app/internal/domain/checkout"
)

// ErrServer marks a 5xx answer from the backend.
var ErrServer = errors.New("backend server error")

type Options struct {
	BaseURL      string
	Timeout      time.Duration
	MaxFailures  uint32
	OpenDuration time.Duration
	HTTPClient   *http.Client
}

type response struct {
	status int
	body   []byte
}

// client is the shared transport of the gateway clients: JSON over HTTP
// behind a circuit breaker. Only transport failures and 5xx answers count
// against the breaker; a 4xx is the backend working as intended.
type client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[response]
}

func newClient(name string, opts Options) *client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	maxFailures := opts.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	openFor := opts.OpenDuration
	if openFor <= 0 {
		openFor = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("[gateway] breaker %s: %s -> %s", name, from, to)
		},
	})

	return &client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    httpClient,
		breaker: breaker,
	}
}

// do sends one request. It returns the response for any status below 500;
// everything else becomes a *checkout.NetworkError tagged with op.
func (c *client) do(ctx context.Context, op, method, path string, headers map[string]string, payload any) (response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return response{}, fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	resp, err := c.breaker.Execute(func() (response, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return response{}, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		res, err := c.http.Do(req)
		if err != nil {
			return response{}, err
		}
		defer res.Body.Close()

		data, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
		if err != nil {
			return response{}, err
		}
		if res.StatusCode >= http.StatusInternalServerError {
			return response{}, fmt.Errorf("%w: %d %s", ErrServer, res.StatusCode, strings.TrimSpace(string(data)))
		}
		return response{status: res.StatusCode, body: data}, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return response{}, ctx.Err()
		}
		return response{}, &domcheckout.NetworkError{Op: op, Err: err}
	}
	return resp, nil
}

func decode(op string, r response, v any) error {
	if err := json.Unmarshal(r.body, v); err != nil {
		return &domcheckout.NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// reason extracts a human readable message from an error response.
func reason(r response) string {
	var eb errorBody
	if err := json.Unmarshal(r.body, &eb); err == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Error != "" {
			return eb.Error
		}
	}
	return http.StatusText(r.status)
}
