// Package api is the HTTP access layer for the messenger backend.
package api

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/kapu/messenger-api-go/internal/constants"
	"github.com/kapu/messenger-api-go/internal/util"
	"github.com/kapu/messenger-api-go/pkg/errors"
	"github.com/kapu/messenger-api-go/pkg/naming"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// RequestEditor runs on every outgoing request before it is sent.
type RequestEditor func(req *http.Request)

type Option func(*Client)

// WithHTTPClient replaces the default http.Client. Its Timeout is kept as is.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithBaseURL points the client at a self-hosted or test server while keeping
// the environment label.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

func WithCircuitBreaker(cb *util.CircuitBreaker) Option {
	return func(c *Client) {
		c.breaker = cb
	}
}

func WithRequestEditor(editor RequestEditor) Option {
	return func(c *Client) {
		if editor != nil {
			c.editors = append(c.editors, editor)
		}
	}
}

// Client is bound to one environment for its whole life.
type Client struct {
	env        Environment
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	breaker    *util.CircuitBreaker
	editors    []RequestEditor
	logger     *zap.Logger
}

// New never fails: the base URL comes from a total mapping over Environment.
func New(env Environment, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		env:     env,
		baseURL: env.BaseURL(),
		timeout: constants.APIConfig.Timeout,
		logger:  logger.With(zap.String("environment", env.String())),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

func (c *Client) Environment() Environment {
	return c.env
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Account returns the account endpoints. It only binds the client and cannot
// fail.
func (c *Client) Account() *AccountService {
	return &AccountService{client: c}
}

// rawResponse is a completed exchange before the body is decoded.
type rawResponse struct {
	statusCode int
	header     http.Header
	body       []byte
}

func (c *Client) resolve(path string, query url.Values) string {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	return reqURL
}

func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, reqBody any) (*rawResponse, error) {
	reqURL := c.resolve(path, query)

	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := naming.JSON().Marshal(reqBody)
		if err != nil {
			return nil, errors.NewAPIError("failed to marshal request", errors.KindEncode, 0, map[string]any{
				"url": reqURL,
			}).WithCause(err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, errors.NewAPIError("failed to create request", errors.KindEncode, 0, map[string]any{
			"url": reqURL,
		}).WithCause(err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", constants.APIConfig.UserAgent)
	req.Header.Set(requestIDHeader, requestID)
	for _, edit := range c.editors {
		edit(req)
	}

	// Past this point every outcome is recorded, which settles a half-open trial.
	if c.breaker != nil && !c.breaker.CanExecute() {
		return nil, errors.NewAPIError("circuit breaker open", errors.KindCircuitOpen, http.StatusServiceUnavailable, map[string]any{
			"url": reqURL,
		})
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure()
		kind := errors.KindNetwork
		if isTimeout(err) {
			kind = errors.KindTimeout
		}
		c.logger.Warn("Request failed",
			zap.String("method", method),
			zap.String("url", reqURL),
			zap.String("request_id", requestID),
			zap.String("kind", kind.String()),
			zap.Error(err),
		)
		return nil, errors.NewAPIError("request failed", kind, 0, map[string]any{
			"url":        reqURL,
			"request_id": requestID,
		}).WithCause(err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordFailure()
		kind := errors.KindNetwork
		if isTimeout(err) {
			kind = errors.KindTimeout
		}
		return nil, errors.NewAPIError("failed to read response", kind, resp.StatusCode, map[string]any{
			"url":        reqURL,
			"request_id": requestID,
		}).WithCause(err)
	}

	c.logger.Debug("Request completed",
		zap.String("method", method),
		zap.String("url", reqURL),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode >= 500 {
		c.recordFailure()
		return nil, errors.NewAPIError(fmt.Sprintf("messenger API error: %s", resp.Status), errors.KindServer, resp.StatusCode, map[string]any{
			"url":        reqURL,
			"request_id": requestID,
			"body":       string(bodyBytes),
		})
	}

	c.recordSuccess()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewAPIError(fmt.Sprintf("messenger API error: %s", resp.Status), errors.KindClient, resp.StatusCode, map[string]any{
			"url":        reqURL,
			"request_id": requestID,
			"body":       string(bodyBytes),
		})
	}

	return &rawResponse{
		statusCode: resp.StatusCode,
		header:     resp.Header,
		body:       bodyBytes,
	}, nil
}

func (c *Client) recordFailure() {
	if c.breaker != nil {
		c.breaker.RecordFailure(0)
	}
}

func (c *Client) recordSuccess() {
	if c.breaker != nil {
		c.breaker.RecordSuccess()
	}
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}
