// Package api is the HTTP client for the compass backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/philocompass/compass/internal/quiz"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// HeaderSource supplies headers for authenticated calls. An empty header set
// means there is no session.
type HeaderSource interface {
	AuthHeaders() http.Header
}

// Client calls the compass backend. It never retries; each call is attempted
// once and the caller decides what to do with failures.
type Client struct {
	baseURL string
	http    *http.Client
	auth    HeaderSource
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for baseURL. auth may be nil for anonymous use.
func New(baseURL string, timeout time.Duration, auth HeaderSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		auth:    auth,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Hello performs the liveness check and returns the server greeting.
func (c *Client) Hello(ctx context.Context) (string, error) {
	var resp helloResponse
	if err := c.do(ctx, call{op: "hello", method: http.MethodGet, path: "/api/hello"}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, call{
		op:     "login",
		method: http.MethodPost,
		path:   "/api/login",
		body:   loginRequest{Username: username, Password: password},
		schema: LoginSchema,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, username, email, password string) (*User, error) {
	var resp registerResponse
	err := c.do(ctx, call{
		op:     "register",
		method: http.MethodPost,
		path:   "/api/register",
		body:   registerRequest{Username: username, Email: email, Password: password},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// SubmitAnswers stores an anonymous answer vector and returns its id.
func (c *Client) SubmitAnswers(ctx context.Context, answers quiz.Vector) (AnswerID, error) {
	var resp submitResponse
	err := c.do(ctx, call{
		op:     "submit answers",
		method: http.MethodPost,
		path:   "/api/answers",
		body:   submitRequest{Answers: answers.Slice()},
		schema: SubmitSchema,
	}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.AnswerID, nil
}

// Distribution fetches the neighbour counts, label and closest philosopher.
func (c *Client) Distribution(ctx context.Context, id AnswerID) (*DistributionResponse, error) {
	var resp DistributionResponse
	err := c.do(ctx, call{
		op:     "fetch distribution",
		method: http.MethodGet,
		path:   "/api/statistics/distribution/" + id.String(),
		schema: DistributionSchema,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CategoryDistribution fetches the population score buckets per category.
func (c *Client) CategoryDistribution(ctx context.Context, id AnswerID) (*CategoryDistribution, error) {
	var resp CategoryDistribution
	err := c.do(ctx, call{
		op:     "fetch category distribution",
		method: http.MethodGet,
		path:   "/api/statistics/category-distribution/" + id.String(),
		schema: CategoryDistributionSchema,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// LinkAnswer attaches an anonymous answer to the signed-in account.
func (c *Client) LinkAnswer(ctx context.Context, id AnswerID) error {
	return c.do(ctx, call{
		op:     "link answer",
		method: http.MethodPost,
		path:   "/api/answers/link",
		body:   linkRequest{AnswerID: id},
		authed: true,
	}, nil)
}

// LatestAnswer fetches the signed-in user's most recent saved answers.
// A user with no saved answers yields an error matching ErrNotFound.
func (c *Client) LatestAnswer(ctx context.Context) (*AnswerRecord, error) {
	var resp AnswerRecord
	err := c.do(ctx, call{
		op:     "fetch saved answers",
		method: http.MethodGet,
		path:   "/api/answers/me",
		schema: AnswerRecordSchema,
		authed: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GoogleAuthURL is where the user starts the Google sign-in flow.
func (c *Client) GoogleAuthURL() string {
	return c.baseURL + "/api/auth/google"
}

type call struct {
	op     string
	method string
	path   string
	body   any
	schema *Schema
	authed bool
}

func (c *Client) do(ctx context.Context, cl call, out any) error {
	var body io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", cl.op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", cl.op, err)
	}
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	if cl.authed {
		var h http.Header
		if c.auth != nil {
			h = c.auth.AuthHeaders()
		}
		if len(h) == 0 {
			return fmt.Errorf("%s: %w: no session", cl.op, ErrUnauthorized)
		}
		for k, vs := range h {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
	}

	log := c.logger.With(
		zap.String("op", cl.op),
		zap.String("method", cl.method),
		zap.String("path", cl.path),
		zap.String("request_id", reqID),
	)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("request failed", zap.Error(err), zap.Duration("latency", time.Since(start)))
		return fmt.Errorf("%s: %w", cl.op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%s: read body: %w", cl.op, err)
	}
	log.Debug("request done", zap.Int("status", resp.StatusCode), zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: cl.op, StatusCode: resp.StatusCode, Message: parseErrorBody(raw)}
	}

	if out == nil {
		return nil
	}
	if err := validateBody(cl.op, cl.schema, raw); err != nil {
		log.Warn("response failed validation", zap.Error(err))
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &InvalidResponseError{Op: cl.op, Content: raw, Err: err}
	}
	return nil
}
