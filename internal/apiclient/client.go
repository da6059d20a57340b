// Package apiclient is the HTTP transport shared by every food-bank API wrapper.
// It attaches the bearer token and a request id, decodes the {success,data,message}
// envelope, and maps failures onto pkg/errors codes: transport problems become
// NETWORK_ERROR, while non-2xx responses and success:false become REMOTE_ERROR
// carrying the HTTP status and the server's message.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"github.com/angelmondragon/foodbank-client/pkg/logger"
	"github.com/angelmondragon/foodbank-client/pkg/metrics"
	"github.com/angelmondragon/foodbank-client/pkg/types"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-Id"
	maxBodyBytes    = 4 << 20
)

// TokenSource supplies the bearer token for authenticated requests.
type TokenSource interface {
	Read(ctx context.Context) (string, bool, error)
}

// Params groups dependencies for the API client.
type Params struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
	Logger     *logger.Logger
	Metrics    *metrics.RequestMetrics
	Timeout    time.Duration
	Tracing    bool
}

// Client issues requests against the food-bank REST API.
type Client struct {
	base    *url.URL
	http    *http.Client
	tokens  TokenSource
	logg    *logger.Logger
	metrics *metrics.RequestMetrics
}

// Request describes one API call.
type Request struct {
	// Op labels logs and metrics, e.g. "cart.add".
	Op     string
	Method string
	Path   string
	Query  url.Values
	Body   any
	// Auth attaches the bearer token when one is stored.
	Auth bool
	// Token overrides the stored token for this call.
	Token string
}

// New builds an API client.
func New(p Params) (*Client, error) {
	raw := strings.TrimSpace(p.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing api base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", raw)
	}
	httpClient := p.HTTPClient
	if httpClient == nil {
		httpClient = NewHTTPClient(nil, p.Timeout, p.Tracing)
	}
	logg := p.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Client{
		base:    base,
		http:    httpClient,
		tokens:  p.Tokens,
		logg:    logg,
		metrics: p.Metrics,
	}, nil
}

// Do performs req and returns the decoded envelope.
func (c *Client) Do(ctx context.Context, req Request) (*types.Envelope, error) {
	return c.DoInto(ctx, req, nil)
}

// DoInto performs req and, on success, unmarshals the envelope's data into out.
func (c *Client) DoInto(ctx context.Context, req Request, out any) (*types.Envelope, error) {
	requestID := uuid.NewString()
	ctx = c.requestContext(ctx, req, requestID)

	start := time.Now()
	env, status, err := c.roundTrip(ctx, req, requestID)
	if err == nil && out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if decodeErr := json.Unmarshal(env.Data, out); decodeErr != nil {
			err = pkgerrors.Wrap(pkgerrors.CodeRemote, decodeErr, "unexpected response from server").WithStatus(status)
		}
	}
	c.observe(ctx, req, status, time.Since(start), err)
	return env, err
}

// File is a non-JSON response body such as a CSV export.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Download performs req and returns the raw body of a 2xx response. Error responses
// are decoded like any other call and their envelope is returned for Failure.
func (c *Client) Download(ctx context.Context, req Request) (*File, *types.Envelope, error) {
	requestID := uuid.NewString()
	ctx = c.requestContext(ctx, req, requestID)

	start := time.Now()
	body, header, status, err := c.send(ctx, req, requestID)
	var env *types.Envelope
	if err == nil && (status < 200 || status >= 300) {
		env, _, err = decodeEnvelope(body, status)
	}
	c.observe(ctx, req, status, time.Since(start), err)
	if err != nil {
		return nil, env, err
	}
	return &File{
		Name:        attachmentName(header),
		ContentType: header.Get("Content-Type"),
		Data:        body,
	}, nil, nil
}

func (c *Client) requestContext(ctx context.Context, req Request, requestID string) context.Context {
	return c.logg.WithFields(ctx, map[string]any{
		"request_id": requestID,
		"op":         req.Op,
		"method":     req.Method,
		"path":       req.Path,
	})
}

func (c *Client) observe(ctx context.Context, req Request, status int, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = strings.ToLower(string(pkgerrors.As(err).Code()))
	}
	c.metrics.Observe(req.Op, outcome, elapsed)

	logCtx := c.logg.WithFields(ctx, map[string]any{
		"status":      status,
		"duration_ms": elapsed.Milliseconds(),
	})
	if err != nil {
		logCtx = c.logg.WithFields(logCtx, pkgerrors.Dump(err).Fields())
		c.logg.Warn(logCtx, "api.request.failed")
		return
	}
	c.logg.Debug(logCtx, "api.request.complete")
}

func (c *Client) roundTrip(ctx context.Context, req Request, requestID string) (*types.Envelope, int, error) {
	body, _, status, err := c.send(ctx, req, requestID)
	if err != nil {
		return nil, status, err
	}
	return decodeEnvelope(body, status)
}

func (c *Client) send(ctx context.Context, req Request, requestID string) ([]byte, http.Header, int, error) {
	httpReq, err := c.newRequest(ctx, req, requestID)
	if err != nil {
		return nil, nil, 0, err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, nil, 0, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "unable to reach the server")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.Header, resp.StatusCode, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "reading response").WithStatus(resp.StatusCode)
	}
	return body, resp.Header, resp.StatusCode, nil
}

func decodeEnvelope(body []byte, status int) (*types.Envelope, int, error) {
	env := &types.Envelope{}
	decodeErr := json.Unmarshal(body, env)
	ok := status >= 200 && status < 300

	if !ok {
		msg := ""
		if decodeErr == nil {
			msg = strings.TrimSpace(env.Message)
		}
		if msg == "" {
			msg = http.StatusText(status)
		}
		return env, status, pkgerrors.New(pkgerrors.CodeRemote, msg).WithStatus(status)
	}
	if decodeErr != nil {
		return env, status, pkgerrors.Wrap(pkgerrors.CodeRemote, decodeErr, "unexpected response from server").WithStatus(status)
	}
	if !env.Success {
		msg := strings.TrimSpace(env.Message)
		if msg == "" {
			msg = "request was not successful"
		}
		return env, status, pkgerrors.New(pkgerrors.CodeRemote, msg).WithStatus(status)
	}
	return env, status, nil
}

// attachmentName returns the filename from a Content-Disposition header, if any.
func attachmentName(header http.Header) string {
	_, params, err := mime.ParseMediaType(header.Get("Content-Disposition"))
	if err != nil {
		return ""
	}
	return params["filename"]
}

func (c *Client) newRequest(ctx context.Context, req Request, requestID string) (*http.Request, error) {
	target := *c.base
	target.Path = c.base.Path + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding request body")
		}
		body = bytes.NewReader(payload)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building request")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(requestIDHeader, requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if token := c.bearer(ctx, req); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return httpReq, nil
}

func (c *Client) bearer(ctx context.Context, req Request) string {
	if req.Token != "" {
		return req.Token
	}
	if !req.Auth || c.tokens == nil {
		return ""
	}
	token, ok, err := c.tokens.Read(ctx)
	if err != nil {
		c.logg.Warn(c.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "api.token.read_failed")
		return ""
	}
	if !ok {
		return ""
	}
	return token
}
