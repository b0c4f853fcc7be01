package http

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

	"github.com/fivetwenty-io/dvdoc/internal/auth"
	"github.com/fivetwenty-io/dvdoc/internal/constants"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

// Request is an immutable description of one logical call. Every attempt
// is materialised afresh from it, so retries never reuse a consumed body.
type Request struct {
	Method string
	Path   string
	// Query is form-encoded. RawQuery is used instead when Query is nil and
	// carries an OData query string such as "$select=a,b&$filter=x eq 1".
	Query    url.Values
	RawQuery string
	Body     interface{}
	Headers  map[string]string
}

// Header returns the value of a request header, matched case-insensitively.
func (r *Request) Header(key string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}

	return ""
}

// SetHeader sets a request header, replacing any case variant.
func (r *Request) SetHeader(key, value string) {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}

	for k := range r.Headers {
		if strings.EqualFold(k, key) {
			delete(r.Headers, k)
		}
	}

	r.Headers[key] = value
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	RequestURI string
}

// Client is the resilient transport for the Web API. It injects the bearer
// token and the OData headers, retries transient failures and translates
// error bodies into *dataverse.APIError.
type Client struct {
	baseURL      string
	httpClient   *retryablehttp.Client
	tokenManager auth.TokenManager
	policy       *RetryPolicy
	logger       dataverse.Logger
	debug        bool
	userAgent    string
	interceptors *InterceptorChain
}

// Option configures the HTTP client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger dataverse.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig sets the retry budget and the initial and maximum delays.
func WithRetryConfig(retryMax int, initialDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.policy.MaxRetries = retryMax
		c.policy.InitialDelay = initialDelay
		c.policy.MaxDelay = maxDelay
	}
}

// WithBackoffMultiplier sets the exponential backoff base.
func WithBackoffMultiplier(multiplier float64) Option {
	return func(c *Client) {
		c.policy.Multiplier = multiplier
	}
}

// WithRetryPolicy replaces the retry policy.
func WithRetryPolicy(policy *RetryPolicy) Option {
	return func(c *Client) {
		if policy != nil {
			c.policy = policy
		}
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient.HTTPClient = httpClient
		}
	}
}

// WithLeveledLogger routes go-retryablehttp's own attempt logs to logger.
func WithLeveledLogger(logger retryablehttp.LeveledLogger) Option {
	return func(c *Client) {
		c.httpClient.Logger = logger
	}
}

// WithRequestInterceptor appends a request interceptor.
func WithRequestInterceptor(interceptor RequestInterceptor) Option {
	return func(c *Client) {
		c.interceptors.AddRequestInterceptor(interceptor)
	}
}

// WithResponseInterceptor appends a response interceptor.
func WithResponseInterceptor(interceptor ResponseInterceptor) Option {
	return func(c *Client) {
		c.interceptors.AddResponseInterceptor(interceptor)
	}
}

// NewClient creates a transport rooted at baseURL, e.g.
// https://contoso.crm.dynamics.com/api/data/v9.2. tokenManager may be nil for
// unauthenticated endpoints and tests.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   retryClient,
		tokenManager: tokenManager,
		policy:       DefaultRetryPolicy(),
		userAgent:    "dvdoc",
		interceptors: NewInterceptorChain(),
	}

	for _, opt := range opts {
		opt(c)
	}

	retryClient.RetryMax = c.policy.MaxRetries
	retryClient.RetryWaitMin = c.policy.InitialDelay
	retryClient.RetryWaitMax = c.policy.MaxDelay
	retryClient.CheckRetry = c.policy.ShouldRetry
	retryClient.Backoff = c.backoff
	retryClient.ErrorHandler = exhausted
	retryClient.PrepareRetry = prepareRetry
	retryClient.RequestLogHook = c.logRequest
	retryClient.ResponseLogHook = c.logResponse

	return c
}

// BaseURL returns the API root the client is bound to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs one logical request. Non-2xx responses are returned together
// with a *dataverse.APIError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Response interceptors see every request that reached the chain,
	// including one rejected by a request interceptor.
	if err := c.interceptors.ExecuteRequestInterceptors(ctx, req); err != nil {
		_ = c.interceptors.ExecuteResponseInterceptors(ctx, req, nil, err)

		return nil, err
	}

	resp, err := c.do(ctx, req)

	if ierr := c.interceptors.ExecuteResponseInterceptors(ctx, req, resp, err); ierr != nil && err == nil {
		err = ierr
	}

	return resp, err
}

func (c *Client) do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	requestURI := httpReq.URL.String()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		var transportErr *dataverse.TransportError
		if errors.As(err, &transportErr) && transportErr.RequestURI == "" {
			transportErr.RequestURI = requestURI
		}

		return nil, err
	}

	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
		RequestURI: requestURI,
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return resp, parseAPIError(httpResp.StatusCode, body, requestURI)
	}

	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, req *Request) (*retryablehttp.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body interface{}

	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}

		body = data
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, method, c.buildURL(req), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	httpReq.Header.Set(constants.HeaderODataMaxVersion, constants.ODataVersion)
	httpReq.Header.Set(constants.HeaderODataVersion, constants.ODataVersion)
	httpReq.Header.Set(constants.HeaderPrefer, constants.PreferAnnotations)
	httpReq.Header.Set(constants.HeaderUserAgent, c.userAgent)

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", constants.ContentTypeJSON)
	}

	if c.tokenManager != nil {
		token, err := c.tokenManager.GetToken(ctx)
		if err != nil {
			return nil, err
		}

		httpReq.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	return httpReq, nil
}

func (c *Client) buildURL(req *Request) string {
	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")

	switch {
	case len(req.Query) > 0:
		target += "?" + req.Query.Encode()
	case req.RawQuery != "":
		target += "?" + EscapeQuery(req.RawQuery)
	}

	return target
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

// Execute reads endpoint (a collection or function, optionally followed by
// an OData query string) and decodes the JSON body into result. Only the
// first page of a collection is read; a truncated result is logged.
func (c *Client) Execute(ctx context.Context, endpoint string, result interface{}) error {
	path, rawQuery, _ := strings.Cut(strings.TrimLeft(endpoint, "/"), "?")

	resp, err := c.Do(ctx, &Request{
		Method:   http.MethodGet,
		Path:     path,
		RawQuery: rawQuery,
	})
	if err != nil {
		return err
	}

	if result != nil {
		if err := json.Unmarshal(resp.Body, result); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
	}

	c.warnTruncated(path, resp.Body)

	return nil
}

func (c *Client) warnTruncated(path string, body []byte) {
	if c.logger == nil || !bytes.Contains(body, []byte(constants.ODataNextLink)) {
		return
	}

	var page struct {
		NextLink string `json:"@odata.nextLink"`
	}

	if json.Unmarshal(body, &page) == nil && page.NextLink != "" {
		c.logger.Warn("Result truncated to the first page", map[string]interface{}{
			"path":      path,
			"next_link": page.NextLink,
		})
	}
}

func (c *Client) backoff(_, _ time.Duration, attempt int, resp *http.Response) time.Duration {
	wait := c.policy.Delay(attempt, resp)

	if c.logger != nil {
		fields := map[string]interface{}{
			"retry": attempt + 1,
			"wait":  wait.String(),
		}

		if resp != nil {
			fields["status_code"] = resp.StatusCode

			if resp.Request != nil {
				fields["url"] = resp.Request.URL.String()
			}
		}

		c.logger.Warn("Retrying request", fields)
	}

	return wait
}

func (c *Client) logRequest(_ retryablehttp.Logger, req *http.Request, attempt int) {
	if !c.debug || c.logger == nil {
		return
	}

	c.logger.Debug("HTTP Request", map[string]interface{}{
		"method":  req.Method,
		"url":     req.URL.String(),
		"attempt": attempt + 1,
	})
}

func (c *Client) logResponse(_ retryablehttp.Logger, resp *http.Response) {
	if !c.debug || c.logger == nil {
		return
	}

	c.logger.Debug("HTTP Response", map[string]interface{}{
		"status_code": resp.StatusCode,
		"url":         resp.Request.URL.String(),
	})
}

// prepareRetry gives each retry its own header set and request id.
func prepareRetry(req *http.Request) error {
	req.Header = req.Header.Clone()

	if req.Header.Get(constants.HeaderClientRequestID) != "" {
		req.Header.Set(constants.HeaderClientRequestID, uuid.NewString())
	}

	return nil
}

// parseAPIError builds an APIError from the error envelope. Bodies without
// the envelope fall back to the raw text, then the reason phrase.
func parseAPIError(status int, body []byte, requestURI string) *dataverse.APIError {
	apiErr := &dataverse.APIError{StatusCode: status, RequestURI: requestURI}

	var envelope dataverse.ErrorEnvelope

	switch err := json.Unmarshal(body, &envelope); {
	case err == nil && (envelope.Error.Code != "" || envelope.Error.Message != ""):
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	case err != nil && len(bytes.TrimSpace(body)) > 0:
		apiErr.Message = strings.TrimSpace(string(body))
	default:
		apiErr.Message = http.StatusText(status)
	}

	return apiErr
}

// EscapeQuery percent-encodes an OData query string while keeping the
// characters that structure it readable. Inside a quoted string literal the
// parameter separators are encoded too, so a value cannot end its clause.
// A doubled quote toggles twice and leaves the literal open.
func EscapeQuery(raw string) string {
	const (
		keep        = "!$&'()*,=:@/?"
		keepLiteral = "!$'()*,:@/?"
	)

	var sb strings.Builder

	sb.Grow(len(raw))

	inLiteral := false

	for i := range len(raw) {
		ch := raw[i]

		allowed := keep
		if inLiteral {
			allowed = keepLiteral
		}

		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9',
			ch == '-', ch == '.', ch == '_', ch == '~':
			sb.WriteByte(ch)
		case strings.IndexByte(allowed, ch) >= 0:
			sb.WriteByte(ch)
		default:
			fmt.Fprintf(&sb, "%%%02X", ch)
		}

		if ch == '\'' {
			inLiteral = !inLiteral
		}
	}

	return sb.String()
}
