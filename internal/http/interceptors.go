package http

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/dvdoc/internal/constants"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
	"github.com/google/uuid"
)

// RequestInterceptor is called once per logical request, before the first
// attempt. It may add headers to the descriptor.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor is called once per logical request after the last
// attempt. resp is nil when no response was received.
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response, err error) error

// InterceptorChain manages a chain of interceptors.
type InterceptorChain struct {
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewInterceptorChain creates a new interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{
		requestInterceptors:  make([]RequestInterceptor, 0),
		responseInterceptors: make([]ResponseInterceptor, 0),
	}
}

// AddRequestInterceptor adds a request interceptor to the chain.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, interceptor)
}

// AddResponseInterceptor adds a response interceptor to the chain.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) {
	c.responseInterceptors = append(c.responseInterceptors, interceptor)
}

// ExecuteRequestInterceptors runs all request interceptors.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *Request) error {
	for _, interceptor := range c.requestInterceptors {
		err := interceptor(ctx, req)
		if err != nil {
			return fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors runs all response interceptors.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *Request, resp *Response, reqErr error) error {
	for _, interceptor := range c.responseInterceptors {
		err := interceptor(ctx, req, resp, reqErr)
		if err != nil {
			return fmt.Errorf("response interceptor failed: %w", err)
		}
	}

	return nil
}

// HeaderInterceptor adds fixed headers to every request.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(_ context.Context, req *Request) error {
		for key, value := range headers {
			req.SetHeader(key, value)
		}

		return nil
	}
}

// CallerIDInterceptor impersonates the given system user.
func CallerIDInterceptor(systemUserID uuid.UUID) RequestInterceptor {
	return HeaderInterceptor(map[string]string{constants.HeaderCallerID: systemUserID.String()})
}

// RequestIDInterceptor stamps a client request id so a call can be traced in
// service logs. An id already present is kept.
func RequestIDInterceptor() RequestInterceptor {
	return func(_ context.Context, req *Request) error {
		if req.Header(constants.HeaderClientRequestID) == "" {
			req.SetHeader(constants.HeaderClientRequestID, uuid.NewString())
		}

		return nil
	}
}

// LoggingResponseInterceptor logs the outcome of every request.
func LoggingResponseInterceptor(logger dataverse.Logger) ResponseInterceptor {
	return func(_ context.Context, req *Request, resp *Response, reqErr error) error {
		fields := map[string]interface{}{
			"method": req.Method,
			"path":   req.Path,
		}

		if resp != nil {
			fields["status_code"] = resp.StatusCode
		}

		if reqErr != nil {
			fields["error"] = reqErr.Error()
			logger.Error("API Response Error", fields)
		} else {
			logger.Debug("API Response", fields)
		}

		return nil
	}
}

// Metrics summarises the requests made through a client.
type Metrics struct {
	TotalRequests  int64
	TotalErrors    int64
	TotalLatency   time.Duration
	AverageLatency time.Duration
}

// MetricsCollector collects request metrics. It is safe for concurrent use.
type MetricsCollector struct {
	mu      sync.Mutex
	metrics Metrics
	started map[*Request]time.Time
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{started: make(map[*Request]time.Time)}
}

// Snapshot returns a copy of the current metrics.
func (m *MetricsCollector) Snapshot() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.metrics
}

// RequestInterceptor records the start time of a request.
func (m *MetricsCollector) RequestInterceptor() RequestInterceptor {
	return func(_ context.Context, req *Request) error {
		m.mu.Lock()
		defer m.mu.Unlock()

		m.started[req] = time.Now()

		return nil
	}
}

// LoggingInterceptor logs the running totals after every request.
func (m *MetricsCollector) LoggingInterceptor(logger dataverse.Logger) ResponseInterceptor {
	return func(_ context.Context, _ *Request, _ *Response, _ error) error {
		snapshot := m.Snapshot()

		logger.Debug("Request metrics", map[string]interface{}{
			"requests":        snapshot.TotalRequests,
			"errors":          snapshot.TotalErrors,
			"average_latency": snapshot.AverageLatency.String(),
		})

		return nil
	}
}

// ResponseInterceptor records the outcome and latency of a request.
func (m *MetricsCollector) ResponseInterceptor() ResponseInterceptor {
	return func(_ context.Context, req *Request, _ *Response, reqErr error) error {
		m.mu.Lock()
		defer m.mu.Unlock()

		m.metrics.TotalRequests++

		if reqErr != nil {
			m.metrics.TotalErrors++
		}

		if start, ok := m.started[req]; ok {
			delete(m.started, req)

			m.metrics.TotalLatency += time.Since(start)
			m.metrics.AverageLatency = m.metrics.TotalLatency / time.Duration(m.metrics.TotalRequests)
		}

		return nil
	}
}
