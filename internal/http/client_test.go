package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	dvhttp "github.com/fivetwenty-io/dvdoc/internal/http"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTokenUnavailable = errors.New("token unavailable")

// MockTokenManager for testing.
type MockTokenManager struct {
	token string
	err   error
	calls atomic.Int32
}

func (m *MockTokenManager) GetToken(_ context.Context) (string, error) {
	m.calls.Add(1)

	return m.token, m.err
}

func (m *MockTokenManager) RefreshToken(_ context.Context) error {
	return nil
}

func (m *MockTokenManager) SetToken(token string, _ time.Time) {
	m.token = token
}

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) add(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.add("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.add("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.add("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.add("error", msg, fields) }

func (l *MockLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []string

	for _, entry := range l.logs {
		if entry["level"] == level {
			out = append(out, entry["msg"].(string)) //nolint:forcetypeassert // set by add
		}
	}

	return out
}

func apiBase(server *httptest.Server) string {
	return server.URL + "/api/data/v9.2/"
}

func fastRetries(retryMax int) dvhttp.Option {
	return dvhttp.WithRetryConfig(retryMax, 10*time.Millisecond, 100*time.Millisecond)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()

	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/api/data/v9.2/queues", request.URL.Path)
			assert.Equal(t, http.MethodGet, request.Method)
			assert.Equal(t, "Bearer test-token", request.Header.Get("Authorization"))
			assert.Equal(t, "application/json", request.Header.Get("Accept"))
			assert.Equal(t, "4.0", request.Header.Get("OData-MaxVersion"))
			assert.Equal(t, "4.0", request.Header.Get("OData-Version"))
			assert.Equal(t, `odata.include-annotations="*"`, request.Header.Get("Prefer"))

			_ = json.NewEncoder(writer).Encode(map[string]string{"name": "Support"})
		}))
		defer server.Close()

		tokenManager := &MockTokenManager{token: "test-token"}
		client := dvhttp.NewClient(apiBase(server), tokenManager)

		resp, err := client.Do(context.Background(), &dvhttp.Request{Method: http.MethodGet, Path: "/queues"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result map[string]string

		require.NoError(t, json.Unmarshal(resp.Body, &result))
		assert.Equal(t, "Support", result["name"])
		assert.Equal(t, int32(1), tokenManager.calls.Load())
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/api/data/v9.2/queues", request.URL.Path)
			assert.Equal(t, "page=2", request.URL.RawQuery)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := dvhttp.NewClient(apiBase(server), nil)

		resp, err := client.Get(context.Background(), "queues", url.Values{"page": []string{"2"}})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, http.MethodPost, request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]string

			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Equal(t, "Contoso", body["name"])

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := dvhttp.NewClient(apiBase(server), nil)

		resp, err := client.Do(context.Background(), &dvhttp.Request{
			Method: http.MethodPost,
			Path:   "RetrieveTotalRecordCount",
			Body:   map[string]string{"name": "Contoso"},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("error envelope", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(writer).Encode(map[string]interface{}{
				"error": map[string]string{
					"code":    "0x80060888",
					"message": "Resource not found for the segment 'queuez'.",
				},
			})
		}))
		defer server.Close()

		client := dvhttp.NewClient(apiBase(server), nil)

		resp, err := client.Get(context.Background(), "queuez", nil)
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		apiErr := &dataverse.APIError{}
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		assert.Equal(t, "0x80060888", apiErr.Code)
		assert.Equal(t, "Resource not found for the segment 'queuez'.", apiErr.Message)
		assert.Equal(t, apiBase(server)+"queuez", apiErr.RequestURI)
		assert.True(t, dataverse.IsNotFound(err))
	})

	t.Run("error without envelope", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name    string
			body    string
			message string
		}{
			{name: "plain text body", body: "upstream exploded", message: "upstream exploded"},
			{name: "json without envelope", body: `{"detail":"x"}`, message: "Forbidden"},
			{name: "empty body", body: "", message: "Forbidden"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
					writer.WriteHeader(http.StatusForbidden)
					_, _ = writer.Write([]byte(tt.body))
				}))
				defer server.Close()

				client := dvhttp.NewClient(apiBase(server), nil)

				_, err := client.Get(context.Background(), "roles", nil)

				apiErr := &dataverse.APIError{}
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.message, apiErr.Message)
				assert.Empty(t, apiErr.Code)
			})
		}
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "custom-value", request.Header.Get("X-Custom-Header"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := dvhttp.NewClient(apiBase(server), nil)

		resp, err := client.Do(context.Background(), &dvhttp.Request{
			Method:  http.MethodGet,
			Path:    "queues",
			Headers: map[string]string{"X-Custom-Header": "custom-value"},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(writer).Encode(map[string]string{"result": "ok"})
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := dvhttp.NewClient(apiBase(server), nil, dvhttp.WithLogger(logger), dvhttp.WithDebug(true))

		_, err := client.Get(context.Background(), "queues", nil)
		require.NoError(t, err)

		assert.Len(t, logger.logs, 2)
		assert.Equal(t, "HTTP Request", logger.logs[0]["msg"])
		assert.Equal(t, "HTTP Response", logger.logs[1]["msg"])
	})

	t.Run("token failure sends nothing", func(t *testing.T) {
		t.Parallel()

		var sends atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			sends.Add(1)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := dvhttp.NewClient(apiBase(server), &MockTokenManager{err: errTokenUnavailable})

		_, err := client.Get(context.Background(), "queues", nil)
		require.ErrorIs(t, err, errTokenUnavailable)
		assert.Equal(t, int32(0), sends.Load())
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Execute(t *testing.T) {
	t.Parallel()

	t.Run("sends the OData query and decodes", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/api/data/v9.2/roles", request.URL.Path)

			query := request.URL.Query()
			assert.Equal(t, "roleid,name", query.Get("$select"))
			assert.Equal(t, "name eq 'Ops; 50%'", query.Get("$filter"))
			assert.Equal(t, "businessunitid($select=name;$filter=isdisabled eq false)", query.Get("$expand"))
			assert.Equal(t, "5", query.Get("$top"))

			_ = json.NewEncoder(writer).Encode(map[string]interface{}{
				"value": []map[string]string{{"roleid": "1", "name": "Admin"}},
			})
		}))
		defer server.Close()

		client := dvhttp.NewClient(apiBase(server), nil)

		endpoint := dataverse.MustQuery("roles").
			Select("roleid", "name").
			Filter("name eq 'Ops; 50%'").
			Expand("businessunitid", []string{"name"}, "isdisabled eq false").
			Top(5).
			Build()

		var page struct {
			Value []map[string]string `json:"value"`
		}

		err := client.Execute(context.Background(), "/"+endpoint, &page)
		require.NoError(t, err)
		require.Len(t, page.Value, 1)
		assert.Equal(t, "Admin", page.Value[0]["name"])
	})

	t.Run("warns when the result is truncated", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(writer).Encode(map[string]interface{}{
				"value":           []interface{}{},
				"@odata.nextLink": "https://contoso/api/data/v9.2/queues?$skiptoken=abc",
			})
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := dvhttp.NewClient(apiBase(server), nil, dvhttp.WithLogger(logger))

		require.NoError(t, client.Execute(context.Background(), "queues", nil))
		assert.Equal(t, []string{"Result truncated to the first page"}, logger.messages("warn"))
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			_, _ = writer.Write([]byte("<html>"))
		}))
		defer server.Close()

		client := dvhttp.NewClient(apiBase(server), nil)

		var out map[string]interface{}

		err := client.Execute(context.Background(), "queues", &out)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode response from queues")
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()

	t.Run("503 then 200 sends twice", func(t *testing.T) {
		t.Parallel()

		var sends atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			if sends.Add(1) == 1 {
				writer.WriteHeader(http.StatusServiceUnavailable)

				return
			}

			_, _ = writer.Write([]byte(`{"value":[]}`))
		}))
		defer server.Close()

		client := dvhttp.NewClient(apiBase(server), nil, fastRetries(3))

		require.NoError(t, client.Execute(context.Background(), "queues", nil))
		assert.Equal(t, int32(2), sends.Load())
	})

	t.Run("retries on rate limiting", func(t *testing.T) {
		t.Parallel()

		var sends atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			if sends.Add(1) < 3 {
				writer.WriteHeader(http.StatusTooManyRequests)

				return
			}

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := dvhttp.NewClient(apiBase(server), nil, fastRetries(3), dvhttp.WithLogger(logger))

		resp, err := client.Get(context.Background(), "queues", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(3), sends.Load())
		assert.Equal(t, []string{"Retrying request", "Retrying request"}, logger.messages("warn"))
	})

	t.Run("budget exhausted after retryMax plus one sends", func(t *testing.T) {
		t.Parallel()

		var sends atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			sends.Add(1)
			writer.WriteHeader(http.StatusServiceUnavailable)
			_, _ = writer.Write([]byte(`{"error":{"code":"0x80072321","message":"busy"}}`))
		}))
		defer server.Close()

		client := dvhttp.NewClient(apiBase(server), nil, fastRetries(2))

		resp, err := client.Get(context.Background(), "queues", nil)
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.Equal(t, int32(3), sends.Load())

		transportErr := &dataverse.TransportError{}
		require.ErrorAs(t, err, &transportErr)
		assert.Equal(t, 3, transportErr.Attempts)
		assert.Equal(t, http.StatusServiceUnavailable, transportErr.LastStatus)
		assert.Equal(t, apiBase(server)+"queues", transportErr.RequestURI)
		assert.True(t, dataverse.IsTransient(err))

		apiErr := &dataverse.APIError{}
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "busy", apiErr.Message)
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		var sends atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			sends.Add(1)
			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := dvhttp.NewClient(apiBase(server), nil, fastRetries(3))

		resp, err := client.Get(context.Background(), "queues", nil)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, int32(1), sends.Load())
		assert.False(t, dataverse.IsTransient(err))
	})

	t.Run("retries dropped connections", func(t *testing.T) {
		t.Parallel()

		var sends atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			if sends.Add(1) == 1 {
				hijacker, ok := writer.(http.Hijacker)
				require.True(t, ok)

				conn, _, err := hijacker.Hijack()
				require.NoError(t, err)
				_ = conn.Close()

				return
			}

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := dvhttp.NewClient(apiBase(server), nil, fastRetries(3))

		resp, err := client.Get(context.Background(), "queues", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(2), sends.Load())
	})

	t.Run("each retry gets a fresh request id", func(t *testing.T) {
		t.Parallel()

		var (
			mu  sync.Mutex
			ids []string
		)

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			mu.Lock()
			ids = append(ids, request.Header.Get("x-ms-client-request-id"))
			n := len(ids)
			mu.Unlock()

			if n == 1 {
				writer.WriteHeader(http.StatusBadGateway)

				return
			}

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := dvhttp.NewClient(apiBase(server), nil, fastRetries(3),
			dvhttp.WithRequestInterceptor(dvhttp.RequestIDInterceptor()))

		_, err := client.Get(context.Background(), "queues", nil)
		require.NoError(t, err)

		require.Len(t, ids, 2)
		assert.NotEmpty(t, ids[0])
		assert.NotEmpty(t, ids[1])
		assert.NotEqual(t, ids[0], ids[1])
	})
}

func TestClient_Cancellation(t *testing.T) {
	t.Parallel()

	t.Run("cancel during the retry delay", func(t *testing.T) {
		t.Parallel()

		var sends atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			sends.Add(1)
			writer.Header().Set("Retry-After", "10")
			writer.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := dvhttp.NewClient(apiBase(server), nil, fastRetries(3))

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := client.Get(ctx, "queues", nil)

		require.Error(t, err)
		assert.True(t, dataverse.IsCanceled(err))
		assert.False(t, dataverse.IsTransient(err))
		assert.Less(t, time.Since(start), 5*time.Second)
		assert.Equal(t, int32(1), sends.Load())
	})

	t.Run("cancelled before sending", func(t *testing.T) {
		t.Parallel()

		var sends atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			sends.Add(1)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := dvhttp.NewClient(apiBase(server), nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.Get(ctx, "queues", nil)
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, int32(0), sends.Load())
	})
}

func TestEscapeQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw      string
		expected string
	}{
		{"$select=a,b", "$select=a,b"},
		{"$filter=name eq 'x'", "$filter=name%20eq%20'x'"},
		{"$expand=a($select=b;$filter=c eq 1)", "$expand=a($select=b%3B$filter=c%20eq%201)"},
		{"$filter=contains(name,'50%+')", "$filter=contains(name,'50%25%2B')"},
		{"$filter=_solutionid_value eq 6f1c2d55-7a0e", "$filter=_solutionid_value%20eq%206f1c2d55-7a0e"},
		{"$filter=uniquename eq 'R&D'", "$filter=uniquename%20eq%20'R%26D'"},
		{"$filter=name eq 'a=b#c+d'&$top=1", "$filter=name%20eq%20'a%3Db%23c%2Bd'&$top=1"},
		{"$filter=name eq 'it''s & co'&$top=1", "$filter=name%20eq%20'it''s%20%26%20co'&$top=1"},
		{"$filter=name eq 'x&$top=1'", "$filter=name%20eq%20'x%26$top%3D1'"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, dvhttp.EscapeQuery(tt.raw))
	}
}
