package client_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/fivetwenty-io/dvdoc/internal/client"
	dvhttp "github.com/fivetwenty-io/dvdoc/internal/http"
	"github.com/stretchr/testify/assert"
)

const (
	testSolutionID   = "6f1c2d55-7a0e-4b1b-9c3d-2f1e5a6b7c8d"
	testSolutionName = "contoso_core"
	apiPrefix        = "/api/data/v9.2/"
)

// fakeDataverse serves canned Web API responses keyed by the path below the
// API root and counts calls per path.
type fakeDataverse struct {
	t      *testing.T
	server *httptest.Server
	routes map[string]interface{}

	mu    sync.Mutex
	calls map[string]int
}

func newFakeDataverse(t *testing.T, routes map[string]interface{}) *fakeDataverse {
	t.Helper()

	fake := &fakeDataverse{t: t, routes: routes, calls: make(map[string]int)}
	fake.server = httptest.NewServer(http.HandlerFunc(fake.serve))
	t.Cleanup(fake.server.Close)

	return fake
}

func (f *fakeDataverse) serve(writer http.ResponseWriter, request *http.Request) {
	key := strings.TrimPrefix(request.URL.Path, apiPrefix)

	f.mu.Lock()
	f.calls[key]++
	f.mu.Unlock()

	switch route := f.routes[key].(type) {
	case nil:
		writer.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(writer).Encode(map[string]interface{}{
			"error": map[string]string{"code": "0x80060888", "message": "Resource not found for the segment '" + key + "'."},
		})
	case http.HandlerFunc:
		route(writer, request)
	default:
		writeJSON(f.t, writer, route)
	}
}

func (f *fakeDataverse) client() *Client {
	return New(dvhttp.NewClient(f.server.URL+apiPrefix, nil,
		dvhttp.WithRetryConfig(0, time.Millisecond, time.Millisecond)))
}

func (f *fakeDataverse) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[key]
}

func (f *fakeDataverse) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := 0
	for _, n := range f.calls {
		total += n
	}

	return total
}

func collection(rows ...interface{}) map[string]interface{} {
	if rows == nil {
		rows = []interface{}{}
	}

	return map[string]interface{}{"value": rows}
}

func solutionRow() map[string]interface{} {
	return map[string]interface{}{
		"solutionid":   testSolutionID,
		"uniquename":   testSolutionName,
		"friendlyname": "Contoso Core",
		"version":      "1.4.0.2",
		"ismanaged":    false,
		"publisherid":  map[string]string{"friendlyname": "Contoso"},
	}
}

// members answers the solution component query for one component type.
func members(t *testing.T, componentType int, ids ...string) http.HandlerFunc {
	t.Helper()

	return func(writer http.ResponseWriter, request *http.Request) {
		filter := request.URL.Query().Get("$filter")
		assert.Equal(t, "objectid", request.URL.Query().Get("$select"))
		assert.Contains(t, filter, "_solutionid_value eq "+testSolutionID)
		assert.Contains(t, filter, fmt.Sprintf("componenttype eq %d", componentType))

		rows := make([]interface{}, 0, len(ids))
		for _, id := range ids {
			rows = append(rows, map[string]string{"objectid": id})
		}

		_ = json.NewEncoder(writer).Encode(collection(rows...))
	}
}

func writeJSON(t *testing.T, writer http.ResponseWriter, body interface{}) {
	t.Helper()

	writer.Header().Set("Content-Type", "application/json")
	assert.NoError(t, json.NewEncoder(writer).Encode(body))
}
