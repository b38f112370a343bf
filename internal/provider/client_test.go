package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightops-platform/internal/models"
	"flightops-platform/pkg/logging"
	"flightops-platform/pkg/metrics"
)

// One collector per test binary: the prometheus default registry rejects
// duplicate registration.
var testMetrics = metrics.NewCollector("provider_test")

func newTestLogger() *logging.StructuredLogger {
	logger := logging.NewStructuredLogger("provider-test", "test", logging.ErrorLevel)
	logger.SetOutput(io.Discard)
	return logger
}

func newTestClient(serverURL string, opts ...ClientOption) *Client {
	base := []ClientOption{
		WithBaseURL(serverURL),
		WithCredentials("test-app-id", "test-app-key"),
		WithRetryPolicy(3, time.Millisecond),
		WithPagePolicy(20, 0),
	}
	return NewClient(newTestLogger(), testMetrics, append(base, opts...)...)
}

func flightsPage(names ...string) models.FlightsResponse {
	flights := make([]models.RawFlight, 0, len(names))
	for _, name := range names {
		flights = append(flights, models.RawFlight{FlightName: name})
	}
	return models.FlightsResponse{Flights: flights}
}

func TestFetchSinglePage(t *testing.T) {
	var gotRequest *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequest = r.Clone(context.Background())
		json.NewEncoder(w).Encode(flightsPage("KL1001", "KL1003"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	resp, err := client.Fetch(context.Background(), Query{Direction: "D", Airline: "KL", Date: "2026-08-30"})
	require.NoError(t, err)
	require.Len(t, resp.Flights, 2)
	assert.Equal(t, "KL1001", resp.Flights[0].FlightName)

	require.NotNil(t, gotRequest)
	assert.Equal(t, "/flights", gotRequest.URL.Path)
	assert.Equal(t, "D", gotRequest.URL.Query().Get("flightDirection"))
	assert.Equal(t, "KL", gotRequest.URL.Query().Get("airline"))
	assert.Equal(t, "2026-08-30", gotRequest.URL.Query().Get("scheduleDate"))
	assert.Equal(t, "0", gotRequest.URL.Query().Get("page"))
	assert.Equal(t, "v4", gotRequest.Header.Get("ResourceVersion"))
	assert.Equal(t, "test-app-id", gotRequest.Header.Get("app_id"))
	assert.Equal(t, "test-app-key", gotRequest.Header.Get("app_key"))
}

func TestFetchAllPagesUntilEmpty(t *testing.T) {
	pages := map[int]models.FlightsResponse{
		0: flightsPage("KL1", "KL2"),
		1: flightsPage("KL3"),
		2: flightsPage(),
	}

	var requested []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		requested = append(requested, page)
		json.NewEncoder(w).Encode(pages[page])
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	resp, err := client.Fetch(context.Background(), Query{FetchAll: true, Date: "2026-08-30"})
	require.NoError(t, err)
	assert.Len(t, resp.Flights, 3)
	assert.Equal(t, []int{0, 1, 2}, requested, "fetch stops at the first empty page")
}

func TestFetchAllPagesCeiling(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		// Never returns an empty page.
		json.NewEncoder(w).Encode(flightsPage("KL1"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, WithPagePolicy(5, 0))

	resp, err := client.Fetch(context.Background(), Query{FetchAll: true, Date: "2026-08-30"})
	require.NoError(t, err)
	assert.Equal(t, 5, requests)
	assert.Len(t, resp.Flights, 5)
}

func TestFetchUpstreamErrorKinds(t *testing.T) {
	tests := []struct {
		status int
		kind   ErrorKind
	}{
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusUnauthorized, KindUnauthorized},
		{http.StatusForbidden, KindForbidden},
		{http.StatusRequestTimeout, KindTimeout},
		{http.StatusGatewayTimeout, KindTimeout},
		{http.StatusInternalServerError, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.status), func(t *testing.T) {
			var requests int
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requests++
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := newTestClient(server.URL)

			_, err := client.Fetch(context.Background(), Query{Date: "2026-08-30"})
			require.Error(t, err)

			var upstreamErr *UpstreamError
			require.True(t, errors.As(err, &upstreamErr))
			assert.Equal(t, tt.status, upstreamErr.Status)
			assert.Equal(t, tt.kind, upstreamErr.Kind)
			assert.Equal(t, 1, requests, "clean HTTP error statuses are never retried")
		})
	}
}

func TestFetchRetriesTransportFailures(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Query().Get("page") == "0" && requests <= 2 {
			// Close the connection mid-response to force a transport error.
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		if r.URL.Query().Get("page") == "0" {
			json.NewEncoder(w).Encode(flightsPage("KL1001"))
			return
		}
		json.NewEncoder(w).Encode(flightsPage())
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	resp, err := client.Fetch(context.Background(), Query{FetchAll: true, Date: "2026-08-30"})
	require.NoError(t, err)
	assert.Len(t, resp.Flights, 1)
	assert.Equal(t, 4, requests, "two transport failures, then page 0, then the empty page")
}

func TestFetchExhaustsRetries(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		conn.Close()
	}))
	defer server.Close()

	client := newTestClient(server.URL, WithRetryPolicy(2, time.Millisecond))

	_, err := client.Fetch(context.Background(), Query{FetchAll: true, Date: "2026-08-30"})
	require.Error(t, err)

	var transportErr *TransportError
	assert.True(t, errors.As(err, &transportErr), "exhausted retries surface the last transport error")
	assert.Equal(t, 3, requests, "initial attempt plus two retries")
}

func TestFetchSinglePageSurfacesTransportFailure(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		conn.Close()
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Fetch(context.Background(), Query{Date: "2026-08-30"})
	require.Error(t, err)

	var transportErr *TransportError
	assert.True(t, errors.As(err, &transportErr))
	assert.Equal(t, 1, requests, "single-page mode does not retry")
}

func TestFetchWritesThroughCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "0" {
			json.NewEncoder(w).Encode(flightsPage("KL1001"))
			return
		}
		json.NewEncoder(w).Encode(flightsPage())
	}))
	defer server.Close()

	cache := NewCache(10*time.Minute, 15*time.Minute, nil, nil)
	client := newTestClient(server.URL, WithCache(cache))

	query := Query{FetchAll: true, Date: "2026-08-30"}
	resp, err := client.Fetch(context.Background(), query)
	require.NoError(t, err)

	cached, ok := cache.Get(query.CacheKey())
	require.True(t, ok)
	assert.Equal(t, resp, cached)
}

func TestFetchFailureLeavesCacheUntouched(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	cache := NewCache(10*time.Minute, 15*time.Minute, nil, nil)
	client := newTestClient(server.URL, WithCache(cache))

	_, err := client.Fetch(context.Background(), Query{Date: "2026-08-30"})
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())
}

func TestFetchMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Fetch(context.Background(), Query{Date: "2026-08-30"})
	require.Error(t, err)

	var transportErr *TransportError
	assert.False(t, errors.As(err, &transportErr), "parse failures are not retried as transport errors")
}
