package meteomatics

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meteopoll/internal/types"
)

var testCreds = types.Credentials{
	Username: "acme",
	Password: types.SecretString("hunter2"),
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(srv.Client(), ClientConfig{
		BaseURL:    srv.URL,
		Model:      "mix",
		Coordinate: types.Coordinate{Latitude: 47.37, Longitude: 8.54},
		UserAgent:  "meteopoll-test",
	})
}

func TestClientFetch(t *testing.T) {
	var gotPath, gotModel, gotAuthUser, gotAuthPass string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotModel = r.URL.Query().Get("model")
		gotAuthUser, gotAuthPass, _ = r.BasicAuth()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [
			{"parameter": "t_2m:C", "coordinates": [
				{"dates": [{"date": "2026-07-14T09:00:00Z", "value": 21.4}]}
			]}
		]}`))
	})

	timeRange := "2026-07-14T09:00:00+00:00--2026-07-15T09:00:00+00:00:PT1H"
	series, err := client.Fetch(context.Background(), testCreds, timeRange, []string{ParamTemperature, ParamPrecip1h})
	require.NoError(t, err)

	assert.Equal(t, "/"+timeRange+"/t_2m:C,precip_1h:mm/47.37,8.54/json", gotPath)
	assert.Equal(t, "mix", gotModel)
	assert.Equal(t, "acme", gotAuthUser)
	assert.Equal(t, "hunter2", gotAuthPass)

	temps := series["t_2m:C"]
	require.Len(t, temps, 1)
	require.NotNil(t, temps[0].Value)
	assert.Equal(t, 21.4, *temps[0].Value)
}

func TestClientFetchGzip(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip", r.Header.Get("Accept-Encoding"))

		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		gz.Write([]byte(`{"data": [
			{"parameter": "t_2m:C", "coordinates": [
				{"dates": [{"date": "2026-07-14T09:00:00Z", "value": 18.0}]}
			]}
		]}`))
		gz.Close()

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	})

	series, err := client.Fetch(context.Background(), testCreds, "r", []string{ParamTemperature})
	require.NoError(t, err)
	require.Len(t, series["t_2m:C"], 1)
}

func TestClientFetchRateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Fetch(context.Background(), testCreds, "r", []string{ParamTemperature})
	require.Error(t, err)
	assert.True(t, types.IsRateLimited(err))

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeUpstreamRateLimited, appErr.Code)
}

func TestClientFetchUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Fetch(context.Background(), testCreds, "r", []string{ParamTemperature})
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeAuthInvalidCreds, appErr.Code)
}

func TestClientFetchUnexpectedStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Fetch(context.Background(), testCreds, "r", []string{ParamTemperature})
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeUpstreamStatus, appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Details["status"])
}

func TestClientFetchServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Fetch(context.Background(), testCreds, "r", []string{ParamTemperature})
	require.Error(t, err)
	assert.True(t, types.IsCommsError(err))
}

func TestClientFetchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(srv.Client(), ClientConfig{
		BaseURL:    srv.URL,
		Coordinate: types.Coordinate{Latitude: 47.37, Longitude: 8.54},
	})
	srv.Close()

	_, err := client.Fetch(context.Background(), testCreds, "r", []string{ParamTemperature})
	require.Error(t, err)
	assert.True(t, types.IsCommsError(err))
}

// TestClientBreakerOpensAfterConsecutiveFailures drives the breaker past its
// trip threshold and verifies subsequent calls fail fast without reaching the
// server.
func TestClientBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 6; i++ {
		_, err := client.Fetch(context.Background(), testCreds, "r", []string{ParamTemperature})
		require.Error(t, err)
	}
	hitsBeforeOpen := hits

	_, err := client.Fetch(context.Background(), testCreds, "r", []string{ParamTemperature})
	require.Error(t, err)
	assert.True(t, types.IsCommsError(err))
	assert.Equal(t, hitsBeforeOpen, hits, "open breaker must not reach the server")
}

func TestClientProbe(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"data": []}`))
	})

	now := time.Date(2026, 7, 14, 9, 30, 0, 0, time.UTC)
	err := client.Probe(context.Background(), testCreds, now, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, "/2026-07-14T09:00:00+00:00--2026-07-14T09:00:00+00:00:PT1H/t_2m:C/47.37,8.54/json", gotPath)
}

func TestClientProbeBadCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	err := client.Probe(context.Background(), testCreds, time.Now(), time.UTC)
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeAuthInvalidCreds, appErr.Code)
}
