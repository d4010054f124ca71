package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewHTTPClient(srv.URL, 5*time.Second, zerolog.Nop())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestFetchChecks(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/checks/target/hostname/node-01", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"name":"disk","script_content":"#!/bin/sh\necho up 1\n","script_hash":"abc123","config":{"path":"/","warn":0.9}},
			{"name":"bare","script_content":"#!/bin/sh\n","script_hash":"def456"}
		]`))
	}))

	defs, err := c.FetchChecks(context.Background(), "node-01")
	require.NoError(t, err)
	require.Len(t, defs, 2)

	assert.Equal(t, "disk", defs[0].Name)
	assert.Equal(t, "abc123", defs[0].ContentHash)
	assert.Equal(t, []byte("#!/bin/sh\necho up 1\n"), defs[0].ScriptBody)
	path, ok := defs[0].Config.Field("path")
	require.True(t, ok)
	assert.Equal(t, "/", path.Str())

	// Missing config defaults to an empty mapping, not nil.
	require.NotNil(t, defs[1].Config)
	assert.Equal(t, KindMapping, defs[1].Config.Kind())
	assert.Empty(t, defs[1].Config.Keys())
}

func TestFetchChecks_EmptyList(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))

	defs, err := c.FetchChecks(context.Background(), "node-01")
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestFetchChecks_ServerError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := c.FetchChecks(context.Background(), "node-01")
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "node-01", fetchErr.Hostname)
}

func TestFetchChecks_MalformedBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"`))
	}))

	_, err := c.FetchChecks(context.Background(), "node-01")
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestFetchChecks_Unreachable(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1", time.Second, zerolog.Nop())
	defer func() { _ = c.Close() }()

	_, err := c.FetchChecks(context.Background(), "node-01")
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestPing(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/health" {
			_, _ = w.Write([]byte(`{"status":"ok"}`))
			return
		}
		http.NotFound(w, r)
	}))

	require.NoError(t, c.Ping(context.Background()))
}

func TestPing_Unhealthy(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))

	require.Error(t, c.Ping(context.Background()))
}
