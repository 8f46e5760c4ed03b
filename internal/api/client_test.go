package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filedesk/internal/config"
	"filedesk/internal/credential"
)

func TestNewRequestQueryTransport(t *testing.T) {
	c := NewClient("http://backend/", config.TransportQuery, credential.NewMemoryStore("tok"), time.Second)
	req, err := c.NewRequest(context.Background(), Request{Method: http.MethodGet, Path: "/api/auth/check-session"})
	require.NoError(t, err)
	assert.Equal(t, "http://backend/api/auth/check-session?session_id=tok", req.URL.String())
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestNewRequestBearerTransport(t *testing.T) {
	c := NewClient("http://backend", config.TransportBearer, credential.NewMemoryStore("tok"), time.Second)
	req, err := c.NewRequest(context.Background(), Request{Method: http.MethodGet, Path: "/api/data/files"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	assert.Empty(t, req.URL.Query().Get("session_id"))
}

func TestNewRequestAnonymousAndAbsent(t *testing.T) {
	c := NewClient("http://backend", config.TransportQuery, credential.NewMemoryStore("tok"), time.Second)
	req, err := c.NewRequest(context.Background(), Request{Method: http.MethodPost, Path: "/api/auth/login", Anonymous: true})
	require.NoError(t, err)
	assert.Empty(t, req.URL.RawQuery)

	empty := NewClient("http://backend", config.TransportBearer, credential.NewMemoryStore(""), time.Second)
	req, err = empty.NewRequest(context.Background(), Request{Method: http.MethodGet, Path: "/api/data/files"})
	require.NoError(t, err)
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestNewRequestKeepsQuery(t *testing.T) {
	c := NewClient("http://backend", config.TransportQuery, nil, time.Second)
	req, err := c.NewRequest(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/api/processing/analyze/" + Segment("my data.csv"),
		Query:  map[string][]string{"columns": {"1,3"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "/api/processing/analyze/my%20data.csv", req.URL.EscapedPath())
	assert.Equal(t, "1,3", req.URL.Query().Get("columns"))
}

func TestJSONStatusErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"detail":"User already exists"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, config.TransportQuery, nil, time.Second)
	err := c.JSON(context.Background(), http.MethodPost, "/api/auth/register", map[string]string{"username": "a"}, true, nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.Status)
	assert.Equal(t, "User already exists", se.Detail)
	assert.False(t, IsNetwork(err))
}

func TestJSONNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, config.TransportQuery, nil, time.Second)
	err := c.JSON(context.Background(), http.MethodGet, "/api/data/files", nil, false, nil)
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
}

func TestDetailFrom(t *testing.T) {
	assert.Equal(t, "a; b", detailFrom([]byte(`{"detail":[{"msg":"a"},{"msg":"b"}]}`), "422"))
	assert.Equal(t, "plain failure", detailFrom([]byte("plain failure"), "500"))
	assert.Equal(t, "502 Bad Gateway", detailFrom([]byte("<html>oops</html>"), "502 Bad Gateway"))
	assert.True(t, strings.Contains(detailFrom([]byte(`{"detail":{"code":7}}`), "400"), "code"))
}
