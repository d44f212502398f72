package xtream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaylistURL(t *testing.T) {
	u, err := PlaylistURL("http://panel.example.com:8080", "user", "pa&ss")
	require.NoError(t, err)
	assert.Equal(t, "http://panel.example.com:8080/get.php?output=ts&password=pa%26ss&type=m3u_plus&username=user", u)
}

func TestPlaylistURLTrailingSlash(t *testing.T) {
	u, err := PlaylistURL("http://panel.example.com/", "u", "p")
	require.NoError(t, err)
	assert.Equal(t, "http://panel.example.com/get.php?output=ts&password=p&type=m3u_plus&username=u", u)
}

func TestPlaylistURLInvalidServer(t *testing.T) {
	for _, server := range []string{"", "panel.example.com", "ftp://panel", "http://"} {
		_, err := PlaylistURL(server, "u", "p")
		assert.Error(t, err, "server %q", server)
	}
}

func TestAccountStatusActive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/player_api.php", r.URL.Path)
		assert.Equal(t, "u", r.URL.Query().Get("username"))
		assert.Equal(t, "p", r.URL.Query().Get("password"))
		w.Write([]byte(`{"user_info":{"status":"Active","exp_date":"1767225600","max_connections":"2"}}`))
	}))
	defer srv.Close()

	c := NewClientWith(srv.Client())
	status, err := c.AccountStatus(context.Background(), srv.URL, "u", "p")
	require.NoError(t, err)

	assert.True(t, status.Active)
	assert.Equal(t, "Active", status.Status)
	assert.Equal(t, 2, status.MaxConnections)
	require.NotNil(t, status.ExpiresAt)
	assert.Equal(t, time.Unix(1767225600, 0), *status.ExpiresAt)
}

func TestAccountStatusNumericFields(t *testing.T) {
	// Some panels send numbers as JSON numbers instead of strings.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user_info":{"status":"Expired","exp_date":1767225600,"max_connections":1}}`))
	}))
	defer srv.Close()

	c := NewClientWith(srv.Client())
	status, err := c.AccountStatus(context.Background(), srv.URL, "u", "p")
	require.NoError(t, err)

	assert.False(t, status.Active)
	assert.Equal(t, 1, status.MaxConnections)
	require.NotNil(t, status.ExpiresAt)
}

func TestAccountStatusNoExpiry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user_info":{"status":"Active","exp_date":null,"max_connections":"1"}}`))
	}))
	defer srv.Close()

	c := NewClientWith(srv.Client())
	status, err := c.AccountStatus(context.Background(), srv.URL, "u", "p")
	require.NoError(t, err)
	assert.Nil(t, status.ExpiresAt)
}

func TestAccountStatusHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClientWith(srv.Client())
	_, err := c.AccountStatus(context.Background(), srv.URL, "u", "p")
	assert.Error(t, err)
}
