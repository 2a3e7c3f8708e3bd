package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"spotfinder/spotclient"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, h http.Handler) (*app, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	out := &bytes.Buffer{}
	endpoints := spotclient.Endpoints{Identity: srv.URL, Catalogue: srv.URL, Media: srv.URL, Notification: srv.URL}
	return &app{
		client:      spotclient.New(endpoints, nil, srv.Client()),
		sessionPath: filepath.Join(t.TempDir(), "session.json"),
		out:         out,
	}, out
}

func TestRun_Help(t *testing.T) {
	a, out := newTestApp(t, http.NotFoundHandler())

	require.NoError(t, a.run(context.Background(), nil))
	assert.Contains(t, out.String(), "usage: spotctl")

	assert.ErrorContains(t, a.run(context.Background(), []string{"fly"}), "unknown command")
}

func TestRun_LoginSavesSession(t *testing.T) {
	orig := readPassword
	readPassword = func() ([]byte, error) { return []byte("password123"), nil }
	t.Cleanup(func() { readPassword = orig })

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Login successful","token":"tok","user":{"id":3,"username":"alice","email":"a@test.com","points":120,"status":"Local"}}`))
	})
	a, out := newTestApp(t, mux)

	require.NoError(t, a.run(context.Background(), []string{"login", "-email", "a@test.com"}))
	assert.Contains(t, out.String(), "Logged in as alice [Local, 120 points]")

	saved, err := spotclient.LoadSession(a.sessionPath)
	require.NoError(t, err)
	assert.Equal(t, "tok", saved.Token())

	require.NoError(t, a.run(context.Background(), []string{"logout"}))
	saved, err = spotclient.LoadSession(a.sessionPath)
	require.NoError(t, err)
	assert.False(t, saved.LoggedIn())
}

func TestRun_Spots(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/spots", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":2,"name":"Southbank","latitude":51.5,"longitude":-0.11,"spot_type":"plaza","image_url":null}]`))
	})
	a, out := newTestApp(t, mux)

	require.NoError(t, a.run(context.Background(), []string{"spots"}))
	assert.Contains(t, out.String(), "Southbank")
	assert.Contains(t, out.String(), "plaza")
}

func TestRun_InvalidID(t *testing.T) {
	a, _ := newTestApp(t, http.NotFoundHandler())

	assert.ErrorContains(t, a.run(context.Background(), []string{"spot", "abc"}), "invalid ID")
	assert.Error(t, a.run(context.Background(), []string{"delete-spot"}))
}

func TestRun_AddSpotRequiresLogin(t *testing.T) {
	a, _ := newTestApp(t, http.NotFoundHandler())

	err := a.run(context.Background(), []string{"add-spot", "-name", "x", "-description", "y", "-type", "park"})
	assert.ErrorIs(t, err, spotclient.ErrNotLoggedIn)
}
