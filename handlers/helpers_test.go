package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"spotfinder/auth"
	"spotfinder/models"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokens() *auth.Tokens {
	return auth.NewTokens(testSecret, time.Hour)
}

func tokenFor(t *testing.T, id int64, username string) string {
	t.Helper()
	token, err := newTokens().Issue(models.User{ID: id, Email: username + "@test.com", Username: username})
	require.NoError(t, err)
	return token
}

type request struct {
	method  string
	path    string
	body    any
	token   string
	headers map[string]string
}

func do(t *testing.T, h http.Handler, r request) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if r.body != nil {
		switch b := r.body.(type) {
		case string:
			body = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			body = bytes.NewReader(raw)
		}
	}

	req := httptest.NewRequest(r.method, r.path, body)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type recordingSender struct {
	mu     sync.Mutex
	events []models.NotificationEvent
}

func (r *recordingSender) Send(event models.NotificationEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingSender) OfType(typ string) []models.NotificationEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.NotificationEvent
	for _, e := range r.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

type fakeAwarder struct {
	mu    sync.Mutex
	calls []int64
	err   error
}

func (f *fakeAwarder) AddPoints(_ context.Context, userID int64, amount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, userID)
	return f.err
}

type fakeHost struct {
	mu       sync.Mutex
	uploaded map[string][]byte
	types    map[string]string
	deleted  []string
	upErr    error
	delErr   error
}

func newFakeHost() *fakeHost {
	return &fakeHost{uploaded: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeHost) Upload(_ context.Context, key string, body io.Reader, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upErr != nil {
		return "", f.upErr
	}
	b, _ := io.ReadAll(body)
	f.uploaded[key] = b
	f.types[key] = contentType
	return "https://cdn.test/" + key, nil
}

func (f *fakeHost) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return f.delErr
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

var errBoom = errors.New("boom")

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
