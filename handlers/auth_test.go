package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"spotfinder/config"
	"spotfinder/db/dbtest"
	"spotfinder/middleware"
	"spotfinder/models"
	"spotfinder/services"
	"spotfinder/store"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testServiceKey = "svc-key"

type identityEnv struct {
	router *gin.Engine
	users  *store.UserStore
	events *recordingSender
}

func newIdentityEnv(t *testing.T) *identityEnv {
	t.Helper()
	conn := dbtest.Open(t, dbtest.Users)
	users := store.NewUserStore(conn)
	events := &recordingSender{}
	features := config.Features{WelcomeNotifications: true, RewardNotifications: true}
	rewards := services.NewRewards(users, events, features, zap.NewNop())

	tokens := newTokens()
	r := gin.New()
	NewAuthHandler(users, rewards, tokens, zap.NewNop()).Routes(r,
		middleware.AuthRequired(tokens),
		middleware.ServiceKey(testServiceKey),
		middleware.RateLimit(1000, time.Minute),
	)
	return &identityEnv{router: r, users: users, events: events}
}

func (e *identityEnv) register(t *testing.T, username string) models.User {
	t.Helper()
	w := do(t, e.router, request{method: http.MethodPost, path: "/auth/register", body: gin.H{
		"username": username,
		"email":    username + "@test.com",
		"password": "password123",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[struct{ User models.User }](t, w).User
}

func (e *identityEnv) addPoints(t *testing.T, userID int64, amount int) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, e.router, request{
		method:  http.MethodPut,
		path:    "/auth/add-points",
		body:    gin.H{"userId": userID, "amount": amount},
		headers: map[string]string{"X-Service-Key": testServiceKey},
	})
}

func TestRegister(t *testing.T) {
	env := newIdentityEnv(t)

	w := do(t, env.router, request{method: http.MethodPost, path: "/auth/register", body: gin.H{
		"username": "alice", "email": "alice@test.com", "password": "password123",
	}})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "User registered successfully")
	assert.NotContains(t, w.Body.String(), "password")

	resp := decode[struct{ User models.User }](t, w)
	assert.NotZero(t, resp.User.ID)
	assert.Equal(t, 0, resp.User.Points)

	welcome := env.events.OfType(models.NotificationSystem)
	require.Len(t, welcome, 1)
	assert.Equal(t, resp.User.ID, welcome[0].UserID)
}

func TestRegister_Duplicate(t *testing.T) {
	env := newIdentityEnv(t)
	env.register(t, "alice")

	w := do(t, env.router, request{method: http.MethodPost, path: "/auth/register", body: gin.H{
		"username": "alice", "email": "other@test.com", "password": "password123",
	}})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, env.router, request{method: http.MethodPost, path: "/auth/register", body: gin.H{
		"username": "alice2", "email": "alice@test.com", "password": "password123",
	}})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_Invalid(t *testing.T) {
	env := newIdentityEnv(t)

	for _, body := range []gin.H{
		{"email": "a@test.com", "password": "password123"},
		{"username": "a", "password": "password123"},
		{"username": "a", "email": "a@test.com"},
		{"username": "a", "email": "not-an-email", "password": "password123"},
		{"username": "a", "email": "a@test.com", "password": "short"},
	} {
		w := do(t, env.router, request{method: http.MethodPost, path: "/auth/register", body: body})
		assert.Equal(t, http.StatusBadRequest, w.Code, fmt.Sprint(body))
	}
}

func TestLogin(t *testing.T) {
	env := newIdentityEnv(t)
	u := env.register(t, "bob")

	w := do(t, env.router, request{method: http.MethodPost, path: "/auth/login", body: gin.H{
		"email": "bob@test.com", "password": "password123",
	}})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[struct {
		Token string
		User  models.Profile
	}](t, w)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, models.Profile{ID: u.ID, Username: "bob", Email: "bob@test.com", Points: 0, Status: models.StatusBeginner}, resp.User)

	id, err := newTokens().Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, "bob", id.Username)
}

func TestLogin_Failures(t *testing.T) {
	env := newIdentityEnv(t)
	env.register(t, "bob")

	w := do(t, env.router, request{method: http.MethodPost, path: "/auth/login", body: gin.H{"email": "bob@test.com", "password": "wrong-password"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, env.router, request{method: http.MethodPost, path: "/auth/login", body: gin.H{"email": "nobody@test.com", "password": "password123"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, env.router, request{method: http.MethodPost, path: "/auth/login", body: gin.H{"email": "bob@test.com"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMe(t *testing.T) {
	env := newIdentityEnv(t)
	u := env.register(t, "carol")
	require.Equal(t, http.StatusOK, env.addPoints(t, u.ID, 120).Code)

	w := do(t, env.router, request{method: http.MethodGet, path: "/auth/me", token: tokenFor(t, u.ID, "carol")})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[struct{ User models.Profile }](t, w)
	assert.Equal(t, 120, resp.User.Points)
	assert.Equal(t, models.StatusLocal, resp.User.Status)

	w = do(t, env.router, request{method: http.MethodGet, path: "/auth/me"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, env.router, request{method: http.MethodGet, path: "/auth/me", token: tokenFor(t, 999, "ghost")})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddPoints_RequiresServiceKey(t *testing.T) {
	env := newIdentityEnv(t)
	u := env.register(t, "dave")

	w := do(t, env.router, request{method: http.MethodPut, path: "/auth/add-points", body: gin.H{"userId": u.ID, "amount": 10}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	got, err := env.users.GetByID(t.Context(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Points)
}

func TestAddPoints(t *testing.T) {
	env := newIdentityEnv(t)
	u := env.register(t, "erin")

	w := env.addPoints(t, u.ID, 90)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"username":"erin","points":90,"status":"Beginner"}`, u.ID), w.Body.String())
	assert.Empty(t, env.events.OfType(models.NotificationReward))

	w = env.addPoints(t, u.ID, 20)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"Local"`)

	rewards := env.events.OfType(models.NotificationReward)
	require.Len(t, rewards, 1)
	assert.Equal(t, "Congratulations! You reached Local status", rewards[0].Message)
	assert.Equal(t, u.ID, rewards[0].UserID)
}

func TestAddPoints_SameTierNoEvent(t *testing.T) {
	env := newIdentityEnv(t)
	u := env.register(t, "fred")

	require.Equal(t, http.StatusOK, env.addPoints(t, u.ID, 10).Code)
	require.Equal(t, http.StatusOK, env.addPoints(t, u.ID, 5).Code)

	assert.Empty(t, env.events.OfType(models.NotificationReward))
}

func TestAddPoints_Errors(t *testing.T) {
	env := newIdentityEnv(t)
	u := env.register(t, "gina")

	assert.Equal(t, http.StatusNotFound, env.addPoints(t, 999, 10).Code)
	assert.Equal(t, http.StatusConflict, env.addPoints(t, u.ID, -1).Code)

	w := do(t, env.router, request{
		method:  http.MethodPut,
		path:    "/auth/add-points",
		body:    gin.H{"userId": u.ID},
		headers: map[string]string{"X-Service-Key": testServiceKey},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddPoints_Concurrent(t *testing.T) {
	env := newIdentityEnv(t)
	u := env.register(t, "hank")

	const n = 50
	var wg sync.WaitGroup
	codes := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes <- env.addPoints(t, u.ID, 2).Code
		}()
	}
	wg.Wait()
	close(codes)
	for code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}

	got, err := env.users.GetByID(t.Context(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2*n, got.Points)
	assert.Len(t, env.events.OfType(models.NotificationReward), 1)
}

func TestPublicProfile(t *testing.T) {
	env := newIdentityEnv(t)
	u := env.register(t, "ivy")
	require.Equal(t, http.StatusOK, env.addPoints(t, u.ID, 600).Code)

	w := do(t, env.router, request{method: http.MethodGet, path: "/auth/users/ivy"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"ivy","status":"Hero"}`, w.Body.String())

	w = do(t, env.router, request{method: http.MethodGet, path: "/auth/users/nobody"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	r := gin.New()
	r.GET("/up", Health("identity", fakePinger{}, zap.NewNop()))
	r.GET("/down", Health("identity", fakePinger{err: errBoom}, zap.NewNop()))

	w := do(t, r, request{method: http.MethodGet, path: "/up"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"up"`)

	w = do(t, r, request{method: http.MethodGet, path: "/down"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"DB connection failed"}`, w.Body.String())
}
