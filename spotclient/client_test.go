package spotclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"spotfinder/auth"
	"spotfinder/config"
	"spotfinder/db/dbtest"
	"spotfinder/handlers"
	"spotfinder/middleware"
	"spotfinder/models"
	"spotfinder/services"
	"spotfinder/store"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const serviceKey = "svc-key"

type nopSender struct{}

func (nopSender) Send(models.NotificationEvent) {}

func strPtr(s string) *string { return &s }
func floatPtr(f float64) *float64 { return &f }

// newStack runs identity and catalogue services backed by sqlite. The
// catalogue reaches identity with catalogueKey.
func newStack(t *testing.T, catalogueKey string) (*Client, *store.UserStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zap.NewNop()
	issuer := auth.NewTokens("test-secret", time.Hour)

	users := store.NewUserStore(dbtest.Open(t, dbtest.Users))
	rewards := services.NewRewards(users, nopSender{}, config.Features{}, log)
	identity := gin.New()
	handlers.NewAuthHandler(users, rewards, issuer, log).Routes(identity,
		middleware.AuthRequired(issuer),
		middleware.ServiceKey(serviceKey),
		middleware.RateLimit(1000, time.Minute),
	)
	idSrv := httptest.NewServer(identity)
	t.Cleanup(idSrv.Close)

	spots := store.NewSpotStore(dbtest.Open(t, dbtest.Spots))
	catalogue := gin.New()
	handlers.NewSpotsHandler(spots, NewIdentityClient(idSrv.URL, catalogueKey, 5*time.Second), 10, log).
		Routes(catalogue, middleware.AuthRequired(issuer))
	catSrv := httptest.NewServer(catalogue)
	t.Cleanup(catSrv.Close)

	c := New(Endpoints{Identity: idSrv.URL, Catalogue: catSrv.URL}, nil, nil)
	return c, users
}

func TestEndToEnd_CreateSpotAwardsPoints(t *testing.T) {
	c, users := newStack(t, serviceKey)
	ctx := context.Background()

	registered, err := c.Register(ctx, "alice", "alice@test.com", "password123")
	require.NoError(t, err)

	profile, err := c.Login(ctx, "alice@test.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, profile.ID)
	assert.True(t, c.Session().LoggedIn())

	spot, err := c.CreateSpot(ctx, SpotInput{
		Name:        strPtr("Love Park"),
		Description: strPtr("Granite ledges"),
		Latitude:    floatPtr(39.954),
		Longitude:   floatPtr(-75.165),
		SpotType:    strPtr("plaza"),
	})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, spot.CreatedBy)

	u, err := users.GetByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, u.Points)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, me.Points)
	assert.Equal(t, models.StatusBeginner, me.Status)

	spots, err := c.ListSpots(ctx)
	require.NoError(t, err)
	require.Len(t, spots, 1)
	assert.Equal(t, spot.ID, spots[0].ID)
}

func TestEndToEnd_RewardFailureStillCreatesSpot(t *testing.T) {
	c, users := newStack(t, "wrong-key")
	ctx := context.Background()

	registered, err := c.Register(ctx, "bob", "bob@test.com", "password123")
	require.NoError(t, err)
	_, err = c.Login(ctx, "bob@test.com", "password123")
	require.NoError(t, err)

	spot, err := c.CreateSpot(ctx, SpotInput{
		Name:        strPtr("Southbank"),
		Description: strPtr("Undercroft"),
		Latitude:    floatPtr(51.5),
		Longitude:   floatPtr(-0.11),
		SpotType:    strPtr("plaza"),
	})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, spot.CreatedBy)

	u, err := users.GetByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, u.Points)
}

func TestClient_Errors(t *testing.T) {
	c, _ := newStack(t, serviceKey)
	ctx := context.Background()

	_, err := c.CreateSpot(ctx, SpotInput{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = c.Notifications(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = c.Login(ctx, "nobody@test.com", "password123")
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
	assert.ErrorContains(t, err, "Invalid credentials")

	_, err = c.GetSpot(ctx, 999)
	assert.Equal(t, http.StatusNotFound, StatusOf(err))

	_, err = c.Register(ctx, "carol", "carol@test.com", "password123")
	require.NoError(t, err)
	_, err = c.Register(ctx, "carol", "carol2@test.com", "password123")
	assert.Equal(t, http.StatusConflict, StatusOf(err))
}

func TestIdentityClient_AddPoints(t *testing.T) {
	var gotKey string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Service-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/auth/add-points", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"username":"a","points":10,"status":"Beginner"}`))
	}))
	defer srv.Close()

	err := NewIdentityClient(srv.URL+"/", "k", time.Second).AddPoints(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "k", gotKey)
	assert.Equal(t, map[string]any{"userId": float64(1), "amount": float64(10)}, gotBody)
}

func TestIdentityClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	err := NewIdentityClient(srv.URL, "k", 20*time.Millisecond).AddPoints(context.Background(), 1, 10)
	assert.Error(t, err)
}
