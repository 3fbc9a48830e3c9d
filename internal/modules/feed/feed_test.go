package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"railway/internal/domain"
	"railway/internal/events"
	"railway/internal/middleware"
	"railway/internal/pkg/jwt"
	"railway/internal/repository"
	"railway/internal/session"
)

func newFeedServer(t *testing.T, users middleware.UserLookup) (*httptest.Server, *events.Bus, *jwt.Service, *Hub, session.Revoker) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bus := events.NewBus(zap.NewNop())
	t.Cleanup(func() { _ = bus.Close() })

	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, hub.Start(ctx, bus, events.BookingTopics))

	jwtService := jwt.New("feed-secret", time.Hour)
	revoker := session.NewMemoryRevoker()

	r := gin.New()
	NewHandler(hub, jwtService, revoker, users, nil, zap.NewNop()).RegisterRoutes(r.Group("/api/v1"))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv, bus, jwtService, hub, revoker
}

type stubUsers map[string]domain.UserRole

func (s stubUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	role, ok := s[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &domain.User{ID: id, Role: role}, nil
}

func wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/admin/feed?token=" + token
}

func TestFeed_DeliversEventsToAdmins(t *testing.T) {
	srv, bus, jwtService, hub, _ := newFeedServer(t, nil)

	token, _, err := jwtService.GenerateToken("admin123", "admin")
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, bus.Publish(context.Background(), events.TopicBookingCancelled, map[string]string{"pnr": "251234567"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var env events.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, events.TopicBookingCancelled, env.Topic)
	assert.JSONEq(t, `{"pnr":"251234567"}`, string(env.Payload))
}

func TestFeed_RejectsNonAdmins(t *testing.T) {
	srv, _, jwtService, _, revoker := newFeedServer(t, nil)

	userToken, _, err := jwtService.GenerateToken("u1", "user")
	require.NoError(t, err)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, userToken), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv, "garbage"), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	adminToken, exp, err := jwtService.GenerateToken("admin123", "admin")
	require.NoError(t, err)
	claims, err := jwtService.ValidateToken(adminToken)
	require.NoError(t, err)
	require.NoError(t, revoker.Revoke(context.Background(), claims.ID, exp))

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv, adminToken), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFeed_ChecksStoredAccount(t *testing.T) {
	srv, _, jwtService, _, _ := newFeedServer(t, stubUsers{"admin2": domain.RoleUser})

	demoted, _, err := jwtService.GenerateToken("admin2", "admin")
	require.NoError(t, err)
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, demoted), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	deleted, _, err := jwtService.GenerateToken("ghost", "admin")
	require.NoError(t, err)
	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv, deleted), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
