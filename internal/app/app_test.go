package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"railway/internal/config"
	"railway/internal/domain"
)

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type suite struct {
	t      *testing.T
	router *gin.Engine
}

func newSuite(t *testing.T, driver string) *suite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	cfg := &config.Config{
		AppEnv:             "test",
		HTTPAddr:           ":0",
		StorageDriver:      driver,
		BoltPath:           filepath.Join(dir, "railway.bolt"),
		DatabaseURL:        filepath.Join(dir, "railway.db"),
		JWTSecret:          "e2e-secret",
		JWTTTL:             time.Hour,
		LoginRatePerMinute: 600,
		LoginRateBurst:     50,
		SeedOnStart:        true,
		AdminPassword:      "abc123",
		ShutdownTimeout:    time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	a, err := New(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		_ = a.Close()
	})

	return &suite{t: t, router: a.Router}
}

func (s *suite) do(method, path, token string, body any) (*httptest.ResponseRecorder, TestResponse) {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp TestResponse
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func (s *suite) login(username, password string) string {
	s.t.Helper()
	w, resp := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	return resp.Data["token"].(string)
}

func (s *suite) register(username, name string) string {
	s.t.Helper()
	w, resp := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": name, "email": username + "@example.com", "username": username,
		"password": "secret1", "password_confirm": "secret1",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return resp.Data["user"].(map[string]interface{})["id"].(string)
}

func journeyDate() string {
	return time.Now().AddDate(0, 0, 7).Format(domain.DateLayout)
}

func TestE2E_PassengerJourney(t *testing.T) {
	for _, driver := range []string{"bolt", "sql"} {
		t.Run(driver, func(t *testing.T) {
			s := newSuite(t, driver)
			date := journeyDate()

			w, _ := s.do(http.MethodGet, "/health", "", nil)
			assert.Equal(t, http.StatusOK, w.Code)

			// register
			register := map[string]string{
				"name": "Priya Sharma", "email": "priya@example.com", "username": "priya_s",
				"password": "secret1", "password_confirm": "secret1",
			}
			w, _ = s.do(http.MethodPost, "/api/v1/auth/register", "", register)
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

			w, resp := s.do(http.MethodPost, "/api/v1/auth/register", "", register)
			assert.Equal(t, http.StatusConflict, w.Code)
			assert.Equal(t, "USERNAME_EXISTS", resp.Error.Code)

			register["username"] = "x!"
			register["password_confirm"] = "nope12"
			w, resp = s.do(http.MethodPost, "/api/v1/auth/register", "", register)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

			token := s.login("priya_s", "secret1")

			// search
			w, resp = s.do(http.MethodGet, "/api/v1/trains/search?from=delhi&to=mumbai&date="+date+"&passengers=2", "", nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, float64(1), resp.Data["total"])

			w, resp = s.do(http.MethodGet, "/api/v1/trains/search?from=delhi&date="+date, "", nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

			// book
			w, _ = s.do(http.MethodPost, "/api/v1/bookings", "", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			w, resp = s.do(http.MethodPost, "/api/v1/bookings", token, map[string]any{
				"train_id":       "train1",
				"class_code":     "1A",
				"departure_date": date,
				"passengers": []map[string]any{
					{"name": "Priya Sharma", "age": 29, "gender": "female", "berth": "lower"},
					{"name": "Rahul Sharma", "age": 31},
				},
			})
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
			b := resp.Data["booking"].(map[string]interface{})
			assert.Equal(t, "confirmed", b["status"])
			assert.Equal(t, float64(7000), b["fare"])
			id := b["id"].(string)
			pnr := b["pnr"].(string)

			w, resp = s.do(http.MethodGet, "/api/v1/trains/train1", "", nil)
			require.Equal(t, http.StatusOK, w.Code)
			classes := resp.Data["classes"].([]interface{})
			assert.Equal(t, float64(10), classes[0].(map[string]interface{})["available"])

			w, resp = s.do(http.MethodGet, "/api/v1/bookings", token, nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Len(t, resp.Data["upcoming"], 1)

			w, resp = s.do(http.MethodGet, "/api/v1/bookings/pnr/"+pnr, token, nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, id, resp.Data["id"])

			w, _ = s.do(http.MethodGet, "/api/v1/bookings/"+id+"/ticket", token, nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), pnr)

			// admin
			adminToken := s.login("root", "abc123")

			w, _ = s.do(http.MethodGet, "/api/v1/admin/stats", token, nil)
			assert.Equal(t, http.StatusForbidden, w.Code)

			w, resp = s.do(http.MethodGet, "/api/v1/admin/stats", adminToken, nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, float64(2), resp.Data["total_users"])
			assert.Equal(t, float64(5), resp.Data["total_trains"])

			w, resp = s.do(http.MethodGet, "/api/v1/admin/users?q=sharma", adminToken, nil)
			require.Equal(t, http.StatusOK, w.Code)
			users := resp.Data["items"].([]interface{})
			require.Len(t, users, 1)
			assert.Equal(t, float64(1), users[0].(map[string]interface{})["booking_count"])

			w, resp = s.do(http.MethodGet, "/api/v1/admin/bookings?q=rajdhani", adminToken, nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, float64(1), resp.Data["total"])

			// cancel
			w, resp = s.do(http.MethodPost, "/api/v1/bookings/"+id+"/cancel", token, nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			w, resp = s.do(http.MethodPost, "/api/v1/bookings/"+id+"/cancel", token, nil)
			assert.Equal(t, http.StatusConflict, w.Code)
			assert.Equal(t, "ALREADY_CANCELLED", resp.Error.Code)

			w, resp = s.do(http.MethodGet, "/api/v1/trains/train1", "", nil)
			require.Equal(t, http.StatusOK, w.Code)
			classes = resp.Data["classes"].([]interface{})
			assert.Equal(t, float64(12), classes[0].(map[string]interface{})["available"])

			// logout
			w, _ = s.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
			require.Equal(t, http.StatusOK, w.Code)
			w, resp = s.do(http.MethodGet, "/api/v1/users/me", token, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "TOKEN_REVOKED", resp.Error.Code)
		})
	}
}

func TestE2E_AdminTrainsAndUsers(t *testing.T) {
	s := newSuite(t, "bolt")
	adminToken := s.login("root", "abc123")

	w, resp := s.do(http.MethodPost, "/api/v1/admin/trains", adminToken, map[string]any{
		"number": "22439", "name": "Vande Bharat", "from": "New Delhi", "to": "Katra",
		"departure_time": "06:00", "arrival_time": "14:00",
		"classes": []map[string]any{{"code": "CC", "name": "AC Chair Car", "available": 500, "price": 1400}},
		"days":    []string{"Tue", "Mon"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	trainID := resp.Data["id"].(string)
	assert.Equal(t, []interface{}{"Mon", "Tue"}, resp.Data["days"])

	w, resp = s.do(http.MethodPost, "/api/v1/admin/trains", adminToken, map[string]any{
		"number": "22439", "name": "Copy", "from": "A", "to": "B",
		"classes": []map[string]any{{"code": "CC", "name": "AC Chair Car", "available": 1, "price": 1}},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "TRAIN_NUMBER_EXISTS", resp.Error.Code)

	w, _ = s.do(http.MethodDelete, "/api/v1/admin/trains/"+trainID, adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(http.MethodGet, "/api/v1/trains/"+trainID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp = s.do(http.MethodDelete, "/api/v1/admin/users/admin123", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "SELF_DELETE", resp.Error.Code)

	w, resp = s.do(http.MethodPost, "/api/v1/admin/bookings/bulk-delete", adminToken, map[string]any{"ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = s.do(http.MethodPost, "/api/v1/admin/bookings/bulk-delete", adminToken, map[string]any{"ids": []string{"ghost"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), resp.Data["deleted"])

	w, _ = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "railway_http_requests_total")
}

func TestE2E_DeletedUserTokenRejected(t *testing.T) {
	s := newSuite(t, "bolt")
	adminToken := s.login("root", "abc123")

	ghostID := s.register("ghost", "Ghost Rider")
	ghostToken := s.login("ghost", "secret1")

	w, _ := s.do(http.MethodDelete, "/api/v1/admin/users/"+ghostID, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, resp := s.do(http.MethodPost, "/api/v1/bookings", ghostToken, map[string]any{
		"train_id":       "train1",
		"class_code":     "1A",
		"departure_date": journeyDate(),
		"passengers":     []map[string]any{{"name": "Ghost Rider", "age": 40}},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "USER_NOT_FOUND", resp.Error.Code)

	w, resp = s.do(http.MethodGet, "/api/v1/admin/bookings", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), resp.Data["total"])
}

func TestE2E_DemotedAdminLosesAccess(t *testing.T) {
	s := newSuite(t, "bolt")
	adminToken := s.login("root", "abc123")

	id := s.register("admin2", "Second Admin")
	promote := map[string]string{"name": "Second Admin", "email": "admin2@example.com", "role": "admin"}
	w, _ := s.do(http.MethodPatch, "/api/v1/admin/users/"+id, adminToken, promote)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	token := s.login("admin2", "secret1")
	w, _ = s.do(http.MethodGet, "/api/v1/admin/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	promote["role"] = "user"
	w, _ = s.do(http.MethodPatch, "/api/v1/admin/users/"+id, adminToken, promote)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, resp := s.do(http.MethodGet, "/api/v1/admin/stats", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)

	w, _ = s.do(http.MethodGet, "/api/v1/users/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
