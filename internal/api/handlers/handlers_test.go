package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocomet/rideshare/internal/api/handlers"
	"github.com/gocomet/rideshare/internal/api/middleware"
	"github.com/gocomet/rideshare/internal/api/routes"
	"github.com/gocomet/rideshare/internal/domain/user"
	"github.com/gocomet/rideshare/internal/service/drivers"
	"github.com/gocomet/rideshare/internal/service/pricing"
	"github.com/gocomet/rideshare/internal/service/rides"
	"github.com/gocomet/rideshare/internal/service/users"
	"github.com/gocomet/rideshare/internal/store/memory"
	apperrors "github.com/gocomet/rideshare/pkg/errors"
	"github.com/gocomet/rideshare/pkg/logger"
)

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T, checks map[string]handlers.HealthCheck) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := memory.New()
	log := logger.NewNop()
	h := handlers.NewHandlers(
		rides.NewService(st, pricing.NewService(pricing.DefaultConfig()), log, rides.Config{}),
		drivers.NewService(st, log),
		users.NewService(st, log),
		log,
		checks,
	)

	r := gin.New()
	routes.SetupRoutes(r, h, nil, log)
	return &testServer{t: t, router: r}
}

func (s *testServer) do(method, path string, body any, id uuid.UUID, role user.Role) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if id != uuid.Nil {
		req.Header.Set(middleware.HeaderUserID, id.String())
	}
	if role != "" {
		req.Header.Set(middleware.HeaderUserRole, string(role))
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func (s *testServer) register(name, email string) uuid.UUID {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/v1/users", map[string]string{
		"name": name, "email": email, "address": "House 1, Road 2",
	}, uuid.Nil, "")
	require.Equal(s.t, http.StatusCreated, code, env.Message)

	var u struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &u))
	return u.ID
}

// onboardDriver registers a user and walks them through approval
func (s *testServer) onboardDriver(email string) (uuid.UUID, uuid.UUID) {
	s.t.Helper()
	userID := s.register("Driver", email)

	code, env := s.do(http.MethodPost, "/v1/drivers/apply", map[string]string{
		"vehicle_type":   "CAR",
		"vehicle_model":  "Axio",
		"vehicle_number": "DHA-11-2233",
		"license_number": "LIC-42",
	}, userID, user.RoleRider)
	require.Equal(s.t, http.StatusCreated, code, env.Message)

	var d struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &d))

	code, env = s.do(http.MethodPatch, "/v1/drivers/applications/"+d.ID.String()+"/status",
		map[string]string{"status": "APPROVED"}, uuid.New(), user.RoleAdmin)
	require.Equal(s.t, http.StatusOK, code, env.Message)

	code, env = s.do(http.MethodPatch, "/v1/drivers/availability",
		map[string]string{"availability": "AVAILABLE"}, userID, user.RoleDriver)
	require.Equal(s.t, http.StatusOK, code, env.Message)
	return userID, d.ID
}

func rideBody(vehicle string) map[string]any {
	return map[string]any{
		"pickup_location":      map[string]any{"type": "Point", "coordinates": []float64{23.8103, 90.4125}, "name": "Gulshan"},
		"destination_location": map[string]any{"type": "Point", "coordinates": []float64{23.7509, 90.3935}, "name": "Dhanmondi"},
		"vehicle_type":         vehicle,
	}
}

func rideFrom(t *testing.T, env envelope) (uuid.UUID, string, int64) {
	t.Helper()
	var rd struct {
		ID     uuid.UUID `json:"id"`
		Status string    `json:"status"`
		Fare   int64     `json:"fare"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rd))
	return rd.ID, rd.Status, rd.Fare
}

func TestIdentityRequired(t *testing.T) {
	s := newTestServer(t, nil)

	code, env := s.do(http.MethodGet, "/v1/rides/history", nil, uuid.Nil, user.RoleRider)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, apperrors.CodeUnauthorized, env.Code)

	code, env = s.do(http.MethodGet, "/v1/rides/history", nil, uuid.New(), "PILOT")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, apperrors.CodeUnauthorized, env.Code)
}

func TestRoleGuards(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		role   user.Role
	}{
		{"driver cannot request rides", http.MethodPost, "/v1/rides", user.RoleDriver},
		{"rider cannot drive", http.MethodPatch, "/v1/rides/" + uuid.NewString() + "/status", user.RoleRider},
		{"rider cannot see earnings", http.MethodGet, "/v1/rides/earnings", user.RoleRider},
		{"rider cannot review applications", http.MethodGet, "/v1/drivers/applications", user.RoleRider},
		{"driver cannot block users", http.MethodPatch, "/v1/users/" + uuid.NewString() + "/active-state", user.RoleDriver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(tt.method, tt.path, map[string]string{}, uuid.New(), tt.role)
			assert.Equal(t, http.StatusForbidden, code)
			assert.Equal(t, apperrors.CodeForbidden, env.Code)
		})
	}
}

func TestRideLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)
	driverID, _ := s.onboardDriver("driver@example.com")
	riderID := s.register("Rider", "rider@example.com")

	code, env := s.do(http.MethodPost, "/v1/rides", rideBody("CAR"), riderID, user.RoleRider)
	require.Equal(t, http.StatusCreated, code, env.Message)
	rideID, status, fare := rideFrom(t, env)
	assert.Equal(t, "REQUESTED", status)
	assert.Positive(t, fare)

	code, env = s.do(http.MethodPost, "/v1/rides", rideBody("CAR"), riderID, user.RoleRider)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, apperrors.CodeConflict, env.Code)

	statusPath := "/v1/rides/" + rideID.String() + "/status"
	for _, next := range []string{"ACCEPTED", "PICKED_UP", "IN_TRANSIT", "COMPLETED"} {
		code, env = s.do(http.MethodPatch, statusPath, map[string]string{"status": next}, driverID, user.RoleDriver)
		require.Equal(t, http.StatusOK, code, "%s: %s", next, env.Message)
		_, status, _ = rideFrom(t, env)
		assert.Equal(t, next, status)
	}

	code, env = s.do(http.MethodPatch, statusPath, map[string]string{"status": "PICKED_UP"}, driverID, user.RoleDriver)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, apperrors.CodeInvalidTransition, env.Code)

	code, env = s.do(http.MethodGet, "/v1/rides/earnings", nil, driverID, user.RoleDriver)
	require.Equal(t, http.StatusOK, code, env.Message)
	var earnings rides.EarningHistory
	require.NoError(t, json.Unmarshal(env.Data, &earnings))
	assert.Equal(t, 1, earnings.TotalRides)
	assert.Equal(t, fare, earnings.TotalEarnings)

	code, env = s.do(http.MethodGet, "/v1/rides/history/"+rideID.String(), nil, riderID, user.RoleRider)
	require.Equal(t, http.StatusOK, code, env.Message)
	_, status, _ = rideFrom(t, env)
	assert.Equal(t, "COMPLETED", status)

	otherRider := s.register("Other", "other@example.com")
	code, env = s.do(http.MethodGet, "/v1/rides/history/"+rideID.String(), nil, otherRider, user.RoleRider)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, apperrors.CodeUnauthorized, env.Code)
}

func TestUpdateRideStatus_Validation(t *testing.T) {
	s := newTestServer(t, nil)

	code, env := s.do(http.MethodPatch, "/v1/rides/not-a-uuid/status", map[string]string{"status": "ACCEPTED"}, uuid.New(), user.RoleDriver)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, apperrors.CodeInvalidInput, env.Code)

	code, env = s.do(http.MethodPatch, "/v1/rides/"+uuid.NewString()+"/status", map[string]string{"status": "FLYING"}, uuid.New(), user.RoleDriver)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, apperrors.CodeInvalidInput, env.Code)

	code, env = s.do(http.MethodPatch, "/v1/rides/"+uuid.NewString()+"/status", map[string]string{}, uuid.New(), user.RoleDriver)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, apperrors.CodeInvalidInput, env.Code)
}

func TestCancelRide(t *testing.T) {
	s := newTestServer(t, nil)
	riderID := s.register("Rider", "rider@example.com")

	code, env := s.do(http.MethodPost, "/v1/rides", rideBody("BIKE"), riderID, user.RoleRider)
	require.Equal(t, http.StatusCreated, code, env.Message)
	rideID, _, _ := rideFrom(t, env)

	code, env = s.do(http.MethodPatch, "/v1/rides/"+rideID.String()+"/cancel", map[string]string{"reason": "changed plans"}, riderID, user.RoleRider)
	require.Equal(t, http.StatusOK, code, env.Message)
	_, status, _ := rideFrom(t, env)
	assert.Equal(t, "CANCELLED", status)

	code, env = s.do(http.MethodPatch, "/v1/rides/"+rideID.String()+"/cancel", nil, riderID, user.RoleRider)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, apperrors.CodeConflict, env.Code)
}

func TestRideHistory_EmptyIsArray(t *testing.T) {
	s := newTestServer(t, nil)
	riderID := s.register("Rider", "rider@example.com")

	code, env := s.do(http.MethodGet, "/v1/rides/history", nil, riderID, user.RoleRider)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestRegister(t *testing.T) {
	s := newTestServer(t, nil)
	s.register("Rider", "rider@example.com")

	code, env := s.do(http.MethodPost, "/v1/users", map[string]string{"name": "Again", "email": "RIDER@example.com"}, uuid.Nil, "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, apperrors.CodeConflict, env.Code)

	code, env = s.do(http.MethodPost, "/v1/users", map[string]string{"name": "Bad", "email": "nope"}, uuid.Nil, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, apperrors.CodeInvalidInput, env.Code)
}

func TestSuspendedDriverCannotMoveRides(t *testing.T) {
	s := newTestServer(t, nil)
	driverID, applicationID := s.onboardDriver("driver@example.com")
	riderID := s.register("Rider", "rider@example.com")

	code, env := s.do(http.MethodPost, "/v1/rides", rideBody("CAR"), riderID, user.RoleRider)
	require.Equal(t, http.StatusCreated, code, env.Message)
	rideID, _, _ := rideFrom(t, env)

	code, env = s.do(http.MethodPatch, "/v1/drivers/applications/"+applicationID.String()+"/status",
		map[string]string{"status": "SUSPEND"}, uuid.New(), user.RoleSuperAdmin)
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = s.do(http.MethodPatch, "/v1/rides/"+rideID.String()+"/status",
		map[string]string{"status": "ACCEPTED"}, driverID, user.RoleDriver)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, apperrors.CodeForbidden, env.Code)
}

func TestDriverProfile(t *testing.T) {
	s := newTestServer(t, nil)
	driverID, _ := s.onboardDriver("driver@example.com")

	code, env := s.do(http.MethodGet, "/v1/drivers/me", nil, driverID, user.RoleDriver)
	require.Equal(t, http.StatusOK, code, env.Message)
	var profile struct {
		Driver struct {
			Status       string `json:"status"`
			Availability string `json:"availability"`
		} `json:"driver"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "APPROVED", profile.Driver.Status)
	assert.Equal(t, "AVAILABLE", profile.Driver.Availability)

	code, env = s.do(http.MethodGet, "/v1/drivers/me/rides", nil, driverID, user.RoleDriver)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestSetActiveState(t *testing.T) {
	s := newTestServer(t, nil)
	riderID := s.register("Rider", "rider@example.com")

	code, env := s.do(http.MethodPatch, "/v1/users/"+riderID.String()+"/active-state",
		map[string]string{"active_state": "BLOCKED"}, uuid.New(), user.RoleAdmin)
	require.Equal(t, http.StatusOK, code, env.Message)
	var u struct {
		ActiveState string `json:"active_state"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.Equal(t, "BLOCKED", u.ActiveState)

	code, env = s.do(http.MethodPatch, "/v1/users/"+riderID.String()+"/active-state",
		map[string]string{"active_state": "GONE"}, uuid.New(), user.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, apperrors.CodeInvalidInput, env.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, map[string]handlers.HealthCheck{
		"postgres": func(context.Context) error { return nil },
	})
	code, _ := s.do(http.MethodGet, "/health", nil, uuid.Nil, "")
	assert.Equal(t, http.StatusOK, code)

	s = newTestServer(t, map[string]handlers.HealthCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	code, _ = s.do(http.MethodGet, "/health", nil, uuid.Nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestListRides_DriverFindsRequestedRide(t *testing.T) {
	s := newTestServer(t, nil)
	driverID, _ := s.onboardDriver("driver@example.com")
	riderID := s.register("Rider", "rider@example.com")

	code, env := s.do(http.MethodPost, "/v1/rides", rideBody("CAR"), riderID, user.RoleRider)
	require.Equal(t, http.StatusCreated, code, env.Message)
	rideID, _, _ := rideFrom(t, env)

	code, env = s.do(http.MethodGet, "/v1/rides?status=requested&vehicle_type=car", nil, driverID, user.RoleDriver)
	require.Equal(t, http.StatusOK, code, env.Message)
	var open []struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &open))
	require.Len(t, open, 1)
	assert.Equal(t, rideID, open[0].ID)

	code, env = s.do(http.MethodPatch, "/v1/rides/"+open[0].ID.String()+"/status",
		map[string]string{"status": "ACCEPTED"}, driverID, user.RoleDriver)
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = s.do(http.MethodGet, "/v1/rides?status=requested", nil, driverID, user.RoleDriver)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.JSONEq(t, `[]`, string(env.Data))

	code, env = s.do(http.MethodGet, "/v1/rides?status=FLYING", nil, driverID, user.RoleDriver)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, apperrors.CodeInvalidInput, env.Code)

	code, _ = s.do(http.MethodGet, "/v1/rides", nil, riderID, user.RoleRider)
	assert.Equal(t, http.StatusForbidden, code)
}
