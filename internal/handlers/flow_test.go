package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chachabrian/ridehail-backend/internal/handlers"
	"github.com/chachabrian/ridehail-backend/internal/logging"
	"github.com/chachabrian/ridehail-backend/internal/services"
	"github.com/chachabrian/ridehail-backend/internal/store/memstore"
	"github.com/chachabrian/ridehail-backend/pkg/utils"
)

const (
	adminEmail    = "root@ride.test"
	adminPassword = "admin-pass"
)

type api struct {
	t *testing.T
	r *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logging.Discard()
	store := memstore.New()

	tokens, err := utils.NewTokenManager("flow-secret", time.Hour)
	require.NoError(t, err)

	locations := services.NewFileLocationList(filepath.Join(t.TempDir(), "locations.json"))
	fares := services.NewFareService(store, nil, log)
	hub := services.NewHub(log)
	pusher := services.NewPusher(nil, store, log)
	auth := services.NewAuthService(store, store, tokens, log)

	require.NoError(t, auth.EnsureAdmin(context.Background(), services.AdminSeed{Email: adminEmail, Password: adminPassword}))

	r := gin.New()
	handlers.RegisterRoutes(r, handlers.Deps{
		Resolver: services.NewPrincipalResolver(store, store, tokens, log),
		Auth:     auth,
		Rides:    services.NewRideService(store, store, store, fares, services.Notifiers{pusher, hub}, log),
		Fares:    fares,
		Admin:    services.NewAdminService(store, store, locations, log),
		Profiles: services.NewProfileService(store, store, log),
		Pusher:   pusher,
		Hub:      hub,
	})
	return &api{t: t, r: r}
}

// call sends body as JSON and decodes the response into out when given.
func (a *api) call(method, path, token string, body any, out any) int {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	if out != nil {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}

type session struct {
	ID    uint   `json:"id"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

type ride struct {
	ID            uint    `json:"id"`
	Fare          float64 `json:"fare"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"paymentStatus"`
	DriverID      *uint   `json:"driverId"`
}

type apiError struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

var booking = gin.H{
	"pickupLocation": gin.H{"address": "Esplanade", "lat": 22.57, "lng": 88.36},
	"dropLocation":   gin.H{"address": "Salt Lake", "lat": 22.58, "lng": 88.42},
	"fare":           1,
}

func (a *api) login(path, email, password string) session {
	a.t.Helper()
	var s session
	code := a.call(http.MethodPost, path, "", gin.H{"email": email, "password": password}, &s)
	require.Equal(a.t, http.StatusOK, code)
	return s
}

func (a *api) onboardDriver(adminToken, name string) session {
	a.t.Helper()
	var driver struct {
		ID     uint   `json:"ID"`
		Status string `json:"status"`
	}
	code := a.call(http.MethodPost, "/api/admin/drivers", adminToken, gin.H{
		"name": name, "email": name + "@drivers.test", "password": "driver-pass", "phone": "555",
		"vehicle": gin.H{"model": "Swift", "plateNumber": "WB01", "type": "Sedan"},
	}, &driver)
	require.Equal(a.t, http.StatusCreated, code)
	assert.Equal(a.t, "pending", driver.Status)

	code = a.call(http.MethodPut, fmt.Sprintf("/api/admin/drivers/%d/approve", driver.ID), adminToken, nil, nil)
	require.Equal(a.t, http.StatusOK, code)

	return a.login("/api/auth/driver/login", name+"@drivers.test", "driver-pass")
}

func TestRideLifecycleOverHTTP(t *testing.T) {
	a := newAPI(t)

	var rider session
	code := a.call(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Asha", "email": "asha@ride.test", "password": "rider-pass", "role": "admin",
	}, &rider)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "rider", rider.Role)

	admin := a.login("/api/auth/login", adminEmail, adminPassword)
	assert.Equal(t, "admin", admin.Role)
	driver := a.onboardDriver(admin.Token, "dev")
	assert.Equal(t, "driver", driver.Role)

	// the client's fare is ignored
	var booked ride
	code = a.call(http.MethodPost, "/api/rides", rider.Token, booking, &booked)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, 105.0, booked.Fare)
	assert.Equal(t, "pending", booked.Status)
	ridePath := fmt.Sprintf("/api/rides/%d", booked.ID)

	var assigned ride
	code = a.call(http.MethodPut, fmt.Sprintf("/api/admin/rides/%d/assign", booked.ID), admin.Token, gin.H{"driverId": driver.ID}, &assigned)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "assigned", assigned.Status)

	var pending []ride
	require.Equal(t, http.StatusOK, a.call(http.MethodGet, "/api/rides/pending", driver.Token, nil, &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, booked.ID, pending[0].ID)

	var current ride
	require.Equal(t, http.StatusOK, a.call(http.MethodPut, ridePath+"/accept", driver.Token, nil, &current))
	assert.Equal(t, "accepted", current.Status)

	for _, status := range []string{"ongoing", "completed"} {
		require.Equal(t, http.StatusOK, a.call(http.MethodPut, ridePath+"/status", driver.Token, gin.H{"status": status}, &current))
		assert.Equal(t, status, current.Status)
	}

	require.Equal(t, http.StatusOK, a.call(http.MethodPut, ridePath+"/collect-payment", driver.Token, nil, &current))
	assert.Equal(t, "approved", current.PaymentStatus)

	var riderStats services.RiderStats
	require.Equal(t, http.StatusOK, a.call(http.MethodGet, "/api/rides/stats", rider.Token, nil, &riderStats))
	assert.Equal(t, services.RiderStats{TotalSpent: 105, TotalRides: 1}, riderStats)

	var driverStats services.DriverStats
	require.Equal(t, http.StatusOK, a.call(http.MethodGet, "/api/rides/stats", driver.Token, nil, &driverStats))
	assert.Equal(t, 105.0, driverStats.TotalEarned)
	assert.Equal(t, 1, driverStats.TotalRides)

	require.Equal(t, http.StatusOK, a.call(http.MethodPost, ridePath+"/rate", rider.Token, gin.H{"rating": 5}, &current))

	var mine []ride
	require.Equal(t, http.StatusOK, a.call(http.MethodGet, "/api/rides/my-rides", rider.Token, nil, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, "completed", mine[0].Status)
}

func TestErrorResponses(t *testing.T) {
	a := newAPI(t)

	var rider session
	require.Equal(t, http.StatusCreated, a.call(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Asha", "email": "asha@ride.test", "password": "rider-pass",
	}, &rider))
	admin := a.login("/api/auth/login", adminEmail, adminPassword)
	d1 := a.onboardDriver(admin.Token, "d1")
	d2 := a.onboardDriver(admin.Token, "d2")

	var booked ride
	require.Equal(t, http.StatusCreated, a.call(http.MethodPost, "/api/rides", rider.Token, booking, &booked))
	ridePath := fmt.Sprintf("/api/rides/%d", booked.ID)

	var errBody apiError

	// no token
	code := a.call(http.MethodGet, "/api/rides/my-rides", "", nil, &errBody)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthenticated", errBody.Kind)

	// wrong role for the route
	code = a.call(http.MethodGet, "/api/admin/users", rider.Token, nil, &errBody)
	assert.Equal(t, http.StatusForbidden, code)

	code = a.call(http.MethodPut, fmt.Sprintf("/api/admin/rides/%d/assign", booked.ID), admin.Token, gin.H{"driverId": d1.ID}, nil)
	require.Equal(t, http.StatusOK, code)

	// another driver cannot take the ride
	code = a.call(http.MethodPut, ridePath+"/accept", d2.Token, nil, &errBody)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", errBody.Kind)

	require.Equal(t, http.StatusOK, a.call(http.MethodPut, ridePath+"/accept", d1.Token, nil, nil))
	require.Equal(t, http.StatusOK, a.call(http.MethodPut, ridePath+"/status", d1.Token, gin.H{"status": "ongoing"}, nil))

	// no rewinding
	code = a.call(http.MethodPut, ridePath+"/status", d1.Token, gin.H{"status": "pending"}, &errBody)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "invalid_state", errBody.Kind)

	// cash before completion
	code = a.call(http.MethodPut, ridePath+"/collect-payment", d1.Token, nil, &errBody)
	assert.Equal(t, http.StatusConflict, code)

	code = a.call(http.MethodGet, "/api/rides/9999", admin.Token, nil, &errBody)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", errBody.Kind)

	code = a.call(http.MethodGet, "/api/rides/abc", admin.Token, nil, &errBody)
	assert.Equal(t, http.StatusBadRequest, code)

	code = a.call(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Asha", "email": "asha@ride.test", "password": "rider-pass",
	}, &errBody)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "User already exists", errBody.Error)
}

func TestFareEndpoints(t *testing.T) {
	a := newAPI(t)
	admin := a.login("/api/auth/login", adminEmail, adminPassword)

	var quote services.FareQuote
	code := a.call(http.MethodGet, "/api/rides/estimate?pickupLat=22.57&pickupLng=88.36&dropLat=22.58&dropLng=88.42", admin.Token, nil, &quote)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 105.0, quote.Fare)

	var updated struct {
		Message string `json:"message"`
		Config  struct {
			PerKmRate float64 `json:"perKmRate"`
		} `json:"config"`
	}
	code = a.call(http.MethodPut, "/api/admin/fare-config", admin.Token, gin.H{"perKmRate": 20}, &updated)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 20.0, updated.Config.PerKmRate)

	var errBody apiError
	code = a.call(http.MethodPut, "/api/admin/fare-config", admin.Token, gin.H{"baseFare": -5}, &errBody)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_input", errBody.Kind)
}

func TestLocationEndpoints(t *testing.T) {
	a := newAPI(t)
	admin := a.login("/api/auth/login", adminEmail, adminPassword)

	code := a.call(http.MethodPost, "/api/admin/locations", admin.Token, gin.H{"name": "Salt Lake", "lat": 22.58, "lng": 88.42}, nil)
	require.Equal(t, http.StatusCreated, code)
	code = a.call(http.MethodPost, "/api/admin/locations", admin.Token, gin.H{"name": "salt lake", "lat": 22.58, "lng": 88.42}, nil)
	assert.Equal(t, http.StatusConflict, code)

	var found []struct {
		Name string `json:"name"`
	}
	require.Equal(t, http.StatusOK, a.call(http.MethodGet, "/api/locations?q=lake", admin.Token, nil, &found))
	require.Len(t, found, 1)
	assert.Equal(t, "Salt Lake", found[0].Name)

	require.Equal(t, http.StatusOK, a.call(http.MethodDelete, "/api/admin/locations/Salt%20Lake", admin.Token, nil, nil))
	assert.Equal(t, http.StatusNotFound, a.call(http.MethodDelete, "/api/admin/locations/Salt%20Lake", admin.Token, nil, nil))
}

func TestProfileAndAvailability(t *testing.T) {
	a := newAPI(t)
	admin := a.login("/api/auth/login", adminEmail, adminPassword)
	driver := a.onboardDriver(admin.Token, "dev")

	var profile struct {
		Name        string `json:"name"`
		Role        string `json:"role"`
		IsAvailable *bool  `json:"isAvailable"`
	}
	require.Equal(t, http.StatusOK, a.call(http.MethodGet, "/api/profile", driver.Token, nil, &profile))
	assert.Equal(t, "driver", profile.Role)
	require.NotNil(t, profile.IsAvailable)
	assert.False(t, *profile.IsAvailable)

	require.Equal(t, http.StatusOK, a.call(http.MethodPut, "/api/driver/availability", driver.Token, gin.H{"isAvailable": true}, nil))
	require.Equal(t, http.StatusOK, a.call(http.MethodPut, "/api/profile", driver.Token, gin.H{"name": "Dev K"}, &profile))
	assert.Equal(t, "Dev K", profile.Name)
	assert.True(t, *profile.IsAvailable)

	assert.Equal(t, http.StatusForbidden, a.call(http.MethodPut, "/api/driver/availability", admin.Token, gin.H{"isAvailable": true}, nil))
	assert.Equal(t, http.StatusBadRequest, a.call(http.MethodPut, "/api/driver/availability", driver.Token, gin.H{}, nil))
}
