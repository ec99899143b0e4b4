package router

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubLocations struct{}

func (stubLocations) GetLocations(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
func (stubLocations) GetForecast(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
func (stubLocations) GetGeocode(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

type stubPopularity struct{}

func (stubPopularity) GetPopularity(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (stubPopularity) PutPopularity(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusAccepted)
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestSetupRouter_Routes(t *testing.T) {
	r := SetupRouter(&Config{
		LocationsHandler:  stubLocations{},
		PopularityHandler: stubPopularity{},
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/ping", http.StatusOK},
		{http.MethodGet, "/api/v1/locations", http.StatusOK},
		{http.MethodGet, "/api/v1/availability/forecast", http.StatusOK},
		{http.MethodGet, "/api/v1/geocode", http.StatusOK},
		{http.MethodGet, "/api/v1/popularity/abc", http.StatusOK},
		{http.MethodPut, "/api/v1/popularity/abc", http.StatusAccepted},
		{http.MethodPost, "/api/v1/locations", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, serve(r, tt.method, tt.path).Code)
		})
	}
}

func TestSetupRouter_WithoutPopularity(t *testing.T) {
	r := SetupRouter(&Config{LocationsHandler: stubLocations{}})
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/api/v1/popularity/abc").Code)
}

func TestSetupRouter_RateLimited(t *testing.T) {
	r := SetupRouter(&Config{LocationsHandler: stubLocations{}, RatePerSecond: 0.001, RateBurst: 1})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/locations").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/api/v1/locations").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ping").Code)
}

func TestSetupRouter_CORSPreflight(t *testing.T) {
	r := SetupRouter(&Config{LocationsHandler: stubLocations{}, AllowedOrigins: []string{"https://seats.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/locations", nil)
	req.Header.Set("Origin", "https://seats.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "https://seats.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
