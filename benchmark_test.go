package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Danielle-Barbieri/seat-scout/internal/types"
)

func setupBenchmarkApp(b *testing.B) (http.Handler, *fakeGoogle) {
	b.Helper()
	google := newFakeGoogle()
	b.Cleanup(google.server.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return newTestApp(b, google.server.URL, logger), google
}

func serve(b *testing.B, h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if rec.Code != http.StatusOK {
		b.Fatalf("GET %s: status %d", path, rec.Code)
	}
	return rec
}

// BenchmarkNearbyCached measures a cache-hit search through the full middleware stack.
func BenchmarkNearbyCached(b *testing.B) {
	h, _ := setupBenchmarkApp(b)
	path := "/api/v1/locations?lat=51.5&lng=-0.12"
	serve(b, h, path)

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		serve(b, h, path)
	}
}

func BenchmarkNearbyFilteredSearchOrigin(b *testing.B) {
	h, _ := setupBenchmarkApp(b)
	path := "/api/v1/locations?lat=51.5&lng=-0.12&day=1&hour=10&origin=search"
	serve(b, h, path)

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		serve(b, h, path)
	}
}

func BenchmarkForecast(b *testing.B) {
	h, _ := setupBenchmarkApp(b)

	b.ReportAllocs()
	for b.Loop() {
		serve(b, h, "/api/v1/availability/forecast?day=3")
	}
}

func BenchmarkConcurrentRequests(b *testing.B) {
	h, _ := setupBenchmarkApp(b)
	path := "/api/v1/locations?lat=51.5&lng=-0.12&type=cafe"
	serve(b, h, path)

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		}
	})
}

func BenchmarkJSONSerialization(b *testing.B) {
	h, _ := setupBenchmarkApp(b)
	rec := serve(b, h, "/api/v1/locations?lat=51.5&lng=-0.12")
	var resp types.LocationsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		if _, err := json.Marshal(resp); err != nil {
			b.Fatal(err)
		}
	}
}
