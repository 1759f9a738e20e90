package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"searoute/internal/coordinator"
	"searoute/internal/port"
	"searoute/internal/portgraph"
	"searoute/internal/portrepo"
	"searoute/pkg/cache"
	"searoute/pkg/config"
	"searoute/pkg/geo"
	"searoute/pkg/metrics"
)

func smallCluster() []port.Port {
	return []port.Port{
		{
			Code: "NLRTM", Name: "Rotterdam", Country: "NL",
			Location: geo.Point{Lat: 51.9, Lon: 4.5},
			Type:     port.TypeContainer, Status: port.StatusActive,
			BerthCount: 80, CongestionFactor: 1.0,
		},
		{
			Code: "BEANR", Name: "Antwerp", Country: "BE",
			Location: geo.Point{Lat: 51.3, Lon: 4.4},
			Type:     port.TypeContainer, Status: port.StatusActive,
			BerthCount: 60, CongestionFactor: 1.0,
		},
		{
			Code: "GBFXT", Name: "Felixstowe", Country: "GB",
			Location: geo.Point{Lat: 51.96, Lon: 1.35},
			Type:     port.TypeContainer, Status: port.StatusActive,
			BerthCount: 40, CongestionFactor: 1.0,
		},
	}
}

func testHarness(t *testing.T) (http.Handler, portrepo.Repository, *portgraph.Manager) {
	t.Helper()
	repo := portrepo.NewMemoryRepository(smallCluster())
	mgr := portgraph.NewManager(repo, portgraph.Config{KNearest: 4, KNearestRadiusNM: 1500}, config.RetryConfig{MaxAttempts: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond})
	if err := mgr.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	mc := cache.NewMemoryCache(cache.DefaultOptions())
	routeCache := cache.NewRouteCache(mc, 30*time.Minute)
	coord := coordinator.New(mgr, routeCache, nil, coordinator.DefaultConfig())
	router := NewRouter(coord, repo, mgr, metrics.Get(), config.CORSConfig{}, nil)
	return router, repo, mgr
}

func testVessel() vesselDTO {
	return vesselDTO{
		Type: "container", LengthM: 300, BeamM: 45, DraftM: 14,
		CruiseSpeedKn: 18, MaxSpeedKn: 22, FuelType: "vlsfo",
	}
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCalculateRoutes_SuccessReturnsPrimaryRoute(t *testing.T) {
	router, _, _ := testHarness(t)
	body := calculateRequestDTO{
		Origin: "NLRTM", Destination: "BEANR", Criterion: "balanced",
		Vessel: testVessel(), MaxAlternativeRoutes: 1,
	}
	rec := doJSON(t, router, http.MethodPost, "/routes/calculate", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp routeResponseDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.PrimaryRoute == nil {
		t.Fatal("expected a primary route")
	}
}

func TestCalculateRoutes_UnknownOriginReturnsErrorEnvelope(t *testing.T) {
	router, _, _ := testHarness(t)
	body := calculateRequestDTO{
		Origin: "ZZZZZ", Destination: "BEANR", Criterion: "balanced",
		Vessel: testVessel(),
	}
	rec := doJSON(t, router, http.MethodPost, "/routes/calculate", body)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
	var env errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if env.Error == "" {
		t.Error("expected a non-empty error code")
	}
}

func TestCalculateRoutes_SameOriginDestinationIsBadRequest(t *testing.T) {
	router, _, _ := testHarness(t)
	body := calculateRequestDTO{
		Origin: "NLRTM", Destination: "NLRTM", Criterion: "balanced",
		Vessel: testVessel(),
	}
	rec := doJSON(t, router, http.MethodPost, "/routes/calculate", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCalculateRoutes_MalformedJSONBodyIsBadRequest(t *testing.T) {
	router, _, _ := testHarness(t)
	req := httptest.NewRequest(http.MethodPost, "/routes/calculate", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestValidateRoute_AcceptsWellFormedRequest(t *testing.T) {
	router, _, _ := testHarness(t)
	body := calculateRequestDTO{
		Origin: "NLRTM", Destination: "BEANR", Criterion: "balanced",
		Vessel: testVessel(),
	}
	rec := doJSON(t, router, http.MethodPost, "/routes/validate", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetPort_KnownCodeReturnsPort(t *testing.T) {
	router, _, _ := testHarness(t)
	req := httptest.NewRequest(http.MethodGet, "/ports/NLRTM", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var p portDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode port: %v", err)
	}
	if p.Code != "NLRTM" {
		t.Errorf("expected code NLRTM, got %q", p.Code)
	}
}

func TestGetPort_UnknownCodeReturns404(t *testing.T) {
	router, _, _ := testHarness(t)
	req := httptest.NewRequest(http.MethodGet, "/ports/ZZZZZ", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSearchPorts_ShortQueryIsBadRequest(t *testing.T) {
	router, _, _ := testHarness(t)
	req := httptest.NewRequest(http.MethodGet, "/ports/search?q=a", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSearchPorts_FindsMatchingPorts(t *testing.T) {
	router, _, _ := testHarness(t)
	req := httptest.NewRequest(http.MethodGet, "/ports/search?q=Rotterdam", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var results []portDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result for Rotterdam")
	}
}

func TestHealth_ReadyGraphReturns200(t *testing.T) {
	router, _, _ := testHarness(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHealth_UnbuiltGraphReturns503(t *testing.T) {
	repo := portrepo.NewMemoryRepository(smallCluster())
	mgr := portgraph.NewManager(repo, portgraph.Config{KNearest: 4, KNearestRadiusNM: 1500}, config.RetryConfig{MaxAttempts: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond})
	mc := cache.NewMemoryCache(cache.DefaultOptions())
	routeCache := cache.NewRouteCache(mc, 30*time.Minute)
	coord := coordinator.New(mgr, routeCache, nil, coordinator.DefaultConfig())
	router := NewRouter(coord, repo, mgr, metrics.Get(), config.CORSConfig{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before the graph is built, got %d: %s", rec.Code, rec.Body.String())
	}
}
