package portgraph

import (
	"context"
	"testing"
	"time"

	"searoute/internal/port"
	"searoute/internal/portrepo"
	"searoute/pkg/config"
	"searoute/pkg/geo"
)

func smallCatalog() []port.Port {
	return []port.Port{
		{
			Code: "NLRTM", Country: "NL", Location: geo.Point{Lat: 51.9, Lon: 4.5},
			Status: port.StatusActive, Type: port.TypeContainer, BerthCount: 80,
		},
		{
			Code: "BEANR", Country: "BE", Location: geo.Point{Lat: 51.3, Lon: 4.4},
			Status: port.StatusActive, Type: port.TypeContainer, BerthCount: 60,
		},
		{
			Code: "GBFXT", Country: "GB", Location: geo.Point{Lat: 51.96, Lon: 1.35},
			Status: port.StatusActive, Type: port.TypeContainer, BerthCount: 40,
		},
	}
}

func testRetryConfig() config.RetryConfig {
	return config.RetryConfig{
		MaxAttempts:       2,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        10 * time.Millisecond,
		BackoffMultiplier: 2,
	}
}

func TestManager_Refresh_BuildsGraph(t *testing.T) {
	repo := portrepo.NewMemoryRepository(smallCatalog())
	mgr := NewManager(repo, Config{KNearest: 3, KNearestRadiusNM: 1500}, testRetryConfig())

	if mgr.Graph() != nil {
		t.Fatal("expected nil graph before first Refresh")
	}

	if err := mgr.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mgr.Graph() == nil {
		t.Fatal("expected graph after Refresh")
	}
	if len(mgr.Graph().Nodes) != 3 {
		t.Errorf("expected 3 nodes, got %d", len(mgr.Graph().Nodes))
	}
}

func TestManager_Refresh_SingleFlightsConcurrentCalls(t *testing.T) {
	repo := portrepo.NewMemoryRepository(smallCatalog())
	mgr := NewManager(repo, Config{KNearest: 3, KNearestRadiusNM: 1500}, testRetryConfig())

	const n = 8
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			errs <- mgr.Refresh(context.Background())
		}()
	}
	for i := 0; i < n; i++ {
		if err := <-errs; err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if mgr.Graph() == nil {
		t.Fatal("expected graph to be built")
	}
}

func TestManager_Refresh_PropagatesDisconnectedFailure(t *testing.T) {
	catalog := []port.Port{
		{Code: "NLRTM", Country: "NL", Location: geo.Point{Lat: 51.9, Lon: 4.5}, Status: port.StatusActive, Type: port.TypeContainer},
		{Code: "AUSYD", Country: "AU", Location: geo.Point{Lat: -33.8, Lon: 151.2}, Status: port.StatusActive, Type: port.TypeContainer},
	}
	repo := portrepo.NewMemoryRepository(catalog)
	mgr := NewManager(repo, Config{KNearest: 3, KNearestRadiusNM: 1500}, testRetryConfig())

	if err := mgr.Refresh(context.Background()); err == nil {
		t.Fatal("expected GraphBuildFailed for disconnected catalog")
	}
	if mgr.Graph() != nil {
		t.Error("expected graph to remain nil after a failed build")
	}
}
