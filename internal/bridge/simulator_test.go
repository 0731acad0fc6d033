package bridge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSimulator_RequestDeniedSticks(t *testing.T) {
	ctx := context.Background()
	sim := NewSimulator(SimulatorOptions{})

	if granted, _ := sim.RequestCameraPermissions(ctx); granted {
		t.Fatalf("RequestCameraPermissions granted without GrantOnRequest")
	}
	perms, _ := sim.CheckAllPermissions(ctx)
	if perms.Camera != Denied {
		t.Fatalf("camera = %q, want denied", perms.Camera)
	}

	sim.SetGrantOnRequest(true)
	if granted, _ := sim.RequestCameraPermissions(ctx); !granted {
		t.Fatalf("RequestCameraPermissions denied with GrantOnRequest")
	}
	if granted, _ := sim.CheckCameraPermissions(ctx); !granted {
		t.Fatalf("camera not granted after request")
	}
}

func TestSimulator_DefaultsAndQualityRange(t *testing.T) {
	sim := NewSimulator(SimulatorOptions{Granted: []Capability{Camera}})
	if got := sim.Platform(); got != "web" {
		t.Fatalf("Platform = %q, want web", got)
	}
	if _, err := sim.TakePicture(context.Background(), PictureOptions{Quality: 101}); err == nil {
		t.Fatalf("TakePicture accepted quality 101")
	}
}

func TestSimulator_HandlerRoutes(t *testing.T) {
	sim := NewSimulator(SimulatorOptions{})
	h := sim.Handler()

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/permissions", http.StatusOK},
		{http.MethodGet, "/api/permissions/camera", http.StatusOK},
		{http.MethodGet, "/api/permissions/microphone", http.StatusNotFound},
		{http.MethodGet, "/api/location", http.StatusForbidden},
		{http.MethodPost, "/api/location", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != tc.want {
			t.Fatalf("%s %s = %d, want %d", tc.method, tc.path, rec.Code, tc.want)
		}
	}
}
