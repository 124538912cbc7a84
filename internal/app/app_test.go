package app

import (
	"testing"

	"clr-site/internal/core"
	"clr-site/internal/store/storetest"
)

func TestBuildRegistersEveryFeature(t *testing.T) {
	t.Setenv("CLR_AUTH_CSRF_KEY", "0123456789abcdef0123456789abcdef")
	config, err := core.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	site, err := build(config, core.NewDiscardLogger(), storetest.New(t))
	if err != nil {
		t.Fatalf("build() error = %v", err)
	}

	want := []string{"content", "events", "newsletter", "contact", "pricing", "analytics", "admin"}
	status := site.Registry.GetFeatureStatus()
	if len(status) != len(want) {
		t.Fatalf("Expected %d features, got %d", len(want), len(status))
	}
	for i, name := range want {
		if status[i].Name != name {
			t.Errorf("Feature %d = %q, want %q", i, status[i].Name, name)
		}
	}

	paths := make(map[string]bool)
	for _, route := range site.Registry.GetAllRoutes() {
		key := route.Method + " " + route.Path
		if paths[key] {
			t.Errorf("Duplicate route %s", key)
		}
		paths[key] = true
	}
	for _, key := range []string{
		"GET /api/episodes/latest",
		"POST /api/events/{id}/register",
		"POST /api/newsletter/subscribe",
		"POST /api/contact",
		"GET /api/pricing",
		"POST /api/analytics/events",
		"GET /admin/api/stats",
	} {
		if !paths[key] {
			t.Errorf("Missing route %s", key)
		}
	}
}
