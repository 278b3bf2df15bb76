package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/kapu/player-generator-go/internal/domain"
	"github.com/kapu/player-generator-go/internal/service/profile"
	apperrors "github.com/kapu/player-generator-go/pkg/errors"
)

type stubGenerator struct {
	registry *domain.Registry
}

func (g stubGenerator) Generate(nationalityID int, seed *uint64) (*domain.GeneratedProfile, uint64, error) {
	nationality, err := g.registry.ByID(nationalityID)
	if err != nil {
		return nil, 0, err
	}
	if nationality.Slug == "india" {
		return nil, 0, apperrors.NewEmptyModelError("surname", nil)
	}
	used := uint64(42)
	if seed != nil {
		used = *seed
	}
	return &domain.GeneratedProfile{
		NationalityID:   nationality.ID,
		NationalityName: nationality.Name,
		NationalitySlug: nationality.Slug,
		GivenNames:      "Alfred",
		Surname:         "Testerson",
		FullName:        "Alfred Testerson",
		Biography:       []string{"Alfred Testerson opened for " + nationality.Name + ".", "A <b>bold</b> hitter."},
		Seed:            used,
	}, used, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	registry := domain.MustDefaultRegistry()
	svc := profile.NewService(profile.Config{
		Registry:  registry,
		Generator: stubGenerator{registry: registry},
	})
	s, err := New(Config{}, svc, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestProfileJSON(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/p/england/AQA")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var got domain.GeneratedProfile
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if got.Seed != 256 || got.SeedCode != "AQA" {
		t.Errorf("seed = %d/%q, want 256/AQA", got.Seed, got.SeedCode)
	}
	if got.NationalitySlug != "england" || got.FullName != "Alfred Testerson" {
		t.Errorf("unexpected profile: %+v", got)
	}
}

func TestErrorStatuses(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/api/p/atlantis/AA", http.StatusNotFound, apperrors.CodeNotFound},
		{"/api/p/england/!!", http.StatusNotFound, apperrors.CodeMalformedSeed},
		{"/api/p/england/AAAAAAAAAAAAAA", http.StatusNotFound, apperrors.CodeMalformedSeed},
		{"/api/p/india/AA", http.StatusInternalServerError, apperrors.CodeEmptyModel},
	}

	for _, tt := range tests {
		resp, err := http.Get(srv.URL + tt.path)
		if err != nil {
			t.Fatalf("GET %s error = %v", tt.path, err)
		}
		var body errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()

		if resp.StatusCode != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.path, resp.StatusCode, tt.status)
		}
		if body.Code != tt.code {
			t.Errorf("%s: code = %q, want %q", tt.path, body.Code, tt.code)
		}
	}
}

func TestInternalErrorsAreNotDescribed(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/p/india/AA")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if body.Error != "internal error" {
		t.Errorf("error = %q, want generic message", body.Error)
	}
}

func TestProfilePageEscapesBiography(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/p/west-indies/AA")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read error = %v", err)
	}
	page := string(body)

	for _, want := range []string{
		"<h1>Alfred Testerson</h1>",
		"Alfred Testerson opened for West Indies.",
		"A &lt;b&gt;bold&lt;/b&gt; hitter.",
		`href="/p/west-indies/AA"`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestProfilePageNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/p/atlantis/AA")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRandomRedirects(t *testing.T) {
	srv := newTestServer(t)
	client := noRedirectClient()

	for path, prefix := range map[string]string{
		"/random":     "/p/",
		"/api/random": "/api/p/",
		"/p/england":  "/p/england/",
	} {
		resp, err := client.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusFound {
			t.Errorf("%s: status = %d, want 302", path, resp.StatusCode)
			continue
		}
		location := resp.Header.Get("Location")
		if !strings.HasPrefix(location, prefix) {
			t.Errorf("%s: location = %q, want prefix %q", path, location, prefix)
			continue
		}

		follow, err := http.Get(srv.URL + location)
		if err != nil {
			t.Fatalf("GET %s error = %v", location, err)
		}
		follow.Body.Close()
		// india has no model in the stub, every other target must resolve
		if follow.StatusCode != http.StatusOK && !strings.Contains(location, "/india/") {
			t.Errorf("%s: status = %d, want 200", location, follow.StatusCode)
		}
	}
}

func TestNationalitiesAndHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/nationalities")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	var all []domain.Nationality
	err = json.NewDecoder(resp.Body).Decode(&all)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if len(all) != 10 || all[0].Slug != "england" {
		t.Errorf("nationalities = %+v", all)
	}

	resp, err = http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	var health healthResponse
	err = json.NewDecoder(resp.Body).Decode(&health)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if health.Status != "ok" || health.Nationalities != 10 {
		t.Errorf("health = %+v", health)
	}
}

func TestHealthReportsDependencyChecks(t *testing.T) {
	registry := domain.MustDefaultRegistry()
	svc := profile.NewService(profile.Config{
		Registry:  registry,
		Generator: stubGenerator{registry: registry},
	})

	tests := []struct {
		name       string
		redisUp    bool
		wantStatus int
		wantHealth string
	}{
		{"redis up", true, http.StatusOK, "ok"},
		{"redis down", false, http.StatusServiceUnavailable, "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(Config{HealthChecks: map[string]HealthCheck{
				"redis": func(context.Context) bool { return tt.redisUp },
			}}, svc, nil)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var health healthResponse
			if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
				t.Fatalf("decode error = %v", err)
			}
			if health.Status != tt.wantHealth || health.Checks["redis"] != tt.redisUp {
				t.Errorf("health = %+v", health)
			}
		})
	}
}

func TestIndexListsNationalities(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read error = %v", err)
	}
	if !strings.Contains(string(body), `<a href="/p/sri-lanka">Sri Lanka</a>`) {
		t.Errorf("index missing Sri Lanka link")
	}

	missing, err := http.Get(srv.URL + "/nope")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", missing.StatusCode)
	}
}

func TestWebSocketGeneratesProfiles(t *testing.T) {
	srv := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial error = %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(wsRequest{Nationality: "pakistan", Seed: "_w"}); err != nil {
		t.Fatalf("WriteJSON error = %v", err)
	}
	var resp wsResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("ReadJSON error = %v", err)
	}
	if resp.Error != "" || resp.Profile == nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Profile.Seed != 255 || resp.Profile.NationalityName != "Pakistan" {
		t.Errorf("profile = %+v", resp.Profile)
	}

	if err := conn.WriteJSON(wsRequest{Nationality: "pakistan"}); err != nil {
		t.Fatalf("WriteJSON error = %v", err)
	}
	resp = wsResponse{}
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("ReadJSON error = %v", err)
	}
	if resp.Profile == nil || resp.Profile.SeedCode == "" {
		t.Errorf("fresh-seed response missing seed code: %+v", resp)
	}

	if err := conn.WriteJSON(wsRequest{Nationality: "pakistan", Seed: "!!"}); err != nil {
		t.Fatalf("WriteJSON error = %v", err)
	}
	resp = wsResponse{}
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("ReadJSON error = %v", err)
	}
	if resp.Code != apperrors.CodeMalformedSeed || resp.Profile != nil {
		t.Errorf("malformed seed response = %+v", resp)
	}
}
