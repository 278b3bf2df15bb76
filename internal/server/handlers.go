package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/kapu/player-generator-go/internal/domain"
	apperrors "github.com/kapu/player-generator-go/pkg/errors"
	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type healthResponse struct {
	Status        string          `json:"status"`
	Nationalities int             `json:"nationalities"`
	Checks        map[string]bool `json:"checks,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, "index.html", indexPage{
		Nationalities: s.profiles.Registry().All(),
	})
}

func (s *Server) handleProfilePage(w http.ResponseWriter, r *http.Request) {
	profile, err := s.profiles.BySlug(r.Context(), r.PathValue("slug"), r.PathValue("seed"))
	if err != nil {
		status, msg := s.failure(r, err)
		s.renderPage(w, status, "error.html", errorPage{Status: status, Message: msg})
		return
	}
	s.renderPage(w, http.StatusOK, "profile.html", profilePage{
		Profile:   profile,
		Permalink: profilePath("/p", profile.NationalitySlug, profile.SeedCode),
	})
}

// handleFreshProfile sends the client to a new seed for the nationality.
func (s *Server) handleFreshProfile(w http.ResponseWriter, r *http.Request) {
	nationality, err := s.profiles.Registry().BySlug(r.PathValue("slug"))
	if err != nil {
		status, msg := s.failure(r, err)
		s.renderPage(w, status, "error.html", errorPage{Status: status, Message: msg})
		return
	}
	http.Redirect(w, r, profilePath("/p", nationality.Slug, s.profiles.NewSeedCode()), http.StatusFound)
}

func (s *Server) handleProfileJSON(w http.ResponseWriter, r *http.Request) {
	profile, err := s.profiles.BySlug(r.Context(), r.PathValue("slug"), r.PathValue("seed"))
	if err != nil {
		status, msg := s.failure(r, err)
		writeJSON(w, status, errorResponse{Error: msg, Code: apperrors.Code(err)})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleRandom(prefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nationality, seedCode := s.profiles.Random()
		http.Redirect(w, r, profilePath(prefix, nationality.Slug, seedCode), http.StatusFound)
	}
}

func (s *Server) handleNationalities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.profiles.Registry().All())
}

// handleHealth answers 503 when any configured dependency is unreachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:        "ok",
		Nationalities: s.profiles.Registry().Len(),
	}
	status := http.StatusOK

	if len(s.cfg.HealthChecks) > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		resp.Checks = make(map[string]bool, len(s.cfg.HealthChecks))
		for name, check := range s.cfg.HealthChecks {
			ok := check(ctx)
			resp.Checks[name] = ok
			if !ok {
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
			}
		}
	}

	writeJSON(w, status, resp)
}

// failure logs err at a level matching its status and returns what the
// client should see.
func (s *Server) failure(r *http.Request, err error) (int, string) {
	status, msg := errorStatus(err)
	if status >= 500 {
		s.logger.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		s.logger.Debug("Request rejected", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	return status, msg
}

func profilePath(prefix, slug, seedCode string) string {
	return prefix + "/" + url.PathEscape(slug) + "/" + url.PathEscape(seedCode)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type indexPage struct {
	Nationalities []domain.Nationality
}

type profilePage struct {
	Profile   *domain.GeneratedProfile
	Permalink string
}

type errorPage struct {
	Status  int
	Message string
}
