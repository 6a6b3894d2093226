package collective

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/danielpatrickdp/selfstate-engine/internal/anonymize"
)

// #region server

// Server is the collective backend: it accepts anonymized pattern uploads
// and serves insights aggregated from them. Storage is in-memory; the
// protocol is the contract, the store is replaceable.
type Server struct {
	mu       sync.Mutex
	patterns []anonymize.Pattern
	seen     map[string]bool
	router   *chi.Mux
}

// NewServer creates a collective backend with an empty store.
func NewServer() *Server {
	s := &Server{seen: make(map[string]bool)}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Post("/v1/patterns", s.handlePush)
	r.Get("/v1/insights", s.handleInsights)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves the backend on addr.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

// #endregion server

// #region handlers

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	var req pushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("decode: %v", err), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	accepted := 0
	for _, p := range req.Patterns {
		if p.ID == "" || p.Intervention == "" || s.seen[p.ID] {
			continue
		}
		s.seen[p.ID] = true
		s.patterns = append(s.patterns, p)
		accepted++
	}
	s.mu.Unlock()

	writeJSON(w, map[string]int{"accepted": accepted})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	profileType := r.URL.Query().Get("profile")

	s.mu.Lock()
	insights := aggregate(s.patterns, profileType)
	s.mu.Unlock()

	writeJSON(w, insightsResponse{Insights: insights})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// #endregion handlers

// #region aggregate

// groupKey buckets patterns that describe the same situation and remedy.
type groupKey struct {
	intervention string
	timeOfDay    string
	profileType  string
	emotional    int
}

// aggregate folds patterns into insights: one per (intervention, context
// bucket) group, confidence from the share of positive outcomes.
func aggregate(patterns []anonymize.Pattern, profileType string) []anonymize.Insight {
	groups := make(map[groupKey][]anonymize.Pattern)
	for _, p := range patterns {
		if profileType != "" && p.Context.ProfileType != "" && p.Context.ProfileType != profileType {
			continue
		}
		k := groupKey{
			intervention: p.Intervention,
			timeOfDay:    p.Context.TimeOfDay,
			profileType:  p.Context.ProfileType,
			emotional:    p.Context.EmotionalRange,
		}
		groups[k] = append(groups[k], p)
	}

	insights := make([]anonymize.Insight, 0, len(groups))
	for k, ps := range groups {
		positive := 0
		var effect float64
		for _, p := range ps {
			if p.Outcome == "helped" || p.EffectSize > 0 {
				positive++
			}
			effect += p.EffectSize
		}
		confidence := float64(positive) / float64(len(ps))

		emotional := k.emotional
		ins := anonymize.Insight{
			Context: anonymize.InsightContext{
				EmotionalRange: &emotional,
				TimeOfDay:      k.timeOfDay,
				ProfileType:    k.profileType,
			},
			Type:       "technique",
			Text:       fmt.Sprintf("%q helped people in similar moments", k.intervention),
			Technique:  k.intervention,
			SampleSize: len(ps),
			Confidence: confidence,
		}
		if effect/float64(len(ps)) < 0 {
			ins.Type = anonymize.InsightTypeWarning
			ins.Text = fmt.Sprintf("%q tended to make similar moments worse", k.intervention)
		}
		insights = append(insights, ins)
	}

	// Deterministic order: biggest samples first, then confidence.
	sort.Slice(insights, func(i, j int) bool {
		if insights[i].SampleSize != insights[j].SampleSize {
			return insights[i].SampleSize > insights[j].SampleSize
		}
		return insights[i].Confidence > insights[j].Confidence
	})
	return insights
}

// #endregion aggregate
