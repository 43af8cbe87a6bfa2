// Package httpfront implements the gateway's OpenAI-compatible HTTP surface:
// the model catalog, the chat-completions endpoint, and the SSE/WebSocket
// sideband channels, wired with github.com/go-chi/chi/v5 the same way the
// teacher wires its own internal/handler packages (SPEC_FULL.md §4.9).
package httpfront

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harborlabs/boost/internal/boost/mapper"
	"github.com/harborlabs/boost/internal/boost/sessionregistry"
	"github.com/harborlabs/boost/internal/config"
	"github.com/harborlabs/boost/internal/middleware"
)

// Front holds the process-wide dependencies every handler needs.
type Front struct {
	cfg      *config.Config
	mapper   *mapper.Mapper
	sessions *sessionregistry.Registry

	httpClient *http.Client
}

// New builds a Front bound to the given configuration and shared registries.
func New(cfg *config.Config, m *mapper.Mapper, sessions *sessionregistry.Registry) *Front {
	return &Front{
		cfg:        cfg,
		mapper:     m,
		sessions:   sessions,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewRouter builds the chi router exposing the gateway's HTTP surface,
// mirroring the route-registration style of the teacher's
// internal/browser/relay.go ("router := chi.NewRouter(); router.Get(...)").
func NewRouter(f *Front) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	r.Get("/", f.handleHealth)
	r.Get("/health", f.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(f.cfg.APIKeys))
		r.Get("/v1/models", f.handleListModels)
		r.Post("/v1/chat/completions", f.handleChatCompletions)
		r.Get("/events/{id}", f.handleEventsSSE)
		r.Get("/events/{id}/ws", f.handleEventsWS)
	})

	return r
}

func (f *Front) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
