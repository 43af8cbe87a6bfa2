// Package mapper resolves between client-visible synthetic model ids and
// <module, backend-model, backend-url, backend-key> tuples, and aggregates
// the downstream model catalog (SPEC_FULL.md §4.8).
package mapper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	ollamaapi "github.com/ollama/ollama/api"

	"github.com/harborlabs/boost/internal/boost/modules"
	"github.com/harborlabs/boost/internal/boost/session"
	"github.com/harborlabs/boost/internal/config"
	"github.com/harborlabs/boost/internal/logging"
)

const cacheTTL = 60 * time.Second

// DownstreamModel is one backend-advertised model entry.
type DownstreamModel struct {
	ID      string
	Backend config.Backend
}

// Mapper aggregates downstream catalogs and resolves synthetic ids.
type Mapper struct {
	cfg *config.Config

	mu        sync.RWMutex
	modelToBE map[string]config.Backend // model id -> backend
	fetchedAt time.Time

	httpClient *http.Client
}

// New builds a Mapper bound to cfg's configured backends.
func New(cfg *config.Config) *Mapper {
	return &Mapper{cfg: cfg, modelToBE: map[string]config.Backend{}, httpClient: &http.Client{Timeout: 10 * time.Second}}
}

// ListDownstream refreshes (if the TTL has elapsed) and returns the full
// downstream model catalog. The TTL is not invalidated on upstream errors
// (SPEC_FULL.md Open Question 2, preserved deliberately).
func (m *Mapper) ListDownstream(ctx context.Context) []DownstreamModel {
	m.mu.Lock()
	stale := time.Since(m.fetchedAt) > cacheTTL
	m.mu.Unlock()

	if stale {
		m.refresh(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]DownstreamModel, 0, len(m.modelToBE))
	for id, be := range m.modelToBE {
		out = append(out, DownstreamModel{ID: id, Backend: be})
	}
	return out
}

func (m *Mapper) refresh(ctx context.Context) {
	fresh := map[string]config.Backend{}
	for _, be := range m.cfg.Backends {
		ids, err := m.listOne(ctx, be)
		if err != nil {
			logging.WithContext(ctx).Warnf("mapper: listing backend %s: %v", be.Name, err)
			continue
		}
		for _, id := range ids {
			fresh[id] = be
		}
	}

	m.mu.Lock()
	if len(fresh) > 0 {
		m.modelToBE = fresh
	}
	m.fetchedAt = time.Now()
	m.mu.Unlock()
}

func (m *Mapper) listOne(ctx context.Context, be config.Backend) ([]string, error) {
	if strings.Contains(be.URL, "/v1") || strings.HasSuffix(be.URL, "/v1/") {
		return m.listOpenAI(ctx, be)
	}
	// Native Ollama-flavored backend: use the Ollama SDK's own client
	// instead of guessing at an OpenAI-shaped /models route, matching the
	// teacher's api_ollama.go use of the same client.
	return m.listOllama(ctx, be)
}

func (m *Mapper) listOpenAI(ctx context.Context, be config.Backend) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(be.URL, "/")+"/models", nil)
	if err != nil {
		return nil, err
	}
	if be.Key != "" {
		req.Header.Set("Authorization", "Bearer "+be.Key)
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend %s: status %d", be.Name, resp.StatusCode)
	}

	var body struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(body.Data))
	for _, d := range body.Data {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (m *Mapper) listOllama(ctx context.Context, be config.Backend) ([]string, error) {
	u, err := parseURL(be.URL)
	if err != nil {
		return nil, err
	}
	client := ollamaapi.NewClient(u, m.httpClient)
	resp, err := client.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(resp.Models))
	for _, mdl := range resp.Models {
		ids = append(ids, mdl.Name)
	}
	return ids, nil
}

// ProxyModel is a synthetic "<prefix>-<id>" catalog entry.
type ProxyModel struct {
	ID   string
	Name string
}

// GetProxyModel constructs the synthetic catalog entry for module m
// fronting backend model id.
func GetProxyModel(prefix, id string) ProxyModel {
	return ProxyModel{ID: prefix + "-" + id, Name: prefix + " " + id}
}

// ResolvedConfig is the fully resolved routing decision for one request.
type ResolvedConfig struct {
	URL        string
	Key        string
	BackendID  string // the model id as understood by the backend
	ModuleName string
	Module     session.Module
}

// ErrUnknownModel is returned when the requested model can't be resolved
// to any configured backend.
var ErrUnknownModel = fmt.Errorf("unknown model")

// Resolve splits id into module+backend-model (SplitSyntheticModel) and
// looks up which configured backend currently hosts the backend model id,
// per the mapper's memoized catalog.
func (m *Mapper) Resolve(ctx context.Context, id string) (ResolvedConfig, error) {
	moduleName, backendID, mod, _ := modules.SplitSyntheticModel(id)

	m.mu.RLock()
	be, found := m.modelToBE[backendID]
	m.mu.RUnlock()
	if !found {
		return ResolvedConfig{}, fmt.Errorf("%w: %s", ErrUnknownModel, id)
	}

	return ResolvedConfig{
		URL:        be.URL,
		Key:        be.Key,
		BackendID:  backendID,
		ModuleName: moduleName,
		Module:     mod,
	}, nil
}
