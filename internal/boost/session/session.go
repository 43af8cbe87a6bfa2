// Package session implements the gateway's per-request Session: the
// upstream inference client, the emission pipeline (primary + listener
// channels gated by "intermediate output"), and the tool-call reassembly
// loop described in SPEC_FULL.md §4.5-§4.7.
package session

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/harborlabs/boost/internal/boost/chat"
	"github.com/harborlabs/boost/internal/boost/tools"
	"github.com/harborlabs/boost/internal/config"
	"github.com/harborlabs/boost/internal/logging"
)

// BoostParamPrefix marks request params consumed by modules rather than
// forwarded upstream.
const BoostParamPrefix = "@boost_"

// Registry is the subset of the process-wide session registry a Session
// uses to register/unregister itself. Defined here (rather than imported
// from the sessionregistry package) so sessionregistry can depend on
// session without a cycle.
type Registry interface {
	Register(s *Session)
	Unregister(id string)
}

// Module is the entry point a module implements, expressed as an interface
// here (rather than in a separate modules package depending on session) so
// that session and modules can reference each other's types without a
// cycle: the modules registry stores session.Module values directly.
type Module interface {
	IDPrefix() string
	Apply(ctx context.Context, c *chat.Chat, s *Session) error
}

// Session is the per-request object a chat-completion call is served
// through: it owns the upstream HTTP client, the forwarded/boost params,
// the primary chat, and the emission pipeline.
type Session struct {
	ID string

	URL         string
	Key         string
	Headers     map[string]string
	QueryParams map[string]string
	Model       string
	Params      map[string]any // request params minus @boost_ keys; only temperature, top_p and max_tokens reach the upstream body (applyExtraParams)
	BoostParams map[string]any

	Chat       *chat.Chat
	ModuleName string
	Module     Module // nil means pass-through

	Tools *tools.Registry

	cfg *config.Config

	httpClient *http.Client

	mu          sync.Mutex
	primary     chan []byte
	listeners   []chan []byte
	streaming   bool
	finalStream bool
	chunkSeq    int64

	registry Registry
}

// New constructs a session for one chat-completion request. params and
// boostParams are the request's parameter map already split by the caller
// using SplitBoostParams.
func New(cfg *config.Config, url, key string, headers map[string]string, model string, params map[string]any, boostParams map[string]any, mod Module, moduleName string, reg Registry) *Session {
	s := &Session{
		ID:          uuid.New().String(),
		URL:         strings.TrimRight(url, "/"),
		Key:         key,
		Headers:     headers,
		QueryParams: map[string]string{},
		Model:       model,
		Params:      params,
		BoostParams: boostParams,
		ModuleName:  moduleName,
		Module:      mod,
		Tools:       tools.New(),
		cfg:         cfg,
		httpClient:  &http.Client{},
		primary:     make(chan []byte, 64),
		registry:    reg,
	}
	s.Chat = chat.NewWithBackend(s)
	return s
}

// SplitBoostParams strips @boost_-prefixed keys out of a forwarded params
// map and returns the two resulting maps.
func SplitBoostParams(body map[string]any) (params, boostParams map[string]any) {
	params = map[string]any{}
	boostParams = map[string]any{}
	for k, v := range body {
		if strings.HasPrefix(k, BoostParamPrefix) {
			boostParams[strings.TrimPrefix(k, BoostParamPrefix)] = v
		} else {
			params[k] = v
		}
	}
	return params, boostParams
}

// nextChunkID mints a monotonically increasing chatcmpl-<n> id.
func (s *Session) nextChunkID() string {
	n := atomic.AddInt64(&s.chunkSeq, 1)
	return fmt.Sprintf("chatcmpl-%d", n)
}

// Serve registers the session and runs its module (or, if no module is
// selected, a single direct streaming completion) in a background
// goroutine, then returns the primary channel for the HTTP handler to
// drain. The producer always emits the terminator before returning,
// recovering from a module panic so the client observes EOF rather than a
// hang.
func (s *Session) Serve(ctx context.Context) <-chan []byte {
	if s.registry != nil {
		s.registry.Register(s)
	}
	s.mu.Lock()
	s.streaming = true
	s.mu.Unlock()

	go func() {
		defer s.emitDone()
		defer func() {
			if r := recover(); r != nil {
				logging.WithContext(ctx).Errorf("session %s: module %s panicked: %v", s.ID, s.ModuleName, r)
			}
		}()

		var err error
		if s.Module == nil {
			_, err = s.StreamFinalCompletion(ctx, ChatCompletionOptions{Chat: s.Chat})
		} else {
			err = s.Module.Apply(ctx, s.Chat, s)
		}
		if err != nil {
			logging.WithContext(ctx).Errorf("session %s: module %s error: %v", s.ID, s.ModuleName, err)
		}
	}()

	return s.primary
}

// emitDone emits the terminator to every consumer and unregisters the
// session. Safe to call exactly once per session (Serve's deferred call).
func (s *Session) emitDone() {
	s.mu.Lock()
	select {
	case s.primary <- doneLine:
	default:
		logging.Warn("session: primary channel full, dropping terminator")
	}
	close(s.primary)
	for _, l := range s.listeners {
		select {
		case l <- doneLine:
		default:
		}
		close(l)
	}
	s.listeners = nil
	s.streaming = false
	s.mu.Unlock()

	if s.registry != nil {
		s.registry.Unregister(s.ID)
	}
}

// Listen attaches a fresh listener channel and returns it. A listener
// attached after the terminator was already sent receives nothing and a
// closed channel, matching the spec's "must be closable" requirement.
func (s *Session) Listen() <-chan []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan []byte, 64)
	if !s.streaming {
		close(ch)
		return ch
	}
	s.listeners = append(s.listeners, ch)
	return ch
}

// EmitRaw sends raw to the primary (subject to the intermediate-output
// gate) and to every listener (never gated). Non-blocking: a full listener
// channel drops the chunk rather than stalling the producer.
func (s *Session) EmitRaw(raw []byte) {
	s.mu.Lock()
	gateOpen := s.cfg == nil || s.cfg.IntermediateOutput || s.finalStream
	listeners := append([]chan []byte(nil), s.listeners...)
	s.mu.Unlock()

	if gateOpen {
		select {
		case s.primary <- raw:
		default:
			logging.Warn("session: primary channel full, dropping chunk")
		}
	}
	for _, l := range listeners {
		select {
		case l <- raw:
		default:
		}
	}
}

// emitContentChunk builds and emits a standard content chunk carrying text.
func (s *Session) emitContentChunk(text string) {
	chunk := completionChunk{
		ID:                s.nextChunkID(),
		Object:            "chat.completion.chunk",
		Created:           time.Now().Unix(),
		Model:             s.Model,
		SystemFingerprint: systemFingerprint,
		Choices: []chunkChoice{{
			Index: 0,
			Delta: chunkDelta{Content: text},
		}},
	}
	s.EmitRaw(sseLine(chunk))
}

// EmitStatus renders text per the configured status style and emits it as
// a content chunk.
func (s *Session) EmitStatus(ctx context.Context, text string) error {
	rendered := renderStatus(s.cfg, text)
	if rendered == "" {
		return nil
	}
	s.emitContentChunk(rendered)
	return nil
}

// EmitArtifact emits html as a fenced-HTML content chunk.
func (s *Session) EmitArtifact(ctx context.Context, html string) error {
	s.emitContentChunk(renderArtifact(html))
	return nil
}

// EmitMessage emits arbitrary text as a content chunk, without status
// formatting (the raw "I just want to say something" primitive the
// example module demonstrates).
func (s *Session) EmitMessage(ctx context.Context, text string) error {
	s.emitContentChunk(text)
	return nil
}

// EmitListenerEvent sends a {object:"boost.listener.event", event, data}
// envelope to listener channels only, never to the primary.
func (s *Session) EmitListenerEvent(event string, data any) {
	env := listenerEvent{Object: "boost.listener.event", Event: event, Data: data}
	raw := sseLine(env)

	s.mu.Lock()
	listeners := append([]chan []byte(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		select {
		case l <- raw:
		default:
		}
	}
}

// PublishInbound logs an inbound WebSocket message tagged
// "websocket.message". The session has no event bus: the message is not
// delivered to the running module or to any other consumer.
func (s *Session) PublishInbound(ctx context.Context, data any) {
	logging.WithContext(ctx).Infof("session %s: websocket.message: %+v", s.ID, data)
}

// IsStreaming reports whether the terminator has not yet been emitted.
func (s *Session) IsStreaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streaming
}
