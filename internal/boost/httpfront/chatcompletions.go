package httpfront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/harborlabs/boost/internal/boost/chat"
	"github.com/harborlabs/boost/internal/boost/directtask"
	"github.com/harborlabs/boost/internal/boost/mapper"
	"github.com/harborlabs/boost/internal/boost/modules"
	"github.com/harborlabs/boost/internal/boost/session"
	"github.com/harborlabs/boost/internal/httputil"
)

// chatCompletionRequest is the subset of the OpenAI request body the front
// needs to parse explicitly; everything else rides along in Raw and becomes
// the session's params (minus @boost_-prefixed keys), of which only
// temperature, top_p and max_tokens are sent upstream.
type chatCompletionRequest struct {
	Model    string                `json:"model"`
	Messages []chatMessageEnvelope `json:"messages"`
	Stream   bool                  `json:"stream"`
	Raw      map[string]any        `json:"-"`
}

type chatMessageEnvelope struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func parseChatCompletionRequest(r *http.Request) (*chatCompletionRequest, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	var req chatCompletionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := json.Unmarshal(body, &req.Raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return &req, nil
}

// mergeExtraParams folds HARBOR_BOOST_EXTRA_LLM_PARAMS into params, parsing
// numeric-looking values as float64 so applyExtraParams's type assertions
// pick them up the same as a JSON-decoded request body would.
func mergeExtraParams(params map[string]any, extra map[string]string) {
	for k, v := range extra {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			params[k] = f
			continue
		}
		params[k] = v
	}
}

func lastUserContent(history []chat.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "user" {
			return history[i].Content
		}
	}
	return ""
}

// handleChatCompletions implements POST /v1/chat/completions: resolve the
// synthetic model id, short-circuit direct tasks, and otherwise serve the
// request through a Session, per SPEC_FULL.md §4.9 and §2's request flow.
func (f *Front) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	req, err := parseChatCompletionRequest(r)
	if err != nil {
		httputil.ErrorWithCode(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Model == "" {
		httputil.ErrorWithCode(w, http.StatusBadRequest, "model is required")
		return
	}

	ctx := r.Context()
	f.mapper.ListDownstream(ctx) // refresh the mapper's cache before resolving

	resolved, err := f.mapper.Resolve(ctx, req.Model)
	if err != nil {
		if errors.Is(err, mapper.ErrUnknownModel) {
			httputil.ErrorWithCode(w, http.StatusNotFound, fmt.Sprintf("Unknown model: %s", req.Model))
			return
		}
		httputil.InternalError(w, err.Error())
		return
	}

	msgs := make([]chat.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, chat.Message{Role: m.Role, Content: m.Content})
	}

	params, boostParams := session.SplitBoostParams(req.Raw)
	delete(params, "model")
	delete(params, "messages")
	delete(params, "stream")
	mergeExtraParams(params, f.cfg.ExtraLLMParams)

	headers := map[string]string{}
	if resolved.Key != "" {
		headers["Authorization"] = "Bearer " + resolved.Key
	}

	var mod session.Module
	if resolved.ModuleName != "" {
		if m, ok := modules.Get(resolved.ModuleName); ok {
			mod = m
		}
	}

	if directtask.Matches(f.cfg.DirectTasks, lastUserContent(msgs)) {
		f.serveDirectTask(ctx, w, resolved, headers, params, msgs)
		return
	}

	sess := session.New(f.cfg, resolved.URL, resolved.Key, headers, resolved.BackendID, params, boostParams, mod, resolved.ModuleName, f.sessions)
	sess.Chat = chat.FromConversation(msgs)
	sess.Chat.Backend = sess

	primary := sess.Serve(ctx)

	if req.Stream {
		f.streamSSE(w, r, primary)
		return
	}

	resp, err := sess.ConsumeStream(ctx, primary)
	if err != nil {
		httputil.InternalError(w, err.Error())
		return
	}
	httputil.OkJSON(w, resp)
}

// serveDirectTask bypasses the module entirely and issues a single plain,
// non-streaming upstream call, per SPEC_FULL.md §4.9's direct-task branch
// (scenario S2): no session is registered and no chunks are emitted.
func (f *Front) serveDirectTask(ctx context.Context, w http.ResponseWriter, resolved mapper.ResolvedConfig, headers map[string]string, params map[string]any, msgs []chat.Message) {
	sess := session.New(f.cfg, resolved.URL, resolved.Key, headers, resolved.BackendID, params, nil, nil, "", nil)

	content, err := sess.ChatCompletion(ctx, session.ChatCompletionOptions{Messages: msgs})
	if err != nil {
		httputil.InternalError(w, err.Error())
		return
	}

	httputil.OkJSON(w, map[string]any{
		"id":      "chatcmpl-direct-" + uuid.New().String(),
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   resolved.BackendID,
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	})
}
