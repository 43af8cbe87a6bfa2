package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/harborlabs/boost/internal/boost/chat"
	"github.com/harborlabs/boost/internal/logging"
)

// client returns a fresh openai-go client pointed at this session's
// resolved backend, the same SDK and streaming idiom the teacher's own
// upstream client (api_openai.go) uses for talking to OpenAI-compatible
// endpoints.
func (s *Session) client() openai.Client {
	opts := []option.RequestOption{option.WithBaseURL(s.URL)}
	if s.Key != "" {
		opts = append(opts, option.WithAPIKey(s.Key))
	}
	for k, v := range s.Headers {
		opts = append(opts, option.WithHeader(k, v))
	}
	return openai.NewClient(opts...)
}

func toSDKMessages(msgs []chat.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		case "tool":
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		default:
			// "user" and any non-standard module-defined role (e.g. the
			// example module's "harbor" role) forward as a user turn;
			// custom roles are a chat-tree bookkeeping device, not
			// something the OpenAI wire format can express directly.
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func (s *Session) toolDefinitions() []openai.ChatCompletionToolUnionParam {
	defs := s.Tools.Definitions()
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(defs))
	for _, d := range defs {
		out = append(out, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        d.Function.Name,
			Description: openai.String(d.Function.Description),
			Parameters:  shared.FunctionParameters(d.Function.Parameters),
		}))
	}
	return out
}

func (s *Session) buildParams(opts ChatCompletionOptions) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(s.Model),
		Messages: toSDKMessages(opts.resolveMessages()),
	}
	if tools := s.toolDefinitions(); len(tools) > 0 {
		params.Tools = tools
	}
	if opts.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "boost_schema",
					Schema: opts.Schema,
				},
			},
		}
	}
	applyExtraParams(&params, s.Params)
	applyExtraParams(&params, opts.Params)
	return params
}

// applyExtraParams merges a subset of commonly forwarded parameters
// (temperature, top_p, max_tokens) from an open params map into the typed
// SDK request. Anything else in the map is a module/request convenience
// that doesn't have a typed upstream slot and is intentionally dropped
// here rather than forwarded blind.
func applyExtraParams(params *openai.ChatCompletionNewParams, extra map[string]any) {
	if extra == nil {
		return
	}
	if v, ok := extra["temperature"].(float64); ok {
		params.Temperature = openai.Float(v)
	}
	if v, ok := extra["top_p"].(float64); ok {
		params.TopP = openai.Float(v)
	}
	if v, ok := extra["max_tokens"].(float64); ok {
		params.MaxTokens = openai.Int(int64(v))
	}
}

// ChatCompletion is the non-streaming call form. It does NOT run the
// tool-execution loop StreamChatCompletion implements — that asymmetry is
// carried over from the source deliberately (see SPEC_FULL.md Open
// Question 1).
func (s *Session) ChatCompletion(ctx context.Context, opts ChatCompletionOptions) (string, error) {
	params := s.buildParams(opts)
	resp, err := s.client().Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("session: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("session: chat completion: empty choices")
	}
	content := resp.Choices[0].Message.Content

	if opts.Schema != nil && opts.Resolve {
		return content, nil // caller is expected to json.Unmarshal; see ResolveJSON
	}
	return content, nil
}

// ResolveJSON parses content as JSON into v, the counterpart to
// resolve=true + schema in the source's chat_completion.
func ResolveJSON(content string, v any) error {
	return json.Unmarshal([]byte(content), v)
}

// Advance implements chat.Backend: a non-streaming completion appended by
// the caller (chat.Chat.Advance) as an assistant turn.
func (s *Session) Advance(ctx context.Context, history []chat.Message) (string, error) {
	return s.ChatCompletion(ctx, ChatCompletionOptions{Messages: history})
}

// EmitAdvance implements chat.Backend: the streaming variant.
func (s *Session) EmitAdvance(ctx context.Context, history []chat.Message) (string, error) {
	return s.StreamChatCompletion(ctx, ChatCompletionOptions{Messages: history})
}

// toolAccumulator tracks one tool-call's reassembly state across deltas
// sharing the same index: first non-empty id/name wins, arguments
// concatenate in arrival order.
type toolAccumulator struct {
	id        string
	name      string
	arguments string
}

// StreamChatCompletion issues a streaming completion, emitting every
// non-tool-call chunk into the pipeline, running the local tool-call loop
// when the model requests one, and returning the fully accumulated text.
func (s *Session) StreamChatCompletion(ctx context.Context, opts ChatCompletionOptions) (string, error) {
	return s.streamLoop(ctx, opts)
}

// StreamFinalCompletion is identical to StreamChatCompletion but first
// marks the session as being in its final stream, so the emission gate
// always forwards its chunks even with intermediate output disabled.
func (s *Session) StreamFinalCompletion(ctx context.Context, opts ChatCompletionOptions) (string, error) {
	s.mu.Lock()
	s.finalStream = true
	s.mu.Unlock()
	return s.streamLoop(ctx, opts)
}

func (s *Session) streamLoop(ctx context.Context, opts ChatCompletionOptions) (string, error) {
	working := opts
	for {
		text, sawToolCalls, err := s.streamOnce(ctx, working)
		if err != nil {
			return text, err
		}
		if !sawToolCalls {
			return text, nil
		}
		// streamOnce already mutated s.Chat with the tool-call and tool-
		// result turns for any locally-dispatched calls and returns
		// sawToolCalls=true only when a local tool was executed, so the
		// request is re-issued with the updated chat; it returns false
		// when a non-local call was forwarded and the loop should stop
		// (caller controls the next turn per spec §4.5).
		working = ChatCompletionOptions{Chat: s.Chat}
	}
}

// streamOnce runs a single streaming upstream call, reassembles any
// tool-call deltas, dispatches local tool calls (re-issuing the request is
// left to the caller's loop), and returns the accumulated content plus
// whether the loop should continue (true only if a local tool was
// executed and the chat was updated for a re-issue).
func (s *Session) streamOnce(ctx context.Context, opts ChatCompletionOptions) (string, bool, error) {
	params := s.buildParams(opts)
	params.StreamOptions = openai.ChatCompletionStreamOptionsParam{IncludeUsage: openai.Bool(false)}

	stream := s.client().Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	var content string
	accumulators := map[int64]*toolAccumulator{}
	finishedToolCalls := false

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]

		if choice.Delta.Content != "" {
			content += choice.Delta.Content
			s.emitContentChunk(choice.Delta.Content)
		}

		for _, tc := range choice.Delta.ToolCalls {
			acc, ok := accumulators[tc.Index]
			if !ok {
				acc = &toolAccumulator{}
				accumulators[tc.Index] = acc
			}
			if acc.id == "" && tc.ID != "" {
				acc.id = tc.ID
			}
			if acc.name == "" && tc.Function.Name != "" {
				acc.name = tc.Function.Name
			}
			acc.arguments += tc.Function.Arguments
		}

		if string(choice.FinishReason) == "tool_calls" {
			finishedToolCalls = true
		}
	}
	if err := stream.Err(); err != nil {
		logging.WithContext(ctx).Errorf("session %s: upstream stream error: %v", s.ID, err)
		return content, false, nil
	}

	if !finishedToolCalls && len(accumulators) == 0 {
		return content, false, nil
	}
	if !finishedToolCalls && content != "" {
		// finished with content and partial tool deltas but no explicit
		// finish_reason=tool_calls marker: treat as content-only, per
		// the spec's "ends with no content and at least one accumulator"
		// trigger condition not being met.
		return content, false, nil
	}

	return s.dispatchToolCalls(ctx, accumulators)
}

// dispatchToolCalls executes every accumulated tool call that resolves to
// a local tool, appending the assistant/tool turns to the chat, and
// forwards the first non-local call to the client as a chunk (stopping
// the loop, per spec §4.5 point 1).
func (s *Session) dispatchToolCalls(ctx context.Context, accs map[int64]*toolAccumulator) (string, bool, error) {
	indices := make([]int64, 0, len(accs))
	for i := range accs {
		indices = append(indices, i)
	}
	// deterministic dispatch order
	for i := 0; i < len(indices); i++ {
		for j := i + 1; j < len(indices); j++ {
			if indices[j] < indices[i] {
				indices[i], indices[j] = indices[j], indices[i]
			}
		}
	}

	executedLocal := false
	for _, idx := range indices {
		acc := accs[idx]
		if !s.Tools.IsLocal(acc.name) {
			s.emitToolCallChunk(acc)
			return "", false, nil
		}

		s.Chat.ToolCall(acc.id, acc.name, acc.arguments)
		result, err := s.Tools.Call(ctx, acc.name, acc.arguments)
		if err != nil {
			result = fmt.Sprintf("error: %v", err)
		}
		s.Chat.Tool(acc.id, result)
		executedLocal = true
	}

	return "", executedLocal, nil
}

func (s *Session) emitToolCallChunk(acc *toolAccumulator) {
	chunk := completionChunk{
		ID:                s.nextChunkID(),
		Object:            "chat.completion.chunk",
		Created:           nowUnix(),
		Model:             s.Model,
		SystemFingerprint: systemFingerprint,
		Choices: []chunkChoice{{
			Index: 0,
			Delta: chunkDelta{ToolCalls: []deltaToolCall{func() deltaToolCall {
				var d deltaToolCall
				d.Index = 0
				d.ID = acc.id
				d.Type = "function"
				d.Function.Name = acc.name
				d.Function.Arguments = acc.arguments
				return d
			}()}},
		}},
	}
	s.EmitRaw(sseLine(chunk))
}

// ConsumeStream aggregates a byte-chunk stream (as produced by Serve) into
// a single non-streaming completion object, for clients that requested
// stream=false against a moduled model.
func (s *Session) ConsumeStream(ctx context.Context, primary <-chan []byte) (map[string]any, error) {
	var text string
	for raw := range primary {
		line := string(raw)
		if line == string(doneLine) {
			break
		}
		var c completionChunk
		if err := json.Unmarshal(extractJSON(line), &c); err == nil && len(c.Choices) > 0 {
			text += c.Choices[0].Delta.Content
		}
	}
	return map[string]any{
		"id":      s.nextChunkID(),
		"object":  "chat.completion",
		"created": nowUnix(),
		"model":   s.Model,
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": text},
			"finish_reason": "stop",
		}},
	}, nil
}
