package session

import (
	"fmt"

	"github.com/harborlabs/boost/internal/boost/chat"
)

// ChatCompletionOptions carries the call forms the source's llm.py exposes
// (chat=, messages=, prompt=), plus the structured-output and resolve
// knobs. Exactly one of Chat/Messages/Prompt should be set; Chat takes
// priority, then Messages, then Prompt.
type ChatCompletionOptions struct {
	Chat     *chat.Chat
	Messages []chat.Message
	Prompt   string
	PromptArgs []any // formatted into Prompt via fmt.Sprintf

	// Schema, if set, requests JSON-schema-conformant output via
	// response_format. Resolve does not change ChatCompletion's result:
	// the content is always returned as a string, and callers parse it
	// with ResolveJSON.
	Schema  map[string]any
	Resolve bool

	// Params overrides/extends the session's forwarded params for this
	// call only (e.g. a module raising temperature for one sub-call).
	Params map[string]any
}

func (o ChatCompletionOptions) resolveMessages() []chat.Message {
	if o.Chat != nil {
		return o.Chat.History()
	}
	if o.Messages != nil {
		return o.Messages
	}
	if o.Prompt != "" {
		text := o.Prompt
		if len(o.PromptArgs) > 0 {
			text = fmt.Sprintf(o.Prompt, o.PromptArgs...)
		}
		return []chat.Message{{Role: "user", Content: text}}
	}
	return nil
}
