package modules

import (
	"context"
	"fmt"

	"github.com/harborlabs/boost/internal/boost/chat"
	"github.com/harborlabs/boost/internal/boost/session"
	"github.com/harborlabs/boost/internal/boost/tools"
)

// echoToolsModule is not ported from a single original_source file; it is
// a minimal module written to exercise the local tool registry end to end
// (scenario S5), grounded in the tool-calling mechanics custom_modules/
// example.py and llm.py's tool loop demonstrate: register a tool, let the
// model call it, and let the session's reassembly loop handle the rest.
type echoToolsModule struct{}

func (echoToolsModule) IDPrefix() string { return "echotools" }

func (echoToolsModule) Apply(ctx context.Context, c *chat.Chat, s *session.Session) error {
	s.Tools.Set("set_temperature", tools.Schema{
		Description: "Records the desired sampling temperature and the reason for it.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"temperature": map[string]any{"type": "number"},
				"reason":      map[string]any{"type": "string"},
			},
			"required": []string{"temperature", "reason"},
		},
	}, func(ctx context.Context, args map[string]any) (string, error) {
		temp, _ := args["temperature"].(float64)
		reason, _ := args["reason"].(string)
		return fmt.Sprintf("temperature set to %.2f (%s)", temp, reason), nil
	})

	_, err := s.StreamFinalCompletion(ctx, session.ChatCompletionOptions{Chat: c})
	return err
}

func init() {
	Register("echotools", echoToolsModule{})
}
