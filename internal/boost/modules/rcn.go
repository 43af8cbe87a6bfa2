package modules

import (
	"context"
	"fmt"

	"github.com/harborlabs/boost/internal/boost/chat"
	"github.com/harborlabs/boost/internal/boost/selection"
	"github.com/harborlabs/boost/internal/boost/session"
)

// rcnModule ports boost/src/modules/rcn.py's "Recursive Certainty
// Validation": pick a target turn via the selection sub-language, then
// walk the model through explaining, doubting, and re-affirming its own
// answer before streaming the final response.
type rcnModule struct{}

func (rcnModule) IDPrefix() string { return "rcn" }

func (rcnModule) Apply(ctx context.Context, c *chat.Chat, s *session.Session) error {
	strategy := "last"
	if v, ok := s.BoostParams["rcn_strat"].(string); ok && v != "" {
		strategy = v
	}
	params := selection.Params{}
	if pct, ok := s.BoostParams["rcn_strat_params"].(map[string]any); ok {
		if v, ok := pct["percentage"]; ok {
			p := selection.ParsePercentage(v)
			params.Percentage = p
		}
	}

	targets, err := selection.ApplyStrategy(c, strategy, params)
	if err != nil {
		return fmt.Errorf("rcn: selection: %w", err)
	}
	if len(targets) == 0 {
		return fmt.Errorf("rcn: selection produced no target node")
	}
	target := targets[len(targets)-1]

	output := chat.NewWithBackend(s)
	output.System(
		"You are a careful reasoner. Decompose the problem below, explain your " +
			"reasoning step by step, then double-check your own answer before " +
			"committing to it.",
	)
	output.User(target.Content())

	if _, err := output.EmitAdvance(ctx); err != nil {
		return fmt.Errorf("rcn: explain step: %w", err)
	}
	output.User("Are you sure? Reconsider any assumptions you made.")
	if _, err := output.EmitAdvance(ctx); err != nil {
		return fmt.Errorf("rcn: doubt step: %w", err)
	}
	output.User("Is this your final answer?")
	if _, err := output.EmitAdvance(ctx); err != nil {
		return fmt.Errorf("rcn: confirm step: %w", err)
	}

	output.User("Now prepare your final answer, stated plainly and completely.")
	_, err = s.StreamFinalCompletion(ctx, session.ChatCompletionOptions{Chat: output})
	return err
}

func init() {
	Register("rcn", rcnModule{})
}
