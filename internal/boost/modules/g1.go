package modules

import (
	"context"
	"fmt"
	"strings"

	"github.com/harborlabs/boost/internal/boost/chat"
	"github.com/harborlabs/boost/internal/boost/session"
)

const defaultG1MaxSteps = 8

// g1Module ports boost/src/modules/g1.py's step-by-step reasoning loop:
// keep asking the model to either continue reasoning or give a final
// answer, emitting a status line per step, until it signals
// "final_answer" or the step budget is spent.
type g1Module struct{}

func (g1Module) IDPrefix() string { return "g1" }

func (g1Module) Apply(ctx context.Context, c *chat.Chat, s *session.Session) error {
	maxSteps := defaultG1MaxSteps
	if v, ok := s.BoostParams["g1_max_steps"].(float64); ok && v > 0 {
		maxSteps = int(v)
	}

	output := chat.NewWithBackend(s)
	output.System(
		"Think step by step. After each step, write either " +
			"\"ACTION: continue\" if more reasoning is needed, or " +
			"\"ACTION: final_answer\" once you are ready to conclude.",
	)
	for _, m := range c.History() {
		output.AddMessage(m.Role, m.Content)
	}

	steps := 0
	for {
		if err := output.EmitStatus(ctx, fmt.Sprintf("Step: %d", steps+1)); err != nil {
			return fmt.Errorf("g1: status: %w", err)
		}
		reply, err := output.EmitAdvance(ctx)
		if err != nil {
			return fmt.Errorf("g1: step %d: %w", steps+1, err)
		}
		steps++
		if strings.Contains(reply, "final_answer") || steps >= maxSteps {
			break
		}
	}

	output.User("Give your final answer now, stated plainly and completely.")
	_, err := s.StreamFinalCompletion(ctx, session.ChatCompletionOptions{Chat: output})
	return err
}

func init() {
	Register("g1", g1Module{})
}
