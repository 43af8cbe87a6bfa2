package modules

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/harborlabs/boost/internal/boost/chat"
	"github.com/harborlabs/boost/internal/boost/session"
)

// dotArtifactHTML is a minimal status widget, standing in for the source's
// dot_mini.html: it opens the session's event-source listener and renders
// whatever "dot.status"/"dot.step.*" events arrive.
const dotArtifactHTML = `<div id="dot-status" data-listener="<<listener_id>>">
<script>
(function(){
  var id = document.currentScript.parentElement.dataset.listener;
  var es = new EventSource('/events/' + id);
  es.onmessage = function(e){ document.getElementById('dot-status').innerText = e.data; };
})();
</script>
</div>`

const dotDraftPlanPrompt = `Prepare a draft plan for addressing the query below.

The plan is a list of steps; every step is a few words long and advances the reasoning process.
The plan does not jump to conclusions until the last step.
Each step states a direction only, never a solution or answer.
Account for possible ambiguities and uncertainties, and include a step for self-checking.

Reply with JSON matching this shape exactly: {"steps":[{"id":"string","step":"string"}]}.

Query: %s`

const dotExecuteStepPrompt = `You are addressing a query in a step-by-step manner.

Query: %s

Plan steps: %s

Address this step only: %s`

const dotSummarisePrompt = `Rewrite the step-by-step execution below into a single coherent reply for the user.

Query: %s

Execution: %s`

type dotStep struct {
	ID   string `json:"id"`
	Step string `json:"step"`
}

type dotPlan struct {
	Steps []dotStep `json:"steps"`
}

// dotModule ports boost/src/modules/dot.py's "draft a plan, then execute it
// step by step": draft a short plan via structured output, then address
// each step. The source runs steps sequentially under asyncio even though
// each step only reads the plan's step list, never a prior step's answer
// (execute_step_prompt's "past_steps" is the plan, not the running
// execution); Go has no such false dependency to preserve, so steps fan out
// concurrently via errgroup, gathered into a slice indexed by position —
// the teacher never imports errgroup itself; this shape is grounded on
// the pack's kubilitics-backend example repo's
// addon/scanner.ClusterScanner.Scan, which fans its preflight checks out
// the same way.
type dotModule struct{}

func (dotModule) IDPrefix() string { return "dot" }

var dotPlanSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"steps": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":   map[string]any{"type": "string"},
					"step": map[string]any{"type": "string"},
				},
				"required": []string{"id", "step"},
			},
		},
	},
	"required": []string{"steps"},
}

func (m dotModule) Apply(ctx context.Context, c *chat.Chat, s *session.Session) error {
	query := c.Tail().Content()

	artifact := strings.ReplaceAll(dotArtifactHTML, "<<listener_id>>", s.ID)
	if err := s.EmitArtifact(ctx, artifact); err != nil {
		return fmt.Errorf("dot: artifact: %w", err)
	}
	s.EmitListenerEvent("dot.status", map[string]string{"status": "Drafting a plan"})

	content, err := s.ChatCompletion(ctx, session.ChatCompletionOptions{
		Prompt:     dotDraftPlanPrompt,
		PromptArgs: []any{query},
		Schema:     dotPlanSchema,
		Resolve:    true,
	})
	if err != nil {
		return fmt.Errorf("dot: draft plan: %w", err)
	}

	var plan dotPlan
	if err := session.ResolveJSON(content, &plan); err != nil {
		return fmt.Errorf("dot: parsing draft plan: %w", err)
	}
	if len(plan.Steps) == 0 {
		return fmt.Errorf("dot: draft plan produced no steps")
	}

	stepTexts := make([]string, len(plan.Steps))
	for i, st := range plan.Steps {
		stepTexts[i] = st.Step
		s.EmitListenerEvent("dot.plan.step", st)
	}
	pastSteps, err := json.Marshal(stepTexts)
	if err != nil {
		return fmt.Errorf("dot: encoding plan: %w", err)
	}

	s.EmitListenerEvent("dot.status", map[string]string{"status": "Running"})
	for _, st := range plan.Steps {
		s.EmitListenerEvent("dot.step.status", map[string]string{"id": st.ID, "status": "executing"})
	}

	responses := make([]string, len(plan.Steps))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, st := range plan.Steps {
		i, st := i, st
		group.Go(func() error {
			resp, err := s.ChatCompletion(groupCtx, session.ChatCompletionOptions{
				Prompt:     dotExecuteStepPrompt,
				PromptArgs: []any{query, string(pastSteps), st.Step},
			})
			if err != nil {
				return fmt.Errorf("dot: step %s: %w", st.ID, err)
			}
			responses[i] = resp
			s.EmitListenerEvent("dot.step.response", map[string]string{"id": st.ID, "response": resp})
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	execution := make([]map[string]string, len(plan.Steps))
	for i, st := range plan.Steps {
		execution[i] = map[string]string{"id": st.ID, "response": responses[i]}
	}
	executionJSON, err := json.Marshal(execution)
	if err != nil {
		return fmt.Errorf("dot: encoding execution: %w", err)
	}

	output := chat.NewWithBackend(s)
	output.User(fmt.Sprintf(dotSummarisePrompt, query, string(executionJSON)))
	if _, err := s.StreamFinalCompletion(ctx, session.ChatCompletionOptions{Chat: output}); err != nil {
		return err
	}

	s.EmitListenerEvent("dot.status", map[string]string{"status": "Done"})
	return nil
}

func init() {
	Register("dot", dotModule{})
}
