package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMessageAndHistory(t *testing.T) {
	c := New()
	c.User("hello")
	c.Assistant("hi there")

	hist := c.History()
	require.Len(t, hist, 2)
	assert.Equal(t, Message{Role: "user", Content: "hello"}, hist[0])
	assert.Equal(t, Message{Role: "assistant", Content: "hi there"}, hist[1])
}

func TestSystemInsertsAsNewRoot(t *testing.T) {
	c := New()
	c.User("first")
	c.System("be nice")

	hist := c.History()
	require.Len(t, hist, 2)
	assert.Equal(t, "system", hist[0].Role)
	assert.Equal(t, "user", hist[1].Role)
}

func TestFromConversationRoundTrips(t *testing.T) {
	msgs := []Message{
		{Role: "system", Content: "a"},
		{Role: "user", Content: "b"},
	}
	c := FromConversation(msgs)
	assert.Equal(t, msgs, c.History())
}

func TestCloneIsDetached(t *testing.T) {
	c := New()
	c.User("q")
	clone := c.Clone()
	clone.Assistant("a")

	assert.Len(t, c.History(), 1)
	assert.Len(t, clone.History(), 2)
}

func TestToolCallAndToolTurns(t *testing.T) {
	c := New()
	c.User("what's the weather")
	n := c.ToolCall("call_1", "get_weather", `{"city":"nyc"}`)
	require.Len(t, n.Message.ToolCalls, 1)
	assert.Equal(t, "call_1", n.Message.ToolCalls[0].ID)

	tool := c.Tool("call_1", "sunny")
	assert.Equal(t, "call_1", tool.Message.ToolCallID)
	assert.Equal(t, "tool", tool.Role())
}

func TestRequireBackendPanicsWithoutOne(t *testing.T) {
	c := New()
	c.User("hi")
	assert.Panics(t, func() {
		_, _ = c.Advance(context.Background())
	})
}

type stubBackend struct {
	reply string
	err   error
}

func (b stubBackend) Advance(ctx context.Context, history []Message) (string, error) {
	return b.reply, b.err
}
func (b stubBackend) EmitAdvance(ctx context.Context, history []Message) (string, error) {
	return b.reply, b.err
}
func (b stubBackend) EmitStatus(ctx context.Context, text string) error { return nil }

func TestAdvanceAppendsAssistantTurn(t *testing.T) {
	c := NewWithBackend(stubBackend{reply: "42"})
	c.User("what is the answer")

	reply, err := c.Advance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "42", reply)

	hist := c.History()
	require.Len(t, hist, 2)
	assert.Equal(t, "assistant", hist[1].Role)
	assert.Equal(t, "42", hist[1].Content)
}

func TestAdvancePropagatesBackendError(t *testing.T) {
	wantErr := errors.New("upstream down")
	c := NewWithBackend(stubBackend{err: wantErr})
	c.User("hi")

	_, err := c.Advance(context.Background())
	assert.ErrorIs(t, err, wantErr)
	assert.Len(t, c.History(), 1, "a failed advance must not append a turn")
}
