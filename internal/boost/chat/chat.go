package chat

import (
	"context"
	"fmt"
)

// Backend is the subset of Session that Chat needs in order to implement
// its Advance*/Emit* conveniences, expressed as an interface (rather than a
// concrete *session.Session) so this package never imports the session
// package — the session package imports chat instead. A nil Backend means
// the chat has no associated session; calling any Advance*/Emit* method on
// such a chat is a programmer error and panics, matching the source's
// "fail loudly" semantics.
type Backend interface {
	// Advance issues a non-streaming completion for the given history and
	// returns the assistant reply text.
	Advance(ctx context.Context, history []Message) (string, error)
	// EmitAdvance issues a streaming completion for the given history,
	// forwarding every chunk through the session's emission pipeline, and
	// returns the accumulated assistant reply text.
	EmitAdvance(ctx context.Context, history []Message) (string, error)
	// EmitStatus renders and emits a status chunk.
	EmitStatus(ctx context.Context, text string) error
}

// Chat wraps a tail node and (optionally) the session used to drive
// Advance*/Emit* operations.
type Chat struct {
	tail    *Node
	root    *Node
	Backend Backend
}

// New starts a fresh chat with no turns and no session attached.
func New() *Chat {
	return &Chat{}
}

// NewWithBackend starts a fresh chat bound to session backend b.
func NewWithBackend(b Backend) *Chat {
	return &Chat{Backend: b}
}

// FromConversation builds a detached linear chat from plain messages, the
// same convenience the example module demonstrates for building throwaway
// chats without touching the request's own tail.
func FromConversation(msgs []Message) *Chat {
	c := &Chat{}
	for _, m := range msgs {
		c.AddMessage(m.Role, m.Content)
	}
	return c
}

// Tail returns the chat's current tail node (nil if empty).
func (c *Chat) Tail() *Node { return c.tail }

// AddMessage appends a new tail-child with the given role/content and
// returns it. O(1).
func (c *Chat) AddMessage(role, content string) *Node {
	n := newNode(role, content)
	if c.tail == nil {
		c.root = n
		c.tail = n
		return n
	}
	c.tail.AddChild(n)
	c.tail = n
	return n
}

func (c *Chat) User(content string) *Node      { return c.AddMessage("user", content) }
func (c *Chat) Assistant(content string) *Node { return c.AddMessage("assistant", content) }

// System finds the current root and inserts a new system node as its new
// parent, so subsequent History() begins with this system turn. Multiple
// system turns stack in insertion order at the head.
func (c *Chat) System(content string) *Node {
	n := newNode("system", content)
	if c.root == nil {
		c.root = n
		c.tail = n
		return n
	}
	n.Children = append(n.Children, c.root)
	c.root.Parent = n
	c.root = n
	return n
}

// Insert splices a new role/content node after `after`, re-parenting
// after's existing children onto the new node. If after == tail, the new
// node becomes tail.
func (c *Chat) Insert(after *Node, role, content string) *Node {
	n := newNode(role, content)
	n.Parent = after
	n.Children = after.Children
	for _, child := range n.Children {
		child.Parent = n
	}
	after.Children = []*Node{n}
	if after == c.tail {
		c.tail = n
	}
	return n
}

// ToolCall attaches a tool-call as an assistant turn.
func (c *Chat) ToolCall(id, name, arguments string) *Node {
	n := c.AddMessage("assistant", "")
	n.Message.ToolCalls = []ToolCallRef{{ID: id, Name: name, Arguments: arguments}}
	return n
}

// Tool attaches a tool-result turn referencing callID.
func (c *Chat) Tool(callID, result string) *Node {
	n := c.AddMessage("tool", result)
	n.Message.ToolCallID = callID
	return n
}

// Plain returns the ancestor->tail node path.
func (c *Chat) Plain() []*Node {
	if c.tail == nil {
		return nil
	}
	return c.tail.Parents()
}

// History returns the ancestor->tail path as plain {role, content} records,
// root-first.
func (c *Chat) History() []Message {
	path := c.Plain()
	out := make([]Message, len(path))
	for i, n := range path {
		out[i] = n.Message
	}
	return out
}

// Clone deep-copies History() into a fresh linear chat (no session attached,
// same as the source's `clone` semantics of producing a detached copy).
func (c *Chat) Clone() *Chat {
	return FromConversation(c.History())
}

func (c *Chat) requireBackend() Backend {
	if c.Backend == nil {
		panic(fmt.Errorf("chat: operation requires an associated session, but none is set"))
	}
	return c.Backend
}

// Advance runs a non-streaming completion against the session's upstream,
// appends the response as an assistant turn, and returns the reply text.
func (c *Chat) Advance(ctx context.Context) (string, error) {
	b := c.requireBackend()
	reply, err := b.Advance(ctx, c.History())
	if err != nil {
		return "", err
	}
	c.Assistant(reply)
	return reply, nil
}

// EmitAdvance is the streaming variant: it emits each chunk through the
// session's pipeline and appends the accumulated text as an assistant turn.
func (c *Chat) EmitAdvance(ctx context.Context) (string, error) {
	b := c.requireBackend()
	reply, err := b.EmitAdvance(ctx, c.History())
	if err != nil {
		return "", err
	}
	c.Assistant(reply)
	return reply, nil
}

// EmitStatus emits a formatted status message via the session.
func (c *Chat) EmitStatus(ctx context.Context, text string) error {
	return c.requireBackend().EmitStatus(ctx, text)
}
