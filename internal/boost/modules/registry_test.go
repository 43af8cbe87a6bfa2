package modules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborlabs/boost/internal/boost/chat"
	"github.com/harborlabs/boost/internal/boost/session"
)

type fakeModule struct{ prefix string }

func (f fakeModule) IDPrefix() string { return f.prefix }
func (f fakeModule) Apply(ctx context.Context, c *chat.Chat, s *session.Session) error {
	return nil
}

func TestRegisterAndGet(t *testing.T) {
	Register("fake-registry-test", fakeModule{prefix: "faketest"})

	m, ok := Get("fake-registry-test")
	require.True(t, ok)
	assert.Equal(t, "faketest", m.IDPrefix())
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("fake-dup-test", fakeModule{prefix: "fakedup"})
	assert.Panics(t, func() {
		Register("fake-dup-test", fakeModule{prefix: "fakedup"})
	})
}

func TestListIncludesBuiltinModules(t *testing.T) {
	names := List()
	assert.Contains(t, names, "g1")
	assert.Contains(t, names, "rcn")
	assert.Contains(t, names, "dot")
}

func TestResolveByPrefixFindsRegisteredModule(t *testing.T) {
	Register("fake-prefix-test", fakeModule{prefix: "fakeprefix"})

	name, m, ok := ResolveByPrefix("fakeprefix")
	require.True(t, ok)
	assert.Equal(t, "fake-prefix-test", name)
	assert.Equal(t, "fakeprefix", m.IDPrefix())
}

func TestResolveByPrefixUnknownReturnsFalse(t *testing.T) {
	_, _, ok := ResolveByPrefix("nope-not-registered")
	assert.False(t, ok)
}

func TestSplitSyntheticModelKnownPrefix(t *testing.T) {
	name, backendID, m, ok := SplitSyntheticModel("g1-gpt-4o")
	require.True(t, ok)
	assert.Equal(t, "g1", name)
	assert.Equal(t, "gpt-4o", backendID)
	assert.Equal(t, "g1", m.IDPrefix())
}

func TestSplitSyntheticModelUnknownPrefixPassesThrough(t *testing.T) {
	name, backendID, m, ok := SplitSyntheticModel("gpt-4o")
	assert.False(t, ok)
	assert.Equal(t, "", name)
	assert.Equal(t, "gpt-4o", backendID)
	assert.Nil(t, m)
}

func TestSplitSyntheticModelNoHyphen(t *testing.T) {
	name, backendID, m, ok := SplitSyntheticModel("bareword")
	assert.False(t, ok)
	assert.Equal(t, "", name)
	assert.Equal(t, "bareword", backendID)
	assert.Nil(t, m)
}
