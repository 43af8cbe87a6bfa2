package mapper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborlabs/boost/internal/config"
)

func TestGetProxyModel(t *testing.T) {
	p := GetProxyModel("g1", "gpt-4o")
	assert.Equal(t, "g1-gpt-4o", p.ID)
	assert.Equal(t, "g1 gpt-4o", p.Name)
}

func TestResolveUnknownModelReturnsErrUnknownModel(t *testing.T) {
	m := New(&config.Config{})
	_, err := m.Resolve(context.Background(), "g1-does-not-exist")
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestResolveFindsCachedBackendForPlainModel(t *testing.T) {
	be := config.Backend{Name: "local", URL: "http://localhost:11434"}
	m := New(&config.Config{Backends: []config.Backend{be}})
	m.modelToBE["llama3"] = be

	resolved, err := m.Resolve(context.Background(), "llama3")
	require.NoError(t, err)
	assert.Equal(t, "llama3", resolved.BackendID)
	assert.Equal(t, be.URL, resolved.URL)
	assert.Equal(t, "", resolved.ModuleName)
	assert.Nil(t, resolved.Module)
}

func TestResolveSplitsModulePrefixBeforeLookup(t *testing.T) {
	be := config.Backend{Name: "openai", URL: "https://api.openai.com/v1", Key: "sk-test"}
	m := New(&config.Config{Backends: []config.Backend{be}})
	m.modelToBE["gpt-4o"] = be

	resolved, err := m.Resolve(context.Background(), "g1-gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "g1", resolved.ModuleName)
	assert.Equal(t, "gpt-4o", resolved.BackendID)
	assert.Equal(t, be.Key, resolved.Key)
	require.NotNil(t, resolved.Module)
	assert.Equal(t, "g1", resolved.Module.IDPrefix())
}

func TestListDownstreamReturnsCachedCatalogWithoutRefetch(t *testing.T) {
	be := config.Backend{Name: "local", URL: "http://localhost:11434"}
	m := New(&config.Config{Backends: []config.Backend{be}})
	m.modelToBE["llama3"] = be
	m.fetchedAt = time.Now()

	out := m.ListDownstream(context.Background())
	require.Len(t, out, 1)
	assert.Equal(t, "llama3", out[0].ID)
}
