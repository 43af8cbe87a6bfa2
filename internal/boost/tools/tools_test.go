package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoFunc(ctx context.Context, args map[string]any) (string, error) {
	return args["query"].(string), nil
}

func TestSetQualifiesWithLocalPrefix(t *testing.T) {
	r := New()
	r.Set("search", Schema{Description: "search the web"}, echoFunc)

	assert.True(t, r.IsLocal("boost_local_search"))
	assert.True(t, r.IsLocal("search"))
}

func TestSetDuplicatePanics(t *testing.T) {
	r := New()
	r.Set("search", Schema{}, echoFunc)
	assert.Panics(t, func() {
		r.Set("search", Schema{}, echoFunc)
	})
}

func TestCallParsesJSONArgs(t *testing.T) {
	r := New()
	r.Set("echo", Schema{}, func(ctx context.Context, args map[string]any) (string, error) {
		return args["city"].(string), nil
	})

	out, err := r.Call(context.Background(), "echo", `{"city":"nyc"}`)
	require.NoError(t, err)
	assert.Equal(t, "nyc", out)
}

func TestCallFallsBackToQueryOnInvalidJSON(t *testing.T) {
	r := New()
	r.Set("echo", Schema{}, echoFunc)

	out, err := r.Call(context.Background(), "echo", "not json")
	require.NoError(t, err)
	assert.Equal(t, "not json", out)
}

func TestCallUnknownToolErrors(t *testing.T) {
	r := New()
	_, err := r.Call(context.Background(), "nope", "{}")
	assert.Error(t, err)
}

func TestDefinitionsSortedByQualifiedName(t *testing.T) {
	r := New()
	r.Set("zeta", Schema{Description: "z"}, echoFunc)
	r.Set("alpha", Schema{Description: "a"}, echoFunc)

	defs := r.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "boost_local_alpha", defs[0].Function.Name)
	assert.Equal(t, "boost_local_zeta", defs[1].Function.Name)
	assert.Equal(t, "function", defs[0].Type)
}
