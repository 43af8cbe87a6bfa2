package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborlabs/boost/internal/boost/chat"
)

func buildChat() *chat.Chat {
	c := chat.New()
	c.System("be helpful")
	c.User("first question")
	c.Assistant("first answer")
	c.User("second question")
	return c
}

func TestApplyStrategyLast(t *testing.T) {
	nodes, err := ApplyStrategy(buildChat(), Last, Params{})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "second question", nodes[0].Content())
}

func TestApplyStrategyFirst(t *testing.T) {
	nodes, err := ApplyStrategy(buildChat(), First, Params{})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "be helpful", nodes[0].Content())
}

func TestApplyStrategyAll(t *testing.T) {
	nodes, err := ApplyStrategy(buildChat(), All, Params{})
	require.NoError(t, err)
	assert.Len(t, nodes, 4)
}

func TestApplyStrategyUser(t *testing.T) {
	nodes, err := ApplyStrategy(buildChat(), User, Params{})
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	for _, n := range nodes {
		assert.Equal(t, "user", n.Role())
	}
}

func TestApplyStrategyUnknown(t *testing.T) {
	_, err := ApplyStrategy(buildChat(), "bogus", Params{})
	assert.Error(t, err)
}

func TestPercentageFloorsAtOneNode(t *testing.T) {
	nodes, err := ApplyStrategy(buildChat(), Percentage, Params{Percentage: 0})
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

func TestPercentageHundredReturnsEverything(t *testing.T) {
	nodes, err := ApplyStrategy(buildChat(), Percentage, Params{Percentage: 100})
	require.NoError(t, err)
	assert.Len(t, nodes, 4)
}

func TestMatchByRoleAndSubstring(t *testing.T) {
	nodes, err := ApplyStrategy(buildChat(), Match, Params{Role: "user", Substring: "second"})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "second question", nodes[0].Content())
}

func TestMatchNegativeIndexWrapsFromEnd(t *testing.T) {
	idx := -1
	nodes, err := ApplyStrategy(buildChat(), Match, Params{Index: &idx})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "second question", nodes[0].Content())
}

func TestMatchIndexOutOfRangeReturnsEmpty(t *testing.T) {
	idx := 99
	nodes, err := ApplyStrategy(buildChat(), Match, Params{Index: &idx})
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestParseFilterDefaultsToExact(t *testing.T) {
	clauses := ParseFilter("owned_by=openai")
	require.Len(t, clauses, 1)
	assert.Equal(t, Clause{Field: "owned_by", Op: OpExact, Value: "openai"}, clauses[0])
}

func TestParseFilterParsesOperatorSuffix(t *testing.T) {
	clauses := ParseFilter("id.contains=gpt,name.regex=^g")
	require.Len(t, clauses, 2)
	assert.Equal(t, OpContains, clauses[0].Op)
	assert.Equal(t, OpRegex, clauses[1].Op)
}

func TestMatchesFilterRequiresEveryClause(t *testing.T) {
	row := map[string]string{"id": "gpt-4o", "owned_by": "openai"}
	assert.True(t, MatchesFilter(row, ParseFilter("id.contains=gpt,owned_by=openai")))
	assert.False(t, MatchesFilter(row, ParseFilter("id.contains=gpt,owned_by=anthropic")))
}

func TestMatchesFilterMissingFieldFails(t *testing.T) {
	row := map[string]string{"id": "gpt-4o"}
	assert.False(t, MatchesFilter(row, ParseFilter("owned_by=openai")))
}

func TestParsePercentage(t *testing.T) {
	assert.Equal(t, 50.0, ParsePercentage(50.0))
	assert.Equal(t, 50.0, ParsePercentage(50))
	assert.Equal(t, 50.0, ParsePercentage("50"))
	assert.Equal(t, 0.0, ParsePercentage(nil))
}
