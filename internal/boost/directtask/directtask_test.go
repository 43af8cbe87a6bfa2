package directtask

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesIsCaseInsensitive(t *testing.T) {
	assert.True(t, Matches([]string{"### Task"}, "please do ### TASK now"))
}

func TestMatchesFindsSubstringAnywhereInText(t *testing.T) {
	assert.True(t, Matches([]string{"generate a title"}, "system prompt\nGenerate a title for this chat"))
}

func TestMatchesReturnsFalseWhenNoneMatch(t *testing.T) {
	assert.False(t, Matches([]string{"### Task", "generate a title"}, "hello, how are you?"))
}

func TestMatchesSkipsEmptySubstrings(t *testing.T) {
	assert.False(t, Matches([]string{"", ""}, "anything at all"))
}

func TestMatchesEmptyListNeverMatches(t *testing.T) {
	assert.False(t, Matches(nil, "### Task"))
}
