package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstMatchOrder(t *testing.T) {
	table := []Rule[string]{
		MustRule("cat", "first"),
		MustRule("cat|dog", "second"),
	}

	value, ok := FirstMatch(table, "a cat walked by")
	require.True(t, ok)
	assert.Equal(t, "first", value)

	value, ok = FirstMatch(table, "a dog walked by")
	require.True(t, ok)
	assert.Equal(t, "second", value)
}

func TestFirstMatchNoMatch(t *testing.T) {
	table := []Rule[int]{MustRule("x", 1)}

	value, ok := FirstMatch(table, "nothing here")
	assert.False(t, ok)
	assert.Zero(t, value)
}

func TestFirstSubmatchCaptures(t *testing.T) {
	table := []Rule[string]{
		MustRule(`(\d+)평`, "area"),
	}

	value, groups, ok := FirstSubmatch(table, "매장이 120평 정도예요")
	require.True(t, ok)
	assert.Equal(t, "area", value)
	require.Len(t, groups, 2)
	assert.Equal(t, "120", groups[1])
}
