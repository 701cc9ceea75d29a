package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) string { return s }

func TestEmptyTokenStartsAtZero(t *testing.T) {
	items := []string{"a", "b", "c"}
	page, err := GetPage(items, key, "", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, page.Items)
	assert.True(t, page.HasMore)
	assert.NotEmpty(t, page.NextToken)
}

func TestNextTokenContinues(t *testing.T) {
	items := []string{"a", "b", "c"}
	first, err := GetPage(items, key, "", 2)
	require.NoError(t, err)

	second, err := GetPage(items, key, first.NextToken, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, second.Items)
	assert.False(t, second.HasMore)
	assert.Empty(t, second.NextToken)
}

func TestListChangedInvalidatesToken(t *testing.T) {
	items := []string{"a", "b", "c"}
	first, err := GetPage(items, key, "", 2)
	require.NoError(t, err)

	mutated := []string{"a", "b", "c", "d"}
	_, err = GetPage(mutated, key, first.NextToken, 2)
	var target *ListChangedError
	assert.ErrorAs(t, err, &target)
}

func TestInvalidTokenRejected(t *testing.T) {
	items := []string{"a"}
	_, err := GetPage(items, key, "not-hex!!", 10)
	var target *InvalidTokenError
	assert.ErrorAs(t, err, &target)
}

func TestDefaultMaxPageSize(t *testing.T) {
	items := make([]string, 250)
	for i := range items {
		items[i] = "x"
	}
	page, err := GetPage(items, key, "", 0)
	require.NoError(t, err)
	assert.Len(t, page.Items, DefaultMaxPageSize)
}
