package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSQLFencedBlock(t *testing.T) {
	sql, ok := ExtractSQL("Here is the query:\n```sql\nSELECT 1\n```\nHope that helps.")
	require.True(t, ok)
	assert.Equal(t, "SELECT 1", sql)
}

func TestExtractSQLFencedBlockWinsOverInlineFragment(t *testing.T) {
	text := "SELECT a FROM b is close, but use this:\n```sql\nSELECT region, SUM(total_amount) FROM orders GROUP BY region\n```"
	sql, ok := ExtractSQL(text)
	require.True(t, ok)
	assert.Equal(t, "SELECT region, SUM(total_amount) FROM orders GROUP BY region", sql)
}

func TestExtractSQLInlineFragmentReturnsWholeMatch(t *testing.T) {
	sql, ok := ExtractSQL("SELECT a FROM b")
	require.True(t, ok)
	assert.Equal(t, "SELECT a FROM b", sql)
}

func TestExtractSQLInlineFragmentIsCaseInsensitive(t *testing.T) {
	sql, ok := ExtractSQL("try: select name from customers")
	require.True(t, ok)
	assert.Equal(t, "select name from customers", sql)
}

func TestExtractSQLNothingFound(t *testing.T) {
	sql, ok := ExtractSQL("I cannot produce a query for that.")
	assert.False(t, ok)
	assert.Empty(t, sql)
}

func TestShouldExecute(t *testing.T) {
	assert.True(t, ShouldExecute("SELECT 1"))
	assert.True(t, ShouldExecute("select * from orders"))
	assert.True(t, ShouldExecute("WITH t AS (SELECT 1) SELECT * FROM t"))
	assert.False(t, ShouldExecute("DELETE FROM orders"))
	assert.False(t, ShouldExecute(""))
}
