package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	script := "CREATE TABLE a (id INT);\n\nCREATE TABLE b (\n  id INT\n);\nDROP TABLE c;"
	got := SplitStatements(script)
	assert.Equal(t, []string{
		"CREATE TABLE a (id INT)",
		"CREATE TABLE b (\n  id INT\n)",
		"DROP TABLE c",
	}, got)
}

func TestMigrationFilesOrder(t *testing.T) {
	up, err := migrationFiles("up")
	require.NoError(t, err)
	require.NotEmpty(t, up)
	assert.Equal(t, "0001_init.up.sql", up[0])

	down, err := migrationFiles("down")
	require.NoError(t, err)
	assert.Len(t, down, len(up))
}

func TestEmbeddedSchemaCreatesEveryTable(t *testing.T) {
	content, err := migrationFS.ReadFile("migrations/0001_init.up.sql")
	require.NoError(t, err)
	stmts := SplitStatements(string(content))
	require.Len(t, stmts, 6)
	for i, table := range []string{"users", "services", "orders", "order_items", "payments", "refresh_tokens"} {
		assert.Contains(t, stmts[i], "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}
