package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   []string
	}{
		{
			name:   "single statement",
			script: "CREATE TABLE t (id INTEGER)",
			want:   []string{"CREATE TABLE t (id INTEGER)"},
		},
		{
			name:   "two statements with trailing semicolon",
			script: "CREATE TABLE a (id INTEGER);\nCREATE TABLE b (id INTEGER);\n",
			want:   []string{"CREATE TABLE a (id INTEGER)", "CREATE TABLE b (id INTEGER)"},
		},
		{
			name:   "semicolon inside string literal",
			script: "INSERT INTO t (v) VALUES ('a;b'); SELECT 1",
			want:   []string{"INSERT INTO t (v) VALUES ('a;b')", "SELECT 1"},
		},
		{
			name:   "semicolon inside line comment",
			script: "SELECT 1 -- not a split; really\n; SELECT 2",
			want:   []string{"SELECT 1 -- not a split; really", "SELECT 2"},
		},
		{
			name:   "semicolon inside block comment",
			script: "SELECT 1 /* not; a split */; SELECT 2",
			want:   []string{"SELECT 1 /* not; a split */", "SELECT 2"},
		},
		{
			name:   "division operator passes through",
			script: "SELECT amount_cents / 100 FROM cost_items; SELECT 2",
			want:   []string{"SELECT amount_cents / 100 FROM cost_items", "SELECT 2"},
		},
		{
			name:   "empty fragments dropped",
			script: ";;  ;\n;",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitStatements(tt.script))
		})
	}
}

func TestPrioritizeCreateTables(t *testing.T) {
	in := []string{
		"CREATE INDEX i1 ON a(x)",
		"CREATE TABLE a (id INTEGER)",
		"INSERT INTO a VALUES (1)",
		"CREATE TABLE b (id INTEGER)",
	}

	got := prioritizeCreateTables(in)
	require.Len(t, got, 4)

	assert.Equal(t, "CREATE TABLE a (id INTEGER)", got[0])
	assert.Equal(t, "CREATE TABLE b (id INTEGER)", got[1], "relative table order is preserved")
	assert.Equal(t, "CREATE INDEX i1 ON a(x)", got[2], "relative non-table order is preserved")
	assert.Equal(t, "INSERT INTO a VALUES (1)", got[3])
}

func TestBootstrapScript_SplitsCleanly(t *testing.T) {
	caps := capsFor(t, true)
	stmts := splitStatements(bootstrapScript(caps))
	require.NotEmpty(t, stmts)

	tables := 0
	for _, s := range stmts {
		if isCreateTable(s) {
			tables++
		}
	}
	assert.Equal(t, 5, tables, "bootstrap creates five core tables")
}
