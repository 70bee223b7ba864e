package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/clartest/internal/scenarios"
)

// recordChains runs the registered tests with --db and returns the path.
func recordChains(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "chain.db")
	_, err := execute(t, "test", "--db", db)
	require.NoError(t, err)
	return db
}

func TestBlocksCommand_RequiresDB(t *testing.T) {
	_, err := execute(t, "blocks")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "db" not set`)
}

func TestBlocksCommand_MissingDatabase(t *testing.T) {
	_, err := execute(t, "blocks", "--db", filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestBlocksCommand_Text(t *testing.T) {
	db := recordChains(t)

	out, err := execute(t, "blocks", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "("+scenarios.PropertyCreationName+")")
	assert.Contains(t, out, "  Block 1 ")
	assert.Contains(t, out, "  Block 2 ")
	assert.Contains(t, out, `property-tokenizer.create-tokenized-property ("PROP_NYC_001"`)
	assert.Contains(t, out, `-> (ok "PROP_NYC_001")`)
	assert.NotContains(t, out, "rolled back")
}

func TestBlocksCommand_Session(t *testing.T) {
	db := recordChains(t)

	out, err := execute(t, "blocks", "--db", db, "--format", "json")
	require.NoError(t, err)
	var all struct {
		Data []SessionLog `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	require.Len(t, all.Data, 1)
	session := all.Data[0]

	require.Len(t, session.Blocks, 2)
	genesis, mined := session.Blocks[0], session.Blocks[1]
	assert.Equal(t, int64(1), genesis.Height)
	assert.Equal(t, genesis.Hash, mined.ParentHash)
	require.Len(t, mined.Transactions, 1)
	assert.True(t, mined.Transactions[0].Committed)
	assert.Equal(t, uint64(1), mined.Transactions[0].Nonce, "genesis deployment used nonce 0")

	out, err = execute(t, "blocks", "--db", db, "--session", session.ID, "--format", "json")
	require.NoError(t, err)
	var one struct {
		Data    []SessionLog `json:"data"`
		TraceID string       `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &one))
	assert.Equal(t, session.ID, one.TraceID)
	assert.Equal(t, all.Data, one.Data)
}

func TestBlocksCommand_UnknownSession(t *testing.T) {
	db := recordChains(t)

	_, err := execute(t, "blocks", "--db", db, "--session", "no-such-session")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session not found: no-such-session")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestShort(t *testing.T) {
	assert.Equal(t, "abc", short("abc"))
	assert.Equal(t, "0123456789ab", short("0123456789abcdef"))
}
