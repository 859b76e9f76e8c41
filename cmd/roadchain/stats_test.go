package roadchain

import (
	"bytes"
	"encoding/json"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/liftedinit/roadchain/internal/chain"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 12))
	assert.Equal(t, "line one lin", truncate("line one\nline two", 12))
	assert.Equal(t, "Zoë", truncate("Zoë Ångström", 3))
	assert.Equal(t, "道路链", truncate("道路链初始化", 3))
}

func TestPrintBlocksMultiByte(t *testing.T) {
	blocks := []chain.Block[json.RawMessage]{{
		Index:   0,
		Actor:   "José María Ñúñez",
		Hash:    "abcdef",
		Payload: json.RawMessage(`"区块链区块链区块链区块链区块链区块链区块链区块链区块链区块链区块链"`),
	}}

	buf := new(bytes.Buffer)
	printBlocks(buf, blocks)
	assert.True(t, utf8.Valid(buf.Bytes()))
	assert.Contains(t, buf.String(), "José María Ñ")
}
