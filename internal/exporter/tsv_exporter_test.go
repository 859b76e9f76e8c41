package exporter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftedinit/roadchain/internal/models"
)

func testRecords() []models.Record {
	return []models.Record{
		{
			Index:        0,
			PreviousHash: "00",
			Timestamp:    time.Date(2026, time.February, 21, 0, 0, 0, 0, time.UTC),
			Actor:        "alexa",
			Payload:      json.RawMessage(`"RoadChain initialized"`),
			Hash:         "aa",
		},
		{
			Index:        1,
			PreviousHash: "aa",
			Timestamp:    time.Date(2026, time.February, 21, 1, 0, 0, 500, time.UTC),
			Actor:        "lucidia\tcore",
			Payload:      json.RawMessage("{\n  \"ops\": [1, 2]\n}"),
			Hash:         "bb",
		},
		{
			Index:        2,
			PreviousHash: "bb",
			Timestamp:    time.Date(2026, time.February, 21, 2, 0, 0, 0, time.UTC),
			Hash:         "cc",
		},
	}
}

func TestExportTSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportTSV(&buf, testRecords()))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "0\t2026-02-21T00:00:00Z\talexa\t00\taa\t\"RoadChain initialized\"", lines[0])
	assert.Equal(t, "1\t2026-02-21T01:00:00.0000005Z\tlucidia core\taa\tbb\t{\"ops\":[1,2]}", lines[1])
	assert.Equal(t, "2\t2026-02-21T02:00:00Z\t\tbb\tcc\tnull", lines[2])
	for _, l := range lines {
		assert.Len(t, strings.Split(l, "\t"), 6)
	}
}

func TestExportTSVInvalidPayload(t *testing.T) {
	records := []models.Record{{Index: 4, Payload: json.RawMessage(`{broken`)}}
	err := ExportTSV(&bytes.Buffer{}, records)
	assert.ErrorContains(t, err, "block 4")
}

func TestExportTSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tsv", "chain.tsv")
	require.NoError(t, ExportTSVFile(path, testRecords()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "\n"))

	require.NoError(t, ExportTSVFile(path, nil))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}
