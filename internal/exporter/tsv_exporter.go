package exporter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/liftedinit/roadchain/internal/chain"
	"github.com/liftedinit/roadchain/internal/models"
)

// ExportTSV writes one line per record:
// index, timestamp, actor, previous hash, hash and the compacted payload.
func ExportTSV(w io.Writer, records []models.Record) error {
	writer := bufio.NewWriter(w)

	for _, r := range records {
		// Remove whitespace from JSON data
		compactData := new(bytes.Buffer)
		payload := r.Payload
		if len(payload) == 0 {
			payload = json.RawMessage("null")
		}
		if err := json.Compact(compactData, payload); err != nil {
			return fmt.Errorf("failed to compact JSON payload of block %d: %w", r.Index, err)
		}

		line := fmt.Sprintf("%d\t%s\t%s\t%s\t%s\t%s\n",
			r.Index,
			chain.FormatTimestamp(r.Timestamp),
			sanitize(r.Actor),
			r.PreviousHash,
			r.Hash,
			compactData.String(),
		)
		if _, err := writer.WriteString(line); err != nil {
			return fmt.Errorf("failed to write to TSV output: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush TSV output: %w", err)
	}

	return nil
}

// ExportTSVFile writes records to a TSV file at path, creating parent
// directories as needed.
func ExportTSVFile(path string, records []models.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	outputFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create TSV file: %w", err)
	}

	if err := ExportTSV(outputFile, records); err != nil {
		outputFile.Close()
		return err
	}
	return outputFile.Close()
}

// Actors are free text; tabs and newlines would break the columns.
var sanitizer = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

func sanitize(s string) string {
	return sanitizer.Replace(s)
}
