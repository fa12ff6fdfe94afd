package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	vibemap "github.com/signalhaze/vibemap"
	"github.com/signalhaze/vibemap/emotion"
	"github.com/signalhaze/vibemap/weigher"
)

type itemRecord struct {
	ID        string    `json:"id"`
	Vector    []float32 `json:"vector"`
	Text      string    `json:"text"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

type exampleRecord struct {
	Vector []float32 `json:"vector"`
	Label  string    `json:"label"`
}

type resultRecord struct {
	ItemID     string  `json:"item_id"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Color      string  `json:"color"`
	Provenance string  `json:"provenance"`
}

// loadItems reads the items file. Records without an ID get a generated one
// so downstream stores and caches can key them.
func loadItems(path string) ([]vibemap.Item, error) {
	var records []itemRecord
	if err := readJSON(path, &records); err != nil {
		return nil, fmt.Errorf("reading items: %w", err)
	}

	items := make([]vibemap.Item, len(records))
	for i, rec := range records {
		id := rec.ID
		if id == "" {
			id = uuid.NewString()
		}
		items[i] = vibemap.Item{
			ID:        id,
			Vector:    rec.Vector,
			Text:      rec.Text,
			Username:  rec.Username,
			Timestamp: rec.Timestamp,
		}
	}
	return items, nil
}

func loadExamples(path string) ([]weigher.Example, error) {
	var records []exampleRecord
	if err := readJSON(path, &records); err != nil {
		return nil, fmt.Errorf("reading examples: %w", err)
	}

	examples := make([]weigher.Example, len(records))
	for i, rec := range records {
		level, ok := emotion.FromLabel(rec.Label)
		if !ok {
			return nil, fmt.Errorf("example %d: unknown label %q", i, rec.Label)
		}
		examples[i] = weigher.Example{
			Vector: rec.Vector,
			Level:  level,
		}
	}
	return examples, nil
}

// loadResultLevels maps item IDs to their assigned level from a results file.
func loadResultLevels(path string) (map[string]emotion.Level, error) {
	var records []resultRecord
	if err := readJSON(path, &records); err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}

	levels := make(map[string]emotion.Level, len(records))
	for i, rec := range records {
		level, ok := emotion.FromLabel(rec.Label)
		if !ok {
			return nil, fmt.Errorf("result %d: unknown label %q", i, rec.Label)
		}
		levels[rec.ItemID] = level
	}
	return levels, nil
}

func toResultRecords(results []vibemap.Result) []resultRecord {
	records := make([]resultRecord, len(results))
	for i, res := range results {
		records[i] = resultRecord{
			ItemID:     res.ItemID,
			Label:      res.FinalLevel.Label(),
			Confidence: res.FinalConfidence,
			Color:      res.Color,
			Provenance: string(res.Provenance),
		}
	}
	return records
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if path == "" {
		_, err = fmt.Fprintln(os.Stdout, string(data))
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
