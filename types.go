package vibemap

import (
	"time"

	"github.com/signalhaze/vibemap/emotion"
)

// Item is one pre-encoded text document flowing through the pipeline. Items
// are created by ingestion; the assigner only adds emotion fields, it never
// mutates identity, vector or metadata.
type Item struct {
	ID        string
	Vector    []float32
	Text      string
	Username  string
	Timestamp time.Time
}

// Title renders the display title used by the visualization layer.
func (it Item) Title() string {
	user := it.Username
	if user == "" {
		user = "Unknown"
	}
	when := "Unknown"
	if !it.Timestamp.IsZero() {
		when = it.Timestamp.Format(time.RFC3339)
	}
	return "Tweet by " + user + " at " + when
}

// Provenance records which stage produced the final label.
type Provenance string

const (
	// ProvenanceWeigher means the stage-2 prediction survived residual
	// correction.
	ProvenanceWeigher Provenance = "weigher"

	// ProvenanceCluster means the stage-3 cluster overrode a low-confidence
	// stage-2 prediction.
	ProvenanceCluster Provenance = "cluster"
)

// Result is the per-item outcome of a pipeline run. It is recomputed on
// every run; only the final fields (level, confidence, color) are persisted
// to the item's record.
type Result struct {
	ItemID string

	Stage1Level emotion.Level
	Stage1Score float64

	Stage2Level      emotion.Level
	Stage2Confidence float64

	FinalLevel      emotion.Level
	FinalConfidence float64
	Color           string
	Provenance      Provenance

	// Scores keeps the per-level stage-1 similarities for debugging and for
	// the visualization hover payload.
	Scores map[emotion.Level]float64
}

// RunReport summarizes a batch run: per-item failures are counted by reason
// instead of aborting the batch.
type RunReport struct {
	Processed int
	Failed    int
	Failures  map[string]int

	ClusterIterations int
	ClusterConverged  bool
}
