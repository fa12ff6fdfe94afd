package vibemap

import (
	"go.uber.org/zap"

	"github.com/signalhaze/vibemap/prototype"
	"github.com/signalhaze/vibemap/residual"
	"github.com/signalhaze/vibemap/weigher"
)

// Config holds everything an Assigner needs. Bank and Model are read-only
// after construction and may be shared across concurrent assigners.
type Config struct {
	// Bank maps emotion levels to their prototypes. Required.
	Bank prototype.Bank

	// Model is the trained stage-2 model. Required.
	Model *weigher.Model

	// Store receives per-item emotion upserts. If nil, results are returned
	// but not persisted.
	Store ItemStore

	// Logger receives structured progress and failure logs. If nil, logging
	// is disabled.
	Logger *zap.Logger

	// OverrideThreshold is the stage-2 confidence below which the stage-3
	// cluster level wins. Zero means residual.DefaultOverrideThreshold.
	OverrideThreshold float64

	// ClusterMaxIterations caps the stage-3 k-means iterations. Zero means
	// residual.DefaultMaxIterations.
	ClusterMaxIterations int

	// ClusterTolerance is the stage-3 centroid-shift stopping tolerance.
	// Zero means residual.DefaultTolerance.
	ClusterTolerance float64
}

// applyDefaults fills in default values for unset config fields.
func (c *Config) applyDefaults() {
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.OverrideThreshold == 0 {
		c.OverrideThreshold = residual.DefaultOverrideThreshold
	}
	if c.ClusterMaxIterations == 0 {
		c.ClusterMaxIterations = residual.DefaultMaxIterations
	}
	if c.ClusterTolerance == 0 {
		c.ClusterTolerance = residual.DefaultTolerance
	}
}
