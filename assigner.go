// Package vibemap assigns a ten-level emotional intensity label to
// pre-encoded text items through a three-stage pipeline: nearest-prototype
// cosine matching, a supervised per-level weighting model, and a
// prototype-seeded clustering pass that reconciles low-confidence
// predictions. The package also exposes the projection cache feeding the 3D
// visualization layer (see the projection subpackage).
package vibemap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/signalhaze/vibemap/internal/vectormath"
	"github.com/signalhaze/vibemap/prototype"
	"github.com/signalhaze/vibemap/residual"
	"github.com/signalhaze/vibemap/similarity"
	"github.com/signalhaze/vibemap/weigher"
)

// Assigner orchestrates the three classification stages over item batches.
// It is safe for concurrent use: the bank and model are never mutated after
// construction.
type Assigner struct {
	bank  prototype.Bank
	model *weigher.Model
	store ItemStore
	log   *zap.Logger
	opts  residual.Options
}

// NewAssigner builds an Assigner from the given configuration.
func NewAssigner(cfg Config) (*Assigner, error) {
	cfg.applyDefaults()
	if len(cfg.Bank) == 0 {
		return nil, errors.New("config: prototype bank is required")
	}
	if cfg.Model == nil {
		return nil, errors.New("config: trained model is required")
	}

	return &Assigner{
		bank:  cfg.Bank,
		model: cfg.Model,
		store: cfg.Store,
		log:   cfg.Logger,
		opts: residual.Options{
			MaxIterations:     cfg.ClusterMaxIterations,
			Tolerance:         cfg.ClusterTolerance,
			OverrideThreshold: cfg.OverrideThreshold,
		},
	}, nil
}

// Assign runs stages 1 and 2 per item, stage 3 jointly on the batch, and
// upserts the final fields through the store. A per-item failure (bad
// vector, store error) is counted in the report and the rest of the batch
// proceeds. Identical inputs and model state reproduce identical results.
func (a *Assigner) Assign(ctx context.Context, items []Item) ([]Result, RunReport, error) {
	report := RunReport{Failures: make(map[string]int)}

	results := make([]Result, 0, len(items))
	survivors := make([]Item, 0, len(items))
	stageInputs := make([]residual.Input, 0, len(items))

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}

		res, normVec, err := a.classifyItem(item)
		if err != nil {
			a.log.Warn("item classification failed",
				zap.String("item_id", item.ID), zap.Error(err))
			report.Failed++
			report.Failures[failureReason(err)]++
			continue
		}

		results = append(results, res)
		survivors = append(survivors, item)
		stageInputs = append(stageInputs, residual.Input{
			Vector:     normVec,
			Level:      res.Stage2Level,
			Confidence: res.Stage2Confidence,
		})
	}

	outputs, stats, err := residual.Correct(stageInputs, a.bank, a.opts)
	if err != nil {
		return nil, report, fmt.Errorf("residual correction: %w", err)
	}
	report.ClusterIterations = stats.Iterations
	report.ClusterConverged = stats.Converged
	if !stats.Converged && len(stageInputs) > 0 {
		a.log.Warn("residual clustering hit the iteration cap",
			zap.Int("iterations", stats.Iterations))
	}

	for i := range results {
		results[i].FinalLevel = outputs[i].Level
		results[i].FinalConfidence = outputs[i].Confidence
		results[i].Color = outputs[i].Level.Color()
		results[i].Provenance = ProvenanceWeigher
		if outputs[i].FromCluster {
			results[i].Provenance = ProvenanceCluster
		}
	}

	if a.store != nil {
		for i, item := range survivors {
			fields := EmotionFields{
				Level:      results[i].FinalLevel,
				Confidence: results[i].FinalConfidence,
				Color:      results[i].Color,
			}
			if err := a.store.UpsertEmotion(ctx, item, fields); err != nil {
				a.log.Warn("emotion upsert failed",
					zap.String("item_id", item.ID), zap.Error(err))
				report.Failed++
				report.Failures["store upsert"]++
			}
		}
	}

	report.Processed = len(results)
	a.log.Info("batch assigned",
		zap.Int("processed", report.Processed),
		zap.Int("failed", report.Failed),
		zap.Bool("cluster_converged", report.ClusterConverged))

	return results, report, nil
}

// classifyItem runs stages 1 and 2 for one item. Item vectors are
// L2-normalized first, matching how the prototypes are stored.
func (a *Assigner) classifyItem(item Item) (Result, []float32, error) {
	if len(item.Vector) == 0 {
		return Result{}, nil, errors.New("item has no embedding")
	}
	vec := vectormath.Normalize(item.Vector)

	// One cosine pass over the prototypes feeds both stages.
	scores, err := similarity.Scores(vec, a.bank)
	if err != nil {
		return Result{}, nil, fmt.Errorf("stage 1: %w", err)
	}
	s1Level, s1Score, err := similarity.MatchScores(scores, a.bank)
	if err != nil {
		return Result{}, nil, fmt.Errorf("stage 1: %w", err)
	}

	s2Level, s2Conf, err := a.model.PredictScores(scores, a.bank)
	if err != nil {
		return Result{}, nil, fmt.Errorf("stage 2: %w", err)
	}

	return Result{
		ItemID:           item.ID,
		Stage1Level:      s1Level,
		Stage1Score:      s1Score,
		Stage2Level:      s2Level,
		Stage2Confidence: s2Conf,
		Scores:           scores,
	}, vec, nil
}

// failureReason buckets an error for the run report.
func failureReason(err error) string {
	switch {
	case errors.Is(err, vectormath.ErrDimensionMismatch):
		return "dimension mismatch"
	case errors.Is(err, similarity.ErrEmptyBank):
		return "empty prototype bank"
	default:
		return "classification error"
	}
}
