package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	vibemap "github.com/signalhaze/vibemap"
	"github.com/signalhaze/vibemap/adapters"
	"github.com/signalhaze/vibemap/emotion"
	"github.com/signalhaze/vibemap/projection"
	"github.com/signalhaze/vibemap/prototype"
	"github.com/signalhaze/vibemap/weigher"
)

// --- assign ---

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Label items with emotion levels",
	Long: `Label items with emotion levels.

Reads pre-encoded items and labeled training examples, builds the emotion
prototypes, trains the per-level weighting, and runs the full pipeline.

Examples:
  vibemap assign --items items.json --examples labeled.json --out results.json
  vibemap assign --items items.json --examples labeled.json --persist --namespace tweets`,
	RunE: func(cmd *cobra.Command, args []string) error {
		itemsPath, _ := cmd.Flags().GetString("items")
		examplesPath, _ := cmd.Flags().GetString("examples")
		outPath, _ := cmd.Flags().GetString("out")
		encoderName, _ := cmd.Flags().GetString("encoder")
		namespace, _ := cmd.Flags().GetString("namespace")
		persist, _ := cmd.Flags().GetBool("persist")
		threshold, _ := cmd.Flags().GetFloat64("override-threshold")

		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		items, err := loadItems(itemsPath)
		if err != nil {
			return err
		}
		examples, err := loadExamples(examplesPath)
		if err != nil {
			return err
		}

		encoder, err := newEncoder(encoderName)
		if err != nil {
			return err
		}

		ctx := cmd.Context()

		bank, err := prototype.Build(ctx, emotion.DefaultVocabulary(), encoder, prototype.Options{})
		if err != nil {
			return fmt.Errorf("building prototypes: %w", err)
		}

		trainSet, evalSet := weigher.Split(examples, weigher.DefaultSplitRatio, weigher.DefaultSplitSeed)
		model, trainReport, err := weigher.Train(trainSet, evalSet, bank, weigher.Options{})
		if err != nil {
			return fmt.Errorf("training weights: %w", err)
		}
		log.Info("weights trained",
			zap.Float64("accuracy", trainReport.Accuracy),
			zap.Int("train_size", trainReport.TrainSize),
			zap.Int("eval_size", trainReport.EvalSize))

		var store vibemap.ItemStore
		if persist {
			adapter, err := adapters.NewPineconeItemStoreAdapter(nil, nil, namespace)
			if err != nil {
				return err
			}
			store = adapter
		}

		assigner, err := vibemap.NewAssigner(vibemap.Config{
			Bank:              bank,
			Model:             model,
			Store:             store,
			Logger:            log,
			OverrideThreshold: threshold,
		})
		if err != nil {
			return err
		}

		results, report, err := assigner.Assign(ctx, items)
		if err != nil {
			return err
		}
		log.Info("assignment finished",
			zap.Int("processed", report.Processed),
			zap.Int("failed", report.Failed),
			zap.Bool("cluster_converged", report.ClusterConverged))

		return writeJSON(outPath, toResultRecords(results))
	},
}

// --- project ---

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project labeled items into 3D coordinates",
	Long: `Project labeled items into 3D coordinates.

Joins the items file with an assignment results file and reduces the
embeddings to 3D with PCA followed by t-SNE.

Example:
  vibemap project --items items.json --results results.json --max-records 500 --out points.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		itemsPath, _ := cmd.Flags().GetString("items")
		resultsPath, _ := cmd.Flags().GetString("results")
		outPath, _ := cmd.Flags().GetString("out")
		maxRecords, _ := cmd.Flags().GetInt("max-records")
		maxIterations, _ := cmd.Flags().GetInt("max-iterations")

		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		items, err := loadItems(itemsPath)
		if err != nil {
			return err
		}
		levels, err := loadResultLevels(resultsPath)
		if err != nil {
			return err
		}

		inputs := make([]projection.Input, 0, len(items))
		for _, item := range items {
			level, ok := levels[item.ID]
			if !ok {
				log.Warn("item missing from results, skipping", zap.String("item_id", item.ID))
				continue
			}
			inputs = append(inputs, projection.Input{
				ID:     item.ID,
				Vector: item.Vector,
				Level:  level,
			})
		}

		cache := projection.NewCache(projection.CacheOptions{Logger: log})
		points, err := cache.Project(cmd.Context(), inputs, maxRecords, maxIterations)
		if err != nil {
			return err
		}

		return writeJSON(outPath, points)
	},
}

// --- estimate ---

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate projection processing time",
	RunE: func(cmd *cobra.Command, args []string) error {
		maxRecords, _ := cmd.Flags().GetInt("max-records")
		maxIterations, _ := cmd.Flags().GetInt("max-iterations")

		fmt.Fprintf(cmd.OutOrStdout(), "%d\n", projection.Estimate(maxRecords, maxIterations))
		return nil
	},
}

func newEncoder(name string) (vibemap.Encoder, error) {
	switch name {
	case "voyage":
		return adapters.NewVoyageEncoderAdapter(nil)
	case "openai":
		return adapters.NewOpenAIEncoderAdapter(nil)
	default:
		return nil, fmt.Errorf("unknown encoder %q (want voyage or openai)", name)
	}
}

func init() {
	assignCmd.Flags().String("items", "", "path to the items JSON file")
	assignCmd.Flags().String("examples", "", "path to the labeled examples JSON file")
	assignCmd.Flags().String("out", "", "output path for results (stdout if empty)")
	assignCmd.Flags().String("encoder", "voyage", "embedding provider for prototype phrases (voyage or openai)")
	assignCmd.Flags().String("namespace", "", "pinecone namespace for persisted results")
	assignCmd.Flags().Bool("persist", false, "upsert results to the vector index")
	assignCmd.Flags().Float64("override-threshold", 0, "confidence below which the cluster label wins (0 for default)")
	assignCmd.MarkFlagRequired("items")
	assignCmd.MarkFlagRequired("examples")

	projectCmd.Flags().String("items", "", "path to the items JSON file")
	projectCmd.Flags().String("results", "", "path to the assignment results JSON file")
	projectCmd.Flags().String("out", "", "output path for points (stdout if empty)")
	projectCmd.Flags().Int("max-records", projection.DefaultMaxRecords, "maximum items to project")
	projectCmd.Flags().Int("max-iterations", projection.MinIterations, "t-SNE iteration count")
	projectCmd.MarkFlagRequired("items")
	projectCmd.MarkFlagRequired("results")

	estimateCmd.Flags().Int("max-records", projection.DefaultMaxRecords, "maximum items to project")
	estimateCmd.Flags().Int("max-iterations", projection.MinIterations, "t-SNE iteration count")
}
