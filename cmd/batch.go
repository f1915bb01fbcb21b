package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/credit-cli/internal/model"
)

var (
	batchLimit  int
	batchOutput string
)

var batchCmd = &cobra.Command{
	Use:   "batch <csv-file>",
	Short: "Batch analyze companies from a CSV of tax identifiers",
	Long:  "Reads CNPJs from the first column of a CSV file, runs the pipeline for each concurrently, and writes one JSON result per line.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		taxIDs, err := readTaxIDs(args[0])
		if err != nil {
			return err
		}

		p, err := initPipeline()
		if err != nil {
			return err
		}

		out := os.Stdout
		if batchOutput != "" {
			f, err := os.Create(batchOutput)
			if err != nil {
				return eris.Wrapf(err, "create output file %s", batchOutput)
			}
			defer f.Close()
			out = f
		}

		return processBatch(ctx, taxIDs, batchLimit, cfg.Batch.MaxConcurrent, out, func(ctx context.Context, taxID string) (*model.AnalysisState, error) {
			req, err := model.NewRequest(taxID, nil, model.UploadLimits{
				MaxFileBytes: cfg.Upload.MaxFileBytes,
				AllowedExts:  cfg.Upload.AllowedExts,
			})
			if err != nil {
				return nil, err
			}
			return p.Run(ctx, *req)
		})
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchLimit, "limit", 100, "max number of companies to process")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "write JSON lines to a file instead of stdout")
	rootCmd.AddCommand(batchCmd)
}

// readTaxIDs reads candidate CNPJs from the first column of a CSV file.
// A header row is detected by its lack of digits and skipped.
func readTaxIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open batch file %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var ids []string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "read batch file %s", path)
		}
		if len(record) == 0 {
			continue
		}
		id := strings.TrimSpace(record[0])
		if id == "" || !strings.ContainsAny(id, "0123456789") {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// analyzeFunc is the callback signature for running an analysis on one company.
type analyzeFunc func(ctx context.Context, taxID string) (*model.AnalysisState, error)

// processBatch applies limit, then analyzes companies concurrently with the
// given function, writing one JSON object per line to out.
func processBatch(ctx context.Context, taxIDs []string, limit, concurrency int, out io.Writer, analyze analyzeFunc) error {
	if len(taxIDs) == 0 {
		zap.L().Info("no tax identifiers found in batch file")
		return nil
	}

	if limit > 0 && len(taxIDs) > limit {
		taxIDs = taxIDs[:limit]
	}

	zap.L().Info("processing batch",
		zap.Int("companies", len(taxIDs)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64
	var mu sync.Mutex
	enc := json.NewEncoder(out)

	for _, taxID := range taxIDs {
		g.Go(func() error {
			log := zap.L().With(zap.String("tax_id", taxID))

			st, err := analyze(gctx, taxID)
			if err != nil {
				failed.Add(1)
				log.Error("analysis failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			log.Info("analysis complete",
				zap.Float64("overall_score", st.Assessment.OverallScore),
				zap.String("recommendation", string(st.Assessment.Recommendation)),
			)

			mu.Lock()
			defer mu.Unlock()
			return enc.Encode(st)
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}
