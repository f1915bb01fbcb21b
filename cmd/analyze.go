package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/credit-cli/internal/model"
)

var analyzeOutput string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <cnpj> [documents...]",
	Short: "Run a credit analysis for one company",
	Long:  "Runs the full pipeline for the given CNPJ, optionally analyzing financial documents passed as file paths, and prints the resulting analysis state as JSON.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		docs, err := readDocuments(args[1:])
		if err != nil {
			return err
		}

		req, err := model.NewRequest(args[0], docs, model.UploadLimits{
			MaxFileBytes: cfg.Upload.MaxFileBytes,
			AllowedExts:  cfg.Upload.AllowedExts,
		})
		if err != nil {
			return err
		}

		p, err := initPipeline()
		if err != nil {
			return err
		}

		st, err := p.Run(ctx, *req)
		if err != nil {
			if st != nil {
				for _, note := range st.Log {
					zap.L().Info("processing log", zap.String("note", note))
				}
			}
			return err
		}

		out := os.Stdout
		if analyzeOutput != "" {
			f, err := os.Create(analyzeOutput)
			if err != nil {
				return eris.Wrapf(err, "create output file %s", analyzeOutput)
			}
			defer f.Close()
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	},
}

func readDocuments(paths []string) ([]model.RawDocument, error) {
	var docs []model.RawDocument
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "read document %s", path)
		}
		docs = append(docs, model.RawDocument{
			Filename: filepath.Base(path),
			Content:  content,
		})
	}
	return docs, nil
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "write the analysis JSON to a file instead of stdout")
	rootCmd.AddCommand(analyzeCmd)
}
