package main

import (
	"context"
	"fmt"

	"github.com/tahazakir/corpusqa/internal/services/ingest"

	"github.com/spf13/cobra"
)

func newIngestCmd() *cobra.Command {
	var (
		configPath string
		reset      bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Parse, chunk, embed, and index the corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(configPath, false)
			if err != nil {
				return err
			}
			defer a.close()

			pipeline := ingest.NewPipeline(a.cfg.Corpus, a.embedder, a.store)
			summary, err := pipeline.Run(context.Background(), reset)
			if err != nil {
				return err
			}

			fmt.Printf("Ingested %d documents (%d chunks) in %.1fs\n",
				summary.Documents, summary.Chunks, summary.Elapsed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	cmd.Flags().BoolVar(&reset, "reset", false, "drop and recreate the collection before indexing")
	return cmd
}
