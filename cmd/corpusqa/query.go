package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/tahazakir/corpusqa/internal/models"

	"github.com/spf13/cobra"
)

func newQueryCmd() *cobra.Command {
	var (
		configPath string
		replay     bool
		topK       int
		year       int
		author     string
		docType    string
	)

	cmd := &cobra.Command{
		Use:   "query [question]",
		Short: "Ask a question over the indexed corpus",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(configPath, replay)
			if err != nil {
				return err
			}
			defer a.close()

			filters := models.RetrievalFilters{Author: author, DocType: docType}
			if year > 0 {
				filters.Year = &year
			}

			question := strings.Join(args, " ")
			result, err := a.pipeline.Run(context.Background(), "cli", question, topK, filters)
			if err != nil {
				return err
			}

			fmt.Println(result.Answer)
			fmt.Println()
			fmt.Printf("-- %d chunks, model %s, cache_hit=%t, %.0fms\n",
				len(result.Chunks), result.Model, result.CacheHit, result.LatencyMS)
			for _, c := range result.Chunks {
				fmt.Printf("   [%s, %s] score=%.3f %s\n", c.SourceID, c.ChunkID, c.Score, c.SectionTitle)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	cmd.Flags().BoolVar(&replay, "replay", false, "replay mode: fail on cache misses instead of calling the model")
	cmd.Flags().IntVar(&topK, "top-k", 0, "number of chunks to retrieve (0 = configured default)")
	cmd.Flags().IntVar(&year, "year", 0, "filter by publication year")
	cmd.Flags().StringVar(&author, "author", "", "filter by author (substring match)")
	cmd.Flags().StringVar(&docType, "type", "", "filter by document type")
	return cmd
}
