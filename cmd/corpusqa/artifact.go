package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/tahazakir/corpusqa/internal/models"
	"github.com/tahazakir/corpusqa/internal/services/export"

	"github.com/spf13/cobra"
)

func newArtifactCmd() *cobra.Command {
	var (
		configPath string
		replay     bool
		kind       string
		topK       int
		outDir     string
	)

	cmd := &cobra.Command{
		Use:   "artifact [topic]",
		Short: "Generate a research artifact (evidence_table, synthesis_memo, gap_analysis, disagreement_map)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			artifactKind := models.ArtifactKind(kind)
			if !artifactKind.Valid() {
				return fmt.Errorf("unknown artifact kind %q", kind)
			}

			a, err := loadApp(configPath, replay)
			if err != nil {
				return err
			}
			defer a.close()

			topic := strings.Join(args, " ")
			ctx := context.Background()

			chunks, err := a.retrieval.RetrieveDiversified(ctx, topic, topK, models.RetrievalFilters{})
			if err != nil {
				return err
			}
			if len(chunks) == 0 {
				return fmt.Errorf("no relevant chunks found for topic %q", topic)
			}

			sources := citedSources(a, chunks)
			result, err := a.generator.Artifact(ctx, "cli", artifactKind, topic, chunks, sources)
			if err != nil {
				return err
			}

			if outDir != "" {
				doc := export.Markdown(result.Text, topic)
				filename := fmt.Sprintf("%s.md", kind)
				path, err := export.SaveArtifact(outDir, filename, []byte(doc))
				if err != nil {
					return err
				}
				fmt.Printf("Saved %s to %s (cache_hit=%t)\n", kind, path, result.CacheHit)
				return nil
			}

			fmt.Println(result.Text)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	cmd.Flags().BoolVar(&replay, "replay", false, "replay mode: fail on cache misses instead of calling the model")
	cmd.Flags().StringVarP(&kind, "kind", "k", "evidence_table", "artifact kind")
	cmd.Flags().IntVar(&topK, "top-k", 12, "number of evidence chunks to retrieve")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "write the artifact under this directory instead of stdout")
	return cmd
}

func citedSources(a *app, chunks []models.RetrievedChunk) []models.SourceMetadata {
	seen := make(map[string]bool)
	var sources []models.SourceMetadata
	for _, c := range chunks {
		if seen[c.SourceID] {
			continue
		}
		seen[c.SourceID] = true
		if meta, ok := a.manifest.BySourceID(c.SourceID); ok {
			sources = append(sources, meta)
		}
	}
	return sources
}
