package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/tahazakir/corpusqa/internal/models"
	"github.com/tahazakir/corpusqa/internal/services/embedding"
	"github.com/tahazakir/corpusqa/internal/services/vectorstore"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Embedding batch size. The corpus is small; modest batches keep
// request payloads well under provider limits.
const embedBatchSize = 16

// Summary reports what an ingestion run produced.
type Summary struct {
	Documents int     `json:"documents"`
	Chunks    int     `json:"chunks"`
	Elapsed   float64 `json:"elapsed_s"`
}

// Pipeline runs the full ingestion pass: parse each manifest document,
// chunk its sections, embed the chunks, and upsert them into the
// vector store.
type Pipeline struct {
	cfg      models.CorpusConfig
	chunker  *Chunker
	embedder embedding.Embedder
	store    vectorstore.VectorStore
}

// NewPipeline assembles an ingestion pipeline.
func NewPipeline(cfg models.CorpusConfig, embedder embedding.Embedder, store vectorstore.VectorStore) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		chunker:  NewChunker(cfg.ChunkTargetChars, cfg.ChunkOverlapChars),
		embedder: embedder,
		store:    store,
	}
}

// Run ingests the whole corpus. With reset true the collection is
// dropped and recreated first; otherwise chunks are upserted in place
// (IDs are stable, so unchanged input converges).
func (p *Pipeline) Run(ctx context.Context, reset bool) (*Summary, error) {
	start := time.Now()

	manifest, err := LoadManifest(p.cfg.ManifestPath)
	if err != nil {
		return nil, err
	}
	fiberlog.Infof("Ingesting %d corpus documents from %s", len(manifest.Sources), p.cfg.RawDir)

	if reset {
		if err := p.store.Drop(ctx); err != nil {
			fiberlog.Warnf("Failed to drop collection before reset: %v", err)
		}
	}
	if err := p.store.Init(ctx, p.embedder.Dimension()); err != nil {
		return nil, err
	}

	totalChunks := 0
	for _, meta := range manifest.Sources {
		doc, err := ParseFile(filepath.Join(p.cfg.RawDir, meta.Filename), meta)
		if err != nil {
			return nil, err
		}

		chunks := p.chunker.ChunkDocument(doc)
		if len(chunks) == 0 {
			fiberlog.Warnf("Document %s produced no chunks", meta.SourceID)
			continue
		}

		if err := p.embedAndStore(ctx, meta, chunks); err != nil {
			return nil, err
		}

		totalChunks += len(chunks)
		fiberlog.Infof("Ingested %s: %d sections, %d chunks", meta.SourceID, len(doc.Sections), len(chunks))
	}

	return &Summary{
		Documents: len(manifest.Sources),
		Chunks:    totalChunks,
		Elapsed:   time.Since(start).Seconds(),
	}, nil
}

func (p *Pipeline) embedAndStore(ctx context.Context, meta models.SourceMetadata, chunks []models.Chunk) error {
	for batchStart := 0; batchStart < len(chunks); batchStart += embedBatchSize {
		batch := chunks[batchStart:min(batchStart+embedBatchSize, len(chunks))]

		texts := make([]string, len(batch))
		for i, c := range batch {
			// Title framing improves retrieval for document embeddings.
			texts[i] = fmt.Sprintf("title: %s | text: %s", meta.Title, c.Text)
		}

		vectors, err := p.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return err
		}

		points := make([]vectorstore.Point, len(batch))
		for i, c := range batch {
			points[i] = vectorstore.Point{Chunk: c, Meta: meta, Vector: vectors[i]}
		}
		if err := p.store.Upsert(ctx, points); err != nil {
			return err
		}
	}
	return nil
}
