package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"legal-chatbot-be/internal/bootstrap"
	"legal-chatbot-be/internal/config"
	"legal-chatbot-be/internal/pkg/logger"
	"legal-chatbot-be/internal/repository/unitofwork"
	"legal-chatbot-be/pkg/database"
	"legal-chatbot-be/pkg/embedding"
	"legal-chatbot-be/pkg/events"
	"legal-chatbot-be/pkg/ingest"
	pktNats "legal-chatbot-be/pkg/nats"
	"legal-chatbot-be/pkg/rag/search"
	"legal-chatbot-be/pkg/vectorindex"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	direct bool
	topK   int
)

var rootCmd = &cobra.Command{
	Use:   "ingest [file or directory]...",
	Short: "Load legal documents into the retrieval index",
	Long: `Reads .txt, .md and .html files, splits them into chunks and embeds them.

By default each document is announced on NATS as DOCUMENT_SUBMITTED and the
API instances do the embedding. With --direct the chunks are embedded and
written from this process.

Re-ingesting a file replaces the chunks stored for it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := collectFiles(args)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			color.Yellow("No supported documents found")
			return nil
		}

		cfg := config.Load()
		if direct {
			return ingestDirect(cmd.Context(), cfg, files)
		}
		return submit(cmd.Context(), cfg, files)
	},
}

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Run a retrieval against the index and print the hits",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		embedder, index, err := buildIndex(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		orchestrator := search.NewOrchestrator(embedder, index, search.Config{TopK: topK, MinScore: cfg.Retrieval.MinScore}, logger.NewNopLogger())
		res := orchestrator.Retrieve(cmd.Context(), args[0], topK)
		if res.Err != nil {
			return res.Err
		}
		if len(res.Chunks) == 0 {
			color.Yellow("No matching chunks")
			return nil
		}
		for i, c := range res.Chunks {
			color.Cyan("%d. %s (score %.3f)", i+1, c.Source, c.Score)
			fmt.Println(c.Text)
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().BoolVar(&direct, "direct", false, "Embed and store in this process instead of publishing to NATS")
	queryCmd.Flags().IntVarP(&topK, "top", "k", search.DefaultTopK, "Number of chunks to return")
	rootCmd.AddCommand(queryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// collectFiles expands directories into the supported files beneath them.
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		err := filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && ingest.Supported(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func buildIndex(ctx context.Context, cfg *config.Config) (embedding.EmbeddingProvider, vectorindex.Index, error) {
	embedder, err := bootstrap.NewEmbeddingProvider(cfg)
	if err != nil {
		return nil, nil, err
	}

	var uowFactory unitofwork.RepositoryFactory
	if cfg.Retrieval.VectorIndex == "pgvector" || cfg.Retrieval.VectorIndex == "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		uowFactory = unitofwork.NewRepositoryFactory(db)
	}

	index, err := bootstrap.NewVectorIndex(ctx, cfg, uowFactory)
	if err != nil {
		return nil, nil, err
	}
	return embedder, index, nil
}

func ingestDirect(ctx context.Context, cfg *config.Config, files []string) error {
	embedder, index, err := buildIndex(ctx, cfg)
	if err != nil {
		return err
	}
	pipeline := ingest.NewPipeline(embedder, index, cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap, logger.NewNopLogger())

	failed := 0
	for _, path := range files {
		doc, err := ingest.LoadFile(path)
		if err != nil {
			failed++
			color.Red("✗ %s: %v", path, err)
			continue
		}
		start := time.Now()
		n, err := pipeline.Ingest(ctx, doc)
		if err != nil {
			failed++
			color.Red("✗ %s: %v", doc.Source, err)
			continue
		}
		color.Green("✓ %s: %d chunks in %s", doc.Source, n, time.Since(start).Round(time.Millisecond))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(files))
	}
	return nil
}

// submit publishes raw file contents; the API parses them on arrival.
func submit(ctx context.Context, cfg *config.Config, files []string) error {
	pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		return fmt.Errorf("connect NATS (use --direct to skip it): %w", err)
	}
	defer pub.Close()

	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		source := filepath.Base(path)
		err = pub.Publish(ctx, events.New(events.TypeDocumentSubmitted, map[string]interface{}{
			"source":  source,
			"content": string(raw),
		}))
		if err != nil {
			return fmt.Errorf("publish %s: %w", source, err)
		}
		color.Green("→ %s queued", source)
	}
	return nil
}
