package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/subosito/gotenv"

	"github.com/avolkov/fintrack/internal/extraction"
	"github.com/avolkov/fintrack/internal/jobs"
	"github.com/avolkov/fintrack/internal/jobs/inmemory"
	"github.com/avolkov/fintrack/internal/logger"
)

var (
	flagModel     string
	flagHeuristic bool
	flagWorkers   int
)

var rootCmd = &cobra.Command{
	Use:   "fintrack",
	Short: "Extract transaction drafts from bank statements and receipts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract transaction drafts from a PDF statement or receipt image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		extractor, err := newExtractor(ctx)
		if err != nil {
			return err
		}

		data, mediaType, err := readDocument(args[0])
		if err != nil {
			return err
		}

		drafts, err := extractor.ExtractFromDocument(ctx, data, mediaType)
		if err != nil {
			return err
		}

		return printJSON(drafts)
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary <file.pdf>",
	Short: "Extract a PDF statement and report income/expense totals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		extractor, err := newExtractor(ctx)
		if err != nil {
			return err
		}

		data, mediaType, err := readDocument(args[0])
		if err != nil {
			return err
		}

		payload, err := extraction.AcquireDocument(data, mediaType)
		if err != nil {
			return err
		}
		if payload.IsImage() {
			return fmt.Errorf("summary works on PDF statements, got %q", mediaType)
		}

		return printJSON(extractor.SummarizeIncomeExpense(ctx, payload.Text))
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Extract every statement and receipt in a directory through the job queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logger.New()

		extractor, err := newExtractor(ctx)
		if err != nil {
			return err
		}

		entries, err := os.ReadDir(args[0])
		if err != nil {
			return fmt.Errorf("read directory: %w", err)
		}

		var pending []*jobs.ExtractDocumentJob
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(args[0], entry.Name())
			mediaType := mediaTypeForFile(path)
			if mediaType == "" {
				log.Debug().Str("file", path).Msg("skipping unrecognized file")
				continue
			}
			pending = append(pending, &jobs.ExtractDocumentJob{
				FilePath:  path,
				MediaType: mediaType,
			})
		}
		if len(pending) == 0 {
			log.Info().Msg("no documents to process")
			return nil
		}

		store := inmemory.NewStore()
		queue := inmemory.NewQueue(len(pending), flagWorkers, store)

		handler := func(ctx context.Context, job jobs.Job) error {
			ej, ok := job.(*jobs.ExtractDocumentJob)
			if !ok {
				return fmt.Errorf("unexpected job type %T", job)
			}

			data, err := os.ReadFile(ej.FilePath)
			if err != nil {
				return fmt.Errorf("read %s: %w", ej.FilePath, err)
			}

			drafts, err := extractor.ExtractFromDocument(ctx, data, ej.MediaType)
			if err != nil {
				return fmt.Errorf("extract %s: %w", ej.FilePath, err)
			}

			ej.DraftCount = len(drafts)
			log.Info().Str("file", ej.FilePath).Int("drafts", len(drafts)).Msg("document processed")
			return nil
		}

		if err := queue.Start(ctx, handler); err != nil {
			return err
		}
		for _, job := range pending {
			if err := queue.PublishExtractDocument(ctx, job); err != nil {
				return err
			}
		}

		// A job is done only once the queue marks it completed or failed;
		// retried attempts are not terminal, so count jobs, not handler calls.
		for remaining := len(pending); remaining > 0; remaining-- {
			select {
			case job := <-queue.Terminal():
				if job.Status == jobs.JobStatusFailed {
					log.Warn().Str("file", job.FilePath).Str("error", job.Error).Msg("document failed")
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := queue.Stop(ctx); err != nil {
			return err
		}

		done, err := store.ListJobs(ctx, jobs.JobFilter{})
		if err != nil {
			return err
		}
		return printJSON(done)
	},
}

func newExtractor(ctx context.Context) (*extraction.Extractor, error) {
	cfg := extraction.Config{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Model:  flagModel,
	}
	if flagHeuristic {
		cfg.APIKey = ""
	}
	return extraction.New(ctx, cfg, logger.New())
}

func readDocument(path string) ([]byte, string, error) {
	mediaType := mediaTypeForFile(path)
	if mediaType == "" {
		return nil, "", fmt.Errorf("cannot determine media type of %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return data, mediaType, nil
}

// mediaTypeForFile maps a filename onto the pipeline's allow-list.
func mediaTypeForFile(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return ""
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	// Load GEMINI_API_KEY and friends from .env when present.
	_ = gotenv.Load()

	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "Gemini model identifier (default "+extraction.DefaultModelName+")")
	rootCmd.PersistentFlags().BoolVar(&flagHeuristic, "heuristic", false, "force the deterministic parser, even when an API key is configured")
	batchCmd.Flags().IntVar(&flagWorkers, "workers", 3, "concurrent extraction workers")

	rootCmd.AddCommand(extractCmd, summaryCmd, batchCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("command failed")
	}
}
