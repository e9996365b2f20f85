// Copyright 2025 Signalpath Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/signalpath/recall"
	"github.com/signalpath/recall/ai"
	"github.com/signalpath/recall/core"
	"github.com/signalpath/recall/pipeline"
	"github.com/signalpath/recall/search"
)

func main() {
	app := &cli.App{
		Name:  "recall",
		Usage: "Semantic retrieval core for call transcripts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Load call records from a JSON-lines file",
				Action: ingestCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to JSON-lines call dump",
						Required: true,
					},
				),
			},
			{
				Name:   "embed",
				Usage:  "Generate an embedding for one call",
				Action: embedCommand,
				Flags: append(storeFlags(),
					ownerFlag(),
					&cli.StringFlag{
						Name:     "call",
						Usage:    "Call ID to embed",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Regenerate even if the stored embedding is current",
					},
				),
			},
			{
				Name:   "batch",
				Usage:  "Embed every call without a current embedding",
				Action: batchCommand,
				Flags: append(storeFlags(),
					ownerFlag(),
					&cli.IntFlag{
						Name:  "max-batch-size",
						Usage: "Largest batch accepted per run",
						Value: pipeline.DefaultConfig().MaxBatchSize,
					},
					&cli.DurationFlag{
						Name:  "pacing-delay",
						Usage: "Pause between consecutive items",
						Value: pipeline.DefaultConfig().PacingDelay,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N calls",
						Value: 10,
					},
				),
			},
			{
				Name:   "backfill",
				Usage:  "Embed missing calls for several owners concurrently",
				Action: backfillCommand,
				Flags: append(storeFlags(),
					&cli.StringSliceFlag{
						Name:     "owner",
						Aliases:  []string{"o"},
						Usage:    "Owner ID (repeatable)",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of owners processed concurrently",
						Value: 2,
					},
					&cli.DurationFlag{
						Name:  "pacing-delay",
						Usage: "Pause between consecutive items within one owner",
						Value: pipeline.DefaultConfig().PacingDelay,
					},
				),
			},
			{
				Name:   "search",
				Usage:  "Search embedded calls by query text",
				Action: searchCommand,
				Flags: append(storeFlags(),
					ownerFlag(),
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Query text",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: search.DefaultLimit,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum similarity",
						Value: search.DefaultThreshold,
					},
				),
			},
			{
				Name:   "similar",
				Usage:  "Find calls similar to an already-embedded call",
				Action: similarCommand,
				Flags: append(storeFlags(),
					ownerFlag(),
					&cli.StringFlag{
						Name:     "call",
						Usage:    "Source call ID",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: search.DefaultLimit,
					},
				),
			},
			{
				Name:   "coverage",
				Usage:  "Report embedding coverage for an owner",
				Action: coverageCommand,
				Flags:  append(storeFlags(), ownerFlag()),
			},
			{
				Name:   "sweep",
				Usage:  "Delete embeddings generated before a cutoff",
				Action: sweepCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:  "owner",
						Usage: "Owner ID (all owners when omitted)",
					},
					&cli.DurationFlag{
						Name:     "older-than",
						Usage:    "Age cutoff, e.g. 720h",
						Required: true,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// storeFlags are the flags every command that opens the store shares.
func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "https://api.openai.com/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "text-embedding-3-small",
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "Embedding provider API key",
			EnvVars: []string{"RECALL_API_KEY"},
		},
	}
}

func ownerFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "owner",
		Aliases:  []string{"o"},
		Usage:    "Owner ID",
		Required: true,
	}
}

// openStore builds a Store from the shared flags.
func openStore(c *cli.Context) (*recall.Store, error) {
	config := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
		ai.WithAPIKey(c.String("api-key")),
	)
	store, err := recall.NewStore(c.String("db"), recall.WithAIConfig(config))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

// callDump is the wire shape of one line in an ingest file.
type callDump struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Transcript      string    `json:"transcript"`
	Summary         string    `json:"summary"`
	Sentiment       string    `json:"sentiment"`
	Outcome         string    `json:"outcome"`
	Language        string    `json:"language"`
	DurationSeconds int       `json:"duration_seconds"`
	OccurredAt      time.Time `json:"occurred_at"`
	HasRedFlags     bool      `json:"has_red_flags"`
	HasActionItems  bool      `json:"has_action_items"`
}

// ingestCommand loads call records from a JSON-lines dump, one call
// object per line.
func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	file, err := os.Open(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer file.Close()

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	var count, lineNo int
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var dump callDump
		if err := json.Unmarshal([]byte(line), &dump); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		call := &core.CallRecord{
			ID:              dump.ID,
			OwnerID:         dump.OwnerID,
			Transcript:      dump.Transcript,
			Summary:         dump.Summary,
			Sentiment:       dump.Sentiment,
			Outcome:         dump.Outcome,
			Language:        dump.Language,
			DurationSeconds: dump.DurationSeconds,
			OccurredAt:      dump.OccurredAt,
			HasRedFlags:     dump.HasRedFlags,
			HasActionItems:  dump.HasActionItems,
		}
		if _, err := store.PutCalls(ctx, call); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed reading input: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Ingested %d calls\n", count)
	return nil
}

func embedCommand(c *cli.Context) error {
	ctx := context.Background()

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	ownerID := c.String("owner")
	call, err := store.CallRepository().GetCall(ctx, ownerID, c.String("call"))
	if err != nil {
		return fmt.Errorf("failed to load call: %w", err)
	}

	result, err := store.GenerateEmbedding(ctx, pipeline.GenerateRequest{
		OwnerID:     ownerID,
		EntityID:    call.ID,
		Text:        call.Transcript,
		ContentType: core.ContentTypeTranscript,
		Force:       c.Bool("force"),
	})
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}

	if result.Cached {
		fmt.Fprintf(os.Stderr, "Embedding current, nothing to do (hash %s)\n", result.ContentHash)
	} else {
		fmt.Fprintf(os.Stderr, "Embedded %s: %d tokens, cost %.6f\n",
			call.ID, result.TokenCount, result.Cost)
	}
	return nil
}

func batchCommand(c *cli.Context) error {
	ctx := context.Background()

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	ownerID := c.String("owner")
	items, err := missingItems(ctx, store, ownerID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(os.Stderr, "All calls already embedded")
		return nil
	}

	tracker := pipeline.NewProgressTracker(os.Stderr, len(items), c.Int("report-interval"))
	runner, err := store.NewBatchRunner(
		pipeline.WithMaxBatchSize(c.Int("max-batch-size")),
		pipeline.WithPacingDelay(c.Duration("pacing-delay")),
		pipeline.WithProgressTracker(tracker),
	)
	if err != nil {
		return err
	}

	result, err := runner.Run(ctx, ownerID, items)
	if err != nil {
		return fmt.Errorf("batch run failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Done: %d total, %d succeeded (%d cached), %d failed, cost %.6f\n",
		result.Summary.Total, result.Summary.Success, result.Summary.Cached,
		result.Summary.Failed, result.TotalCost)
	return nil
}

// missingItems builds batch items for every call without a current
// transcript embedding.
func missingItems(ctx context.Context, store *recall.Store, ownerID string) ([]core.BatchItem, error) {
	report, err := store.Coverage(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("coverage check failed: %w", err)
	}
	if len(report.MissingIDs) == 0 {
		return nil, nil
	}

	calls, err := store.CallRepository().GetCalls(ctx, ownerID, report.MissingIDs...)
	if err != nil {
		return nil, fmt.Errorf("failed to load calls: %w", err)
	}

	items := make([]core.BatchItem, 0, len(calls))
	for _, call := range calls {
		items = append(items, core.BatchItem{
			EntityID:    call.ID,
			Text:        call.Transcript,
			ContentType: core.ContentTypeTranscript,
		})
	}
	return items, nil
}

func backfillCommand(c *cli.Context) error {
	ctx := context.Background()

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	var batches []pipeline.OwnerBatch
	for _, ownerID := range c.StringSlice("owner") {
		items, err := missingItems(ctx, store, ownerID)
		if err != nil {
			return fmt.Errorf("owner %s: %w", ownerID, err)
		}
		if len(items) == 0 {
			continue
		}
		batches = append(batches, pipeline.OwnerBatch{OwnerID: ownerID, Items: items})
	}
	if len(batches) == 0 {
		fmt.Fprintln(os.Stderr, "All calls already embedded")
		return nil
	}

	runner, err := store.NewBatchRunner(pipeline.WithPacingDelay(c.Duration("pacing-delay")))
	if err != nil {
		return err
	}
	backfill, err := pipeline.NewBackfillRunner(runner, pipeline.WithPoolSize(c.Int("pool-size")))
	if err != nil {
		return err
	}
	defer backfill.Release()

	result, err := backfill.Run(ctx, batches)
	if err != nil {
		return fmt.Errorf("backfill run failed: %w", err)
	}

	for owner, batchResult := range result.Results {
		fmt.Fprintf(os.Stderr, "%s: %d total, %d succeeded (%d cached), %d failed, cost %.6f\n",
			owner, batchResult.Summary.Total, batchResult.Summary.Success,
			batchResult.Summary.Cached, batchResult.Summary.Failed, batchResult.TotalCost)
	}
	for owner, ownerErr := range result.Errors {
		fmt.Fprintf(os.Stderr, "%s: failed: %v\n", owner, ownerErr)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("backfill failed for %d of %d owners", len(result.Errors), len(batches))
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	resp, err := store.Search(ctx, search.Request{
		OwnerID:   c.String("owner"),
		Query:     c.String("query"),
		Limit:     c.Int("limit"),
		Threshold: float32(c.Float64("threshold")),
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if resp.KeywordDegraded {
		fmt.Fprintln(os.Stderr, "warning: keyword matching unavailable, results are vector-only")
	}
	printResults(resp.Results)
	fmt.Fprintf(os.Stderr, "%d results in %s\n", len(resp.Results), resp.SearchTime)
	return nil
}

func similarCommand(c *cli.Context) error {
	ctx := context.Background()

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.FindSimilarTo(ctx, c.String("owner"), c.String("call"), c.Int("limit"))
	if err != nil {
		return fmt.Errorf("similar lookup failed: %w", err)
	}

	printResults(results)
	return nil
}

func coverageCommand(c *cli.Context) error {
	ctx := context.Background()

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := store.Coverage(ctx, c.String("owner"))
	if err != nil {
		return fmt.Errorf("coverage failed: %w", err)
	}

	fmt.Printf("Calls: %d\nEmbedded: %d\nCoverage: %.1f%%\n",
		report.TotalEntities, report.EmbeddedEntities, report.CoveragePercent)
	for _, id := range report.MissingIDs {
		fmt.Printf("missing: %s\n", id)
	}
	return nil
}

func sweepCommand(c *cli.Context) error {
	ctx := context.Background()

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	cutoff := time.Now().UTC().Add(-c.Duration("older-than"))
	removed, err := store.SweepOlderThan(ctx, cutoff, c.String("owner"))
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Removed %d embeddings generated before %s\n",
		removed, cutoff.Format(time.RFC3339))
	return nil
}

func printResults(results []*core.SearchResult) {
	for i, result := range results {
		marker := ""
		if result.KeywordMatch {
			marker = " [keyword]"
		}
		fmt.Printf("%2d. %s  %.3f%s\n    %s\n",
			i+1, result.EntityID, result.Similarity, marker, result.Preview)
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
