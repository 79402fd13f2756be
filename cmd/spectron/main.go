// Copyright 2025 Poiesic Systems
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
	"context"
	"fmt"
	"log"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	spectron "github.com/Pradeep-Chandra-G/Spectron"
	"github.com/Pradeep-Chandra-G/Spectron/config"
	"github.com/Pradeep-Chandra-G/Spectron/core"
)

func main() {
	// Pick up AI hosts and similar settings from a local .env if present.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "spectron",
		Usage: "Document question answering over your own files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (defaults to spectron.yaml, then ~/.config/spectron/config.yaml)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "upload",
				Usage:     "Upload documents and process them for retrieval",
				ArgsUsage: "FILE [FILE...]",
				Action:    uploadCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-wait",
						Usage: "Return immediately instead of waiting for processing",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for processing to finish",
						Value: 5 * time.Minute,
					},
				},
			},
			{
				Name:      "status",
				Usage:     "Show the processing status of a document",
				ArgsUsage: "ID",
				Action:    statusCommand,
			},
			{
				Name:   "list",
				Usage:  "List all documents, newest first",
				Action: listCommand,
			},
			{
				Name:      "delete",
				Usage:     "Delete a document, its chunks, and its stored file",
				ArgsUsage: "ID",
				Action:    deleteCommand,
			},
			{
				Name:      "ask",
				Usage:     "Ask a question over the ingested documents",
				ArgsUsage: "QUESTION...",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "show-context",
						Usage: "Print the retrieved context along with the answer",
					},
				},
			},
			{
				Name:   "history",
				Usage:  "Show recent question/answer exchanges",
				Action: historyCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Number of exchanges to show",
						Value:   20,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// openEngine loads configuration and builds the engine for a command.
func openEngine(c *cli.Context) (*spectron.Engine, error) {
	var cfg *config.Config
	var err error
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return spectron.NewEngine(c.Context, cfg)
}

func parseID(arg string) (core.ID, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid document id %q", arg)
	}
	return core.ID(id), nil
}

func uploadCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := c.Context
	var ids []core.ID
	for _, path := range c.Args().Slice() {
		f, err := os.Open(path)
		if err != nil {
			return err
		}

		contentType := mime.TypeByExtension(filepath.Ext(path))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		doc, err := engine.Ingest().Upload(ctx, filepath.Base(path), contentType, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("uploading %s: %w", path, err)
		}

		fmt.Printf("uploaded %s as document %d\n", path, doc.Id)
		ids = append(ids, doc.Id)
	}

	if c.Bool("no-wait") {
		return nil
	}

	deadline := time.Now().Add(c.Duration("timeout"))
	for _, id := range ids {
		doc, err := waitForDocument(ctx, engine, id, deadline)
		if err != nil {
			return err
		}
		printDocument(doc)
	}
	return nil
}

// waitForDocument polls until the document reaches a terminal state.
func waitForDocument(ctx context.Context, engine *spectron.Engine, id core.ID, deadline time.Time) (*core.Document, error) {
	for {
		doc, err := engine.Ingest().Document(ctx, id)
		if err != nil {
			return nil, err
		}
		if doc.Status.Terminal() {
			return doc, nil
		}
		if time.Now().After(deadline) {
			return doc, fmt.Errorf("document %d still %s after timeout", id, doc.Status)
		}
		select {
		case <-ctx.Done():
			return doc, ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}

func statusCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one document id is required")
	}
	id, err := parseID(c.Args().First())
	if err != nil {
		return err
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	doc, err := engine.Ingest().Document(c.Context, id)
	if err != nil {
		return err
	}
	printDocument(doc)
	return nil
}

func listCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	docs, err := engine.Ingest().Documents(c.Context)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Println("no documents")
		return nil
	}
	for _, doc := range docs {
		fmt.Printf("%6d  %-10s  %-30s  %s\n",
			doc.Id, doc.Status, doc.OriginalName,
			doc.UploadedAt.Local().Format(time.RFC3339))
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one document id is required")
	}
	id, err := parseID(c.Args().First())
	if err != nil {
		return err
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.Ingest().Delete(c.Context, id); err != nil {
		return err
	}
	fmt.Printf("deleted document %d\n", id)
	return nil
}

func askCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a question is required")
	}
	question := strings.Join(c.Args().Slice(), " ")

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	msg, err := engine.Chat().Answer(c.Context, question)
	if err != nil {
		return err
	}

	fmt.Println(msg.Answer)
	if c.Bool("show-context") && msg.Context != "" {
		fmt.Println("\n--- context ---")
		fmt.Println(msg.Context)
	}
	return nil
}

func historyCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	history, err := engine.Chat().History(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Println("no history")
		return nil
	}
	for _, msg := range history {
		fmt.Printf("[%s]\nQ: %s\nA: %s\n\n",
			msg.Timestamp.Local().Format(time.RFC3339), msg.Question, msg.Answer)
	}
	return nil
}

func printDocument(doc *core.Document) {
	fmt.Printf("document %d: %s\n", doc.Id, doc.OriginalName)
	fmt.Printf("  status:   %s\n", doc.Status)
	fmt.Printf("  uploaded: %s\n", doc.UploadedAt.Local().Format(time.RFC3339))
	fmt.Printf("  size:     %d bytes\n", doc.FileSize)
	if doc.Status == core.StatusCompleted {
		fmt.Printf("  chunks:   %d\n", doc.ChunkCount)
	}
	if doc.Status == core.StatusFailed {
		fmt.Printf("  error:    %s\n", doc.ErrorMessage)
	}
}
