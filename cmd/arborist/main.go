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
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/poiesic/arborist"
	"github.com/poiesic/arborist/config"
	"github.com/poiesic/arborist/ingestion"
	"github.com/poiesic/arborist/search"
	"github.com/urfave/cli/v2"
)

func main() {
	// A missing .env is normal; anything else is worth knowing about.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("loading .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "arborist",
		Usage: "Index a directory tree and search it in natural language",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config.toml (created with defaults if missing)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "scan",
				Usage:     "Summarize, embed and index every file under a directory",
				ArgsUsage: "<path>",
				Action:    scanCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Re-index files that are already in the collection",
					},
					&cli.BoolFlag{
						Name:  "folders",
						Usage: "Also summarize every folder",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "Do not print progress",
					},
				},
			},
			{
				Name:      "query",
				Usage:     "Find the indexed files that best match a question",
				ArgsUsage: "<text>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results (defaults to query.top_k_results)",
					},
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "Ranking mode: dense, sparse or hybrid (defaults to query.mode)",
					},
					&cli.BoolFlag{
						Name:  "explain",
						Usage: "Show the intermediate rankings",
					},
				},
			},
		},
	}
}

func openArborist(c *cli.Context) (*arborist.Arborist, error) {
	cfg, path, err := config.LoadOrCreate(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	slog.Debug("using config", "path", path)

	a, err := arborist.Open(c.Context, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening arborist: %w", err)
	}
	return a, nil
}

func scanCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("scan takes exactly one path, got %d", c.NArg())
	}
	root := c.Args().First()

	a, err := openArborist(c)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := []ingestion.Option{ingestion.WithFolderSummaries(c.Bool("folders"))}
	if !c.Bool("quiet") {
		opts = append(opts, ingestion.WithProgress(os.Stderr))
	}

	result, report, err := a.Scan(c.Context, root, c.Bool("force"), opts...)
	if result != nil {
		fmt.Fprintln(os.Stdout, renderScanResult(result))
	}
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	fmt.Fprintln(os.Stdout, renderReport(report))
	return nil
}

func queryCommand(c *cli.Context) error {
	text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if text == "" {
		return search.ErrEmptyQuery
	}

	a, err := openArborist(c)
	if err != nil {
		return err
	}
	defer a.Close()

	var opts []search.Option
	if c.IsSet("limit") {
		opts = append(opts, search.WithLimit(c.Int("limit")))
	}
	if c.IsSet("mode") {
		mode, err := search.ParseMode(c.String("mode"))
		if err != nil {
			return err
		}
		opts = append(opts, search.WithMode(mode))
	}

	engine, err := a.NewQueryEngine(opts...)
	if err != nil {
		return err
	}

	var monitor search.QueryMonitor = &explainMonitor{w: os.Stdout, enabled: c.Bool("explain")}
	results, err := engine.QueryWithMonitor(c.Context, text, monitor)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	fmt.Fprintln(os.Stdout, renderResults(text, results))
	return nil
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
