package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"

	"ArticlePublisher/internal/app"
	"ArticlePublisher/internal/config"
	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/logging"
)

func main() {
	// Session cookies and browser-identity headers live in the environment;
	// a local .env seeds it when present.
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "articlepublisher",
		Usage: "Publish an article to NewsBreak through the draft pipeline",
		Flags: articleFlags(),
		Commands: []*cli.Command{
			{
				Name:  "runs",
				Usage: "List recent publish runs from the journal",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Usage: "Maximum runs to show", Value: 20},
					&cli.StringFlag{Name: "journal", Usage: "Path to the run journal database", Sources: cli.EnvVars("PUBLISHER_JOURNAL")},
					&cli.StringFlag{Name: "log-level", Value: "info", Sources: cli.EnvVars("LOG_LEVEL")},
				},
				Action: listRuns,
			},
		},
		Action: publish,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func articleFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "Article title"},
		&cli.StringFlag{Name: "author-name", Usage: "Author name"},
		&cli.StringFlag{Name: "author-url", Usage: "Author URL"},
		&cli.StringFlag{Name: "article-credit", Usage: "Article credit/byline"},
		&cli.StringFlag{Name: "image-link", Usage: "Image link URL"},
		&cli.StringFlag{Name: "image-credit", Usage: "Image credit"},
		&cli.StringFlag{Name: "content-file", Usage: "Path to the content file"},
		&cli.StringFlag{Name: "image-file", Usage: "Path to the image file"},
		&cli.StringFlag{Name: "location", Usage: "Distribution location"},
		&cli.StringFlag{Name: "config", Usage: "Path to a JSON or YAML config file", Sources: cli.EnvVars("PUBLISHER_CONFIG")},
		&cli.StringFlag{Name: "journal", Usage: "Path to the run journal database", Sources: cli.EnvVars("PUBLISHER_JOURNAL")},
		&cli.DurationFlag{Name: "timeout", Usage: "Per-call HTTP timeout", Value: 0},
		&cli.StringFlag{Name: "log-level", Usage: "Log level (debug, info, warn, error)", Value: "", Sources: cli.EnvVars("LOG_LEVEL")},
	}
}

func publish(ctx context.Context, command *cli.Command) error {
	flags := config.Article{
		Title:         command.String("title"),
		AuthorName:    command.String("author-name"),
		AuthorURL:     command.String("author-url"),
		ArticleCredit: command.String("article-credit"),
		ImageLink:     command.String("image-link"),
		ImageCredit:   command.String("image-credit"),
		ContentFile:   command.String("content-file"),
		ImageFile:     command.String("image-file"),
		Location:      command.String("location"),
	}

	cfg, err := config.Load(command.String("config"), flags)
	if err != nil {
		return err
	}
	if path := command.String("journal"); path != "" {
		cfg.Journal.Path = path
	}
	if timeout := command.Duration("timeout"); timeout > 0 {
		cfg.Platform.Timeout = timeout
	}
	if level := command.String("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	logger := logging.New(cfg.Logging.Level)
	application := app.New(cfg, logger)
	defer application.Close()

	result, err := application.Publish(ctx)
	if err != nil {
		// Report how far the run got; a created draft is never silently lost.
		fmt.Fprintf(os.Stderr, "publish failed at state %q", result.State)
		if result.DraftID != "" {
			fmt.Fprintf(os.Stderr, " (draft %s survives on the platform)", result.DraftID)
		}
		fmt.Fprintln(os.Stderr)
		if errors.Is(err, domain.ErrSessionExpired) {
			fmt.Fprintln(os.Stderr, "session expired: refresh the cookies in your .env and retry")
		}
		return err
	}

	fmt.Printf("published article %s (run %s)\n", result.ArticleID, result.RunID)
	return nil
}

func listRuns(ctx context.Context, command *cli.Command) error {
	cfg := config.Defaults()
	if path := command.String("journal"); path != "" {
		cfg.Journal.Path = path
	}
	cfg.Logging.Level = command.String("log-level")

	logger := logging.New(cfg.Logging.Level)
	application := app.New(cfg, logger)
	defer application.Close()

	records, err := application.Runs(ctx, int(command.Int("limit")))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	for _, rec := range records {
		line := fmt.Sprintf("%s  %-17s  %s", rec.StartedAt.Format(time.DateTime), rec.State, rec.Title)
		if rec.DraftID != "" {
			line += "  draft=" + rec.DraftID
		}
		if rec.Error != "" {
			line += "  error=" + rec.Error
		}
		fmt.Println(line)
	}
	return nil
}
