package app

import (
	"context"
	"log/slog"

	"ArticlePublisher/internal/config"
	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/infrastructure/newsbreak"
	"ArticlePublisher/internal/infrastructure/storage"
	"ArticlePublisher/internal/input"
	"ArticlePublisher/internal/logging"
	"ArticlePublisher/internal/session"
	"ArticlePublisher/internal/usecase"
)

// Application wires config, session material, and services into one runnable
// publish pipeline.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	journal  *storage.Journal
	logger   *slog.Logger
}

// New builds the application. Session material comes from the environment; the
// journal is optional and its absence only disables run history.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	material := session.MaterialFromEnv()
	sess := session.New(material, cfg.Platform.Origin, cfg.Platform.Timeout)

	var journal *storage.Journal
	if cfg.Journal.Path != "" {
		j, err := storage.Open(cfg.Journal.Path)
		if err != nil {
			baseLogger.Warn("run journal unavailable", "path", cfg.Journal.Path, "error", err)
		} else {
			journal = j
		}
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Validator: input.NewValidator(),
		Drafts:    newsbreak.NewDraftClient(sess, baseLogger.With("component", "drafts")),
		Images:    newsbreak.NewImageClient(sess, baseLogger.With("component", "images")),
		Content:   newsbreak.NewContentClient(sess, baseLogger.With("component", "content")),
		Metrics:   newsbreak.NewMetricsClient(sess, baseLogger.With("component", "metrics")),
		Publisher: newsbreak.NewPublishClient(sess, baseLogger.With("component", "publish")),
		Journal:   journal,
		Logger:    baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, pipeline: pipeline, journal: journal, logger: baseLogger}
}

// Publish runs the pipeline once for the configured article.
func (a *Application) Publish(ctx context.Context) (usecase.RunResult, error) {
	in := usecase.RunInput{
		Spec: domain.ArticleSpec{
			Title:         a.cfg.Article.Title,
			AuthorName:    a.cfg.Article.AuthorName,
			AuthorURL:     a.cfg.Article.AuthorURL,
			ArticleCredit: a.cfg.Article.ArticleCredit,
			ImageLink:     a.cfg.Article.ImageLink,
			ImageCredit:   a.cfg.Article.ImageCredit,
			Location:      a.cfg.Article.Location,
		},
		ContentFile: a.cfg.Article.ContentFile,
		ImageFile:   a.cfg.Article.ImageFile,
	}

	return a.pipeline.Run(ctx, in)
}

// Runs returns recent journal entries, newest first.
func (a *Application) Runs(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if a.journal == nil {
		return nil, nil
	}
	return a.journal.List(ctx, limit)
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.journal != nil {
		return a.journal.Close()
	}
	return nil
}
