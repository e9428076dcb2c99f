package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
)

// PipelineDeps wires all driven adapters into the publish pipeline.
type PipelineDeps struct {
	Validator ports.InputValidator
	Drafts    ports.DraftService
	Images    ports.ImageService
	Content   ports.ContentService
	Metrics   ports.MetricsService
	Publisher ports.PublishService
	Journal   ports.RunJournal
	Logger    *slog.Logger
}

// Pipeline sequences the five publish steps with strict, linear data
// threading. Any failure moves the run to Failed, keeping the furthest state
// reached and the draft id so an operator can resume by hand. No rollback: an
// orphaned draft beats silent data loss.
type Pipeline struct {
	validator ports.InputValidator
	drafts    ports.DraftService
	images    ports.ImageService
	content   ports.ContentService
	metrics   ports.MetricsService
	publisher ports.PublishService
	journal   ports.RunJournal
	logger    *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		validator: deps.Validator,
		drafts:    deps.Drafts,
		images:    deps.Images,
		content:   deps.Content,
		metrics:   deps.Metrics,
		publisher: deps.Publisher,
		journal:   deps.Journal,
		logger:    deps.Logger,
	}
}

// RunInput carries everything one run needs: article metadata plus the local
// file paths to validate and consume.
type RunInput struct {
	Spec        domain.ArticleSpec
	ContentFile string
	ImageFile   string
}

// RunResult reports the outcome of a run. State is the furthest milestone
// reached; DraftID is set as soon as a draft exists, whether or not the run
// ultimately succeeds.
type RunResult struct {
	RunID     string
	State     domain.RunState
	DraftID   string
	ArticleID string
}

// Run executes one end-to-end publish. Steps run strictly sequentially, each
// consuming the previous step's output; nothing is retried, and the first
// failure aborts the run.
func (p *Pipeline) Run(ctx context.Context, in RunInput) (RunResult, error) {
	result := RunResult{RunID: uuid.NewString(), State: domain.RunStart}

	p.journalBegin(ctx, domain.RunRecord{
		RunID:     result.RunID,
		Title:     in.Spec.Title,
		State:     domain.RunStart,
		StartedAt: time.Now(),
	})

	content, img, err := p.validator.Validate(in.ContentFile, in.ImageFile)
	if err != nil {
		return p.fail(ctx, result, fmt.Errorf("validate inputs: %w", err))
	}
	img.Link = in.Spec.ImageLink
	img.Credit = in.Spec.ImageCredit
	result = p.advance(ctx, result, domain.RunValidated)

	draft, err := p.drafts.CreateDraft(ctx, in.Spec, content)
	if err != nil {
		return p.fail(ctx, result, fmt.Errorf("create draft: %w", err))
	}
	result.DraftID = draft.ID
	result = p.advance(ctx, result, domain.RunDrafted)

	draft, err = p.images.AttachImage(ctx, draft, img)
	if err != nil {
		return p.fail(ctx, result, fmt.Errorf("attach image: %w", err))
	}
	result = p.advance(ctx, result, domain.RunImageAttached)

	draft, err = p.content.AttachContent(ctx, draft, content)
	if err != nil {
		return p.fail(ctx, result, fmt.Errorf("attach content: %w", err))
	}
	result = p.advance(ctx, result, domain.RunContentAttached)

	draft, err = p.metrics.ComputeMetrics(ctx, draft)
	if err != nil {
		return p.fail(ctx, result, fmt.Errorf("compute metrics: %w", err))
	}
	result = p.advance(ctx, result, domain.RunMetricsComputed)

	published, err := p.publisher.Publish(ctx, draft)
	if err != nil {
		return p.fail(ctx, result, fmt.Errorf("publish: %w", err))
	}
	result.ArticleID = published.ArticleID
	result = p.advance(ctx, result, domain.RunPublished)

	p.journalFinish(ctx, result.RunID, domain.RunPublished, "")
	p.info("run published", "run_id", result.RunID, "draft_id", result.DraftID, "article_id", result.ArticleID)

	return result, nil
}

// advance moves the run to the next milestone and journals it. The result is
// returned by value; the caller threads it forward.
func (p *Pipeline) advance(ctx context.Context, result RunResult, state domain.RunState) RunResult {
	result.State = state
	if p.journal != nil {
		if err := p.journal.Advance(ctx, result.RunID, state, result.DraftID); err != nil {
			p.warn("journal advance failed", "run_id", result.RunID, "state", state, "error", err)
		}
	}
	p.debug("run advanced", "run_id", result.RunID, "state", state, "draft_id", result.DraftID)
	return result
}

// fail journals the terminal failure but keeps the furthest successful state
// in the result so the caller can report how far the run got.
func (p *Pipeline) fail(ctx context.Context, result RunResult, err error) (RunResult, error) {
	p.journalFinish(ctx, result.RunID, domain.RunFailed, err.Error())
	p.warn("run failed", "run_id", result.RunID, "reached", result.State, "draft_id", result.DraftID, "error", err)
	return result, err
}

func (p *Pipeline) journalBegin(ctx context.Context, rec domain.RunRecord) {
	if p.journal == nil {
		return
	}
	if err := p.journal.Begin(ctx, rec); err != nil {
		p.warn("journal begin failed", "run_id", rec.RunID, "error", err)
	}
}

func (p *Pipeline) journalFinish(ctx context.Context, runID string, state domain.RunState, errMsg string) {
	if p.journal == nil {
		return
	}
	if err := p.journal.Finish(ctx, runID, state, errMsg); err != nil {
		p.warn("journal finish failed", "run_id", runID, "error", err)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
