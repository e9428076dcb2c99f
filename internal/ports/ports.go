package ports

import (
	"context"

	"ArticlePublisher/internal/domain"
)

// InputValidator checks local files before any network call is made.
type InputValidator interface {
	Validate(contentPath, imagePath string) (domain.ContentInput, domain.ImageInput, error)
}

// DraftService creates a new platform draft and returns its identifier.
type DraftService interface {
	CreateDraft(ctx context.Context, spec domain.ArticleSpec, content domain.ContentInput) (domain.Draft, error)
}

// ImageService uploads the image binary and associates the hosted reference
// with the draft.
type ImageService interface {
	AttachImage(ctx context.Context, draft domain.Draft, img domain.ImageInput) (domain.Draft, error)
}

// ContentService writes the final body and byline corrections onto the draft.
type ContentService interface {
	AttachContent(ctx context.Context, draft domain.Draft, content domain.ContentInput) (domain.Draft, error)
}

// MetricsService asks the platform to compute NLP metrics over the final
// content. Must run after the content step and before publish.
type MetricsService interface {
	ComputeMetrics(ctx context.Context, draft domain.Draft) (domain.Draft, error)
}

// PublishService transitions a fully populated draft to published.
type PublishService interface {
	Publish(ctx context.Context, draft domain.Draft) (domain.PublishResult, error)
}

// RunJournal persists run milestones so an operator can diagnose and resume a
// failed run by hand.
type RunJournal interface {
	Begin(ctx context.Context, rec domain.RunRecord) error
	Advance(ctx context.Context, runID string, state domain.RunState, draftID string) error
	Finish(ctx context.Context, runID string, state domain.RunState, errMsg string) error
	List(ctx context.Context, limit int) ([]domain.RunRecord, error)
}
