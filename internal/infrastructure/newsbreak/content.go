package newsbreak

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
	"ArticlePublisher/internal/session"
)

// ContentClient writes the final body onto a draft via PUT /post/draft/{id}.
type ContentClient struct {
	sess   *session.Context
	logger *slog.Logger
}

var _ ports.ContentService = (*ContentClient)(nil)

// NewContentClient wires the session context.
func NewContentClient(sess *session.Context, logger *slog.Logger) *ContentClient {
	return &ContentClient{sess: sess, logger: logger}
}

type contentPayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// AttachContent replaces the draft body with the composed editor document,
// now built around the uploaded image rather than the configured link.
// Precondition: state ImageAttached.
func (c *ContentClient) AttachContent(ctx context.Context, draft domain.Draft, content domain.ContentInput) (domain.Draft, error) {
	if draft.State != domain.StateImageAttached {
		return domain.Draft{}, &domain.StateError{Op: "attach content", Have: draft.State, Want: domain.StateImageAttached}
	}

	body := composeBody(draft.ImageRef, draft.Spec.ImageCredit, draft.Spec.ArticleCredit, content.Text)

	raw, err := json.Marshal(contentPayload{Title: draft.Spec.Title, Content: body})
	if err != nil {
		return domain.Draft{}, fmt.Errorf("attach content: marshal payload: %w", err)
	}

	if _, err := c.sess.Do(ctx, "attach content", session.Request{
		Method:  http.MethodPut,
		Path:    "/post/draft/" + draft.ID,
		Body:    bytes.NewReader(raw),
		Referer: c.sess.EditorReferer(draft.ID),
	}); err != nil {
		return domain.Draft{}, err
	}

	c.debug("content attached", "draft_id", draft.ID, "content_chars", len(content.Text))

	draft.Content = content.Text
	draft.State = domain.StateContentAttached
	return draft, nil
}

func (c *ContentClient) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
