package newsbreak

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
	"ArticlePublisher/internal/session"
)

// MetricsClient triggers the platform's NLP computation via POST /nlp/calculate.
type MetricsClient struct {
	sess   *session.Context
	logger *slog.Logger
}

var _ ports.MetricsService = (*MetricsClient)(nil)

// NewMetricsClient wires the session context.
func NewMetricsClient(sess *session.Context, logger *slog.Logger) *MetricsClient {
	return &MetricsClient{sess: sess, logger: logger}
}

type metricsPayload struct {
	PostID int64 `json:"post_id"`
}

// ComputeMetrics requests NLP metrics over the now-final content. The run
// fails closed: a failed computation blocks publication. Precondition: state
// ContentAttached.
func (c *MetricsClient) ComputeMetrics(ctx context.Context, draft domain.Draft) (domain.Draft, error) {
	if draft.State != domain.StateContentAttached {
		return domain.Draft{}, &domain.StateError{Op: "compute metrics", Have: draft.State, Want: domain.StateContentAttached}
	}

	postID, err := strconv.ParseInt(draft.ID, 10, 64)
	if err != nil {
		return domain.Draft{}, fmt.Errorf("compute metrics: non-numeric draft id %q: %w", draft.ID, err)
	}

	raw, err := json.Marshal(metricsPayload{PostID: postID})
	if err != nil {
		return domain.Draft{}, fmt.Errorf("compute metrics: marshal payload: %w", err)
	}

	env, err := c.sess.Do(ctx, "compute metrics", session.Request{
		Method:  http.MethodPost,
		Path:    "/nlp/calculate",
		Body:    bytes.NewReader(raw),
		Referer: c.sess.EditorReferer(draft.ID),
	})
	if err != nil {
		return domain.Draft{}, err
	}

	if env.Status != "success" {
		return domain.Draft{}, &domain.RemoteValidationError{Op: "compute metrics", Code: env.Code, Message: env.Message}
	}

	c.debug("metrics computed", "draft_id", draft.ID, "status", env.Status)

	draft.Metrics = &domain.Metrics{Status: env.Status, ComputedAt: time.Now()}
	draft.State = domain.StateMetricsComputed
	return draft, nil
}

func (c *MetricsClient) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
