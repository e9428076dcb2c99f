package newsbreak

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
	"ArticlePublisher/internal/session"
)

// PublishClient transitions a fully populated draft to published via
// PUT /post/publish/{id}.
type PublishClient struct {
	sess   *session.Context
	logger *slog.Logger
}

var _ ports.PublishService = (*PublishClient)(nil)

// NewPublishClient wires the session context.
func NewPublishClient(sess *session.Context, logger *slog.Logger) *PublishClient {
	return &PublishClient{sess: sess, logger: logger}
}

// allowedLocations is the platform's distribution allow-list for this account.
var allowedLocations = []string{"Entire U.S", "Cambridge, MA", "Boston, MA", "Massachusetts State"}

type publishPayload struct {
	Content         string   `json:"content"`
	MpTagsManual    []string `json:"mp_tags_manual"`
	Location        string   `json:"location"`
	LocationPid     string   `json:"locationPid"`
	Title           string   `json:"title"`
	IsTitleRewrited bool     `json:"is_title_rewrited"`
	IsAIAssisted    bool     `json:"is_ai_assisted"`
	EditorVersion   string   `json:"editor_version"`
	Covers          []string `json:"covers"`
}

// Publish sends the publish request. The cover and embedded image block use
// the uploaded image reference, not the configured link. Precondition: state
// MetricsComputed; a draft already in Published state returns
// ErrAlreadyPublished without touching the network.
func (c *PublishClient) Publish(ctx context.Context, draft domain.Draft) (domain.PublishResult, error) {
	if draft.State == domain.StatePublished {
		return domain.PublishResult{}, fmt.Errorf("publish draft %s: %w", draft.ID, domain.ErrAlreadyPublished)
	}
	if draft.State != domain.StateMetricsComputed {
		return domain.PublishResult{}, &domain.StateError{Op: "publish", Have: draft.State, Want: domain.StateMetricsComputed}
	}

	if err := validatePublishSpec(draft); err != nil {
		return domain.PublishResult{}, err
	}

	location := draft.Spec.Location
	if location == "" {
		location = allowedLocations[0]
	}

	body := composeBody(draft.ImageRef, draft.Spec.ImageCredit, draft.Spec.ArticleCredit, draft.Content)

	raw, err := json.Marshal(publishPayload{
		Content:       body,
		MpTagsManual:  []string{},
		Location:      location,
		LocationPid:   location,
		Title:         draft.Spec.Title,
		EditorVersion: "1.0",
		Covers:        []string{draft.ImageRef},
	})
	if err != nil {
		return domain.PublishResult{}, fmt.Errorf("publish: marshal payload: %w", err)
	}

	env, err := c.sess.Do(ctx, "publish", session.Request{
		Method:  http.MethodPut,
		Path:    "/post/publish/" + draft.ID,
		Body:    bytes.NewReader(raw),
		Referer: c.sess.EditorReferer(draft.ID),
	})
	if err != nil {
		if rve := asRemoteValidation(err); rve != nil && mentionsAlreadyPublished(rve.Message) {
			return domain.PublishResult{}, fmt.Errorf("publish draft %s: %w", draft.ID, domain.ErrAlreadyPublished)
		}
		return domain.PublishResult{}, err
	}

	articleID := env.DataString()
	if articleID == "" || articleID == "null" {
		articleID = draft.ID
	}

	c.debug("article published", "draft_id", draft.ID, "article_id", articleID)

	return domain.PublishResult{ArticleID: articleID, State: domain.StatePublished}, nil
}

func validatePublishSpec(draft domain.Draft) error {
	if draft.Spec.Title == "" || draft.Spec.AuthorName == "" || draft.Content == "" {
		return &domain.RemoteValidationError{Op: "publish", Message: "title, author name, and content are required"}
	}
	if loc := draft.Spec.Location; loc != "" && !contains(allowedLocations, loc) {
		return &domain.RemoteValidationError{Op: "publish",
			Message: fmt.Sprintf("location %q not allowed, must be one of: %s", loc, strings.Join(allowedLocations, ", "))}
	}
	return nil
}

func asRemoteValidation(err error) *domain.RemoteValidationError {
	var rve *domain.RemoteValidationError
	if errors.As(err, &rve) {
		return rve
	}
	return nil
}

func mentionsAlreadyPublished(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "already published") || strings.Contains(m, "already posted")
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func (c *PublishClient) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
