package newsbreak

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
	"ArticlePublisher/internal/session"
)

// DraftClient creates drafts via POST /post/draft.
type DraftClient struct {
	sess   *session.Context
	logger *slog.Logger
}

var _ ports.DraftService = (*DraftClient)(nil)

// NewDraftClient wires the session context.
func NewDraftClient(sess *session.Context, logger *slog.Logger) *DraftClient {
	return &DraftClient{sess: sess, logger: logger}
}

type draftPayload struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Covers        []string `json:"covers"`
	IsEvergreen   bool     `json:"isEvergreen"`
	Location      string   `json:"location"`
	LocationPid   string   `json:"locationPid"`
	MpTagsManual  []string `json:"mp_tags_manual"`
	EditorVersion string   `json:"editor_version"`
}

// CreateDraft sends the draft-creation request and extracts the new draft id.
// Title and content receive a uniqueness suffix because the platform silently
// dedupes drafts with identical bodies.
func (c *DraftClient) CreateDraft(ctx context.Context, spec domain.ArticleSpec, content domain.ContentInput) (domain.Draft, error) {
	title := uniqueTitle(spec.Title)
	body := composeBody(spec.ImageLink, spec.ImageCredit, spec.ArticleCredit, uniqueContent(content.Text))

	covers := []string{}
	if spec.ImageLink != "" {
		covers = []string{spec.ImageLink}
	}

	raw, err := json.Marshal(draftPayload{
		Title:         title,
		Content:       body,
		Covers:        covers,
		MpTagsManual:  []string{},
		EditorVersion: "1.0",
	})
	if err != nil {
		return domain.Draft{}, fmt.Errorf("create draft: marshal payload: %w", err)
	}

	env, err := c.sess.Do(ctx, "create draft", session.Request{
		Method: http.MethodPost,
		Path:   "/post/draft",
		Body:   bytes.NewReader(raw),
	})
	if err != nil {
		return domain.Draft{}, err
	}

	id := env.DataString()
	if id == "" || id == "null" {
		return domain.Draft{}, &domain.RemoteValidationError{Op: "create draft", Code: env.Code, Message: "response carried no draft id"}
	}

	c.debug("draft created", "draft_id", id, "title", title)

	return domain.Draft{ID: id, Spec: spec, State: domain.StateCreated}, nil
}

func uniqueTitle(title string) string {
	return fmt.Sprintf("%s [%d-%04d]", title, time.Now().Unix(), rand.Intn(10000))
}

func uniqueContent(content string) string {
	return fmt.Sprintf("%s\n\n[Draft ID: %s]", content, uuid.NewString())
}

func (c *DraftClient) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
