package newsbreak

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
	"ArticlePublisher/internal/session"
)

// ImageClient uploads image binaries via POST /storage/uploadFile and records
// the hosted reference on the draft.
type ImageClient struct {
	sess   *session.Context
	logger *slog.Logger
}

var _ ports.ImageService = (*ImageClient)(nil)

// NewImageClient wires the session context.
func NewImageClient(sess *session.Context, logger *slog.Logger) *ImageClient {
	return &ImageClient{sess: sess, logger: logger}
}

// AttachImage uploads the binary as a browser-style multipart field named
// "file" and moves the draft to ImageAttached. Precondition: state Created.
func (c *ImageClient) AttachImage(ctx context.Context, draft domain.Draft, img domain.ImageInput) (domain.Draft, error) {
	if draft.State != domain.StateCreated {
		return domain.Draft{}, &domain.StateError{Op: "attach image", Have: draft.State, Want: domain.StateCreated}
	}

	body, contentType, err := multipartBody(img)
	if err != nil {
		return domain.Draft{}, fmt.Errorf("attach image: %w", err)
	}

	env, err := c.sess.Do(ctx, "attach image", session.Request{
		Method:      http.MethodPost,
		Path:        "/storage/uploadFile",
		Body:        body,
		ContentType: contentType,
		Referer:     c.sess.EditorReferer(draft.ID),
	})
	if err != nil {
		return domain.Draft{}, err
	}

	hosted := env.DataString()
	if hosted == "" {
		return domain.Draft{}, &domain.RemoteValidationError{Op: "attach image", Code: env.Code, Message: "response carried no image URL"}
	}

	c.debug("image uploaded", "draft_id", draft.ID, "image_url", hosted, "bytes", len(img.Data))

	draft.ImageRef = hosted
	draft.State = domain.StateImageAttached
	return draft, nil
}

// multipartBody mirrors the upload the web editor performs: a single part with
// filename "blob" and the image's detected MIME type.
func multipartBody(img domain.ImageInput) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="blob"`)
	header.Set("Content-Type", img.MIME)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create part: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", fmt.Errorf("write image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}

	return buf, writer.FormDataContentType(), nil
}

func (c *ImageClient) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
