package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"ArticlePublisher/internal/domain"
)

// Material holds opaque authentication cookies and browser-identity headers.
// It is immutable after construction and safe for concurrent read-only use;
// expiry is detected and reported, never auto-renewed.
type Material struct {
	Cookies map[string]string
	Headers map[string]string
}

const (
	cookieUID        = "__nbpix_uid"
	cookieMediaID    = "media_id"
	cookieMediaIDSig = "media_id.sig"
	cookieSession    = "mp_session"
	cookieSessionSig = "mp_session.sig"
)

// MaterialFromEnv loads cookies and headers from the environment. The caller
// is expected to have seeded the environment from a .env file beforehand.
func MaterialFromEnv() Material {
	cookies := map[string]string{
		cookieUID:        os.Getenv("NBPIX_UID"),
		cookieMediaID:    os.Getenv("MEDIA_ID"),
		cookieMediaIDSig: os.Getenv("MEDIA_ID_SIG"),
		cookieSession:    os.Getenv("MP_SESSION"),
		cookieSessionSig: os.Getenv("MP_SESSION_SIG"),
	}

	headers := map[string]string{}
	for env, header := range map[string]string{
		"ACCEPT":             "Accept",
		"ACCEPT_LANGUAGE":    "Accept-Language",
		"USER_AGENT":         "User-Agent",
		"SEC_CH_UA":          "sec-ch-ua",
		"SEC_CH_UA_MOBILE":   "sec-ch-ua-mobile",
		"SEC_CH_UA_PLATFORM": "sec-ch-ua-platform",
	} {
		if v := os.Getenv(env); v != "" {
			headers[header] = v
		}
	}

	return Material{Cookies: cookies, Headers: headers}
}

// Request describes one authenticated exchange with the platform.
type Request struct {
	Method      string
	Path        string // relative to the API base, e.g. /post/draft
	Body        io.Reader
	ContentType string // defaults to application/json;charset=UTF-8
	Referer     string // defaults to the editor root
}

// Envelope is the platform's structured response: code 0 means success.
type Envelope struct {
	Code    int             `json:"code"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// DataString decodes the data field as either a JSON string or a bare number,
// which is how the platform returns draft ids and image URLs.
func (e Envelope) DataString() string {
	var s string
	if err := json.Unmarshal(e.Data, &s); err == nil {
		return s
	}
	return strings.Trim(string(e.Data), `"`)
}

// Context wraps the authenticated-request capability every service call goes
// through. It attaches session material and tracking headers on the way out
// and classifies the response shape on the way back.
type Context struct {
	material Material
	baseURL  string
	origin   string
	client   *http.Client
}

// New builds a session context for the given platform origin, e.g.
// https://creators.newsbreak.com. API paths are resolved under <origin>/api.
func New(material Material, origin string, timeout time.Duration) *Context {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Context{
		material: material,
		origin:   strings.TrimSuffix(origin, "/"),
		baseURL:  strings.TrimSuffix(origin, "/") + "/api",
		client:   &http.Client{Timeout: timeout},
	}
}

// EditorReferer returns the editor URL for a draft, which the platform expects
// as Referer on per-draft calls.
func (c *Context) EditorReferer(draftID string) string {
	if draftID == "" {
		return c.origin + "/new-editor"
	}
	return c.origin + "/new-editor/" + draftID
}

// Do executes one authenticated exchange and classifies the result. The op
// string names the step for error messages.
func (c *Context) Do(ctx context.Context, op string, req Request) (Envelope, error) {
	httpReq, err := c.build(ctx, req)
	if err != nil {
		return Envelope{}, fmt.Errorf("%s: build request: %w", op, err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		var uerr *url.Error
		timeout := false
		if errors.As(err, &uerr) {
			timeout = uerr.Timeout()
		}
		return Envelope{}, &domain.HTTPError{Op: op, Timeout: timeout, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Envelope{}, &domain.HTTPError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	return classify(op, resp.StatusCode, body)
}

const maxResponseBytes = 4 << 20

func (c *Context) build(ctx context.Context, req Request) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, req.Body)
	if err != nil {
		return nil, err
	}

	for name, value := range c.material.Headers {
		httpReq.Header.Set(name, value)
	}
	for name, value := range c.material.Cookies {
		if value == "" {
			continue
		}
		httpReq.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/json;charset=UTF-8"
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", acceptOr(c.material.Headers))
	httpReq.Header.Set("Origin", c.origin)

	referer := req.Referer
	if referer == "" {
		referer = c.EditorReferer("")
	}
	httpReq.Header.Set("Referer", referer)

	// Tracking headers the platform's edge expects on editor traffic.
	requestID := uuid.NewString()
	traceID := strings.ReplaceAll(uuid.NewString(), "-", "")
	spanID := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	httpReq.Header.Set("x-request-id", requestID)
	httpReq.Header.Set("sentry-trace", traceID+"-"+spanID)
	httpReq.Header.Set("baggage", "sentry-trace_id="+traceID)

	return httpReq, nil
}

func acceptOr(headers map[string]string) string {
	if v, ok := headers["Accept"]; ok && v != "" {
		return v
	}
	return "application/json, text/plain, */*"
}
