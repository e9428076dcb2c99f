package newsbreak

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/session"
)

type fakePlatform struct {
	server *httptest.Server
	hits   atomic.Int64

	draftResponse   string
	uploadResponse  string
	contentResponse string
	metricsResponse string
	publishResponse string

	lastPath        string
	lastContentType string
	lastBody        []byte
}

func newFakePlatform(t *testing.T) *fakePlatform {
	t.Helper()

	fp := &fakePlatform{
		draftResponse:   `{"code":0,"data":100251263}`,
		uploadResponse:  `{"code":0,"data":"https://img.particlenews.com/abc.jpg"}`,
		contentResponse: `{"code":0}`,
		metricsResponse: `{"code":0,"status":"success"}`,
		publishResponse: `{"code":0,"data":"100251263"}`,
	}

	fp.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fp.hits.Add(1)
		fp.lastPath = r.URL.Path
		fp.lastContentType = r.Header.Get("Content-Type")
		fp.lastBody, _ = io.ReadAll(r.Body)

		switch {
		case r.URL.Path == "/api/post/draft" && r.Method == http.MethodPost:
			io.WriteString(w, fp.draftResponse)
		case r.URL.Path == "/api/storage/uploadFile":
			io.WriteString(w, fp.uploadResponse)
		case strings.HasPrefix(r.URL.Path, "/api/post/draft/") && r.Method == http.MethodPut:
			io.WriteString(w, fp.contentResponse)
		case r.URL.Path == "/api/nlp/calculate":
			io.WriteString(w, fp.metricsResponse)
		case strings.HasPrefix(r.URL.Path, "/api/post/publish/"):
			io.WriteString(w, fp.publishResponse)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(fp.server.Close)

	return fp
}

func (fp *fakePlatform) session() *session.Context {
	return session.New(session.Material{}, fp.server.URL, 5*time.Second)
}

func testSpec() domain.ArticleSpec {
	return domain.ArticleSpec{
		Title:         "Breaking News",
		AuthorName:    "Jane Reporter",
		AuthorURL:     "https://example.com/jane",
		ArticleCredit: "By Jane Reporter",
		ImageLink:     "https://img.example.com/seed.jpg",
		ImageCredit:   "Jane's camera",
		Location:      "Entire U.S",
	}
}

func TestCreateDraft(t *testing.T) {
	t.Parallel()

	fp := newFakePlatform(t)
	client := NewDraftClient(fp.session(), nil)

	draft, err := client.CreateDraft(context.Background(), testSpec(),
		domain.ContentInput{Text: "Hello world"})
	if err != nil {
		t.Fatalf("CreateDraft returned error: %v", err)
	}
	if draft.ID != "100251263" {
		t.Fatalf("unexpected draft id %q", draft.ID)
	}
	if draft.State != domain.StateCreated {
		t.Fatalf("expected state created, got %s", draft.State)
	}

	var payload map[string]any
	if err := json.Unmarshal(fp.lastBody, &payload); err != nil {
		t.Fatalf("draft payload not JSON: %v", err)
	}
	title, _ := payload["title"].(string)
	if !strings.HasPrefix(title, "Breaking News [") {
		t.Fatalf("uniqueness suffix missing from title %q", title)
	}
	content, _ := payload["content"].(string)
	if !strings.Contains(content, "[Draft ID: ") {
		t.Fatalf("uniqueness tag missing from content")
	}
	if payload["editor_version"] != "1.0" {
		t.Fatalf("editor_version missing")
	}
}

func TestCreateDraftNoID(t *testing.T) {
	t.Parallel()

	fp := newFakePlatform(t)
	fp.draftResponse = `{"code":0,"data":null}`
	client := NewDraftClient(fp.session(), nil)

	_, err := client.CreateDraft(context.Background(), testSpec(), domain.ContentInput{Text: "x"})

	var rve *domain.RemoteValidationError
	if !errors.As(err, &rve) {
		t.Fatalf("expected RemoteValidationError, got %v", err)
	}
}

func TestAttachImage(t *testing.T) {
	t.Parallel()

	fp := newFakePlatform(t)
	client := NewImageClient(fp.session(), nil)

	draft := domain.Draft{ID: "100251263", Spec: testSpec(), State: domain.StateCreated}
	img := domain.ImageInput{Data: []byte{0xFF, 0xD8, 0xFF, 0x01}, MIME: "image/jpeg"}

	updated, err := client.AttachImage(context.Background(), draft, img)
	if err != nil {
		t.Fatalf("AttachImage returned error: %v", err)
	}
	if updated.ImageRef != "https://img.particlenews.com/abc.jpg" {
		t.Fatalf("hosted image URL not recorded: %q", updated.ImageRef)
	}
	if updated.State != domain.StateImageAttached {
		t.Fatalf("expected image_attached, got %s", updated.State)
	}
	if !strings.HasPrefix(fp.lastContentType, "multipart/form-data; boundary=") {
		t.Fatalf("expected multipart upload, got %s", fp.lastContentType)
	}
	if !strings.Contains(string(fp.lastBody), `name="file"; filename="blob"`) {
		t.Fatalf("browser-style file part missing")
	}
}

func TestAttachImageWrongState(t *testing.T) {
	t.Parallel()

	fp := newFakePlatform(t)
	client := NewImageClient(fp.session(), nil)

	draft := domain.Draft{ID: "1", State: domain.StateContentAttached}
	_, err := client.AttachImage(context.Background(), draft, domain.ImageInput{})

	var stateErr *domain.StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected StateError, got %v", err)
	}
	if fp.hits.Load() != 0 {
		t.Fatalf("state violation must not reach the network, saw %d calls", fp.hits.Load())
	}
}

func TestAttachContent(t *testing.T) {
	t.Parallel()

	fp := newFakePlatform(t)
	client := NewContentClient(fp.session(), nil)

	draft := domain.Draft{
		ID:       "100251263",
		Spec:     testSpec(),
		ImageRef: "https://img.particlenews.com/abc.jpg",
		State:    domain.StateImageAttached,
	}

	updated, err := client.AttachContent(context.Background(), draft, domain.ContentInput{Text: "Hello world"})
	if err != nil {
		t.Fatalf("AttachContent returned error: %v", err)
	}
	if updated.State != domain.StateContentAttached {
		t.Fatalf("expected content_attached, got %s", updated.State)
	}
	if updated.Content != "Hello world" {
		t.Fatalf("content not recorded on draft")
	}
	if fp.lastPath != "/api/post/draft/100251263" {
		t.Fatalf("unexpected path %s", fp.lastPath)
	}
	// The attached body must embed the uploaded image, not the configured link.
	if !strings.Contains(string(fp.lastBody), "img.particlenews.com") {
		t.Fatalf("uploaded image missing from body")
	}
}

func TestAttachContentWrongState(t *testing.T) {
	t.Parallel()

	fp := newFakePlatform(t)
	client := NewContentClient(fp.session(), nil)

	_, err := client.AttachContent(context.Background(),
		domain.Draft{ID: "1", State: domain.StateCreated}, domain.ContentInput{Text: "x"})

	var stateErr *domain.StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected StateError, got %v", err)
	}
	if fp.hits.Load() != 0 {
		t.Fatalf("state violation must not reach the network")
	}
}

func TestComputeMetrics(t *testing.T) {
	t.Parallel()

	fp := newFakePlatform(t)
	client := NewMetricsClient(fp.session(), nil)

	draft := domain.Draft{ID: "100251263", State: domain.StateContentAttached}
	updated, err := client.ComputeMetrics(context.Background(), draft)
	if err != nil {
		t.Fatalf("ComputeMetrics returned error: %v", err)
	}
	if updated.State != domain.StateMetricsComputed {
		t.Fatalf("expected metrics_computed, got %s", updated.State)
	}
	if updated.Metrics == nil || updated.Metrics.Status != "success" {
		t.Fatalf("metrics not recorded: %+v", updated.Metrics)
	}
	if !strings.Contains(string(fp.lastBody), `"post_id":100251263`) {
		t.Fatalf("post_id missing from payload: %s", fp.lastBody)
	}
}

func TestComputeMetricsFailureIsFatal(t *testing.T) {
	t.Parallel()

	fp := newFakePlatform(t)
	fp.metricsResponse = `{"code":0,"status":"pending","message":"still running"}`
	client := NewMetricsClient(fp.session(), nil)

	draft := domain.Draft{ID: "100251263", State: domain.StateContentAttached}
	_, err := client.ComputeMetrics(context.Background(), draft)

	var rve *domain.RemoteValidationError
	if !errors.As(err, &rve) {
		t.Fatalf("expected RemoteValidationError for unfinished metrics, got %v", err)
	}
}

func TestPublish(t *testing.T) {
	t.Parallel()

	fp := newFakePlatform(t)
	client := NewPublishClient(fp.session(), nil)

	draft := domain.Draft{
		ID:       "100251263",
		Spec:     testSpec(),
		ImageRef: "https://img.particlenews.com/abc.jpg",
		Content:  "Hello world",
		Metrics:  &domain.Metrics{Status: "success"},
		State:    domain.StateMetricsComputed,
	}

	result, err := client.Publish(context.Background(), draft)
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if result.ArticleID == "" {
		t.Fatalf("expected a non-empty article id")
	}
	if result.State != domain.StatePublished {
		t.Fatalf("expected published, got %s", result.State)
	}

	var payload map[string]any
	if err := json.Unmarshal(fp.lastBody, &payload); err != nil {
		t.Fatalf("publish payload not JSON: %v", err)
	}
	covers, _ := payload["covers"].([]any)
	if len(covers) != 1 || covers[0] != "https://img.particlenews.com/abc.jpg" {
		t.Fatalf("cover must be the uploaded image, got %v", covers)
	}
	if payload["location"] != "Entire U.S" {
		t.Fatalf("location missing: %v", payload["location"])
	}
}

func TestPublishAlreadyPublishedDraft(t *testing.T) {
	t.Parallel()

	fp := newFakePlatform(t)
	client := NewPublishClient(fp.session(), nil)

	draft := domain.Draft{ID: "1", Spec: testSpec(), Content: "x", State: domain.StatePublished}
	_, err := client.Publish(context.Background(), draft)

	if !errors.Is(err, domain.ErrAlreadyPublished) {
		t.Fatalf("expected ErrAlreadyPublished, got %v", err)
	}
	if fp.hits.Load() != 0 {
		t.Fatalf("double publish must not reach the network")
	}
}

func TestPublishRemoteAlreadyPublished(t *testing.T) {
	t.Parallel()

	fp := newFakePlatform(t)
	fp.publishResponse = `{"code":2001,"message":"post already published"}`
	client := NewPublishClient(fp.session(), nil)

	draft := domain.Draft{
		ID: "1", Spec: testSpec(), ImageRef: "https://img.example.com/a.jpg",
		Content: "x", State: domain.StateMetricsComputed,
	}
	_, err := client.Publish(context.Background(), draft)

	if !errors.Is(err, domain.ErrAlreadyPublished) {
		t.Fatalf("expected ErrAlreadyPublished from remote signal, got %v", err)
	}
}

func TestPublishRejectsUnknownLocation(t *testing.T) {
	t.Parallel()

	fp := newFakePlatform(t)
	client := NewPublishClient(fp.session(), nil)

	spec := testSpec()
	spec.Location = "Springfield, XX"
	draft := domain.Draft{
		ID: "1", Spec: spec, ImageRef: "https://img.example.com/a.jpg",
		Content: "x", State: domain.StateMetricsComputed,
	}
	_, err := client.Publish(context.Background(), draft)

	var rve *domain.RemoteValidationError
	if !errors.As(err, &rve) {
		t.Fatalf("expected RemoteValidationError for bad location, got %v", err)
	}
	if fp.hits.Load() != 0 {
		t.Fatalf("bad location must be caught before the network")
	}
}

func TestPublishWrongState(t *testing.T) {
	t.Parallel()

	fp := newFakePlatform(t)
	client := NewPublishClient(fp.session(), nil)

	_, err := client.Publish(context.Background(),
		domain.Draft{ID: "1", Spec: testSpec(), Content: "x", State: domain.StateContentAttached})

	var stateErr *domain.StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected StateError, got %v", err)
	}
	if fp.hits.Load() != 0 {
		t.Fatalf("state violation must not reach the network")
	}
}
