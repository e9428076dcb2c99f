package domain

import "time"

// DraftState enumerates the lifecycle of a platform-side draft. Transitions are
// strictly monotonic in the listed order; services reject any draft whose state
// does not match their precondition.
type DraftState string

const (
	StateCreated         DraftState = "created"
	StateImageAttached   DraftState = "image_attached"
	StateContentAttached DraftState = "content_attached"
	StateMetricsComputed DraftState = "metrics_computed"
	StatePublished       DraftState = "published"
)

// ArticleSpec carries the author-supplied metadata for one article.
type ArticleSpec struct {
	Title         string
	AuthorName    string
	AuthorURL     string
	ArticleCredit string
	ImageLink     string
	ImageCredit   string
	Location      string
}

// Draft is the in-memory representation of a platform draft. The pipeline owns
// it for the duration of a single run; services return updated copies and keep
// no state between calls.
type Draft struct {
	ID       string
	Spec     ArticleSpec
	ImageRef string // hosted URL returned by the image upload, empty until then
	Content  string // body text as attached, empty until the content step
	Metrics  *Metrics
	State    DraftState
}

// Metrics records the outcome of the platform's NLP computation over the final
// content. Informational, but a failed computation still fails the run.
type Metrics struct {
	Status     string
	ComputedAt time.Time
}

// ContentInput is a validated local content file.
type ContentInput struct {
	Path string
	Text string
}

// ImageInput is a validated local image file plus its remote metadata.
type ImageInput struct {
	Path   string
	Data   []byte
	MIME   string // image/jpeg or image/png
	Link   string
	Credit string
}

// PublishResult is the terminal output of a successful run.
type PublishResult struct {
	ArticleID string
	State     DraftState
}

// RunState enumerates pipeline milestones, including the ones reached before a
// draft exists. The journal persists the furthest state of every run.
type RunState string

const (
	RunStart           RunState = "start"
	RunValidated       RunState = "validated"
	RunDrafted         RunState = "drafted"
	RunImageAttached   RunState = "image_attached"
	RunContentAttached RunState = "content_attached"
	RunMetricsComputed RunState = "metrics_computed"
	RunPublished       RunState = "published"
	RunFailed          RunState = "failed"
)

// RunRecord is the journal row describing one pipeline run.
type RunRecord struct {
	RunID      string
	Title      string
	DraftID    string
	State      RunState
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}
