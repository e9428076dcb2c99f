package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ArticlePublisher/internal/domain"
)

// classify maps a raw platform response onto the typed error taxonomy. The
// platform answers HTTP 200 with an HTML login page when the session is stale,
// so the body shape decides, not the status code alone.
func classify(op string, status int, body []byte) (Envelope, error) {
	if looksLikeHTML(body) {
		if isLoginPage(body) {
			return Envelope{}, fmt.Errorf("%s: %w", op, domain.ErrSessionExpired)
		}
		return Envelope{}, &domain.HTTPError{Op: op, Status: status, Err: fmt.Errorf("unexpected HTML response")}
	}

	if status != http.StatusOK {
		return Envelope{}, &domain.HTTPError{Op: op, Status: status}
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, &domain.HTTPError{Op: op, Status: status, Err: fmt.Errorf("decode response: %w", err)}
	}

	if env.Code != 0 {
		return Envelope{}, &domain.RemoteValidationError{Op: op, Code: env.Code, Message: env.Message}
	}

	return env, nil
}

func looksLikeHTML(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if bytes.HasPrefix(trimmed, []byte("<!")) {
		return true
	}
	return bytes.Contains(bytes.ToLower(trimmed[:min(len(trimmed), 1024)]), []byte("<html"))
}

// isLoginPage parses the document and looks for login markers: a password
// field, a form posting to a login endpoint, or a sign-in title.
func isLoginPage(body []byte) bool {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return false
	}

	if doc.Find(`input[type="password"]`).Length() > 0 {
		return true
	}

	login := false
	doc.Find("form").EachWithBreak(func(_ int, form *goquery.Selection) bool {
		action, _ := form.Attr("action")
		if strings.Contains(strings.ToLower(action), "login") {
			login = true
			return false
		}
		return true
	})
	if login {
		return true
	}

	title := strings.ToLower(doc.Find("title").First().Text())
	return strings.Contains(title, "log in") || strings.Contains(title, "login") || strings.Contains(title, "sign in")
}
