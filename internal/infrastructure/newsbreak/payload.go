package newsbreak

import (
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
)

// The editor stores image nodes as a figure wrapping URL-encoded JSON metadata
// in a data-editornodeinfo attribute; drafts without it render without a cover.
type imageNodeInfo struct {
	Type           string `json:"type"`
	ImageURL       string `json:"imageUrl"`
	ImageCaption   string `json:"imageCaption"`
	CreditText     string `json:"creditText"`
	CreditURL      string `json:"creditUrl"`
	ImagePlatform  string `json:"imagePlatform"`
	OriginalWidth  int    `json:"imageOriginalWidth"`
	OriginalHeight int    `json:"imageOriginalHeight"`
}

const (
	imageOriginalWidth  = 1500
	imageOriginalHeight = 1000
)

func imageBlock(imageURL, creditText string) string {
	info, _ := json.Marshal(imageNodeInfo{
		Type:           "editor-image-node",
		ImageURL:       imageURL,
		CreditText:     creditText,
		ImagePlatform:  "SELF_UPLOAD",
		OriginalWidth:  imageOriginalWidth,
		OriginalHeight: imageOriginalHeight,
	})

	var b strings.Builder
	fmt.Fprintf(&b, `<figure><div data-editornodeinfo="%s">`, url.QueryEscape(string(info)))
	b.WriteString(`<div class="editor-image-wrap"><div class="editor-image">`)
	fmt.Fprintf(&b,
		`<img class="" src="%s" data-image-caption="" data-credit-text="%s" data-credit-url="" `+
			`data-image-platform="SELF_UPLOAD" data-image-original-width="%d" data-image-original-height="%d">`,
		imageURL, html.EscapeString(creditText), imageOriginalWidth, imageOriginalHeight)
	b.WriteString(`</div><span class="image-introduction-wrap">`)
	fmt.Fprintf(&b, `<span class="photo-by">Photo by</span><span class="credit-text">%s</span>`,
		html.EscapeString(creditText))
	b.WriteString(`</span></div></div></figure>`)
	return b.String()
}

var blankLines = regexp.MustCompile(`\n\s*\n`)

// wrapParagraphs converts plain text into the editor's paragraph markup.
// Paragraphs are split on blank lines; no markdown interpretation happens here.
func wrapParagraphs(text string) string {
	var b strings.Builder
	for _, para := range blankLines.Split(strings.ReplaceAll(text, "\r\n", "\n"), -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString(paragraph(html.EscapeString(para)))
	}
	return b.String()
}

func paragraph(inner string) string {
	return `<p class="NBAIEditor_Theme__paragraph" dir="ltr" style="text-align: start;"><span>` +
		inner + `</span></p>`
}

const emptyParagraph = `<p class="NBAIEditor_Theme__paragraph"><br></p>`

// styleBlock carries the subset of the editor theme the rendered post needs.
// Kept inline and hidden, exactly as the web editor emits it.
const styleBlock = `<style style="display: none">` +
	`.NBAIEditor_Theme__ol1 {padding: 0 0 0 20px !important;margin: 0 0 24px 0 !important;list-style-position: outside !important;}` +
	`.NBAIEditor_Theme__ul {padding: 0 !important;margin: 0 !important;margin-left: 20px !important;list-style-position: outside !important;}` +
	`.NBAIEditor_Theme__listItem {margin: 0 !important;padding: 0 !important;}` +
	`.editor-image-wrap {display: flex;flex-direction: column;position: relative;margin: 24px auto 12px;}` +
	`.editor-image-wrap .editor-image {position: relative;z-index: 1;cursor: pointer;margin-top: 0;}` +
	`.editor-image-wrap .editor-image img {width: 100%;border-radius: 8px;margin-top: 0;}` +
	`.editor-image-wrap .image-introduction-wrap {font-size: 14px;line-height: 20px;color: rgba(0, 0, 0, 0.6);margin-top: 12px;user-select: none;}` +
	`.editor-image-wrap .image-introduction-wrap .photo-by {color: rgba(0, 0, 0, 0.3);}` +
	`.editor-image-wrap .image-introduction-wrap .credit-text {margin-left: 6px;}` +
	`</style>`

// composeBody assembles the editor document: cover image block, credit line,
// paragraph-wrapped body, trailing empty paragraph, theme styles.
func composeBody(imageURL, imageCredit, articleCredit, content string) string {
	var b strings.Builder
	if imageURL != "" {
		b.WriteString(imageBlock(imageURL, imageCredit))
	}
	if credit := strings.TrimSpace(articleCredit); credit != "" {
		b.WriteString(paragraph(html.EscapeString(credit)))
	}
	b.WriteString(wrapParagraphs(content))
	b.WriteString(emptyParagraph)
	b.WriteString(styleBlock)
	return b.String()
}
