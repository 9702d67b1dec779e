// Package markdown renders comment and description bodies to sanitized HTML.
package markdown

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	mdhtml "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
)

// Renderer converts markdown into HTML safe to store next to the source text.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	logger *zap.Logger
}

// NewRenderer returns a GFM renderer with UGC sanitization.
func NewRenderer(logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Strikethrough),
			goldmark.WithRendererOptions(mdhtml.WithUnsafe(), mdhtml.WithHardWraps()),
		),
		policy: bluemonday.UGCPolicy(),
		logger: logger,
	}
}

// Render returns the HTML for text. Empty input renders to "". A conversion
// failure falls back to the escaped text in a paragraph.
func (r *Renderer) Render(projectID int64, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		r.logger.Warn("markdown conversion failed",
			zap.Int64("project_id", projectID),
			zap.Error(err))
		return "<p>" + html.EscapeString(text) + "</p>"
	}
	return strings.TrimSpace(string(r.policy.SanitizeBytes(buf.Bytes())))
}
