// Package content renders user-authored markdown into HTML that is safe to
// serve. Rendering runs first so the embed transform can emit its iframe
// markup, then the sanitizer makes the final pass over the full output,
// including any raw HTML the author wrote directly into the markdown.
package content

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer is the markdown-to-safe-HTML pipeline. Safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewRenderer creates the pipeline with the embed transform and the
// allowlist policy wired in.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(rendererOptions()...),
		),
		policy: newPolicy(),
	}
}

// RenderMarkdown converts markdown to HTML without sanitizing. The output
// is unsafe on its own; callers outside tests go through Render.
func (r *Renderer) RenderMarkdown(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SanitizeHTML strips everything outside the allowlist from the HTML.
func (r *Renderer) SanitizeHTML(html string) string {
	return r.policy.Sanitize(html)
}

// Render runs the full pipeline: markdown to HTML, then sanitize the output.
func (r *Renderer) Render(markdown string) (string, error) {
	html, err := r.RenderMarkdown(markdown)
	if err != nil {
		return "", err
	}
	return r.SanitizeHTML(html), nil
}
