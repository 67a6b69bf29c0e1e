package content

import (
	"regexp"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

const embedPrefix = "embed:"

// youtubeWatchURL matches watch and short-link URLs and captures the video id.
var youtubeWatchURL = regexp.MustCompile(`^(?:https?://)?(?:www\.)?(?:youtube\.com/watch\?v=|youtu\.be/)([A-Za-z0-9_-]{11})`)

// embedImageRenderer replaces the default image renderer. Destinations with
// the embed: prefix become a responsive YouTube iframe when the URL is a
// recognized watch link, or a visible error marker otherwise. Plain images
// render as usual.
type embedImageRenderer struct{}

func newEmbedImageRenderer() renderer.NodeRenderer {
	return &embedImageRenderer{}
}

func (r *embedImageRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindImage, r.renderImage)
}

func (r *embedImageRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)

	dest := string(n.Destination)
	if len(dest) > len(embedPrefix) && dest[:len(embedPrefix)] == embedPrefix {
		r.renderEmbed(w, source, n, dest[len(embedPrefix):])
		return ast.WalkSkipChildren, nil
	}

	_, _ = w.WriteString(`<img src="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
	_, _ = w.WriteString(`" alt="`)
	_, _ = w.Write(util.EscapeHTML(nodeText(n, source)))
	_, _ = w.WriteString(`"`)
	if n.Title != nil {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(n.Title))
		_, _ = w.WriteString(`"`)
	}
	_, _ = w.WriteString(` />`)
	return ast.WalkSkipChildren, nil
}

func (r *embedImageRenderer) renderEmbed(w util.BufWriter, source []byte, n *ast.Image, rawURL string) {
	match := youtubeWatchURL.FindStringSubmatch(rawURL)
	if match == nil {
		_, _ = w.WriteString(`<p class="embed-error">[Unsupported YouTube URL]</p>`)
		return
	}
	videoID := match[1]

	title := nodeText(n, source)
	if len(title) == 0 {
		title = []byte("YouTube video")
	}

	_, _ = w.WriteString(`<div class="video-container"><iframe src="https://www.youtube.com/embed/`)
	_, _ = w.WriteString(videoID)
	_, _ = w.WriteString(`" title="`)
	_, _ = w.Write(util.EscapeHTML(title))
	_, _ = w.WriteString(`" frameborder="0" allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture" allowfullscreen></iframe></div>`)
}

// nodeText collects the literal text of the node's descendants. Used for
// alt text and iframe titles.
func nodeText(n ast.Node, source []byte) []byte {
	var out []byte
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := node.(*ast.Text); ok {
			out = append(out, t.Value(source)...)
		}
		return ast.WalkContinue, nil
	})
	return out
}

// rendererOptions configures the markdown renderer. Raw HTML passes through
// untouched here; the sanitizer downstream is the safety boundary, and it
// has to see everything the author wrote.
func rendererOptions() []renderer.Option {
	return []renderer.Option{
		html.WithUnsafe(),
		renderer.WithNodeRenderers(util.Prioritized(newEmbedImageRenderer(), 500)),
	}
}
