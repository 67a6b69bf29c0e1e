package content

import (
	"strings"
	"testing"
)

func render(t *testing.T, markdown string) string {
	t.Helper()
	out, err := NewRenderer().Render(markdown)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return out
}

func TestRenderBasicMarkdown(t *testing.T) {
	out := render(t, "# Title\n\nSome **bold** and *italic* text with `code`.\n\n> a quote\n")

	for _, want := range []string{
		"<h1>Title</h1>",
		"<strong>bold</strong>",
		"<em>italic</em>",
		"<code>code</code>",
		"<blockquote>",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderGFM(t *testing.T) {
	out := render(t, "~~gone~~\n\n| a | b |\n| - | - |\n| 1 | 2 |\n")

	if !strings.Contains(out, "<del>gone</del>") {
		t.Fatalf("strikethrough missing:\n%s", out)
	}
	for _, want := range []string{"<table>", "<th>a</th>", "<td>1</td>"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderImage(t *testing.T) {
	out := render(t, `![a cat](https://example.com/cat.png "Cat")`)

	for _, want := range []string{
		`src="https://example.com/cat.png"`,
		`alt="a cat"`,
		`title="Cat"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("image output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderYouTubeEmbed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "watch url", in: "![My video](embed:https://www.youtube.com/watch?v=dQw4w9WgXcQ)"},
		{name: "watch url no scheme", in: "![My video](embed:youtube.com/watch?v=dQw4w9WgXcQ)"},
		{name: "short link", in: "![My video](embed:https://youtu.be/dQw4w9WgXcQ)"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := render(t, tc.in)
			for _, want := range []string{
				`<div class="video-container">`,
				`src="https://www.youtube.com/embed/dQw4w9WgXcQ"`,
				`title="My video"`,
				`allowfullscreen`,
			} {
				if !strings.Contains(out, want) {
					t.Fatalf("embed output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestRenderEmbedUnsupportedURL(t *testing.T) {
	for _, in := range []string{
		"![v](embed:https://vimeo.com/12345)",
		"![v](embed:https://example.com/watch?v=dQw4w9WgXcQ)",
		"![v](embed:not-a-url)",
	} {
		out := render(t, in)
		if !strings.Contains(out, `<p class="embed-error">[Unsupported YouTube URL]</p>`) {
			t.Fatalf("expected error marker for %q, got:\n%s", in, out)
		}
		if strings.Contains(out, "<iframe") {
			t.Fatalf("unsupported embed produced an iframe:\n%s", out)
		}
	}
}

func TestSanitizeRemovesScripts(t *testing.T) {
	out := render(t, "hello\n\n<script>alert(1)</script>\n\nworld")

	if strings.Contains(out, "<script") || strings.Contains(out, "alert(1)") {
		t.Fatalf("script survived sanitization:\n%s", out)
	}
	if !strings.Contains(out, "hello") || !strings.Contains(out, "world") {
		t.Fatalf("surrounding content was lost:\n%s", out)
	}
}

func TestSanitizeStripsEventHandlers(t *testing.T) {
	out := render(t, `<img src="x" onerror="alert(1)">`)

	if strings.Contains(out, "onerror") || strings.Contains(out, "alert(1)") {
		t.Fatalf("event handler survived sanitization:\n%s", out)
	}
	// The img itself is legitimate; only the handler goes.
	if !strings.Contains(out, "<img") || !strings.Contains(out, `src="x"`) {
		t.Fatalf("benign img attributes were lost:\n%s", out)
	}
}

func TestSanitizeRejectsForeignIframes(t *testing.T) {
	for _, in := range []string{
		`<iframe src="https://evil.example.com/embed/x"></iframe>`,
		`<iframe src="https://youtube.com.evil.example/embed/x"></iframe>`,
		`<iframe src="javascript:alert(1)"></iframe>`,
	} {
		out := render(t, in)
		if strings.Contains(out, "<iframe") {
			t.Fatalf("foreign iframe survived sanitization of %q:\n%s", in, out)
		}
	}
}

func TestSanitizeKeepsYouTubeIframes(t *testing.T) {
	out := render(t, `<iframe src="https://www.youtube.com/embed/dQw4w9WgXcQ" title="v" allowfullscreen></iframe>`)

	if !strings.Contains(out, `src="https://www.youtube.com/embed/dQw4w9WgXcQ"`) {
		t.Fatalf("youtube iframe was stripped:\n%s", out)
	}
}

func TestSanitizeDropsJavascriptLinks(t *testing.T) {
	out := render(t, `<a href="javascript:alert(1)">click</a> and [ok](https://example.com)`)

	if strings.Contains(out, "javascript:") {
		t.Fatalf("javascript href survived:\n%s", out)
	}
	if !strings.Contains(out, `href="https://example.com"`) {
		t.Fatalf("legitimate link was stripped:\n%s", out)
	}
}

func TestSanitizeHTMLDirect(t *testing.T) {
	r := NewRenderer()

	out := r.SanitizeHTML(`<div class="video-container" data-x="1"><span style="color:red">hi</span></div>`)
	if !strings.Contains(out, `class="video-container"`) {
		t.Fatalf("allowed class was stripped:\n%s", out)
	}
	if strings.Contains(out, "data-x") || strings.Contains(out, "style=") {
		t.Fatalf("disallowed attributes survived:\n%s", out)
	}
}

func TestRenderMarkdownIsUnsafe(t *testing.T) {
	r := NewRenderer()

	out, err := r.RenderMarkdown("<script>alert(1)</script>")
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	// Raw HTML must reach the sanitizer intact or it could never be judged.
	if !strings.Contains(out, "<script>") {
		t.Fatalf("raw HTML did not pass through the renderer:\n%s", out)
	}
}
