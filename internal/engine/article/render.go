package article

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ImageMarkdown renders an image reference.
func ImageMarkdown(alt, url string) string {
	return fmt.Sprintf("![%s](%s)", alt, url)
}

// InsertImage places image after the first occurrence of anchor in body.
// Without a matching anchor the image is appended; an empty body becomes
// just the image.
func InsertImage(body, image, anchor string) string {
	content := strings.TrimSpace(body)
	anchor = strings.TrimSpace(anchor)

	if anchor != "" && strings.Contains(content, anchor) {
		return strings.Replace(content, anchor, anchor+"\n\n"+image+"\n\n", 1)
	}
	if content == "" {
		return image
	}
	return content + "\n\n" + image + "\n"
}

// RenderMarkdown assembles the final article. U+FFFD replacement characters
// left over from broken decodes are removed.
func RenderMarkdown(p *Plan) string {
	lines := []string{"# " + p.Title}
	if p.Lead != "" {
		lines = append(lines, "", p.Lead)
	}
	for _, s := range p.Sections {
		lines = append(lines, "", "## "+s.Heading, s.BodyMarkdown)
	}
	if p.Conclusion != "" {
		lines = append(lines, "", "## "+ConclusionHeading, p.Conclusion)
	}
	if len(p.Tags) > 0 {
		lines = append(lines, "", KeywordsLabel+strings.Join(p.Tags, KeywordsSeparator))
	}
	lines = append(lines, "")
	return strings.ReplaceAll(strings.Join(lines, "\n"), "\uFFFD", "")
}

var markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderHTML converts article Markdown into a standalone HTML page.
func RenderHTML(title, md string) (string, error) {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>%s</title></head>
<body style="max-width: 720px; margin: 0 auto; font-family: sans-serif; line-height: 1.75;">
%s
</body></html>
`, html.EscapeString(title), buf.String()), nil
}
