// Package article turns a transcript into an illustrated article: it asks a
// language model for a plan, fetches or generates one image per planned
// section, and writes Markdown, HTML and a manifest into a workspace.
package article

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/anatolykoptev/go_article/internal/engine"
	"github.com/anatolykoptev/go_article/internal/engine/transcript"
)

// Defaults applied by NormalizePlan.
const (
	DefaultTitle      = "未命名文章标题"
	DefaultHeading    = "小节"
	FallbackHeading   = "核心内容"
	FallbackBody      = "请根据视频内容补充正文。"
	ZeroTimestamp     = "00:00:00"
	ConclusionHeading = "总结"
	KeywordsLabel     = "关键词："
	KeywordsSeparator = " / "
)

// ImageNeed is the planner's request for an illustration in a section.
type ImageNeed struct {
	Need      bool   `json:"need"`
	Timestamp string `json:"timestamp"` // HH:MM:SS
	Caption   string `json:"caption"`
	Alt       string `json:"alt"`
	Anchor    string `json:"anchor"` // body text the image follows
}

// Section is one headed part of the article.
type Section struct {
	Heading      string    `json:"heading"`
	BodyMarkdown string    `json:"body_markdown"`
	Image        ImageNeed `json:"image"`
}

// Plan is a normalized article plan.
type Plan struct {
	Title      string    `json:"title"`
	Lead       string    `json:"lead"`
	Sections   []Section `json:"sections"`
	Conclusion string    `json:"conclusion"`
	Tags       []string  `json:"tags"`
}

// ImageCount returns how many sections request an image.
func (p *Plan) ImageCount() int {
	n := 0
	for _, s := range p.Sections {
		if s.Image.Need {
			n++
		}
	}
	return n
}

// DecodePlan extracts the JSON object from a model response.
func DecodePlan(text string) (map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyPlanResponse
	}
	for _, candidate := range engine.JSONCandidates(text) {
		var raw map[string]any
		if err := json.Unmarshal([]byte(candidate), &raw); err == nil && raw != nil {
			return raw, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidPlanJSON, engine.TruncateRunes(text, 200, "..."))
}

// NormalizePlan coerces a decoded plan into a complete Plan. At most
// maxImages sections keep their image request; maxImages <= 0 means no cap.
// A plan without usable sections gets one fallback section built from the lead.
func NormalizePlan(raw map[string]any, maxImages int) Plan {
	plan := Plan{
		Title:      orDefault(stringField(raw, "title"), DefaultTitle),
		Lead:       stringField(raw, "lead"),
		Conclusion: stringField(raw, "conclusion"),
		Tags:       []string{},
	}

	if tags, ok := raw["tags"].([]any); ok {
		for _, t := range tags {
			if s := strings.TrimSpace(fmt.Sprint(t)); s != "" && t != nil {
				plan.Tags = append(plan.Tags, s)
			}
		}
	}

	images := 0
	sections, _ := raw["sections"].([]any)
	for _, item := range sections {
		sec, ok := item.(map[string]any)
		if !ok {
			continue
		}
		heading := orDefault(stringField(sec, "heading"), DefaultHeading)
		body := firstField(sec, "body_markdown", "body", "content")

		normalized := Section{
			Heading:      heading,
			BodyMarkdown: markdownBody(body),
			Image:        ImageNeed{Timestamp: ZeroTimestamp},
		}

		img, _ := sec["image"].(map[string]any)
		if truthy(img["need"]) && (maxImages <= 0 || images < maxImages) {
			images++
			caption := orDefault(stringField(img, "caption"), heading)
			normalized.Image = ImageNeed{
				Need:      true,
				Timestamp: transcript.Normalize(stringField(img, "timestamp")),
				Caption:   caption,
				Alt:       orDefault(stringField(img, "alt"), caption),
				Anchor:    stringField(img, "anchor"),
			}
		}
		plan.Sections = append(plan.Sections, normalized)
	}

	if len(plan.Sections) == 0 {
		plan.Sections = []Section{{
			Heading:      FallbackHeading,
			BodyMarkdown: orDefault(plan.Lead, FallbackBody),
			Image:        ImageNeed{Timestamp: ZeroTimestamp},
		}}
	}
	return plan
}

var htmlMarkupRe = regexp.MustCompile(`(?i)</?(p|div|br|ul|ol|li|h[1-6]|strong|em|b|i|a|blockquote|code|pre)\b[^>]*>`)

// markdownBody converts HTML bodies some models return into Markdown.
func markdownBody(body string) string {
	if !htmlMarkupRe.MatchString(body) {
		return body
	}
	md, err := htmltomarkdown.ConvertString(body)
	if err != nil || strings.TrimSpace(md) == "" {
		return engine.CleanHTML(body)
	}
	return strings.TrimSpace(md)
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		// Plain numbers are common for timestamps given in seconds.
		return strings.TrimSpace(fmt.Sprintf("%.0f", v))
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func firstField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringField(m, k); s != "" {
			return s
		}
	}
	return ""
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// truthy mirrors how loosely typed model output marks a flag.
func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "", "0", "false", "no", "off":
			return false
		}
		return true
	case float64:
		return b != 0
	}
	return false
}
