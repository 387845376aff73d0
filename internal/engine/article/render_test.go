package article

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertImage(t *testing.T) {
	img := "![a](u)"
	tests := []struct {
		name   string
		body   string
		anchor string
		want   string
	}{
		{"after anchor", "第一句。第二句。", "第一句。", "第一句。\n\n![a](u)\n\n第二句。"},
		{"first occurrence only", "x y x", "x", "x\n\n![a](u)\n\n y x"},
		{"missing anchor appends", "正文", "不存在", "正文\n\n![a](u)\n"},
		{"blank anchor appends", "正文", "  ", "正文\n\n![a](u)\n"},
		{"empty body", "  ", "any", "![a](u)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InsertImage(tt.body, img, tt.anchor))
		})
	}
}

func TestRenderMarkdown(t *testing.T) {
	plan := &Plan{
		Title:      "标题",
		Lead:       "导语",
		Sections:   []Section{{Heading: "一", BodyMarkdown: "正文\uFFFD一"}, {Heading: "二", BodyMarkdown: "正文二"}},
		Conclusion: "结语",
		Tags:       []string{"AI", "视频"},
	}
	want := "# 标题\n\n导语\n\n## 一\n正文一\n\n## 二\n正文二\n\n## 总结\n结语\n\n关键词：AI / 视频\n"
	assert.Equal(t, want, RenderMarkdown(plan))
}

func TestRenderMarkdownMinimal(t *testing.T) {
	plan := &Plan{Title: "T", Sections: []Section{{Heading: "S", BodyMarkdown: "B"}}}
	assert.Equal(t, "# T\n\n## S\nB\n", RenderMarkdown(plan))
}

func TestRenderHTML(t *testing.T) {
	page, err := RenderHTML("A <b>", "# Title\n\n![alt](https://cdn.example.com/x.jpg)\n")
	require.NoError(t, err)
	assert.Contains(t, page, "<title>A &lt;b&gt;</title>")
	assert.Contains(t, page, "<h1>Title</h1>")
	assert.Contains(t, page, `<img src="https://cdn.example.com/x.jpg" alt="alt">`)
}

func TestParseImageStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want ImageStrategy
	}{
		{"", ImagesVideoOnly},
		{"video_only", ImagesVideoOnly},
		{" Hybrid ", ImagesHybrid},
		{"ai_only", ImagesAIOnly},
	}
	for _, tt := range tests {
		got, err := ParseImageStrategy(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	_, err := ParseImageStrategy("frame")
	assert.Error(t, err)
}
