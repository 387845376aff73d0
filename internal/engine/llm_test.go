package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "json fence", raw: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", raw: "```\n[1,2]\n```", want: "[1,2]"},
		{name: "other tag", raw: "```javascript\n{}\n```", want: "{}"},
		{name: "no fence", raw: "  {\"a\":1}  ", want: `{"a":1}`},
		{name: "empty", raw: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.raw))
		})
	}
}

func TestJSONCandidates(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "plain object",
			raw:  `{"segments":[]}`,
			want: []string{`{"segments":[]}`},
		},
		{
			name: "object inside prose",
			raw:  `Here you go: {"segments":[]} hope it helps`,
			want: []string{`Here you go: {"segments":[]} hope it helps`, `{"segments":[]}`},
		},
		{
			name: "array inside prose",
			raw:  `result: [1, 2] done`,
			want: []string{`result: [1, 2] done`, `[1, 2]`},
		},
		{
			name: "fenced with prose",
			raw:  "```json\nsure {\"x\":1}\n```",
			want: []string{`sure {"x":1}`, `{"x":1}`},
		},
		{
			name: "empty",
			raw:  "   ",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JSONCandidates(tt.raw))
		})
	}
}

func TestLLMCompleterWithoutClient(t *testing.T) {
	_, err := LLMCompleter{}.Complete(context.Background(), "hello")
	assert.ErrorIs(t, err, errNoLLMClient)
}
