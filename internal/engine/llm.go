package engine

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go-kit/llm"
)

var errNoLLMClient = errors.New("llm client not configured")

// fenceOpenRe matches an opening code fence with an optional language tag.
var fenceOpenRe = regexp.MustCompile("^```[a-zA-Z0-9_-]*[ \t]*\n?")

// StripFences removes a leading and trailing markdown code fence from LLM output.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = fenceOpenRe.ReplaceAllString(s, "")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// JSONCandidates returns the strings worth trying as JSON, in order: the
// unfenced response itself, then the span from the first '{' to the last
// '}' (or '[' to ']' when there is no object).
func JSONCandidates(raw string) []string {
	s := StripFences(raw)
	if s == "" {
		return nil
	}
	out := []string{s}
	if sub := jsonSubstring(s); sub != "" && sub != s {
		out = append(out, sub)
	}
	return out
}

func jsonSubstring(s string) string {
	if start, end := strings.Index(s, "{"), strings.LastIndex(s, "}"); start >= 0 && end > start {
		return s[start : end+1]
	}
	if start, end := strings.Index(s, "["), strings.LastIndex(s, "]"); start >= 0 && end > start {
		return s[start : end+1]
	}
	return ""
}

// LLMCompleter adapts a go-kit LLM client to a single-method completer with
// a fixed sampling temperature.
type LLMCompleter struct {
	Client      *llm.Client
	Temperature float64
}

// Complete sends prompt and returns the raw response text.
func (c LLMCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if c.Client == nil {
		return "", errNoLLMClient
	}
	metrics.LLMCalls.Add(1)
	resp, err := c.Client.Complete(ctx, "", prompt, llm.WithChatTemperature(c.Temperature))
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", err
	}
	return resp, nil
}
