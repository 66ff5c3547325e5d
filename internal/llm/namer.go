package llm

import (
	"context"
	"strings"
	"time"
)

// Namer adapts a Client into the store.LLMNamer capability (spec §4.2's
// filename-generation priority order, option (a)): a fast-tier call asks
// for a short semantic slug for a page's content, falling back to the
// store's own "no LLM name" path on any failure or empty answer.
type Namer struct {
	client  Client
	timeout time.Duration
}

// NewNamer wraps client for filename generation. A zero timeout defaults
// to 10s, short enough that a slow namer call never dominates a Save*.
func NewNamer(client Client, timeout time.Duration) *Namer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Namer{client: client, timeout: timeout}
}

// Name asks the fast tier for a short filename stem describing content.
// Returns ("", false) on any LLM failure, parse problem, or empty answer,
// signalling the store to fall back to the URL's last path segment.
func (n *Namer) Name(ctx context.Context, url string, content []byte) (string, bool) {
	if n.client == nil {
		return "", false
	}

	preview := string(content)
	if len(preview) > 800 {
		preview = preview[:800]
	}

	prompt := buildNamePrompt(url, preview)
	resp, err := n.client.Generate(ctx, prompt, TierFast, 0, 32, n.timeout)
	if err != nil || !resp.Success {
		return "", false
	}

	name := strings.TrimSpace(resp.Content)
	name = strings.Trim(name, "\"'`\n\t ")
	if name == "" || strings.Contains(name, "\n") {
		return "", false
	}
	return name, true
}

func buildNamePrompt(url, preview string) string {
	var sb strings.Builder
	sb.WriteString("Give a short filename slug (2-5 words, lowercase, words separated by spaces, no extension,\n")
	sb.WriteString("no punctuation) that describes the content of this page. Respond with only the slug.\n\n")
	sb.WriteString("URL: ")
	sb.WriteString(url)
	sb.WriteString("\n\nContent:\n")
	sb.WriteString(preview)
	return sb.String()
}
