package generator

import (
	"fmt"
	"strings"
)

// PostProcess cleans raw model output into draft text.
func PostProcess(raw string, t DocumentType) (string, error) {
	text := trimCodeFence(strings.TrimSpace(raw))
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if text == "" {
		return "", fmt.Errorf("%w: model returned empty %s", ErrInvalidResponse, t.Label())
	}
	return text, nil
}

func trimCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	// drop an info string such as ```markdown
	if idx := strings.IndexByte(text, '\n'); idx >= 0 && !strings.ContainsAny(text[:idx], " \t") {
		text = text[idx+1:]
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// Subject returns the "Subject:" line of an email draft, if any.
func Subject(email string) string {
	for _, line := range strings.Split(email, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > len("subject:") && strings.EqualFold(line[:len("subject:")], "subject:") {
			return strings.TrimSpace(line[len("subject:"):])
		}
	}
	return ""
}
