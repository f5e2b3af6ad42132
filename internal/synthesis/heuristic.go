package synthesis

import (
	"context"
	"regexp"
	"strings"

	"github.com/portfolio-site/portfolio-backend/internal/entities/domain"
)

const (
	scanLines    = 20
	summaryLines = 5
	summaryRunes = 200
)

var leadingStar = regexp.MustCompile(`^\s*\*\s*`)

// Heuristic derives a description from the content itself: the first comment
// block near the top of the file, or else the opening lines.
type Heuristic struct{}

func (Heuristic) Synthesize(ctx context.Context, kind domain.Kind, content string) string {
	lines := nonEmptyLines(content)
	if len(lines) == 0 {
		return emptyText(kind)
	}

	if block := commentBlock(lines); len(block) > 0 {
		return strings.Join(block, " ")
	}

	head := lines
	if len(head) > summaryLines {
		head = head[:summaryLines]
	}
	return summaryPrefix(kind) + truncateRunes(strings.Join(head, " "), summaryRunes) + "..."
}

func nonEmptyLines(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// commentBlock returns the cleaned inner lines of the first comment block
// opened within the first scanLines lines. Text on the opening and closing
// lines is not part of the block.
func commentBlock(lines []string) []string {
	if len(lines) > scanLines {
		lines = lines[:scanLines]
	}

	var out []string
	in := false
	for _, line := range lines {
		if opensComment(line) {
			in = true
			continue
		}
		if !in {
			continue
		}
		if closesComment(line) {
			break
		}
		if cleaned := strings.TrimSpace(leadingStar.ReplaceAllString(line, "")); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

func opensComment(line string) bool {
	return strings.Contains(line, "/*") || strings.Contains(line, "<!--")
}

func closesComment(line string) bool {
	return strings.Contains(line, "*/") || strings.Contains(line, "-->")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
