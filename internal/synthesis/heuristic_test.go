package synthesis

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/portfolio-site/portfolio-backend/internal/entities/domain"
)

func TestHeuristic(t *testing.T) {
	h := Heuristic{}
	ctx := context.Background()

	tests := []struct {
		name    string
		kind    domain.Kind
		content string
		want    string
	}{
		{
			name:    "empty project",
			kind:    domain.KindProject,
			content: "  \n\n\t\n",
			want:    "This project doesn't have a description yet.",
		},
		{
			name:    "empty certificate",
			kind:    domain.KindCertificate,
			content: "",
			want:    "This certificate does not have a description yet.",
		},
		{
			name:    "doc comment block",
			kind:    domain.KindProject,
			content: "/**\n * A weather dashboard.\n * Uses open data.\n */\nfunction main() {}\n",
			want:    "A weather dashboard. Uses open data.",
		},
		{
			name:    "text on opening line is ignored",
			kind:    domain.KindProject,
			content: "/* header\n * Body line\n */",
			want:    "Body line",
		},
		{
			name:    "html comment",
			kind:    domain.KindCertificate,
			content: "<!DOCTYPE html>\n<!--\n  Issued for completing Go basics\n-->\n<html></html>",
			want:    "Issued for completing Go basics",
		},
		{
			name:    "no comment falls back to opening lines",
			kind:    domain.KindProject,
			content: "package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(1)\n}\n// trailing\n",
			want:    "Project based on package main import \"fmt\" func main() { \tfmt.Println(1) }...",
		},
		{
			name:    "certificate fallback prefix",
			kind:    domain.KindCertificate,
			content: "Certificate of Completion\r\nGo Fundamentals\r\n",
			want:    "Certificate related to Certificate of Completion Go Fundamentals...",
		},
		{
			name:    "empty comment block falls back",
			kind:    domain.KindProject,
			content: "/*\n*/\nbody",
			want:    "Project based on /* */ body...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.Synthesize(ctx, tt.kind, tt.content))
		})
	}
}

func TestHeuristic_CommentMustStartWithinTwentyLines(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("x\n")
	}
	b.WriteString("/*\n * late\n */\n")

	got := Heuristic{}.Synthesize(context.Background(), domain.KindProject, b.String())
	assert.Equal(t, "Project based on x x x x x...", got)
}

func TestHeuristic_TruncatesFallback(t *testing.T) {
	long := strings.Repeat("é", 500)
	got := Heuristic{}.Synthesize(context.Background(), domain.KindProject, long)

	body := strings.TrimSuffix(strings.TrimPrefix(got, "Project based on "), "...")
	assert.Equal(t, 200, len([]rune(body)))
}
