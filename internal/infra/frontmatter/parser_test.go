package frontmatter

import (
	"context"
	"strings"
	"testing"
)

func TestParseYAML(t *testing.T) {
	doc := "---\ntitle: Hello\ndescription: World\npubDate: \"2023-01-01\"\n---\n# Body\n"
	fields, body, err := (Parser{}).Parse(context.Background(), []byte(doc))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if fields["title"] != "Hello" || fields["pubDate"] != "2023-01-01" {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if !strings.Contains(string(body), "# Body") {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestParseTOML(t *testing.T) {
	doc := "+++\ntitle = \"Hello\"\nrepo = \"https://x\"\n+++\nbody\n"
	fields, _, err := (Parser{}).Parse(context.Background(), []byte(doc))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if fields["title"] != "Hello" || fields["repo"] != "https://x" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestParseWithoutFrontmatter(t *testing.T) {
	fields, body, err := (Parser{}).Parse(context.Background(), []byte("just text\n"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(fields) != 0 {
		t.Fatalf("expected empty fields, got %v", fields)
	}
	if string(body) != "just text\n" {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestParseMalformedYAML(t *testing.T) {
	doc := "---\ntitle: [unterminated\n---\nbody\n"
	if _, _, err := (Parser{}).Parse(context.Background(), []byte(doc)); err == nil {
		t.Fatalf("expected parse error")
	}
}
