package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/mithrel/mudawwana/internal/config"
	"github.com/mithrel/mudawwana/pkg/api"
)

func writeConfigTOML(t *testing.T, dir string) string {
	t.Helper()
	cfg := filepath.Join(dir, "config.toml")
	content := `data_dir = "` + strings.ReplaceAll(dir, "\\", "\\\\") + `"
http_addr = "127.0.0.1:0"
[session]
secret = "` + strings.Repeat("k", config.MinSecretLen) + `"
[log]
level = "error"
`
	if err := os.WriteFile(cfg, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfg
}

// runCLI executes a fresh root command and returns stdout and stderr.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

// seededConfig returns a config path whose store holds the bundled sample content.
func seededConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("XDG_CACHE_HOME", dir)
	cfg := writeConfigTOML(t, dir)
	out, errOut, err := runCLI(t, "", "--config", cfg, "seed")
	if err != nil {
		t.Fatalf("seed: %v\n%s", err, errOut)
	}
	if !strings.Contains(out, "5 posts") {
		t.Fatalf("unexpected seed output: %q", out)
	}
	return cfg
}

func TestSeedTwiceSkipsExisting(t *testing.T) {
	cfg := seededConfig(t)
	out, errOut, err := runCLI(t, "", "--config", cfg, "seed")
	if err != nil {
		t.Fatalf("reseed: %v\n%s", err, errOut)
	}
	if !strings.Contains(out, "0 posts") {
		t.Fatalf("expected nothing new on reseed, got %q", out)
	}
}

func TestPostListJSON(t *testing.T) {
	cfg := seededConfig(t)
	out, errOut, err := runCLI(t, "", "--config", cfg, "post", "list", "--output", "json")
	if err != nil {
		t.Fatalf("list: %v\n%s", err, errOut)
	}
	var posts []api.Post
	if err := json.Unmarshal([]byte(out), &posts); err != nil {
		t.Fatalf("decode list json: %v\n%s", err, out)
	}
	if len(posts) != 4 {
		t.Fatalf("expected 4 published posts, got %d", len(posts))
	}
	if posts[0].Slug != "hunting-jank" {
		t.Fatalf("expected newest first, got %q", posts[0].Slug)
	}
	for _, p := range posts {
		if p.Slug == "bloc-vs-cubit" {
			t.Fatalf("draft leaked into listing")
		}
	}
}

func TestPostListFiltersAndPlain(t *testing.T) {
	cfg := seededConfig(t)
	out, errOut, err := runCLI(t, "", "--config", cfg, "post", "list", "--tag", "firebase", "--lang", "ar")
	if err != nil {
		t.Fatalf("list: %v\n%s", err, errOut)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %q", out)
	}
	if !strings.HasPrefix(lines[1], "firestore-offline-first") {
		t.Fatalf("unexpected row: %q", lines[1])
	}
	if !strings.Contains(lines[1], "فايربيس") {
		t.Fatalf("expected arabic tag names: %q", lines[1])
	}
	if !strings.Contains(errOut, "page 1 of 1 (1 posts)") {
		t.Fatalf("missing page footer: %q", errOut)
	}

	if _, _, err := runCLI(t, "", "--config", cfg, "post", "list", "--output", "tui"); err == nil || !strings.Contains(err.Error(), "terminal") {
		t.Fatalf("expected tui without a terminal to fail, got %v", err)
	}
	if _, _, err := runCLI(t, "", "--config", cfg, "post", "show", "your-first-flutter-widget", "--output", "tui"); err == nil {
		t.Fatalf("expected tui to be rejected outside listings")
	}
	if _, _, err := runCLI(t, "", "--config", cfg, "post", "list", "--since", "yesterday-ish"); err == nil {
		t.Fatalf("expected invalid --since to fail")
	}
}

func TestPostShowJSON(t *testing.T) {
	cfg := seededConfig(t)
	out, errOut, err := runCLI(t, "", "--config", cfg, "post", "show", "your-first-flutter-widget", "--output", "json")
	if err != nil {
		t.Fatalf("show: %v\n%s", err, errOut)
	}
	var got struct {
		Post     api.Post         `json:"post"`
		ReadTime int              `json:"read_time"`
		Blocks   []map[string]any `json:"blocks"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode show json: %v\n%s", err, out)
	}
	if got.Post.Slug != "your-first-flutter-widget" || got.ReadTime != 1 {
		t.Fatalf("unexpected post: slug=%q read_time=%d", got.Post.Slug, got.ReadTime)
	}
	kinds := make([]string, len(got.Blocks))
	for i, b := range got.Blocks {
		kinds[i], _ = b["type"].(string)
	}
	want := "paragraph,heading,paragraph,code,heading,list,blockquote,paragraph"
	if strings.Join(kinds, ",") != want {
		t.Fatalf("block kinds = %v, want %s", kinds, want)
	}

	if _, _, err := runCLI(t, "", "--config", cfg, "post", "show", "bloc-vs-cubit"); err == nil {
		t.Fatalf("expected drafts to be hidden")
	}
}

func TestPostShowPretty(t *testing.T) {
	cfg := seededConfig(t)
	out, errOut, err := runCLI(t, "", "--config", cfg, "post", "show", "hunting-jank")
	if err != nil {
		t.Fatalf("show: %v\n%s", err, errOut)
	}
	plain := regexp.MustCompile(`\x1b\[[0-9;]*m`).ReplaceAllString(out, "")
	if !strings.Contains(plain, "min read") || !strings.Contains(plain, "Hunting") {
		t.Fatalf("expected pretty header, got %q", out)
	}
}

func TestPostRenderFromStdin(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfigTOML(t, dir)
	body := "# Title\n\nSome **bold** text.\n\n```\nx := 1\n```"

	out, errOut, err := runCLI(t, body, "--config", cfg, "post", "render", "-", "--format", "markdown", "--stats")
	if err != nil {
		t.Fatalf("render: %v\n%s", err, errOut)
	}
	if !strings.Contains(out, "```javascript\nx := 1\n```") {
		t.Fatalf("expected fallback language on untagged fence: %q", out)
	}
	if !strings.Contains(errOut, "3 blocks, 1 code, 1 min read") {
		t.Fatalf("unexpected stats: %q", errOut)
	}

	out, _, err = runCLI(t, body, "--config", cfg, "post", "render", "-", "--format", "html")
	if err != nil {
		t.Fatalf("render html: %v", err)
	}
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Fatalf("expected inline html: %q", out)
	}

	// The store is never opened.
	if _, err := os.Stat(filepath.Join(dir, "mudawwana.db")); err == nil {
		t.Fatalf("render should not create the database")
	}
	if _, _, err := runCLI(t, body, "--config", cfg, "post", "render", "-", "--format", "pdf"); err == nil {
		t.Fatalf("expected unknown format to fail")
	}
}

func TestPostExportPages(t *testing.T) {
	cfg := seededConfig(t)
	out, errOut, err := runCLI(t, "", "--config", cfg, "post", "export", "--page-size", "1")
	if err != nil {
		t.Fatalf("export: %v\n%s", err, errOut)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 ndjson lines, got %d\n%s", len(lines), out)
	}
	seen := map[string]bool{}
	for _, l := range lines {
		var p api.Post
		if err := json.Unmarshal([]byte(l), &p); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		if seen[p.Slug] {
			t.Fatalf("duplicate post %q across pages", p.Slug)
		}
		seen[p.Slug] = true
	}
}

func TestPostSearch(t *testing.T) {
	cfg := seededConfig(t)
	out, errOut, err := runCLI(t, "", "--config", cfg, "post", "search", "riverpod", "--output", "json")
	if err != nil {
		t.Fatalf("search: %v\n%s", err, errOut)
	}
	var posts []api.Post
	if err := json.Unmarshal([]byte(out), &posts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(posts) == 0 || posts[0].Slug != "riverpod-in-practice" {
		t.Fatalf("unexpected search results: %+v", posts)
	}
}

func TestTaxonomyLists(t *testing.T) {
	cfg := seededConfig(t)
	out, errOut, err := runCLI(t, "", "--config", cfg, "category", "list", "--noheaders")
	if err != nil {
		t.Fatalf("category list: %v\n%s", err, errOut)
	}
	if got := len(strings.Split(strings.TrimSpace(out), "\n")); got != 4 {
		t.Fatalf("expected 4 categories, got %d\n%s", got, out)
	}

	out, errOut, err = runCLI(t, "", "--config", cfg, "tag", "list", "--output", "json")
	if err != nil {
		t.Fatalf("tag list: %v\n%s", err, errOut)
	}
	var tags []api.Tag
	if err := json.Unmarshal([]byte(out), &tags); err != nil {
		t.Fatalf("decode tags: %v", err)
	}
	counts := map[string]int{}
	for _, tg := range tags {
		counts[tg.Slug] = tg.PostCount
	}
	if counts["flutter"] != 4 || counts["bloc"] != 0 {
		t.Fatalf("unexpected tag counts: %v", counts)
	}
}

func TestNewsletterCommands(t *testing.T) {
	cfg := seededConfig(t)
	if _, errOut, err := runCLI(t, "", "--config", cfg, "newsletter", "subscribe", "Reader@Example.com"); err != nil {
		t.Fatalf("subscribe: %v\n%s", err, errOut)
	}
	if _, _, err := runCLI(t, "", "--config", cfg, "newsletter", "subscribe", "not-an-email"); err == nil {
		t.Fatalf("expected invalid email to fail")
	}
	out, _, err := runCLI(t, "", "--config", cfg, "newsletter", "list", "--noheaders")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "reader@example.com") {
		t.Fatalf("expected normalized address, got %q", out)
	}
	if _, _, err := runCLI(t, "", "--config", cfg, "newsletter", "unsubscribe", "reader@example.com"); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	out, _, _ = runCLI(t, "", "--config", cfg, "newsletter", "list", "--noheaders")
	if strings.TrimSpace(out) != "" {
		t.Fatalf("expected no active subscribers, got %q", out)
	}
	out, _, _ = runCLI(t, "", "--config", cfg, "newsletter", "list", "--noheaders", "--all")
	if !strings.Contains(out, "false") {
		t.Fatalf("expected inactive subscriber with --all, got %q", out)
	}
}

func TestConfigGenerateShowCheck(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	path := filepath.Join(dir, "gen", "config.toml")

	out, errOut, err := runCLI(t, "", "--config", path, "config", "generate", "--output", path)
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, errOut)
	}
	if !strings.Contains(out, "Wrote "+path) {
		t.Fatalf("unexpected output: %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), config.PlaceholderSecret) {
		t.Fatalf("generated config kept the placeholder secret")
	}

	if _, _, err := runCLI(t, "", "--config", path, "config", "generate", "--output", path); err == nil {
		t.Fatalf("expected generate to refuse overwriting")
	}
	out, _, err = runCLI(t, "", "--config", path, "config", "generate", "--output", path, "--update")
	if err != nil || !strings.Contains(out, "already up to date") {
		t.Fatalf("update: %v %q", err, out)
	}

	out, _, err = runCLI(t, "", "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "<redacted>") || !strings.Contains(out, "# source: "+path) {
		t.Fatalf("unexpected show output: %q", out)
	}

	out, _, err = runCLI(t, "", "--config", path, "config", "check")
	if err != nil || !strings.Contains(out, "Config OK") {
		t.Fatalf("check: %v %q", err, out)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[session]\nsecret = \"short\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, "", "--config", bad, "config", "check"); err == nil {
		t.Fatalf("expected short secret to fail check")
	}
	if _, _, err := runCLI(t, "", "--config", bad, "post", "list"); err == nil {
		t.Fatalf("expected store commands to refuse an invalid config")
	}
}

func TestCompletionScripts(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish"} {
		out, _, err := runCLI(t, "", "completion", shell)
		if err != nil {
			t.Fatalf("%s completion: %v", shell, err)
		}
		if !strings.Contains(out, "mudawwana") {
			t.Fatalf("%s completion missing command name", shell)
		}
	}
}
