package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validViper() *viper.Viper {
	v := viper.New()
	applyDefaults(v)
	v.Set("data_dir", "/tmp/mudawwana")
	v.Set("session.secret", strings.Repeat("s", MinSecretLen))
	return v
}

func TestCheckConfigValidityValid(t *testing.T) {
	require.NoError(t, CheckConfigValidity(validViper()))
}

func TestCheckConfigValidityInvalid(t *testing.T) {
	v := validViper()
	v.Set("data_dir", "")
	v.Set("http_addr", "8080")
	v.Set("site.base_url", "not a url")
	v.Set("site.default_lang", "fr")
	v.Set("site.per_page", 0)
	v.Set("session.secret", "short")
	v.Set("log.level", "loud")
	v.Set("log.format", "xml")
	v.Set("render.words_per_minute", 0)
	v.Set("render.highlight_style", "no-such-style")
	v.Set("tls.http3", true)
	v.Set("tls.cert_file", "cert.pem")
	v.Set("export.page_size", 0)

	err := CheckConfigValidity(v)
	require.Error(t, err)

	msg := err.Error()
	expected := []string{
		"data_dir is required",
		`http_addr "8080" is not host:port`,
		"site.base_url",
		"site.default_lang must be en or ar",
		"site.per_page must be between 1 and 100",
		"session.secret must be at least 32 bytes",
		`log.level "loud"`,
		"log.format must be console or json",
		"render.words_per_minute must be greater than 0",
		`render.highlight_style "no-such-style"`,
		"tls.cert_file and tls.key_file must be set together",
		"tls.http3 requires tls.domains or a certificate pair",
		"export.page_size must be greater than 0",
	}
	for _, want := range expected {
		assert.Contains(t, msg, want)
	}
}

func TestCheckConfigValidityTLSDomains(t *testing.T) {
	v := validViper()
	v.Set("tls.domains", []string{"blog.example"})
	v.Set("tls.http3", true)
	err := CheckConfigValidity(v)
	require.Error(t, err)
	assert.Equal(t, "tls.email is required when tls.domains is set", err.Error())

	v.Set("tls.email", "ops@blog.example")
	assert.NoError(t, CheckConfigValidity(v))
}

func TestRenderDefaultTOMLParses(t *testing.T) {
	out := RenderDefaultTOML()
	assert.True(t, strings.HasPrefix(out, "# Mudawwana configuration (TOML)\n"))

	var parsed map[string]any
	require.NoError(t, toml.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, ":8080", parsed["http_addr"])
	site, ok := parsed["site"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "en", site["default_lang"])
	assert.EqualValues(t, 10, site["per_page"])
}

func TestUpdateTOML(t *testing.T) {
	in := "http_addr = \":9000\"\nlegacy = true\n[site]\ntitle = \"Mine\"\n"
	out, changed := UpdateTOML(in)
	require.True(t, changed)
	assert.Contains(t, out, "http_addr = \":9000\"")
	assert.Contains(t, out, "# OUTDATED: option removed from config schema\n# legacy = true")
	assert.Contains(t, out, "title = \"Mine\"")
	assert.Contains(t, out, "[render]")

	again, changed := UpdateTOML(RenderDefaultTOML())
	assert.False(t, changed)
	assert.Equal(t, RenderDefaultTOML(), again)
}

func TestUpdateTOMLKeepsTablesUnique(t *testing.T) {
	in := "[site]\ntitle = \"Mine\"\n\n[log]\nlevel = \"debug\"\n"
	out, changed := UpdateTOML(in)
	require.True(t, changed)
	assert.Equal(t, 1, strings.Count(out, "[site]"))
	assert.Equal(t, 1, strings.Count(out, "[log]"))

	var parsed map[string]any
	require.NoError(t, toml.Unmarshal([]byte(out), &parsed), out)
	site := parsed["site"].(map[string]any)
	assert.Equal(t, "Mine", site["title"])
	assert.Equal(t, "http://localhost:8080", site["base_url"])
	assert.Equal(t, "debug", parsed["log"].(map[string]any)["level"])
	assert.Contains(t, parsed, "data_dir")
}

func TestEncodeOptionEscapesStrings(t *testing.T) {
	title := `The "Quoted" Blog \ notes`
	lines, err := encodeOption("title", title, "Site title")
	require.NoError(t, err)
	require.Equal(t, "# Site title", lines[0])

	var parsed map[string]any
	require.NoError(t, toml.Unmarshal([]byte(strings.Join(lines, "\n")), &parsed))
	assert.Equal(t, title, parsed["title"])

	lines, err = encodeOption("domains", []string{`a"b`, "c"}, "")
	require.NoError(t, err)
	parsed = nil
	require.NoError(t, toml.Unmarshal([]byte(strings.Join(lines, "\n")), &parsed))
	assert.Equal(t, []any{`a"b`, "c"}, parsed["domains"])
}

func TestEffectiveTOMLRedactsSecret(t *testing.T) {
	v := validViper()
	out, err := EffectiveTOML(v)
	require.NoError(t, err)
	assert.Contains(t, out, "<redacted>")
	assert.NotContains(t, out, strings.Repeat("s", MinSecretLen))
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("http_addr = \":7000\"\n[site]\ntitle = \"From file\"\nper_page = 5\n"), 0o600))

	t.Setenv("MUDAWWANA_SITE_TITLE", "From env")
	t.Setenv("MUDAWWANA_TLS_DOMAINS", "a.example, b.example")
	t.Chdir(dir)

	v := viper.New()
	v.SetConfigFile(cfg)
	require.NoError(t, Load(context.Background(), v))

	assert.Equal(t, ":7000", v.GetString("http_addr"))
	assert.Equal(t, "From env", v.GetString("site.title"))
	assert.Equal(t, 5, v.GetInt("site.per_page"))
	assert.Equal(t, "en", v.GetString("site.default_lang"))
	assert.Equal(t, []string{"a.example", "b.example"}, v.GetStringSlice("tls.domains"))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MUDAWWANA_LOG_LEVEL=debug\n"), 0o600))
	t.Chdir(dir)
	t.Cleanup(func() { os.Unsetenv("MUDAWWANA_LOG_LEVEL") })

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, "missing.toml"))
	require.NoError(t, Load(context.Background(), v))
	assert.Equal(t, "debug", v.GetString("log.level"))
}

func TestResolveDBPath(t *testing.T) {
	v := viper.New()
	v.Set("data_dir", "/var/lib/blog")
	assert.Equal(t, "/var/lib/blog/mudawwana.db", ResolveDBPath(v))
}
