package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// PlaceholderSecret is the shipped session.secret; config generate replaces it.
const PlaceholderSecret = "change-me-to-a-long-random-secret"

// EnvPrefix namespaces environment overrides, e.g. MUDAWWANA_HTTP_ADDR.
const EnvPrefix = "mudawwana"

// applyDefaults seeds Viper with defaults defined in GetConfigOptions.
// This centralizes default values and descriptions in one place.
func applyDefaults(v *viper.Viper) {
	for _, o := range GetConfigOptions() {
		v.SetDefault(o.Key, o.Default)
	}
}

// Load resolves configuration with precedence: defaults < file < .env < env.
// The provided Viper instance is mutated with defaults, file contents, and env.
func Load(ctx context.Context, v *viper.Viper) error {
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "mudawwana"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "mudawwana"))
		}
		v.AddConfigPath(".")
	}

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	// .env never overrides variables already present in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if v.GetString("data_dir") == "" {
		v.Set("data_dir", defaultDataDir())
	}
	// Allow comma-separated env override for tls.domains.
	if s, ok := v.Get("tls.domains").(string); ok {
		v.Set("tls.domains", splitList(s))
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// defaultDataDir resolves default data dir: $XDG_DATA_HOME/mudawwana or ~/.local/share/mudawwana
func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "mudawwana")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "mudawwana")
}

// DefaultConfigPath resolves the standard config.toml location.
func DefaultConfigPath() string {
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, _ := os.UserHomeDir()
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, "mudawwana", "config.toml")
}

type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// GetConfigOptions returns the default configuration options and their meanings.
// This is the single source of truth for default values and generator output.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "data_dir", Default: defaultDataDir(), Comment: "Directory for local state; DB is data_dir/mudawwana.db"},
		{Key: "http_addr", Default: ":8080", Comment: "HTTP listen address for the blog server"},

		{Key: "site.title", Default: "Mudawwana", Comment: "Site title shown in page headers"},
		{Key: "site.base_url", Default: "http://localhost:8080", Comment: "Public base URL used for share links"},
		{Key: "site.default_lang", Default: "en", Comment: "Language used when the reader has no preference (en or ar)"},
		{Key: "site.per_page", Default: 10, Comment: "Articles per listing page"},

		{Key: "session.secret", Default: PlaceholderSecret, Comment: "Key for signing the session cookie (at least 32 bytes)"},

		{Key: "log.level", Default: "info", Comment: "Log level: debug, info, warn, error"},
		{Key: "log.format", Default: "console", Comment: "Log encoding: console or json"},

		{Key: "render.fallback_language", Default: "javascript", Comment: "Language assumed for code fences without a tag"},
		{Key: "render.words_per_minute", Default: 200, Comment: "Reading speed used for read time estimates"},
		{Key: "render.highlight_style", Default: "monokai", Comment: "Chroma style for highlighted code blocks"},
		{Key: "render.line_numbers", Default: false, Comment: "Number the lines of highlighted code blocks"},

		{Key: "tls.domains", Default: []string{}, Comment: "Domains for automatic HTTPS; empty serves plain HTTP"},
		{Key: "tls.email", Default: "", Comment: "ACME account email for automatic HTTPS"},
		{Key: "tls.cert_file", Default: "", Comment: "PEM certificate file; used when tls.domains is empty"},
		{Key: "tls.key_file", Default: "", Comment: "PEM key file paired with tls.cert_file"},
		{Key: "tls.http3", Default: false, Comment: "Serve HTTP/3 over QUIC alongside HTTPS"},

		{Key: "export.page_size", Default: 200, Comment: "Batch size for post export paging"},
	}
}

// ResolveDBPath returns the sqlite DB file path under data_dir.
func ResolveDBPath(v *viper.Viper) string {
	dir := v.GetString("data_dir")
	if dir == "" {
		dir = defaultDataDir()
	}
	// Expand ~ for convenience
	if len(dir) > 0 && dir[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, dir[1:])
		}
	}
	return filepath.Join(dir, "mudawwana.db")
}
