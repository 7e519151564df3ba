package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/mithrel/mudawwana/pkg/api"
)

// MinSecretLen is the shortest accepted session.secret.
const MinSecretLen = 32

// CheckConfigValidity reports every problem found in v at once.
func CheckConfigValidity(v *viper.Viper) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if strings.TrimSpace(v.GetString("data_dir")) == "" {
		add("data_dir is required")
	}
	if addr := v.GetString("http_addr"); addr == "" {
		add("http_addr is required")
	} else if _, _, err := net.SplitHostPort(addr); err != nil {
		add("http_addr %q is not host:port", addr)
	}

	if strings.TrimSpace(v.GetString("site.title")) == "" {
		add("site.title is required")
	}
	if raw := v.GetString("site.base_url"); raw != "" {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			add("site.base_url %q must be an absolute URL", raw)
		}
	}
	if _, ok := api.ParseLang(v.GetString("site.default_lang")); !ok {
		add("site.default_lang must be en or ar")
	}
	if n := v.GetInt("site.per_page"); n <= 0 || n > 100 {
		add("site.per_page must be between 1 and 100")
	}

	if len(v.GetString("session.secret")) < MinSecretLen {
		add("session.secret must be at least %d bytes", MinSecretLen)
	}

	if _, err := zapcore.ParseLevel(v.GetString("log.level")); err != nil {
		add("log.level %q is not a valid level", v.GetString("log.level"))
	}
	switch v.GetString("log.format") {
	case "console", "json":
	default:
		add("log.format must be console or json")
	}

	if v.GetInt("render.words_per_minute") <= 0 {
		add("render.words_per_minute must be greater than 0")
	}
	if style := v.GetString("render.highlight_style"); style != "" {
		if _, ok := styles.Registry[strings.ToLower(style)]; !ok {
			add("render.highlight_style %q is not a known chroma style", style)
		}
	}

	domains := len(v.GetStringSlice("tls.domains")) > 0
	certFile, keyFile := v.GetString("tls.cert_file"), v.GetString("tls.key_file")
	if (certFile == "") != (keyFile == "") {
		add("tls.cert_file and tls.key_file must be set together")
	}
	if v.GetBool("tls.http3") && !domains && (certFile == "" || keyFile == "") {
		add("tls.http3 requires tls.domains or a certificate pair")
	}
	if domains && v.GetString("tls.email") == "" {
		add("tls.email is required when tls.domains is set")
	}

	if v.GetInt("export.page_size") <= 0 {
		add("export.page_size must be greater than 0")
	}
	return errors.Join(errs...)
}
