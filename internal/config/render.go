package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// section is a TOML table and the options that live in it. The root table has
// an empty name.
type section struct {
	name string
	opts []ConfigOption
}

// groupBySection splits dotted keys into tables, keeping first-seen order.
// Options in the result carry the key relative to their table.
func groupBySection(opts []ConfigOption) []section {
	var out []section
	index := map[string]int{}
	for _, o := range opts {
		name, key, ok := strings.Cut(o.Key, ".")
		if !ok {
			name, key = "", o.Key
		}
		i, seen := index[name]
		if !seen {
			i = len(out)
			index[name] = i
			out = append(out, section{name: name})
		}
		out[i].opts = append(out[i].opts, ConfigOption{Key: key, Default: o.Default, Comment: o.Comment})
	}
	return out
}

// encodeOption renders one commented key/value pair. go-toml does the value
// encoding so strings with quotes, backslashes or newlines stay valid.
func encodeOption(key string, value any, comment string) ([]string, error) {
	raw, err := toml.Marshal(map[string]any{key: value})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}
	var lines []string
	if comment != "" {
		lines = append(lines, "# "+comment)
	}
	lines = append(lines, strings.TrimRight(string(raw), "\n"), "")
	return lines, nil
}

func writeSections(lines []string, secs []section) ([]string, error) {
	for _, s := range secs {
		if s.name != "" {
			lines = append(lines, "["+s.name+"]")
		}
		for _, o := range s.opts {
			kv, err := encodeOption(o.Key, o.Default, o.Comment)
			if err != nil {
				return nil, err
			}
			lines = append(lines, kv...)
		}
	}
	return lines, nil
}

// RenderDefaultTOML renders a TOML config with defaults from GetConfigOptions.
func RenderDefaultTOML() string {
	lines, err := writeSections([]string{"# Mudawwana configuration (TOML)"}, groupBySection(GetConfigOptions()))
	if err != nil {
		// Defaults are plain strings, ints, bools and string slices.
		panic(err)
	}
	return strings.Join(lines, "\n") + "\n"
}

// UpdateTOML adds options missing from existing and comments out keys that
// are no longer part of the schema. Missing keys go to the end of their table
// when it already exists, since TOML forbids defining a table twice.
func UpdateTOML(existing string) (string, bool) {
	opts := GetConfigOptions()
	known := make(map[string]bool, len(opts))
	for _, o := range opts {
		known[o.Key] = true
	}

	seen := map[string]bool{}
	ends := map[string]int{"": 0}
	table := ""
	changed := false
	var out []string
	for _, line := range strings.Split(existing, "\n") {
		trim := strings.TrimSpace(line)
		if strings.HasPrefix(trim, "[") && strings.HasSuffix(trim, "]") {
			table = strings.TrimSpace(trim[1 : len(trim)-1])
			out = append(out, line)
			ends[table] = len(out)
			continue
		}
		key, ok := parseTOMLKey(trim)
		if !ok {
			out = append(out, line)
			continue
		}
		if table != "" {
			key = table + "." + key
		}
		seen[key] = true
		if known[key] {
			out = append(out, line)
		} else {
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			out = append(out, indent+"# OUTDATED: option removed from config schema", indent+"# "+trim)
			changed = true
		}
		ends[table] = len(out)
	}

	var missing []ConfigOption
	for _, o := range opts {
		if !seen[o.Key] {
			missing = append(missing, o)
		}
	}
	if len(missing) == 0 {
		return strings.Join(out, "\n"), changed
	}

	var inserts []section
	var fresh []section
	for _, s := range groupBySection(missing) {
		if _, ok := ends[s.name]; ok {
			inserts = append(inserts, s)
		} else {
			fresh = append(fresh, s)
		}
	}
	// Insert bottom-up so earlier positions stay valid.
	sort.Slice(inserts, func(i, j int) bool { return ends[inserts[i].name] > ends[inserts[j].name] })
	for _, s := range inserts {
		chunk, err := writeSections([]string{"# Added by config update"}, []section{{opts: s.opts}})
		if err != nil {
			panic(err)
		}
		at := ends[s.name]
		out = append(out[:at], append(chunk, out[at:]...)...)
	}
	if len(fresh) > 0 {
		var err error
		out, err = writeSections(append(out, "", "# Added by config update"), fresh)
		if err != nil {
			panic(err)
		}
	}
	return strings.Join(out, "\n"), true
}

// EffectiveTOML encodes the merged settings of v, secrets redacted.
func EffectiveTOML(v *viper.Viper) (string, error) {
	settings := v.AllSettings()
	if sess, ok := settings["session"].(map[string]any); ok {
		if s, _ := sess["secret"].(string); s != "" {
			sess["secret"] = "<redacted>"
		}
	}
	out, err := toml.Marshal(settings)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// parseTOMLKey returns the bare key of a key/value line. Comments, quoted
// keys and anything without "=" are not keys.
func parseTOMLKey(trim string) (string, bool) {
	if trim == "" || trim[0] == '#' || trim[0] == ';' {
		return "", false
	}
	key, _, ok := strings.Cut(trim, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" || strings.ContainsAny(key[:1], "[\"'") {
		return "", false
	}
	return key, true
}
