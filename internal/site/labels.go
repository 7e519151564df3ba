package site

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mithrel/mudawwana/pkg/api"
)

//go:embed labels.yaml
var labelsYAML []byte

// Labels maps a UI key to its text in one language.
type Labels map[string]string

// Get returns the label for key, or key itself when it is missing.
func (l Labels) Get(key string) string {
	if s, ok := l[key]; ok {
		return s
	}
	return key
}

var labels = mustLoadLabels(labelsYAML)

func mustLoadLabels(raw []byte) map[api.Lang]Labels {
	out, err := parseLabels(raw)
	if err != nil {
		panic(err)
	}
	return out
}

func parseLabels(raw []byte) (map[api.Lang]Labels, error) {
	var byLang map[string]Labels
	if err := yaml.Unmarshal(raw, &byLang); err != nil {
		return nil, fmt.Errorf("labels: %w", err)
	}
	out := make(map[api.Lang]Labels, len(byLang))
	for k, v := range byLang {
		l, ok := api.ParseLang(k)
		if !ok {
			return nil, fmt.Errorf("labels: unsupported language %q", k)
		}
		out[l] = v
	}
	for _, l := range api.Langs {
		if _, ok := out[l]; !ok {
			return nil, fmt.Errorf("labels: missing language %q", l)
		}
	}
	return out, nil
}

// LabelsFor returns the UI labels of l, falling back to English.
func LabelsFor(l api.Lang) Labels {
	if ls, ok := labels[l]; ok {
		return ls
	}
	return labels[api.LangEN]
}
