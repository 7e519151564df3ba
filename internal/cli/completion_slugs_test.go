package cli

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func findCmd(root *cobra.Command, path ...string) *cobra.Command {
	cmd, _, err := root.Find(path)
	if err != nil {
		return nil
	}
	return cmd
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestCompleteSlugs(t *testing.T) {
	cfg := seededConfig(t)

	root := NewRootCmd()
	if err := root.PersistentFlags().Set("config", cfg); err != nil {
		t.Fatal(err)
	}
	show := findCmd(root, "post", "show")
	if show == nil {
		t.Fatal("could not find post show command")
	}

	tests := []struct {
		input    string
		expected []string
		absent   []string
	}{
		{input: "jank", expected: []string{"hunting-jank"}},
		{input: "fire", expected: []string{"firestore-offline-first"}},
		{input: "bloc", absent: []string{"bloc-vs-cubit"}},
		{input: "", expected: []string{"hunting-jank", "riverpod-in-practice", "your-first-flutter-widget"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, dir := completeSlugs(show, nil, tt.input)
			if dir != cobra.ShellCompDirectiveNoFileComp {
				t.Fatalf("directive = %v", dir)
			}
			for _, exp := range tt.expected {
				if !contains(got, exp) {
					t.Errorf("input %q: expected %q in %v", tt.input, exp, got)
				}
			}
			for _, a := range tt.absent {
				if contains(got, a) {
					t.Errorf("input %q: draft %q offered in %v", tt.input, a, got)
				}
			}
		})
	}

	if got, _ := completeSlugs(show, []string{"already"}, ""); len(got) != 0 {
		t.Fatalf("expected no completion for a second argument, got %v", got)
	}
}

func TestCompleteTaxonomyFlags(t *testing.T) {
	cfg := seededConfig(t)
	out, _, err := runCLI(t, "", cobra.ShellCompRequestCmd, "--config", cfg, "post", "list", "--category", "perf")
	if err != nil {
		t.Fatalf("complete category: %v", err)
	}
	if !strings.Contains(out, "performance-optimization") {
		t.Fatalf("unexpected category completions: %q", out)
	}
	out, _, err = runCLI(t, "", cobra.ShellCompRequestCmd, "--config", cfg, "post", "list", "--tag", "riv")
	if err != nil {
		t.Fatalf("complete tag: %v", err)
	}
	if !strings.Contains(out, "riverpod") {
		t.Fatalf("unexpected tag completions: %q", out)
	}
}
