package cli

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mithrel/mudawwana/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Manage configuration",
		Annotations: noApp(),
	}
	cmd.AddCommand(newConfigGenerateCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigCheckCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (secrets redacted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := getConfig(cmd)
			out, err := config.EffectiveTOML(v)
			if err != nil {
				return err
			}
			if used := v.ConfigFileUsed(); used != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# source: %s\n", used)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func newConfigCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.CheckConfigValidity(getConfig(cmd)); err != nil {
				return fmt.Errorf("config is invalid:\n%w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Config OK")
			return nil
		},
	}
}

func newConfigGenerateCmd() *cobra.Command {
	var out string
	var overwrite bool
	var update bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a default config.toml",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = config.DefaultConfigPath()
			}
			if overwrite && update {
				return fmt.Errorf("choose either --overwrite or --update")
			}
			return writeConfigFile(cmd, out, overwrite, update)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output path for config.toml")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "overwrite existing config (creates a backup)")
	cmd.Flags().BoolVar(&update, "update", false, "merge defaults into existing config (creates a backup)")
	return cmd
}

func writeConfigFile(cmd *cobra.Command, out string, overwrite, update bool) error {
	if err := os.MkdirAll(filepath.Dir(out), 0o700); err != nil {
		return err
	}

	exists := fileExists(out)
	if exists && !overwrite && !update {
		return fmt.Errorf("config already exists at %s; use --overwrite to replace (this will delete your current config) or --update to merge defaults", out)
	}

	content := ""
	if update && exists {
		data, err := os.ReadFile(out)
		if err != nil {
			return err
		}
		updated, changed := config.UpdateTOML(string(data))
		if !changed {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Config already up to date: %s\n", out)
			return nil
		}
		content = updated
	} else {
		secret, err := randomSecret()
		if err != nil {
			return err
		}
		content = strings.Replace(config.RenderDefaultTOML(), config.PlaceholderSecret, secret, 1)
	}

	var backupPath string
	if exists && (overwrite || update) {
		var err error
		backupPath, err = backupConfig(out)
		if err != nil {
			return err
		}
	}

	if err := os.WriteFile(out, []byte(content), 0o600); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
	if backupPath != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Backup: %s\n", backupPath)
	}
	return nil
}

func backupConfig(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	backup := path + ".bak"
	if fileExists(backup) {
		backup = fmt.Sprintf("%s.bak-%s", path, time.Now().Format("20060102-150405"))
	}
	if err := os.WriteFile(backup, data, 0o600); err != nil {
		return "", err
	}
	return backup, nil
}

func randomSecret() (string, error) {
	b := make([]byte, config.MinSecretLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
