package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/seenimoa/finlookup/internal/config"
)

// --- Config Command ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showConfig(os.Stdout, cfg)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default config file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "config/config.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.SaveToFile(config.Default(), path); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

// showConfig prints cfg as YAML with secrets replaced by their masked
// status.
func showConfig(w io.Writer, c *config.Config) error {
	redacted := *c
	redacted.Cache.RedisURL = ""

	if c.File != "" {
		fmt.Fprintf(w, "# config file: %s\n", c.File)
	} else {
		fmt.Fprintln(w, "# config file: none (defaults + environment)")
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(redacted); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\n# secrets")
	for _, s := range config.CheckSecrets(c) {
		status := "not set"
		if s.IsSet {
			status = fmt.Sprintf("set (%s: %s)", s.Source, s.Masked)
		}
		fmt.Fprintf(w, "#   %-12s %s\n", s.Name+":", status)
	}
	return nil
}
