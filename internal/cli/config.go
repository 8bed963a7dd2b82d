package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roboco-io/isoanchor/internal/config"
	"github.com/roboco-io/isoanchor/internal/xref"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage the isoanchor configuration.

Config file: ~/.isoanchor/config.yaml (or $ISOANCHOR_CONFIG, or --config)

Subcommands:
  show    show the current configuration
  init    create a default config file
  set     change a setting
  path    print the config file path`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	Long: `Show the configuration as stored in the config file, or the defaults
when there is no file, followed by the environment variables that
override it.`,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long: `Create a default config file.

Fails if the file already exists. Use --force to overwrite it.`,
	RunE: runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a setting in the config file.

Supported keys:
  numbering.annex_style    annex labels (letter, number)
  numbering.hierarchical   per-clause asset numbering (true, false)
  numbering.separator      separator between clause and asset number
  log.level                debug, info, warn, error
  log.format               text, json
  store.path               anchor store database
  draft                    keep review notes (true, false)
  labels.<name>            label prefix, e.g. labels.figure

Examples:
  isoanchor config set numbering.annex_style number
  isoanchor config set labels.figure Fig.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := newLoader()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), loader.ConfigPath())
		return nil
	},
}

var configForce bool

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	loader, err := newLoader()
	if err != nil {
		return fmt.Errorf("failed to initialize config loader: %w", err)
	}

	cfg, err := loader.LoadRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out := cmd.OutOrStdout()
	if loader.Exists() {
		fmt.Fprintf(out, "Config file: %s\n\n", loader.ConfigPath())
	} else {
		fmt.Fprintf(out, "Config file: (defaults)\n\n")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	fmt.Fprintln(out, string(data))

	fmt.Fprintln(out, "Environment:")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	envVars := []struct {
		key  string
		desc string
	}{
		{config.ConfigPathEnv, "config file"},
		{"ISOANCHOR_LOG_LEVEL", "log level"},
		{"ISOANCHOR_LOG_FORMAT", "log format"},
		{"ISOANCHOR_HIERARCHICAL", "per-clause asset numbering"},
		{"ISOANCHOR_DB", "anchor store"},
	}
	for _, ev := range envVars {
		value := os.Getenv(ev.key)
		if value == "" {
			value = "(unset)"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", ev.key, ev.desc, value)
	}
	w.Flush()

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	loader, err := newLoader()
	if err != nil {
		return fmt.Errorf("failed to initialize config loader: %w", err)
	}

	if loader.Exists() && !configForce {
		return fmt.Errorf("config file already exists: %s\nuse --force to overwrite it", loader.ConfigPath())
	}

	if err := loader.Save(config.DefaultConfig()); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config file created: %s\n", loader.ConfigPath())
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	loader, err := newLoader()
	if err != nil {
		return fmt.Errorf("failed to initialize config loader: %w", err)
	}

	cfg, err := loader.LoadRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := setConfigValue(cfg, key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := loader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}

func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "numbering.annex_style":
		valid := []string{string(xref.AnnexLetter), string(xref.AnnexNumber)}
		if !contains(valid, value) {
			return fmt.Errorf("invalid annex style: %s (supported: %s)", value, strings.Join(valid, ", "))
		}
		cfg.Numbering.AnnexStyle = value

	case "numbering.hierarchical", "draft":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %s", key, value)
		}
		if key == "draft" {
			cfg.Draft = b
		} else {
			cfg.Numbering.Hierarchical = b
		}

	case "numbering.separator":
		if value == "" {
			return fmt.Errorf("separator cannot be empty")
		}
		cfg.Numbering.Separator = value

	case "log.level":
		cfg.Log.Level = value

	case "log.format":
		cfg.Log.Format = value

	case "store.path":
		cfg.Store.Path = value

	default:
		name, ok := strings.CutPrefix(key, "labels.")
		if !ok {
			return fmt.Errorf("unknown config key: %s", key)
		}
		if _, known := xref.DefaultLabels()[name]; !known {
			return fmt.Errorf("unknown label: %s", name)
		}
		if cfg.Labels == nil {
			cfg.Labels = make(map[string]string)
		}
		cfg.Labels[name] = value
	}
	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
