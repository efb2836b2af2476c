package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/recipeviz/am"
	"github.com/teranos/recipeviz/display"
	"github.com/teranos/recipeviz/sym"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: sym.AM + " Manage recipeviz configuration",
	Long: `am - Manage recipeviz configuration ("I am")

Configuration sources (in order of precedence):
1. Environment variables (RECIPEVIZ_* prefix)
2. Project config (./am.toml, searched up from the working directory)
3. User config (~/.recipeviz/am.toml)
4. System config (/etc/recipeviz/am.toml)
5. Default values

Examples:
  recipeviz am show                  # Show current configuration
  recipeviz am show --format json    # Show configuration in JSON format
  recipeviz am where                 # Show which source set each value
  recipeviz am get canvas.palette    # Get one value
  recipeviz am init                  # Write defaults to ~/.recipeviz/am.toml`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the effective configuration merged from all sources",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., canvas.palette, reveal.default_delay_ms)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where each setting is loaded from",
	RunE:  runAmWhere,
}

var amInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration",
	Long:  "Write the default configuration to path (default ~/.recipeviz/am.toml). An existing file is kept unless --force is given; a replaced file is rotated to .back1.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAmInit,
}

var (
	configFormat string
	initForce    bool
)

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")
	amInitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
	AmCmd.AddCommand(amInitCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return writeConfig(os.Stdout, cfg, configFormat)
}

// writeConfig renders cfg in format (toml, json or yaml)
func writeConfig(w io.Writer, cfg *am.Config, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
		fmt.Fprintf(w, "# recipeviz configuration\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config to TOML: %w", err)
		}
		fmt.Fprintf(w, "# recipeviz configuration\n%s", string(data))

	default:
		return fmt.Errorf("unsupported format: %s (supported: toml, json, yaml)", format)
	}
	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if _, err := am.Load(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !am.GetViper().IsSet(key) {
		return fmt.Errorf("configuration key %q not found", key)
	}
	fmt.Println(am.Get(key))
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	pterm.Success.Println("Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	intro, err := am.GetConfigIntrospection()
	if err != nil {
		return fmt.Errorf("failed to get config introspection: %w", err)
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(intro)
	}

	pterm.DefaultSection.Println("Configuration cascade (later overrides earlier)")
	for _, p := range am.ConfigPaths() {
		pterm.Println("  " + p)
	}
	pterm.Println("  RECIPEVIZ_* environment variables")

	data := pterm.TableData{{"Key", "Value", "Source", "From"}}
	for _, s := range intro.Settings {
		value := fmt.Sprintf("%v", s.Value)
		if len(value) > 50 {
			value = value[:47] + "..."
		}
		data = append(data, []string{s.Key, value, string(s.Source), s.SourcePath})
	}
	pterm.Println()
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func runAmInit(cmd *cobra.Command, args []string) error {
	path := am.UserConfigPath()
	if len(args) == 1 {
		path = args[0]
	}
	if err := am.WriteDefaults(path, initForce); err != nil {
		return err
	}
	pterm.Success.Printf("Wrote default configuration to %s\n", path)
	return nil
}
