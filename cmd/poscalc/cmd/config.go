package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/poscalc/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage the poscalc configuration file.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

The API key is better kept out of the file: set POSCALC_API_KEY in the
environment or in a .env file next to where poscalc runs.

Examples:
  poscalc config init -o ~/.config/poscalc/config.yaml
  poscalc config validate -f ~/.config/poscalc/config.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", config.DefaultPath(), "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	_ = configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if err := config.Default().SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ Created default configuration: %s\n", configInitOutput)
	fmt.Fprintln(w, "\nEdit the file and run with:")
	fmt.Fprintf(w, "  poscalc --config %s calc\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	c, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	key := "not set"
	if c.API.Key != "" {
		key = "set"
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ Configuration valid: %s\n", configValidatePath)
	fmt.Fprintf(w, "  API: %s (key %s, timeout %s)\n", c.API.URL, key, c.API.Timeout)
	fmt.Fprintf(w, "  Log: %s\n", c.Log.Level)
	fmt.Fprintf(w, "  Journal: %s\n", c.Journal.Type)
	fmt.Fprintf(w, "  Watch: %s\n", c.Watch.Schedule)
	return nil
}
